package uax31

// IdentifierClass is the classification of a codepoint with respect to
// identifier formation. Use `class & Start` to query for the XID_Start
// property and `class & Continue` to query for XID_Continue.
type IdentifierClass byte

const (
	// Other marks codepoints carrying neither identifier property.
	Other IdentifierClass = iota
	// An IdentifierClass with this bit set has the XID_Start property.
	Start
	// An IdentifierClass with this bit set has the XID_Continue property.
	Continue
)

// IsStart reports whether the classified codepoint may start an identifier.
func (class IdentifierClass) IsStart() bool { return class&Start != 0 }

// IsContinue reports whether the classified codepoint may continue an
// identifier.
func (class IdentifierClass) IsContinue() bool { return class&Continue != 0 }

const (
	// MaxCodepoint is the highest codepoint covered by compiled tables.
	// Unicode assigns no identifier properties above it; classification of
	// higher codepoints is Other by construction.
	MaxCodepoint = 0xFFFFF

	asciiLimit = 0x80
)

// U+200C ZERO WIDTH NON-JOINER and U+200D ZERO WIDTH JOINER are allowed
// *inside* an identifier (never first or last).
const (
	ZWNJ = 0x200c
	ZWJ  = 0x200d
)

// asciiTable answers codepoints below 0x80 with a direct array read,
// bypassing the trie. It is populated independently of property data; the
// general table agrees with it for real Unicode data (ASCII letters carry
// XID_Start and XID_Continue, digits and '_' only XID_Continue).
var asciiTable = func() [asciiLimit]IdentifierClass {
	var table [asciiLimit]IdentifierClass
	for c := byte('A'); c <= byte('Z'); c++ {
		table[c] = Start | Continue
	}
	for c := byte('a'); c <= byte('z'); c++ {
		table[c] = Start | Continue
	}
	for c := byte('0'); c <= byte('9'); c++ {
		table[c] = Continue
	}
	table['_'] = Continue
	return table
}()

// Classifier is a compiled, frozen codepoint classifier.
//
// The zero Classifier (and a nil one) classifies every non-ASCII codepoint
// as Other. Classifiers are built by Compile or restored from a serialized
// Table and are never mutated afterwards; all methods may be called
// concurrently.
type Classifier struct {
	table  classTable
	Source string // identifies the property data the table was compiled from
}

// Classify returns the identifier classification of a single codepoint.
//
// It is total: any rune value, including negatives, surrogates and values
// beyond the Unicode range, yields a classification (Other where no
// property applies) and never an error.
func (c *Classifier) Classify(cp rune) IdentifierClass {
	if cp < 0 {
		return Other
	}
	if cp < asciiLimit {
		return asciiTable[cp]
	}
	if cp > MaxCodepoint || c == nil || c.table == nil {
		return Other
	}
	return c.table.lookup(cp)
}

// Stats reports size metrics for the underlying table backend.
func (c *Classifier) Stats() TableStats {
	if c == nil || c.table == nil {
		return TableStats{}
	}
	return c.table.stats()
}
