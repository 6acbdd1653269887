package uax31

// IsIdentifier reports whether a codepoint sequence forms an identifier as
// defined by Unicode Standard Annex #31.
//
// This implements the "Default Identifiers" specification, specifically
// UAX31-R1-1, which does not add or modify any of the character sequences
// or their properties:
//
//   - the empty sequence is not an identifier,
//   - the first codepoint must have XID_Start,
//   - every following codepoint must have XID_Continue, or be ZWNJ/ZWJ in a
//     non-final position.
func (c *Classifier) IsIdentifier(s []rune) bool {
	if len(s) == 0 {
		return false
	}
	if !c.Classify(s[0]).IsStart() {
		return false
	}
	for i, cp := range s[1:] {
		if c.Classify(cp).IsContinue() {
			continue
		}
		// The two joiner codepoints are only allowed in the middle,
		// not at the end.
		if (cp != ZWNJ && cp != ZWJ) || i+2 == len(s) {
			return false
		}
	}
	return true
}

// IsIdentifierString is the textual form of IsIdentifier. It decodes s
// into the codepoint sequence a caller would obtain by ranging over the
// string and applies the same rules, in a single pass and without
// backtracking. Both forms agree for every input.
func (c *Classifier) IsIdentifierString(s string) bool {
	if len(s) == 0 {
		return false
	}
	// One codepoint of lookahead decides "is this the last one".
	first := true
	pending := rune(0)
	havePending := false
	for _, cp := range s {
		if first {
			if !c.Classify(cp).IsStart() {
				return false
			}
			first = false
			continue
		}
		if havePending && !c.continuesIdentifier(pending, false) {
			return false
		}
		pending = cp
		havePending = true
	}
	if havePending && !c.continuesIdentifier(pending, true) {
		return false
	}
	return true
}

// continuesIdentifier applies the non-initial codepoint rule.
func (c *Classifier) continuesIdentifier(cp rune, last bool) bool {
	if c.Classify(cp).IsContinue() {
		return true
	}
	return (cp == ZWNJ || cp == ZWJ) && !last
}
