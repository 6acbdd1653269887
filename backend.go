package uax31

// classTable is the internal backend abstraction for compiled class
// storage. Lookup is only called for codepoints in [asciiLimit,
// MaxCodepoint]; the Classifier handles the ASCII fast path and the upper
// bound before dispatching.
type classTable interface {
	lookup(cp rune) IdentifierClass
	stats() TableStats
}

// TableStats reports size metrics of a compiled table backend.
type TableStats struct {
	Backend      string
	Blocks       int // codepoint blocks covered
	Leaves       int // distinct leaf shapes after deduplication
	LeafRuns     int // total runs in the shared leaf storage
	Level2Tables int // distinct second-level tables after deduplication
	SizeBytes    int // total backing storage
}

// BytesPerCodepoint is the amortized table cost over the covered range.
func (s TableStats) BytesPerCodepoint() float64 {
	if s.Blocks == 0 {
		return 0
	}
	return float64(s.SizeBytes) / float64(MaxCodepoint+1)
}
