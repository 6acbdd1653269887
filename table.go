package uax31

import "sort"

// Table is a frozen two-level run-length trie over the codepoint space.
//   - The space [0, MaxCodepoint] is cut into blocks of 1<<Shift codepoints.
//   - A block index b splits into (top, bottom) = (b>>LowerBits, b&lowerMask).
//   - Level1[top] names a second-level table; second-level tables are
//     deduplicated and stored back-to-back in Level2, each 1<<LowerBits
//     entries long.
//   - Level2[id<<LowerBits+bottom] names a leaf.
//   - A leaf is a run table in block-local coordinates: run i covers local
//     offsets [LeafRunStarts[o+i], LeafRunStarts[o+i+1]) with class
//     LeafRunValues[o+i], where o = LeafOffsets[leaf]. Every leaf ends with
//     a sentinel run starting at the block size, so LeafOffsets carries one
//     extra trailing entry and a leaf's length is LeafOffsets[id+1] -
//     LeafOffsets[id].
//
// Leaves and second-level tables are shared: structurally identical shapes
// are stored once and referenced by id. Ids are 16 bits wide; compilation
// rejects inputs that would overflow them.
//
// A Table is immutable after compilation. The exported fields exist so that
// generated code (see cmd/uax31gen) can construct one as static data; they
// must not be modified afterwards.
type Table struct {
	// Shift is the block width in bits (block size is 1<<Shift codepoints).
	Shift uint32

	// LowerBits is the width of the bottom part of a block index; the top
	// part indexes Level1.
	LowerBits uint32

	// StartOffset is the first codepoint covered by run data. Codepoints
	// below it resolve through leaves as well, but their class is only
	// meaningful when the table was compiled to cover them (offset 0).
	StartOffset uint32

	// LeafOffsets maps a leaf id to its first run in LeafRunStarts /
	// LeafRunValues; one extra trailing entry closes the last leaf.
	LeafOffsets []uint16

	// LeafRunStarts and LeafRunValues are the shared leaf run storage,
	// split into parallel arrays for dense binary search over the starts.
	LeafRunStarts []uint16
	LeafRunValues []IdentifierClass

	// Level2 holds the deduplicated second-level tables back-to-back.
	Level2 []uint16

	// Level1 maps the top bits of a block index to a second-level table id.
	Level1 []uint16
}

// BlockCount returns the number of codepoint blocks the table covers.
func (t *Table) BlockCount() int {
	return (MaxCodepoint >> t.Shift) + 1
}

// lookup resolves one codepoint through the two-level index and a binary
// search over the resolved leaf. The caller guarantees asciiLimit <= cp <=
// MaxCodepoint; see Classifier.Classify.
func (t *Table) lookup(cp rune) IdentifierClass {
	block := uint32(cp) >> t.Shift
	top := block >> t.LowerBits
	bottom := block & (1<<t.LowerBits - 1)
	level2ID := uint32(t.Level1[top])
	leafID := t.Level2[level2ID<<t.LowerBits+bottom]

	lo := int(t.LeafOffsets[leafID])
	hi := int(t.LeafOffsets[leafID+1])
	runs := t.LeafRunStarts[lo:hi]
	values := t.LeafRunValues[lo:hi]

	local := uint16(uint32(cp) & (1<<t.Shift - 1))
	idx := sort.Search(len(runs), func(i int) bool {
		return runs[i] > local
	})
	if idx == 0 {
		// local offset precedes the first run; only reachable for
		// codepoints below StartOffset in the first block.
		return Other
	}
	return values[idx-1]
}

func (t *Table) stats() TableStats {
	return TableStats{
		Backend:      "rle-trie",
		Blocks:       t.BlockCount(),
		Leaves:       len(t.LeafOffsets) - 1,
		LeafRuns:     len(t.LeafRunStarts),
		Level2Tables: len(t.Level2) >> t.LowerBits,
		SizeBytes: 2*len(t.LeafOffsets) + 2*len(t.LeafRunStarts) +
			len(t.LeafRunValues) + 2*len(t.Level2) + 2*len(t.Level1),
	}
}

// NewClassifier wraps a compiled (or generated) table into a Classifier.
// The table must not be modified afterwards.
func NewClassifier(name string, table *Table) *Classifier {
	return &Classifier{table: table, Source: name}
}
