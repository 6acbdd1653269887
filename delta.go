package uax31

import (
	"fmt"

	"github.com/npillmayer/uax31/bitstream"
)

// deltaTable is the simpler, single-level table backend: the run sequence
// is flattened into one LEB128-coded bitstream of (gap, length, class)
// records, one per run with a non-Other class. Lookup is a linear scan of
// the stream.
//
// It trades lookup speed for size and is kept as the compact serialization
// form and as an independent cross-check of the trie backend.
type deltaTable struct {
	stream []byte
	blocks int // covered blocks, for stats only
}

// encodeDeltaStream flattens maximal runs into the delta bitstream. Runs
// with class Other become gaps between records; the closing sentinel run
// is Other by construction and is never emitted.
func encodeDeltaStream(runs []run) []byte {
	var w bitstream.Writer
	index := uint32(0)
	for i := 0; i+1 < len(runs); i++ {
		if runs[i].value == Other {
			continue
		}
		length := runs[i+1].start - runs[i].start
		w.WriteUvarint(runs[i].start - index)
		w.WriteUvarint(length)
		w.WriteBits(byte(runs[i].value), 2)
		index = runs[i].start + length
	}
	return w.Bytes()
}

func (d *deltaTable) lookup(cp rune) IdentifierClass {
	r := bitstream.NewReader(d.stream)
	index := uint32(0)
	for !r.AtEnd() {
		gap, err := r.ReadUvarint()
		if err != nil {
			break
		}
		length, err := r.ReadUvarint()
		if err != nil {
			break
		}
		value, err := r.ReadBits(2)
		if err != nil {
			break
		}
		index += gap
		if uint32(cp) < index {
			return Other
		}
		if uint32(cp) < index+length {
			return IdentifierClass(value)
		}
		index += length
	}
	return Other
}

func (d *deltaTable) stats() TableStats {
	return TableStats{
		Backend:   "delta",
		Blocks:    d.blocks,
		SizeBytes: len(d.stream),
	}
}

func (d *deltaTable) String() string {
	return fmt.Sprintf("delta(bytes=%d)", len(d.stream))
}
