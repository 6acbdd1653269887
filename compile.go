package uax31

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"
)

// The two derived properties the classifier is keyed on. The XID_* pair is
// the closure-stable one required by UAX #31 default identifiers; the plain
// ID_* pair is deliberately not consulted.
const (
	PropStart    = "XID_Start"
	PropContinue = "XID_Continue"
)

var (
	// ErrBadConfig is returned when Config values cannot describe a valid
	// table layout.
	ErrBadConfig = errors.New("uax31: invalid table configuration")

	// ErrTableOverflow is returned when the input produces more distinct
	// leaves, runs or second-level tables than the 16-bit table ids can
	// address. This signals a configuration mismatch (Shift/TopBits chosen
	// too coarsely), not a data problem.
	ErrTableOverflow = errors.New("uax31: table index overflow")
)

// PropertyReader yields codepoint property assignments one-by-one, in file
// order. It should return io.EOF when the stream is exhausted.
//
// Each entry states that every codepoint in [lo, hi] carries the named
// property. Package ucd provides a reader for the Unicode file format.
type PropertyReader interface {
	Next() (lo, hi rune, property string, err error)
}

// Backend selects the compiled table representation.
type Backend string

const (
	// BackendTrie is the two-level run-length trie (the default).
	BackendTrie Backend = "rle-trie"
	// BackendDelta is the single-level delta/run bitstream. Smaller,
	// linear-scan lookup; mainly useful for serialization and as a
	// cross-check.
	BackendDelta Backend = "delta"
)

// Config carries the table layout knobs. The zero value is not usable; use
// DefaultConfig as a starting point.
type Config struct {
	// Shift is the block width in bits. Blocks hold 1<<Shift codepoints.
	Shift uint32
	// TopBits is the width of the first-level index; it must be smaller
	// than the block index width implied by Shift.
	TopBits uint32
	// StartOffset is the first codepoint covered by run data. Codepoints
	// below it are expected to be answered by the ASCII fast table.
	StartOffset rune
	// Backend selects the table representation; empty means BackendTrie.
	Backend Backend
}

// DefaultConfig mirrors the layout the table format was designed around:
// 1024-codepoint blocks, a 64-entry first level, run data starting above
// the ASCII range.
var DefaultConfig = Config{Shift: 10, TopBits: 6, StartOffset: asciiLimit,
	Backend: BackendTrie}

func (cfg Config) validate() error {
	// Shift is capped at 15: the block-local sentinel run starts at the
	// block size, which must still fit in a uint16 run start.
	if cfg.Shift < 4 || cfg.Shift > 15 {
		return fmt.Errorf("%w: shift %d outside [4,15]", ErrBadConfig, cfg.Shift)
	}
	blockBits := blockIndexBits(cfg.Shift)
	if cfg.TopBits < 1 || cfg.TopBits >= blockBits {
		return fmt.Errorf("%w: topBits %d must be in [1,%d)", ErrBadConfig,
			cfg.TopBits, blockBits)
	}
	if cfg.StartOffset < 0 || cfg.StartOffset >= MaxCodepoint {
		return fmt.Errorf("%w: start offset %#x out of range", ErrBadConfig,
			cfg.StartOffset)
	}
	switch cfg.Backend {
	case "", BackendTrie, BackendDelta:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrBadConfig, cfg.Backend)
	}
	return nil
}

func blockIndexBits(shift uint32) uint32 {
	blockCount := uint32(MaxCodepoint>>shift) + 1
	return uint32(32 - bits.LeadingZeros32(blockCount-1))
}

// Compile builds a classifier from streaming property data using
// DefaultConfig. name identifies the data source for diagnostics.
func Compile(name string, reader PropertyReader) (*Classifier, error) {
	return CompileWith(DefaultConfig, name, reader)
}

// CompileWith builds a classifier with an explicit table layout.
//
// Compilation either succeeds completely or fails without producing a
// table; a returned error never leaves a partially filled classifier
// behind.
func CompileWith(cfg Config, name string, reader PropertyReader) (dict *Classifier, err error) {
	if err = cfg.validate(); err != nil {
		return nil, err
	}
	raw, err := buildRawTable(reader)
	if err != nil {
		return nil, err
	}
	var table classTable
	if cfg.Backend == BackendDelta {
		runs := compressRuns(raw, cfg.StartOffset)
		table = &deltaTable{
			stream: encodeDeltaStream(runs),
			blocks: (MaxCodepoint >> cfg.Shift) + 1,
		}
	} else {
		table, err = freezeTable(cfg, raw)
		if err != nil {
			return nil, err
		}
	}
	stats := table.stats()
	tracer().Infof("classifier table backend=%s leaves=%d runs=%d level2=%d bytes=%d (%.4f B/cp)",
		stats.Backend, stats.Leaves, stats.LeafRuns, stats.Level2Tables,
		stats.SizeBytes, stats.BytesPerCodepoint())
	return &Classifier{table: table, Source: name}, nil
}

// CompileTable runs the construction pipeline but returns the raw
// two-level table instead of a wrapped classifier. This is the entry point
// for the uax31gen generator, which serializes the table as static data.
// The Backend field of cfg is ignored; the artifact is always the trie.
func CompileTable(cfg Config, reader PropertyReader) (*Table, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	raw, err := buildRawTable(reader)
	if err != nil {
		return nil, err
	}
	return freezeTable(cfg, raw)
}

// buildRawTable expands the property stream into a dense per-codepoint
// class array of length MaxCodepoint+1. Properties other than XID_Start
// and XID_Continue are skipped; ranges reaching above MaxCodepoint are
// clipped (Unicode assigns neither property up there).
func buildRawTable(reader PropertyReader) ([]IdentifierClass, error) {
	raw := make([]IdentifierClass, MaxCodepoint+1)
	for {
		lo, hi, property, err := reader.Next()
		if err == io.EOF {
			return raw, nil
		}
		if err != nil {
			return nil, err
		}
		var class IdentifierClass
		switch property {
		case PropStart:
			class = Start
		case PropContinue:
			class = Continue
		default:
			continue
		}
		if lo > MaxCodepoint {
			continue
		}
		if hi > MaxCodepoint {
			hi = MaxCodepoint
		}
		for cp := lo; cp <= hi; cp++ {
			raw[cp] |= class
		}
	}
}

// run covers codepoints [start, next run's start) with one class value.
type run struct {
	start uint32
	value IdentifierClass
}

// compressRuns collapses the dense array into maximal runs covering
// [start, MaxCodepoint+1), closed by a sentinel run at MaxCodepoint+1 with
// class Other. Adjacent runs never share a value.
func compressRuns(raw []IdentifierClass, start rune) []run {
	const end = uint32(MaxCodepoint + 1)
	runs := make([]run, 0, 1024)

	runStart := uint32(start)
	current := raw[start]
	for cp := uint32(start) + 1; cp <= end; cp++ {
		value := Other
		if cp < end {
			value = raw[cp]
		}
		if value != current {
			runs = append(runs, run{start: runStart, value: current})
			runStart = cp
			current = value
		}
	}
	runs = append(runs, run{start: runStart, value: current})
	if runs[len(runs)-1].start != end {
		runs = append(runs, run{start: end, value: Other})
	}
	return runs
}

// leafKey serializes a block-local run table for content-addressed
// deduplication. First-seen order assigns ids, keeping rebuilds
// deterministic.
func leafKey(starts []uint16, values []IdentifierClass) string {
	buf := make([]byte, 0, len(starts)*3)
	for i := range starts {
		buf = binary.LittleEndian.AppendUint16(buf, starts[i])
		buf = append(buf, byte(values[i]))
	}
	return string(buf)
}

func level2Key(table []uint16) string {
	buf := make([]byte, 0, len(table)*2)
	for _, v := range table {
		buf = binary.LittleEndian.AppendUint16(buf, v)
	}
	return string(buf)
}

const maxTableIndex = 1<<16 - 1

// freezeTable runs the full construction pipeline: runs, block leaves,
// leaf dedup, two-level index dedup.
func freezeTable(cfg Config, raw []IdentifierClass) (*Table, error) {
	runs := compressRuns(raw, cfg.StartOffset)
	tracer().Debugf("compressed %d codepoints into %d runs",
		MaxCodepoint+1-int(cfg.StartOffset), len(runs))

	blockCount := (MaxCodepoint >> cfg.Shift) + 1
	lowerBits := blockIndexBits(cfg.Shift) - cfg.TopBits

	table := &Table{
		Shift:       cfg.Shift,
		LowerBits:   lowerBits,
		StartOffset: uint32(cfg.StartOffset),
	}
	blockToLeaf, err := buildLeaves(table, runs, blockCount)
	if err != nil {
		return nil, err
	}
	if err := buildLevels(table, blockToLeaf); err != nil {
		return nil, err
	}
	return table, nil
}

// buildLeaves slices the run sequence into blocks, re-bases each block's
// runs to local coordinates, appends the local sentinel and deduplicates
// the resulting leaf shapes. It fills the leaf storage of table and
// returns the block→leaf-id map.
func buildLeaves(table *Table, runs []run, blockCount int) ([]uint16, error) {
	blockSize := uint32(1) << table.Shift
	blockToLeaf := make([]uint16, 0, blockCount)
	leafIDs := make(map[string]uint16)

	runIdx := 0
	starts := make([]uint16, 0, 16)
	values := make([]IdentifierClass, 0, 16)
	for block := 0; block < blockCount; block++ {
		blockStart := uint32(block) * blockSize
		blockEnd := blockStart + blockSize
		if blockEnd > MaxCodepoint+1 {
			blockEnd = MaxCodepoint + 1
		}
		// Skip runs that end at or before this block.
		for runIdx+1 < len(runs) && runs[runIdx+1].start <= blockStart {
			runIdx++
		}

		starts, values = starts[:0], values[:0]
		for idx := runIdx; ; idx++ {
			assert(idx+1 < len(runs), "run sequence ended before the sentinel")
			from := runs[idx].start
			if from < blockStart {
				from = blockStart
			}
			if from < blockEnd {
				starts = append(starts, uint16(from-blockStart))
				values = append(values, runs[idx].value)
			}
			if runs[idx+1].start >= blockEnd {
				break
			}
		}
		starts = append(starts, uint16(blockEnd-blockStart))
		values = append(values, Other)

		key := leafKey(starts, values)
		leafID, ok := leafIDs[key]
		if !ok {
			if len(leafIDs) >= maxTableIndex {
				return nil, fmt.Errorf("%w: %d distinct leaves", ErrTableOverflow,
					len(leafIDs)+1)
			}
			if len(table.LeafRunStarts)+len(starts) > maxTableIndex {
				return nil, fmt.Errorf("%w: %d leaf runs", ErrTableOverflow,
					len(table.LeafRunStarts)+len(starts))
			}
			leafID = uint16(len(leafIDs))
			leafIDs[key] = leafID
			table.LeafOffsets = append(table.LeafOffsets, uint16(len(table.LeafRunStarts)))
			table.LeafRunStarts = append(table.LeafRunStarts, starts...)
			table.LeafRunValues = append(table.LeafRunValues, values...)
		}
		blockToLeaf = append(blockToLeaf, leafID)
	}
	// Trailing sentinel entry makes every leaf's length computable.
	table.LeafOffsets = append(table.LeafOffsets, uint16(len(table.LeafRunStarts)))
	return blockToLeaf, nil
}

// buildLevels splits every block index into (top, bottom) bit groups and
// deduplicates the per-top second-level tables.
func buildLevels(table *Table, blockToLeaf []uint16) error {
	lowerSize := 1 << table.LowerBits
	// The covered space is a power of two, so blocks split evenly.
	assert(len(blockToLeaf)%lowerSize == 0, "block count not divisible by level-2 size")
	topSize := len(blockToLeaf) / lowerSize
	level2IDs := make(map[string]uint16)

	chunk := make([]uint16, lowerSize)
	for top := 0; top < topSize; top++ {
		copy(chunk, blockToLeaf[top*lowerSize:(top+1)*lowerSize])
		key := level2Key(chunk)
		tableID, ok := level2IDs[key]
		if !ok {
			if len(level2IDs) >= maxTableIndex {
				return fmt.Errorf("%w: %d second-level tables", ErrTableOverflow,
					len(level2IDs)+1)
			}
			tableID = uint16(len(level2IDs))
			level2IDs[key] = tableID
			table.Level2 = append(table.Level2, chunk...)
		}
		table.Level1 = append(table.Level1, tableID)
	}
	return nil
}
