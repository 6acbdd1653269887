package uax31

import (
	"errors"
	"io"
	"reflect"
	"testing"
)

// sliceReader feeds property assignments from memory, the way package ucd
// feeds them from a file.
type sliceReader struct {
	entries []propEntry
	index   int
}

type propEntry struct {
	lo, hi   rune
	property string
}

func (r *sliceReader) Next() (rune, rune, string, error) {
	if r.index >= len(r.entries) {
		return 0, 0, "", io.EOF
	}
	entry := r.entries[r.index]
	r.index++
	return entry.lo, entry.hi, entry.property, nil
}

// fixtureEntries cover block-interior ranges, block-straddling ranges and
// an astral-plane range, with both properties overlapping the way real
// Unicode data overlaps (XID_Start implies XID_Continue).
var fixtureEntries = []propEntry{
	{0x41, 0x5A, "XID_Start"},
	{0x41, 0x5A, "XID_Continue"},
	{0x61, 0x7A, "XID_Start"},
	{0x61, 0x7A, "XID_Continue"},
	{0x30, 0x39, "XID_Continue"},
	{0x5F, 0x5F, "XID_Continue"},
	{0x0391, 0x03A9, "XID_Start"},   // Greek capitals, inside block 0
	{0x0391, 0x03A9, "XID_Continue"},
	{0x0660, 0x0669, "XID_Continue"}, // Arabic-Indic digits, continue-only
	{0x4E00, 0x9FFF, "XID_Start"},    // CJK, straddles many blocks
	{0x4E00, 0x9FFF, "XID_Continue"},
	{0x10400, 0x1044F, "XID_Start"}, // Deseret, astral plane
	{0x10400, 0x1044F, "XID_Continue"},
	{0x1D165, 0x1D169, "XID_Continue"},
	{0xE0100, 0xE01EF, "XID_Continue"}, // variation selectors, high block
	{0x3000, 0x3000, "Alphabetic"},     // foreign property, must be ignored
}

func fixtureReader() *sliceReader {
	return &sliceReader{entries: fixtureEntries}
}

// expectedClass derives the classification straight from the fixture,
// bypassing every compiled structure.
func expectedClass(cp rune) IdentifierClass {
	var class IdentifierClass
	for _, entry := range fixtureEntries {
		if cp < entry.lo || cp > entry.hi {
			continue
		}
		switch entry.property {
		case "XID_Start":
			class |= Start
		case "XID_Continue":
			class |= Continue
		}
	}
	return class
}

func TestRunReconstructionRoundTrip(t *testing.T) {
	raw, err := buildRawTable(fixtureReader())
	if err != nil {
		t.Fatal(err)
	}
	start := DefaultConfig.StartOffset
	runs := compressRuns(raw, start)

	if got := runs[len(runs)-1]; got.start != MaxCodepoint+1 || got.value != Other {
		t.Fatalf("missing sentinel run, last run is (%#x,%d)", got.start, got.value)
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].start <= runs[i-1].start {
			t.Fatalf("run starts not strictly ascending at %d", i)
		}
		if i < len(runs)-1 && runs[i].value == runs[i-1].value {
			t.Fatalf("adjacent runs %d and %d share value %d", i-1, i, runs[i].value)
		}
	}

	// Decompressing the runs must reproduce the raw table bit-for-bit.
	runIdx := 0
	for cp := start; cp <= MaxCodepoint; cp++ {
		for runIdx+1 < len(runs) && runs[runIdx+1].start <= uint32(cp) {
			runIdx++
		}
		if runs[runIdx].value != raw[cp] {
			t.Fatalf("run table diverges from raw table at %#x: %d != %d",
				cp, runs[runIdx].value, raw[cp])
		}
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	first, err := CompileTable(DefaultConfig, fixtureReader())
	if err != nil {
		t.Fatal(err)
	}
	second, err := CompileTable(DefaultConfig, fixtureReader())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two compilations of the same input differ")
	}
}

func TestLeafSharing(t *testing.T) {
	table, err := CompileTable(DefaultConfig, fixtureReader())
	if err != nil {
		t.Fatal(err)
	}
	stats := table.stats()
	if stats.Leaves >= stats.Blocks/2 {
		t.Fatalf("expected heavy leaf sharing, got %d leaves for %d blocks",
			stats.Leaves, stats.Blocks)
	}
	if stats.Level2Tables >= len(table.Level1) {
		t.Fatalf("expected level-2 sharing, got %d tables for %d level-1 entries",
			stats.Level2Tables, len(table.Level1))
	}
	if len(table.LeafOffsets) != stats.Leaves+1 {
		t.Fatalf("offset array must carry one trailing sentinel entry")
	}
	if int(table.LeafOffsets[stats.Leaves]) != len(table.LeafRunStarts) {
		t.Fatalf("trailing offset %d does not close run storage of %d",
			table.LeafOffsets[stats.Leaves], len(table.LeafRunStarts))
	}
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"shift too small", Config{Shift: 3, TopBits: 1}},
		{"shift too large", Config{Shift: 16, TopBits: 1}},
		{"topBits zero", Config{Shift: 10, TopBits: 0}},
		{"topBits too wide", Config{Shift: 10, TopBits: 10}},
		{"negative offset", Config{Shift: 10, TopBits: 6, StartOffset: -1}},
		{"unknown backend", Config{Shift: 10, TopBits: 6, Backend: "flat"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := CompileWith(c.cfg, "bad config", fixtureReader())
			if !errors.Is(err, ErrBadConfig) {
				t.Fatalf("expected ErrBadConfig, got %v", err)
			}
		})
	}
}

// shapeExplosionReader marks codepoints so that every 16-codepoint block
// spells out its own block index as a bit pattern. No two blocks share a
// leaf shape, so deduplication cannot contain the run storage.
type shapeExplosionReader struct {
	cp rune
}

func (r *shapeExplosionReader) Next() (rune, rune, string, error) {
	for cp := r.cp; cp <= MaxCodepoint; cp++ {
		if (cp>>4)&(1<<(cp&15)) != 0 {
			r.cp = cp + 1
			return cp, cp, "XID_Start", nil
		}
	}
	return 0, 0, "", io.EOF
}

func TestCompileRejectsTableOverflow(t *testing.T) {
	cfg := Config{Shift: 4, TopBits: 6, StartOffset: asciiLimit}
	dict, err := CompileWith(cfg, "shape explosion", &shapeExplosionReader{cp: asciiLimit})
	if !errors.Is(err, ErrTableOverflow) {
		t.Fatalf("expected ErrTableOverflow, got %v", err)
	}
	if dict != nil {
		t.Fatal("an overflowing compilation must not return a classifier")
	}

	_, err = CompileTable(cfg, &shapeExplosionReader{cp: asciiLimit})
	if !errors.Is(err, ErrTableOverflow) {
		t.Fatalf("expected ErrTableOverflow from CompileTable, got %v", err)
	}
}

type failingReader struct {
	after int
	err   error
}

func (r *failingReader) Next() (rune, rune, string, error) {
	if r.after == 0 {
		return 0, 0, "", r.err
	}
	r.after--
	return 0x41, 0x5A, "XID_Start", nil
}

func TestCompileAbortsOnReaderError(t *testing.T) {
	boom := errors.New("boom")
	dict, err := Compile("failing source", &failingReader{after: 2, err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected reader error to propagate, got %v", err)
	}
	if dict != nil {
		t.Fatal("a failed compilation must not return a classifier")
	}
}
