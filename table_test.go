package uax31

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableMarshalRoundTrip(t *testing.T) {
	table, err := CompileTable(DefaultConfig, fixtureReader())
	require.NoError(t, err)

	blob, err := table.MarshalBinary()
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	var restored Table
	require.NoError(t, restored.UnmarshalBinary(blob))
	require.Equal(t, table, &restored)

	// The restored table must answer exactly like the original.
	dict := NewClassifier("original", table)
	copyDict := NewClassifier("restored", &restored)
	for cp := rune(asciiLimit); cp <= MaxCodepoint; cp += 7 {
		require.Equal(t, dict.Classify(cp), copyDict.Classify(cp),
			"codepoint %#x", cp)
	}
}

func TestTableUnmarshalRejectsGarbage(t *testing.T) {
	table, err := CompileTable(DefaultConfig, fixtureReader())
	require.NoError(t, err)
	blob, err := table.MarshalBinary()
	require.NoError(t, err)

	var target Table

	require.ErrorIs(t, target.UnmarshalBinary(nil), ErrBadTableData)
	require.ErrorIs(t, target.UnmarshalBinary([]byte("not a table")), ErrBadTableData)

	// Truncation anywhere must be detected, never panic.
	for _, cut := range []int{1, 4, 5, 8, len(blob) / 2, len(blob) - 1} {
		require.Error(t, target.UnmarshalBinary(blob[:cut]), "cut at %d", cut)
	}

	// Wrong version byte.
	bad := append([]byte(nil), blob...)
	bad[4] = 0x7F
	require.ErrorIs(t, target.UnmarshalBinary(bad), ErrTableVersion)

	// Trailing bytes mean the blob is not a lone table.
	grown := append(append([]byte(nil), blob...), 0x00)
	require.ErrorIs(t, target.UnmarshalBinary(grown), ErrBadTableData)
	doubled := append(append([]byte(nil), blob...), blob...)
	require.ErrorIs(t, target.UnmarshalBinary(doubled), ErrBadTableData)
}

func TestTableUnmarshalChecksShape(t *testing.T) {
	table, err := CompileTable(DefaultConfig, fixtureReader())
	require.NoError(t, err)

	// Point a level-1 entry past the last second-level table and
	// re-marshal; the shape check must catch it.
	mangled := *table
	mangled.Level1 = append([]uint16(nil), table.Level1...)
	mangled.Level1[0] = uint16(len(table.Level2)) // out of range id
	blob, err := mangled.MarshalBinary()
	require.NoError(t, err)

	var target Table
	require.ErrorIs(t, target.UnmarshalBinary(blob), ErrBadTableData)
}

func TestDeltaStreamEquivalence(t *testing.T) {
	raw, err := buildRawTable(fixtureReader())
	require.NoError(t, err)
	runs := compressRuns(raw, DefaultConfig.StartOffset)

	delta := &deltaTable{stream: encodeDeltaStream(runs), blocks: 1024}
	trie, err := CompileTable(DefaultConfig, fixtureReader())
	require.NoError(t, err)

	for cp := rune(asciiLimit); cp <= MaxCodepoint; cp++ {
		if delta.lookup(cp) != trie.lookup(cp) {
			t.Fatalf("backends disagree at %#x: delta=%d trie=%d",
				cp, delta.lookup(cp), trie.lookup(cp))
		}
	}
	require.Less(t, delta.stats().SizeBytes, trie.stats().SizeBytes,
		"the delta stream is the compact form")
}
