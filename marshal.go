package uax31

import (
	"errors"
	"fmt"

	"github.com/npillmayer/uax31/bitstream"
)

// Binary table format, LEB128-coded via package bitstream:
//
//	magic     4 bytes "U31T"
//	version   1 byte
//	uvarint   shift
//	uvarint   lowerBits
//	uvarint   startOffset
//	uvarint   len(leafOffsets), followed by that many uvarints
//	uvarint   len(leafRunStarts), followed by that many uvarints
//	          and then one 2-bit class per run
//	uvarint   len(level2), followed by that many uvarints
//	uvarint   len(level1), followed by that many uvarints
//
// The format is a persistence/transport convenience; the canonical
// embeddable artifact is the Go source emitted by cmd/uax31gen.

const tableFormatVersion = 1

var tableMagic = [4]byte{'U', '3', '1', 'T'}

var (
	// ErrBadTableData is returned when unmarshalling data that is not a
	// serialized table.
	ErrBadTableData = errors.New("uax31: malformed table data")

	// ErrTableVersion is returned for a well-formed table of an
	// unsupported format version.
	ErrTableVersion = errors.New("uax31: unsupported table format version")
)

// MarshalBinary implements encoding.BinaryMarshaler.
func (t *Table) MarshalBinary() ([]byte, error) {
	var w bitstream.Writer
	for _, b := range tableMagic {
		w.WriteBits(b, 8)
	}
	w.WriteBits(tableFormatVersion, 8)
	w.WriteUvarint(t.Shift)
	w.WriteUvarint(t.LowerBits)
	w.WriteUvarint(t.StartOffset)

	w.WriteUvarint(uint32(len(t.LeafOffsets)))
	for _, v := range t.LeafOffsets {
		w.WriteUvarint(uint32(v))
	}
	w.WriteUvarint(uint32(len(t.LeafRunStarts)))
	for _, v := range t.LeafRunStarts {
		w.WriteUvarint(uint32(v))
	}
	for _, v := range t.LeafRunValues {
		w.WriteBits(byte(v), 2)
	}
	w.WriteUvarint(uint32(len(t.Level2)))
	for _, v := range t.Level2 {
		w.WriteUvarint(uint32(v))
	}
	w.WriteUvarint(uint32(len(t.Level1)))
	for _, v := range t.Level1 {
		w.WriteUvarint(uint32(v))
	}
	return w.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It replaces the
// receiver's contents; a returned error leaves the receiver unspecified
// and unusable.
func (t *Table) UnmarshalBinary(data []byte) error {
	r := bitstream.NewReader(data)
	for _, want := range tableMagic {
		b, err := r.ReadBits(8)
		if err != nil || b != want {
			return ErrBadTableData
		}
	}
	version, err := r.ReadBits(8)
	if err != nil {
		return ErrBadTableData
	}
	if version != tableFormatVersion {
		return fmt.Errorf("%w: %d", ErrTableVersion, version)
	}
	if t.Shift, err = r.ReadUvarint(); err != nil {
		return ErrBadTableData
	}
	if t.LowerBits, err = r.ReadUvarint(); err != nil {
		return ErrBadTableData
	}
	if t.StartOffset, err = r.ReadUvarint(); err != nil {
		return ErrBadTableData
	}
	if t.Shift < 4 || t.Shift > 15 || t.LowerBits >= 16 {
		return ErrBadTableData
	}

	if t.LeafOffsets, err = readUint16s(r); err != nil {
		return err
	}
	if t.LeafRunStarts, err = readUint16s(r); err != nil {
		return err
	}
	t.LeafRunValues = make([]IdentifierClass, len(t.LeafRunStarts))
	for i := range t.LeafRunValues {
		b, err := r.ReadBits(2)
		if err != nil {
			return ErrBadTableData
		}
		t.LeafRunValues[i] = IdentifierClass(b)
	}
	if t.Level2, err = readUint16s(r); err != nil {
		return err
	}
	if t.Level1, err = readUint16s(r); err != nil {
		return err
	}
	if !r.AtEnd() {
		return ErrBadTableData
	}
	return t.checkShape()
}

func readUint16s(r *bitstream.Reader) ([]uint16, error) {
	n, err := r.ReadUvarint()
	if err != nil || n > maxTableIndex+1 {
		return nil, ErrBadTableData
	}
	vals := make([]uint16, n)
	for i := range vals {
		v, err := r.ReadUvarint()
		if err != nil || v > maxTableIndex {
			return nil, ErrBadTableData
		}
		vals[i] = uint16(v)
	}
	return vals, nil
}

// checkShape validates cross-array invariants so that lookups on an
// unmarshalled table cannot index out of bounds.
func (t *Table) checkShape() error {
	lowerSize := 1 << t.LowerBits
	if len(t.LeafOffsets) < 2 ||
		int(t.LeafOffsets[len(t.LeafOffsets)-1]) != len(t.LeafRunStarts) {
		return ErrBadTableData
	}
	for i := 1; i < len(t.LeafOffsets); i++ {
		if t.LeafOffsets[i] < t.LeafOffsets[i-1] {
			return ErrBadTableData
		}
	}
	if len(t.Level2)%lowerSize != 0 {
		return ErrBadTableData
	}
	level2Tables := len(t.Level2) / lowerSize
	for _, id := range t.Level1 {
		if int(id) >= level2Tables {
			return ErrBadTableData
		}
	}
	leaves := len(t.LeafOffsets) - 1
	for _, id := range t.Level2 {
		if int(id) >= leaves {
			return ErrBadTableData
		}
	}
	if len(t.Level1)*lowerSize<<t.Shift < MaxCodepoint+1 {
		return ErrBadTableData
	}
	return nil
}
