// Package bitstream provides bit-granular reading and writing over byte
// slices, with LSB-first bit order and unsigned LEB128 varints.
//
// The package carries no domain knowledge; interpreting decoded integers
// is the caller's business. It is used by uax31's delta-encoded table
// serialization.
package bitstream

import "errors"

// ErrUnexpectedEnd is returned when a read runs past the end of the
// underlying buffer.
var ErrUnexpectedEnd = errors.New("bitstream: unexpected end of stream")

// Reader decodes bit fields from a byte slice, least significant bit of
// each byte first.
type Reader struct {
	buf    []byte
	pos    int   // byte index
	bitpos uint8 // bit index within buf[pos], 0..7
}

// NewReader returns a Reader over buf. The buffer is not copied.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// ReadBits reads n bits (1 <= n <= 8) and returns them right-aligned.
func (r *Reader) ReadBits(n uint8) (byte, error) {
	if n < 1 || n > 8 {
		return 0, errors.New("bitstream: bit count outside [1,8]")
	}
	var result byte
	var filled uint8
	for filled < n {
		if r.pos >= len(r.buf) {
			return 0, ErrUnexpectedEnd
		}
		take := n - filled
		if available := 8 - r.bitpos; take > available {
			take = available
		}
		// take can be 8; compute the mask in a wider type.
		mask := byte(uint16(1)<<take - 1)
		part := (r.buf[r.pos] >> r.bitpos) & mask
		result |= part << filled

		r.bitpos += take
		if r.bitpos == 8 {
			r.bitpos = 0
			r.pos++
		}
		filled += take
	}
	return result, nil
}

// ReadUvarint reads an unsigned LEB128 integer: 7 payload bits per byte,
// least significant group first, high bit marking continuation.
func (r *Reader) ReadUvarint() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadBits(8)
		if err != nil {
			return 0, err
		}
		// The fifth byte may only carry the top four bits of a uint32.
		if shift >= 32 || (shift == 28 && b&0x7f > 0x0f) {
			return 0, errors.New("bitstream: varint overflows uint32")
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// AtEnd reports whether all input has been consumed. Trailing padding
// bits of a partially read final byte do not count as pending input.
func (r *Reader) AtEnd() bool {
	if r.bitpos != 0 {
		return r.pos >= len(r.buf)-1
	}
	return r.pos >= len(r.buf)
}

// Writer encodes bit fields into a growing byte slice, mirroring Reader's
// bit order.
type Writer struct {
	buf    []byte
	bitpos uint8 // bit index within the last byte, 0 meaning "byte full"
}

// WriteBits appends the low n bits of v (1 <= n <= 8).
func (w *Writer) WriteBits(v byte, n uint8) {
	if n < 1 || n > 8 {
		panic("bitstream: bit count outside [1,8]")
	}
	v &= byte(uint16(1)<<n - 1)
	for n > 0 {
		if w.bitpos == 0 {
			w.buf = append(w.buf, 0)
		}
		take := n
		if available := 8 - w.bitpos; take > available {
			take = available
		}
		mask := byte(uint16(1)<<take - 1)
		w.buf[len(w.buf)-1] |= (v & mask) << w.bitpos
		w.bitpos = (w.bitpos + take) % 8
		v >>= take
		n -= take
	}
}

// WriteUvarint appends v as an unsigned LEB128 integer.
func (w *Writer) WriteUvarint(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.WriteBits(b, 8)
		if v == 0 {
			return
		}
	}
}

// Bytes returns the encoded stream. Unused bits of the final byte are
// zero. The returned slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}
