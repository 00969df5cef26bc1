package ssz

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Decoder reads fixed-size SSZ fields sequentially from a byte slice. The
// first error sticks: later reads return zero values and Err reports it.
type Decoder struct {
	buf []byte
	pos int
	err error
}

// NewDecoder returns a decoder over b. The slice is not copied.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

func (d *Decoder) next(n int, what string) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.buf)-d.pos < n {
		d.err = errors.Wrapf(ErrSize, "%s: need %d bytes at offset %d, have %d", what, n, d.pos, len(d.buf)-d.pos)
		return nil
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b
}

// ReadUint64 reads a little-endian uint64.
func (d *Decoder) ReadUint64() uint64 {
	b := d.next(8, "uint64")
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// ReadBytes4 reads a 4-byte vector.
func (d *Decoder) ReadBytes4() (out [4]byte) {
	copy(out[:], d.next(4, "bytes4"))
	return out
}

// ReadBytes32 reads a 32-byte vector.
func (d *Decoder) ReadBytes32() (out [32]byte) {
	copy(out[:], d.next(32, "bytes32"))
	return out
}

// ReadBytes48 reads a 48-byte vector.
func (d *Decoder) ReadBytes48() (out [48]byte) {
	copy(out[:], d.next(48, "bytes48"))
	return out
}

// ReadBytes96 reads a 96-byte vector.
func (d *Decoder) ReadBytes96() (out [96]byte) {
	copy(out[:], d.next(96, "bytes96"))
	return out
}

// ReadBytes reads n bytes into a fresh slice.
func (d *Decoder) ReadBytes(n int) []byte {
	b := d.next(n, "bytes")
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.pos }

// Err returns the first error encountered, if any.
func (d *Decoder) Err() error { return d.err }

// Finish returns the sticky error, or ErrSize if unread bytes remain.
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if rest := len(d.buf) - d.pos; rest != 0 {
		return errors.Wrapf(ErrSize, "%d trailing bytes", rest)
	}
	return nil
}

// Encoder appends fixed-size SSZ fields to a buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an encoder with capacity for size bytes.
func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, 0, size)}
}

// WriteUint64 appends a little-endian uint64.
func (e *Encoder) WriteUint64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// WriteBytes appends raw bytes.
func (e *Encoder) WriteBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// Bytes returns the encoded buffer.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of bytes written.
func (e *Encoder) Len() int { return len(e.buf) }
