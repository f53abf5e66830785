package wayland

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// headerSize is the size of a message header: the sender object id followed
// by a word holding size<<16 | opcode.
const headerSize = 8

var hostByteOrder = binary.NativeEndian

// Encoder builds the argument payload of a request.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty argument encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Uint(v uint32) *Encoder {
	e.buf = hostByteOrder.AppendUint32(e.buf, v)
	return e
}

func (e *Encoder) Int(v int32) *Encoder {
	return e.Uint(uint32(v))
}

func (e *Encoder) Fixed(v Fixed) *Encoder {
	return e.Uint(uint32(v))
}

// Object appends an object id; 0 encodes a null object.
func (e *Encoder) Object(id uint32) *Encoder {
	return e.Uint(id)
}

// NewID appends the id of a client-created object.
func (e *Encoder) NewID(id uint32) *Encoder {
	return e.Uint(id)
}

// String appends a NUL-terminated string padded to 32 bits.
func (e *Encoder) String(s string) *Encoder {
	e.Uint(uint32(len(s) + 1))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
	e.pad()
	return e
}

func (e *Encoder) Array(b []byte) *Encoder {
	e.Uint(uint32(len(b)))
	e.buf = append(e.buf, b...)
	e.pad()
	return e
}

func (e *Encoder) Bytes() []byte {
	if e == nil {
		return nil
	}
	return e.buf
}

func (e *Encoder) pad() {
	for len(e.buf)%4 != 0 {
		e.buf = append(e.buf, 0)
	}
}

// appendMessage frames args as a message from sender and appends it to dst.
func appendMessage(dst []byte, sender uint32, opcode uint16, args []byte) []byte {
	size := headerSize + len(args)
	dst = hostByteOrder.AppendUint32(dst, sender)
	dst = hostByteOrder.AppendUint32(dst, uint32(size)<<16|uint32(opcode))
	return append(dst, args...)
}

// Decoder reads event arguments. The first decoding failure is sticky and
// every later read returns a zero value.
type Decoder struct {
	data []byte
	off  int
	err  error
}

// NewDecoder returns a decoder over an event payload.
func NewDecoder(payload []byte) *Decoder {
	return &Decoder{data: payload}
}

func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) Uint() uint32 {
	if d.err != nil {
		return 0
	}
	if len(d.data)-d.off < 4 {
		d.err = errors.Errorf("payload truncated at offset %d", d.off)
		return 0
	}
	v := hostByteOrder.Uint32(d.data[d.off:])
	d.off += 4
	return v
}

func (d *Decoder) Int() int32 {
	return int32(d.Uint())
}

func (d *Decoder) Fixed() Fixed {
	return Fixed(d.Uint())
}

func (d *Decoder) Object() uint32 {
	return d.Uint()
}

func (d *Decoder) NewID() uint32 {
	return d.Uint()
}

// String reads a string argument. A zero length encodes a null string and
// decodes as "".
func (d *Decoder) String() string {
	n := int(d.Uint())
	if d.err != nil || n == 0 {
		return ""
	}
	b := d.take(n)
	if d.err != nil {
		return ""
	}
	if b[n-1] != 0 {
		d.err = errors.New("string argument is not NUL terminated")
		return ""
	}
	return string(b[:n-1])
}

func (d *Decoder) Array() []byte {
	n := int(d.Uint())
	if d.err != nil {
		return nil
	}
	b := d.take(n)
	if d.err != nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// take returns the next n bytes and skips the padding that follows them.
func (d *Decoder) take(n int) []byte {
	padded := (n + 3) &^ 3
	if n < 0 || len(d.data)-d.off < padded {
		d.err = errors.Errorf("payload truncated: need %d bytes at offset %d", padded, d.off)
		return nil
	}
	b := d.data[d.off : d.off+n]
	d.off += padded
	return b
}
