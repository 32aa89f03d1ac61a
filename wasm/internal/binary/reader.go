package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrOverflow is returned when a LEB128 value exceeds the maximum size.
var ErrOverflow = errors.New("leb128: overflow")

// Reader decodes a byte slice that sits at a known offset within the
// module binary. Sub-readers keep that offset, so Offset always reports a
// position in the whole module.
type Reader struct {
	data []byte
	base int
	pos  int
}

// NewReader creates a Reader over data starting at module offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current position in the module binary.
func (r *Reader) Offset() int {
	return r.base + r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Byte reads a single byte.
func (r *Reader) Byte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.wrapError(io.ErrUnexpectedEOF)
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// Rest returns all unread bytes.
func (r *Reader) Rest() []byte {
	b, _ := r.Bytes(r.Len())
	return b
}

// Sub consumes the next n bytes and returns a Reader over them.
func (r *Reader) Sub(n int) (*Reader, error) {
	start := r.Offset()
	b, err := r.Bytes(n)
	if err != nil {
		return nil, err
	}
	return &Reader{data: b, base: start}, nil
}

// U32 reads an unsigned LEB128 encoded uint32.
func (r *Reader) U32() (uint32, error) {
	v, err := r.uleb(32)
	return uint32(v), err
}

// U64 reads an unsigned LEB128 encoded uint64.
func (r *Reader) U64() (uint64, error) {
	return r.uleb(64)
}

// S64 reads a signed LEB128 encoded int64.
func (r *Reader) S64() (int64, error) {
	var result int64
	var shift uint
	for i := r.pos; i < len(r.data); i++ {
		b := r.data[i]
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			r.pos = i + 1
			if shift < 64 && b&0x40 != 0 {
				result |= ^int64(0) << shift
			}
			return result, nil
		}
		if shift >= 70 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
	return 0, r.wrapError(io.ErrUnexpectedEOF)
}

func (r *Reader) uleb(bits uint) (uint64, error) {
	limit := bits + (7-bits%7)%7
	var result uint64
	var shift uint
	for i := r.pos; i < len(r.data); i++ {
		b := r.data[i]
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			r.pos = i + 1
			return result, nil
		}
		shift += 7
		if shift >= limit {
			return 0, r.wrapError(ErrOverflow)
		}
	}
	return 0, r.wrapError(io.ErrUnexpectedEOF)
}

// Name reads a length-prefixed UTF-8 name.
func (r *Reader) Name() (string, error) {
	n, err := r.U32()
	if err != nil {
		return "", err
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", r.wrapError(errors.New("invalid UTF-8 in name"))
	}
	return string(b), nil
}

// U32LE reads a fixed four byte little-endian uint32.
func (r *Reader) U32LE() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at offset 0x%x: %w", r.Offset(), err)
}

// ParseError locates a decoding failure within the module binary.
type ParseError struct {
	Err     error
	Section string
	Offset  int
}

func (e *ParseError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("wasm: %s at offset 0x%x: %v", e.Section, e.Offset, e.Err)
	}
	return fmt.Sprintf("wasm: at offset 0x%x: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Fail wraps err in a ParseError at the current offset.
func (r *Reader) Fail(section string, err error) error {
	return &ParseError{
		Offset:  r.Offset(),
		Section: section,
		Err:     err,
	}
}
