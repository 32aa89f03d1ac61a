package binary

import "encoding/binary"

// Writer appends encoded values to a growing buffer.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded bytes.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of encoded bytes.
func (w *Writer) Len() int { return len(w.buf) }

// Byte appends b.
func (w *Writer) Byte(b byte) { w.buf = append(w.buf, b) }

// Raw appends data unchanged.
func (w *Writer) Raw(data []byte) { w.buf = append(w.buf, data...) }

// U32 appends v as unsigned LEB128.
func (w *Writer) U32(v uint32) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// Name appends a length-prefixed name.
func (w *Writer) Name(s string) {
	w.U32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// U32LE appends v as four little-endian bytes.
func (w *Writer) U32LE(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// Section appends a section with the given id whose payload is s.
func (w *Writer) Section(id byte, s *Writer) {
	w.Byte(id)
	w.U32(uint32(s.Len()))
	w.Raw(s.Bytes())
}
