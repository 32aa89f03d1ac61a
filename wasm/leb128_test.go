package wasm

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestLEB128Unsigned(t *testing.T) {
	tests := []struct {
		data []byte
		want uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7F}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xE5, 0x8E, 0x26}, 624485},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, 0xFFFFFFFF},
	}
	for _, tt := range tests {
		got, err := ReadLEB128u(bytes.NewReader(tt.data))
		if err != nil {
			t.Fatalf("ReadLEB128u(%x): %v", tt.data, err)
		}
		if got != tt.want {
			t.Errorf("ReadLEB128u(%x) = %d, want %d", tt.data, got, tt.want)
		}
		if enc := EncodeLEB128u(tt.want); !bytes.Equal(enc, tt.data) {
			t.Errorf("EncodeLEB128u(%d) = %x, want %x", tt.want, enc, tt.data)
		}
	}
}

func TestLEB128Signed(t *testing.T) {
	tests := []struct {
		data []byte
		want int32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7F}, -1},
		{[]byte{0x3F}, 63},
		{[]byte{0x40}, -64},
		{[]byte{0xC0, 0x00}, 64},
		{[]byte{0x80, 0x7F}, -128},
	}
	for _, tt := range tests {
		got, err := ReadLEB128s(bytes.NewReader(tt.data))
		if err != nil {
			t.Fatalf("ReadLEB128s(%x): %v", tt.data, err)
		}
		if got != tt.want {
			t.Errorf("ReadLEB128s(%x) = %d, want %d", tt.data, got, tt.want)
		}
		if enc := EncodeLEB128s(tt.want); !bytes.Equal(enc, tt.data) {
			t.Errorf("EncodeLEB128s(%d) = %x, want %x", tt.want, enc, tt.data)
		}
	}
}

func TestLEB128BlockType(t *testing.T) {
	// Block types are s33: 0x40 is the empty type (-64), small positives are type indices.
	v, err := ReadLEB128s64(bytes.NewReader([]byte{0x40}))
	if err != nil || v != -64 {
		t.Errorf("ReadLEB128s64(40) = %d, %v; want -64", v, err)
	}
	v, err = ReadLEB128s64(bytes.NewReader([]byte{0x05}))
	if err != nil || v != 5 {
		t.Errorf("ReadLEB128s64(05) = %d, %v; want 5", v, err)
	}
}

func TestLEB128Errors(t *testing.T) {
	if _, err := ReadLEB128u(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})); !errors.Is(err, ErrOverflow) {
		t.Errorf("ReadLEB128u overflow = %v, want ErrOverflow", err)
	}
	if _, err := ReadLEB128u(bytes.NewReader([]byte{0x80})); !errors.Is(err, io.EOF) {
		t.Errorf("ReadLEB128u truncated = %v, want EOF", err)
	}
	if _, err := ReadLEB128s(bytes.NewReader(nil)); !errors.Is(err, io.EOF) {
		t.Errorf("ReadLEB128s empty = %v, want EOF", err)
	}
}

func TestLEB128u64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 1 << 32, 1<<63 + 7, ^uint64(0)} {
		got, err := ReadLEB128u64(bytes.NewReader(AppendLEB128u(nil, v)))
		if err != nil {
			t.Fatalf("ReadLEB128u64(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("ReadLEB128u64 round trip = %d, want %d", got, v)
		}
	}
	for _, v := range []int64{0, -1, 1 << 40, -(1 << 40), -9223372036854775808} {
		got, err := ReadLEB128s64(bytes.NewReader(AppendLEB128s(nil, v)))
		if err != nil {
			t.Fatalf("ReadLEB128s64(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("ReadLEB128s64 round trip = %d, want %d", got, v)
		}
	}
}

func TestReadFloats(t *testing.T) {
	f32, err := ReadFloat32(bytes.NewReader([]byte{0x00, 0x00, 0x80, 0x3F}))
	if err != nil || f32 != 1.0 {
		t.Errorf("ReadFloat32 = %v, %v; want 1.0", f32, err)
	}
	f64, err := ReadFloat64(bytes.NewReader([]byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}))
	if err != nil || f64 != 1.0 {
		t.Errorf("ReadFloat64 = %v, %v; want 1.0", f64, err)
	}
	if _, err := ReadFloat32(bytes.NewReader([]byte{0x00})); err == nil {
		t.Error("ReadFloat32 on short input succeeded")
	}
}
