package analyzer

import (
	"bytes"
	"testing"

	"github.com/wippyai/wasm-cfg/errors"
)

func TestNormalize(t *testing.T) {
	bin := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

	tests := []struct {
		name     string
		data     []byte
		forceHex bool
		want     []byte
		kind     errors.Kind
	}{
		{name: "binary", data: bin, want: bin},
		{name: "hex", data: []byte("0061736d01000000"), want: bin},
		{name: "hex with prefix and spaces", data: []byte("0x00 61 73 6d\n01 00 00 00\n"), want: bin},
		{name: "forced hex", data: []byte("0061736D01000000"), forceHex: true, want: bin},
		{name: "forced hex on binary", data: bin, forceHex: true, kind: errors.KindInvalidData},
		{name: "empty", data: nil, kind: errors.KindInvalidInput},
		{name: "blank", data: []byte(" \n"), kind: errors.KindInvalidInput},
		{name: "odd hex", data: []byte("0061736"), kind: errors.KindInvalidData},
		{name: "hex of non wasm", data: []byte("deadbeef"), kind: errors.KindInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.data, tt.forceHex)
			if tt.kind != "" {
				e, ok := err.(*errors.Error)
				if !ok {
					t.Fatalf("Normalize() err = %v, want *errors.Error", err)
				}
				if e.Kind != tt.kind || e.Phase != errors.PhaseLoad {
					t.Errorf("Normalize() err = %v, want load/%s", err, tt.kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(): %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Normalize() = %x, want %x", got, tt.want)
			}
		})
	}
}
