package analyzer

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/wippyai/wasm-cfg/errors"
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6D}

// Normalize returns the module binary for data, which is either a raw
// module or its hex encoding. Hex text may contain whitespace and a 0x
// prefix. With forceHex the data is always decoded as hex.
func Normalize(data []byte, forceHex bool) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty input")
	}
	if !forceHex && bytes.HasPrefix(data, wasmMagic) {
		return data, nil
	}

	text := strings.Join(strings.Fields(string(data)), "")
	text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	if text == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty hex input")
	}

	out, err := hex.DecodeString(text)
	if err != nil {
		if forceHex {
			return nil, errors.Load("decode hex input", err)
		}
		return nil, errors.Load("input is neither a wasm binary nor hex text", err)
	}
	if !bytes.HasPrefix(out, wasmMagic) {
		return nil, errors.Load("hex input does not decode to a wasm binary", nil)
	}
	return out, nil
}
