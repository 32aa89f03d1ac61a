// Package wasm reads the parts of a WebAssembly binary module that
// control-flow recovery depends on.
//
// The parser keeps function signatures, imports, the function section,
// exports and function bodies. Every other known section is checked for
// canonical ordering and skipped.
//
// # Parsing
//
//	data, _ := os.ReadFile("module.wasm")
//	module, err := wasm.ParseModule(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Prototypes
//
// The function index space places imported functions before locally
// defined ones. Prototypes returns one entry per index with the best
// available name:
//
//	for i, p := range module.Prototypes() {
//	    fmt.Printf("%d %s(%s) %s\n", i, p.Name, p.ParamString(), p.ResultString())
//	}
//
// Names come from the "name" custom section, then the import or export
// that refers to the function, and finally a $func<N> placeholder.
//
// # Encoding
//
// Encode writes a module back to binary. It is mostly useful for building
// fixtures in tests:
//
//	m := &wasm.Module{
//	    Types: []wasm.FuncType{{}},
//	    Funcs: []uint32{0},
//	    Code:  []wasm.FuncBody{{Code: []byte{wasm.OpEnd}}},
//	}
//	data := m.Encode()
//
// # LEB128 Encoding
//
//	n, err := wasm.ReadLEB128u(r)  // Unsigned
//	n, err := wasm.ReadLEB128s(r)  // Signed
//	buf = wasm.AppendLEB128u(buf, 624485)
package wasm
