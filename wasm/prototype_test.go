package wasm_test

import (
	"testing"

	"github.com/wippyai/wasm-cfg/wasm"
)

func TestPrototypes(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{
			{},
			{Params: []wasm.ValType{wasm.ValI32, wasm.ValI64}, Results: []wasm.ValType{wasm.ValF32}},
		},
		Imports: []wasm.Import{
			{Module: "env", Name: "abort", Kind: wasm.KindFunc, TypeIdx: 0},
			{Module: "env", Name: "table", Kind: wasm.KindTable},
			{Module: "env", Name: "print", Kind: wasm.KindFunc, TypeIdx: 1},
		},
		Funcs: []uint32{1, 0, 0},
		Exports: []wasm.Export{
			{Name: "memory", Kind: wasm.KindMemory, Idx: 2},
			{Name: "compute", Kind: wasm.KindFunc, Idx: 2},
			{Name: "compute_alias", Kind: wasm.KindFunc, Idx: 2},
			{Name: "main", Kind: wasm.KindFunc, Idx: 3},
		},
		Names: &wasm.NameMap{Funcs: map[uint32]string{1: "debug_print", 3: "real_main"}},
	}

	protos := m.Prototypes()
	want := []struct {
		name     string
		params   string
		results  string
		imported bool
	}{
		{"env.abort", "", "", true},
		{"debug_print", "i32 i64", "f32", true},
		{"compute", "i32 i64", "f32", false},
		{"real_main", "", "", false},
		{"$func4", "", "", false},
	}

	if len(protos) != len(want) {
		t.Fatalf("len(Prototypes()) = %d, want %d", len(protos), len(want))
	}
	for i, w := range want {
		p := protos[i]
		if p.Name != w.name {
			t.Errorf("prototype %d name = %q, want %q", i, p.Name, w.name)
		}
		if p.ParamString() != w.params {
			t.Errorf("prototype %d params = %q, want %q", i, p.ParamString(), w.params)
		}
		if p.ResultString() != w.results {
			t.Errorf("prototype %d results = %q, want %q", i, p.ResultString(), w.results)
		}
		if p.Imported != w.imported {
			t.Errorf("prototype %d imported = %v, want %v", i, p.Imported, w.imported)
		}
	}
}

func TestPrototypesUnknownType(t *testing.T) {
	m := &wasm.Module{Funcs: []uint32{7}}
	protos := m.Prototypes()
	if len(protos) != 1 {
		t.Fatalf("len(Prototypes()) = %d, want 1", len(protos))
	}
	if len(protos[0].Params) != 0 || len(protos[0].Results) != 0 {
		t.Errorf("prototype with unknown type = %+v, want empty signature", protos[0])
	}
}

func TestValTypeString(t *testing.T) {
	tests := map[wasm.ValType]string{
		wasm.ValI32:     "i32",
		wasm.ValF64:     "f64",
		wasm.ValV128:    "v128",
		wasm.ValFuncRef: "funcref",
		wasm.ValExtern:  "externref",
		wasm.ValType(0): "unknown",
	}
	for v, want := range tests {
		if got := v.String(); got != want {
			t.Errorf("ValType(%#x).String() = %q, want %q", byte(v), got, want)
		}
	}
}
