package cfg

import (
	"reflect"
	"testing"

	"github.com/wippyai/wasm-cfg/disasm"
	"github.com/wippyai/wasm-cfg/errors"
)

func TestDirectCalls(t *testing.T) {
	// Defined function 3 of a module with one import calls 2 and 5.
	funcs := make([]*Function, 5)
	for i := range funcs {
		funcs[i] = NewFunction(uint32(i), disassemble(t, []byte{0x0B}))
	}
	funcs[3] = NewFunction(3, disassemble(t, []byte{0x10, 0x02, 0x10, 0x05, 0x0B}))

	g := BuildCallGraph(funcs, 1, nil, nil)

	want := []CallEdge{{Caller: 4, Callee: 2}, {Caller: 4, Callee: 5}}
	if !reflect.DeepEqual(g.Calls, want) {
		t.Errorf("Calls = %v, want %v", g.Calls, want)
	}
	if len(g.Nodes) != 6 {
		t.Errorf("len(Nodes) = %d, want 6", len(g.Nodes))
	}
	wantNamed := []NamedEdge{
		{From: "$func4()", To: "$func2()", Kind: EdgeCall},
		{From: "$func4()", To: "$func5()", Kind: EdgeCall},
	}
	if !reflect.DeepEqual(g.Edges, wantNamed) {
		t.Errorf("Edges = %v, want %v", g.Edges, wantNamed)
	}
}

func TestIndirectCallUsesTableOperand(t *testing.T) {
	// call_indirect type 1 table 0: the trailing operand stands in for the
	// callee.
	f := NewFunction(0, disassemble(t, []byte{0x11, 0x01, 0x00, 0x0B}))
	g := BuildCallGraph([]*Function{f}, 1, nil, nil)
	want := []CallEdge{{Caller: 1, Callee: 0}}
	if !reflect.DeepEqual(g.Calls, want) {
		t.Errorf("Calls = %v, want %v", g.Calls, want)
	}
}

func TestCallGraphNodesFollowPrototypes(t *testing.T) {
	protos := []Prototype{
		{Name: "env.abort"},
		{Name: "main", Results: "i32"},
		{Name: "helper", Params: "i64"},
	}
	funcs := []*Function{
		NewFunction(0, disassemble(t, []byte{0x10, 0x02, 0x10, 0x00, 0x0B})),
		NewFunction(1, disassemble(t, []byte{0x0B})),
	}
	g := BuildCallGraph(funcs, 1, protos, DefaultNamer{})

	wantNodes := []string{"env.abort()", "i32 main()", "helper(i64)"}
	if !reflect.DeepEqual(g.Nodes, wantNodes) {
		t.Errorf("Nodes = %v, want %v", g.Nodes, wantNodes)
	}
	wantEdges := []NamedEdge{
		{From: "i32 main()", To: "helper(i64)", Kind: EdgeCall},
		{From: "i32 main()", To: "env.abort()", Kind: EdgeCall},
	}
	if !reflect.DeepEqual(g.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", g.Edges, wantEdges)
	}
}

func TestCallGraphOperandDiagnostics(t *testing.T) {
	instrs := []*disasm.Instruction{
		{Mnemonic: "call", Operands: "1", Call: disasm.CallDirect, Offset: 0, End: 2},
		{Mnemonic: "call", Operands: "9", Call: disasm.CallDirect, Offset: 2, End: 4},
		{Mnemonic: "call", Operands: "$f", Call: disasm.CallDirect, Offset: 4, End: 6},
		{Mnemonic: "call", Call: disasm.CallDirect, Offset: 6, End: 7},
		{Mnemonic: "end", Scope: disasm.ScopeEnd, Offset: 7, End: 8},
	}
	g := BuildCallGraph([]*Function{NewFunction(0, instrs)}, 1, nil, nil)

	want := []CallEdge{{Caller: 1, Callee: 1}}
	if !reflect.DeepEqual(g.Calls, want) {
		t.Errorf("Calls = %v, want %v", g.Calls, want)
	}
	if n := g.Diagnostics.Count(errors.KindOutOfBounds); n != 1 {
		t.Errorf("out_of_bounds diagnostics = %d, want 1", n)
	}
	if n := g.Diagnostics.Count(errors.KindMalformedOperand); n != 2 {
		t.Errorf("malformed_operand diagnostics = %d, want 2", n)
	}
	for _, d := range g.Diagnostics {
		if d.Phase != errors.PhaseCall {
			t.Errorf("diagnostic phase = %s, want call", d.Phase)
		}
	}
}

func TestCallGraphQueries(t *testing.T) {
	// 0 -> 1 -> 2, 1 -> 1, 3 isolated
	funcs := []*Function{
		NewFunction(0, disassemble(t, []byte{0x10, 0x01, 0x10, 0x01, 0x0B})),
		NewFunction(1, disassemble(t, []byte{0x10, 0x02, 0x10, 0x01, 0x0B})),
		NewFunction(2, disassemble(t, []byte{0x0B})),
		NewFunction(3, disassemble(t, []byte{0x0B})),
	}
	g := BuildCallGraph(funcs, 0, nil, nil)

	if len(g.Calls) != 4 {
		t.Errorf("len(Calls) = %d, want one per call instruction", len(g.Calls))
	}
	if got := g.Callees(0); !reflect.DeepEqual(got, []uint32{1}) {
		t.Errorf("Callees(0) = %v, want [1]", got)
	}
	if got := g.Callers(1); !reflect.DeepEqual(got, []uint32{0, 1}) {
		t.Errorf("Callers(1) = %v, want [0 1]", got)
	}

	callees := g.TransitiveCallees(map[uint32]bool{0: true})
	if want := map[uint32]bool{0: true, 1: true, 2: true}; !reflect.DeepEqual(callees, want) {
		t.Errorf("TransitiveCallees(0) = %v, want %v", callees, want)
	}
	callers := g.TransitiveCallers(map[uint32]bool{2: true})
	if want := map[uint32]bool{0: true, 1: true, 2: true}; !reflect.DeepEqual(callers, want) {
		t.Errorf("TransitiveCallers(2) = %v, want %v", callers, want)
	}
	if got := g.TransitiveCallers(map[uint32]bool{3: true}); len(got) != 1 {
		t.Errorf("TransitiveCallers(3) = %v, want only 3", got)
	}
}
