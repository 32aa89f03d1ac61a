package cfg

import (
	"strconv"

	"github.com/wippyai/wasm-cfg/disasm"
	"github.com/wippyai/wasm-cfg/errors"
)

// CallEdge is a call from one global function index to another.
type CallEdge struct {
	Caller uint32
	Callee uint32
}

// NamedEdge is a call edge rewritten to function display names.
type NamedEdge struct {
	From string
	To   string
	Kind EdgeKind
}

// CallGraph holds the static call relationships of a module.
//
// Nodes has one display name per function in global index order, imports
// included. Calls and Edges hold one entry per call instruction, in
// function and instruction order. Indirect calls are approximated by their
// table operand; no table contents are consulted.
type CallGraph struct {
	Nodes       []string
	Edges       []NamedEdge
	Calls       []CallEdge
	Diagnostics errors.Diagnostics

	callees map[uint32][]uint32
	callers map[uint32][]uint32
}

// BuildCallGraph scans the call instructions of funcs. protos is the
// prototype table in global index order; when nil, nodes are synthesized
// for importCount imports plus funcs. A call whose operand is not an index
// or lies outside the table is reported and skipped.
func BuildCallGraph(funcs []*Function, importCount int, protos []Prototype, namer Namer) *CallGraph {
	if namer == nil {
		namer = DefaultNamer{}
	}
	total := len(protos)
	if protos == nil {
		total = importCount + len(funcs)
	}

	g := &CallGraph{
		Nodes:   make([]string, total),
		callees: make(map[uint32][]uint32),
		callers: make(map[uint32][]uint32),
	}
	for i := range g.Nodes {
		p := fallbackPrototype(uint32(i))
		if i < len(protos) {
			p = protos[i]
		}
		g.Nodes[i] = namer.FuncName(p)
	}

	for _, f := range funcs {
		caller := uint32(importCount) + f.Index
		if int(caller) >= total {
			g.Diagnostics = append(g.Diagnostics,
				errors.OutOfBounds(errors.PhaseCall, []string{errors.FuncPath(caller)}, int(caller), total))
			continue
		}

		for _, in := range f.Instructions {
			if !in.IsCall() {
				continue
			}
			path := []string{errors.FuncPath(caller), errors.OffsetPath(in.Offset)}

			tokens := in.Tokens()
			if len(tokens) == 0 {
				g.Diagnostics = append(g.Diagnostics, errors.MalformedOperand(errors.PhaseCall, path, "", nil))
				continue
			}
			tok := tokens[0]
			if in.Call == disasm.CallIndirect {
				tok = tokens[len(tokens)-1]
			}

			callee, err := strconv.ParseUint(tok, 10, 32)
			if err != nil {
				g.Diagnostics = append(g.Diagnostics, errors.MalformedOperand(errors.PhaseCall, path, tok, err))
				continue
			}
			if callee >= uint64(total) {
				g.Diagnostics = append(g.Diagnostics, errors.OutOfBounds(errors.PhaseCall, path, int(callee), total))
				continue
			}

			g.add(caller, uint32(callee))
		}
	}
	return g
}

func (g *CallGraph) add(caller, callee uint32) {
	g.Calls = append(g.Calls, CallEdge{Caller: caller, Callee: callee})
	g.Edges = append(g.Edges, NamedEdge{From: g.Nodes[caller], To: g.Nodes[callee], Kind: EdgeCall})
	g.callees[caller] = appendUnique(g.callees[caller], callee)
	g.callers[callee] = appendUnique(g.callers[callee], caller)
}

// Callees returns the distinct functions idx calls, in first-call order.
func (g *CallGraph) Callees(idx uint32) []uint32 { return g.callees[idx] }

// Callers returns the distinct functions that call idx.
func (g *CallGraph) Callers(idx uint32) []uint32 { return g.callers[idx] }

// TransitiveCallers finds all functions that transitively call any of the
// targets. The targets themselves are included.
func (g *CallGraph) TransitiveCallers(targets map[uint32]bool) map[uint32]bool {
	result := make(map[uint32]bool, len(targets))
	for t := range targets {
		result[t] = true
	}

	changed := true
	for changed {
		changed = false
		for caller, callees := range g.callees {
			if result[caller] {
				continue
			}
			for _, callee := range callees {
				if result[callee] {
					result[caller] = true
					changed = true
					break
				}
			}
		}
	}
	return result
}

// TransitiveCallees finds all functions reachable through calls from any of
// the sources. The sources themselves are included.
func (g *CallGraph) TransitiveCallees(sources map[uint32]bool) map[uint32]bool {
	result := make(map[uint32]bool, len(sources))
	for s := range sources {
		result[s] = true
	}

	changed := true
	for changed {
		changed = false
		for caller, callees := range g.callees {
			if !result[caller] {
				continue
			}
			for _, callee := range callees {
				if !result[callee] {
					result[callee] = true
					changed = true
				}
			}
		}
	}
	return result
}

func appendUnique(slice []uint32, val uint32) []uint32 {
	for _, v := range slice {
		if v == val {
			return slice
		}
	}
	return append(slice, val)
}
