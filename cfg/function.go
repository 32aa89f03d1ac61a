package cfg

import (
	"github.com/wippyai/wasm-cfg/disasm"
	"github.com/wippyai/wasm-cfg/errors"
)

// Function is one function body and the graph recovered from it.
//
// Index is the position among the module's defined functions; ID is the
// global function index (imports first). Blocks, Edges, Err and
// Diagnostics are filled in by BuildFunctionGraphs.
type Function struct {
	Index        uint32
	ID           uint32
	Name         string
	Instructions []*disasm.Instruction

	Blocks      []*BasicBlock
	Edges       []Edge
	Err         error
	Diagnostics errors.Diagnostics

	decodeErr error
}

// NewFunction wraps the decoded instruction stream of defined function index.
func NewFunction(index uint32, instrs []*disasm.Instruction) *Function {
	return &Function{Index: index, Instructions: instrs}
}

// FailedFunction records a defined function whose body could not be
// decoded. It keeps its slot in the module but gets no blocks or edges.
func FailedFunction(index uint32, err error) *Function {
	return &Function{Index: index, decodeErr: err}
}

// Failed reports whether graph construction was skipped for the function.
func (f *Function) Failed() bool { return f.Err != nil }

// Block returns the block starting at offset, or nil.
func (f *Function) Block(offset uint32) *BasicBlock {
	for _, b := range f.Blocks {
		if b.Start == offset {
			return b
		}
	}
	return nil
}

// Successors returns the edges leaving the block with the given id.
func (f *Function) Successors(id BlockID) []Edge {
	var out []Edge
	for _, e := range f.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// functionResult is what one function pipeline owns until the merge.
type functionResult struct {
	blocks []*BasicBlock
	edges  []Edge
	diags  errors.Diagnostics
	err    error
}

// buildFunction runs scope resolution, block partitioning and edge
// synthesis for f. It touches only f's own instructions.
func buildFunction(f *Function, o *options) functionResult {
	if f.decodeErr != nil {
		return functionResult{err: errors.FunctionError(f.Index, f.decodeErr)}
	}

	targets, diags, err := resolveScopes(f.Index, f.Instructions)
	if err != nil {
		return functionResult{err: errors.FunctionError(f.Index, err)}
	}
	if o.strict {
		for _, d := range diags {
			if d.Phase == errors.PhaseBranch {
				return functionResult{diags: diags, err: errors.FunctionError(f.Index, d)}
			}
		}
	}

	blocks := buildBlocks(f.Index, f.Instructions, targets, o.namer)
	edges, edgeDiags := buildEdges(f.Index, blocks)
	return functionResult{
		blocks: blocks,
		edges:  edges,
		diags:  append(diags, edgeDiags...),
	}
}
