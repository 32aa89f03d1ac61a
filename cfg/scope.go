package cfg

import (
	"strconv"

	"github.com/wippyai/wasm-cfg/disasm"
	"github.com/wippyai/wasm-cfg/errors"
)

// ScopeFrame is an open block, loop or if on the resolver's stack.
type ScopeFrame struct {
	Depth int
	Start uint32
	Kind  disasm.ScopeKind
}

// closedScope is a scope whose end has been seen. Depth is the nesting
// depth inside the scope, so a branch at depth d with label k targets the
// closed scope at depth d-k that contains it.
type closedScope struct {
	depth int
	start uint32
	end   uint32
	kind  disasm.ScopeKind
}

// target returns where a branch to this scope lands: the header of a loop,
// or just past the end of a block or if.
func (s closedScope) target() uint32 {
	if s.kind == disasm.ScopeLoop {
		return s.start
	}
	return s.end
}

type pendingBranch struct {
	depth int
	instr *disasm.Instruction
}

// scopeResolver recovers scope nesting for one function and resolves its
// relative branches to absolute offsets.
type scopeResolver struct {
	funcIdx  uint32
	stack    []ScopeFrame
	arena    []closedScope
	byDepth  map[int][]int
	branches []pendingBranch
	targets  map[uint32]struct{}
	diags    errors.Diagnostics
}

// resolveScopes runs scope recovery and branch resolution over instrs.
//
// The final instruction is the function's implicit terminator and is not
// scanned when it is an end. Resolution results are written back into the
// branch instructions; the returned set holds every resolved target offset.
// A malformed scope structure is returned as an error and leaves no target
// resolved.
func resolveScopes(funcIdx uint32, instrs []*disasm.Instruction) (map[uint32]struct{}, errors.Diagnostics, error) {
	for _, in := range instrs {
		in.Target, in.Resolved, in.TableTargets = 0, false, nil
	}

	body := instrs
	if n := len(body); n > 0 && body[n-1].EndsScope() {
		body = body[:n-1]
	}

	r := &scopeResolver{
		funcIdx: funcIdx,
		byDepth: make(map[int][]int),
		targets: make(map[uint32]struct{}),
	}
	if err := r.scan(body); err != nil {
		return nil, nil, err
	}
	r.resolve()
	return r.targets, r.diags, nil
}

func (r *scopeResolver) scan(body []*disasm.Instruction) error {
	depth := 0
	for _, in := range body {
		switch {
		case in.EndsScope():
			if len(r.stack) == 0 {
				return errors.MalformedScope(r.funcIdx, in.Offset, in.Mnemonic+" without an open scope")
			}
			top := r.stack[len(r.stack)-1]
			r.stack = r.stack[:len(r.stack)-1]
			r.byDepth[depth] = append(r.byDepth[depth], len(r.arena))
			r.arena = append(r.arena, closedScope{
				depth: depth,
				start: top.Start,
				end:   in.End,
				kind:  top.Kind,
			})
			depth--
		case in.StartsScope():
			r.stack = append(r.stack, ScopeFrame{Depth: depth, Start: in.Offset, Kind: in.Scope})
			depth++
		}

		// if carries a block type rather than a label; its successors are
		// structural.
		if in.IsBranch() && !in.StartsScope() {
			r.branches = append(r.branches, pendingBranch{depth: depth, instr: in})
		}
	}

	if len(r.stack) > 0 {
		top := r.stack[len(r.stack)-1]
		return errors.MalformedScope(r.funcIdx, top.Start,
			strconv.Itoa(len(r.stack))+" scope(s) left open at end of function")
	}
	return nil
}

func (r *scopeResolver) resolve() {
	for _, b := range r.branches {
		in := b.instr
		tokens := in.Tokens()
		if len(tokens) == 0 {
			r.diags = append(r.diags, errors.MalformedOperand(errors.PhaseBranch, r.path(in), "", nil))
			continue
		}

		if in.Branch != disasm.BranchTable {
			in.Target, in.Resolved = r.lookup(b.depth, in, tokens[0])
			continue
		}

		last := len(tokens) - 1
		for _, tok := range tokens[:last] {
			if target, ok := r.lookup(b.depth, in, tok); ok {
				in.TableTargets = append(in.TableTargets, target)
			}
		}
		in.Target, in.Resolved = r.lookup(b.depth, in, tokens[last])
	}
}

// lookup resolves one label token of a branch recorded at depth.
func (r *scopeResolver) lookup(depth int, in *disasm.Instruction, tok string) (uint32, bool) {
	label, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		r.diags = append(r.diags, errors.MalformedOperand(errors.PhaseBranch, r.path(in), tok, err))
		return 0, false
	}

	for _, idx := range r.byDepth[depth-int(label)] {
		s := r.arena[idx]
		if s.start < in.Offset && in.Offset < s.end {
			target := s.target()
			r.targets[target] = struct{}{}
			return target, true
		}
	}

	r.diags = append(r.diags, errors.UnresolvedBranch(r.funcIdx, in.Offset, in.Mnemonic, uint32(label)))
	return 0, false
}

func (r *scopeResolver) path(in *disasm.Instruction) []string {
	return []string{errors.FuncPath(r.funcIdx), errors.OffsetPath(in.Offset)}
}
