package cfg

import (
	"fmt"

	"github.com/wippyai/wasm-cfg/disasm"
	"github.com/wippyai/wasm-cfg/errors"
)

// edgeBuilder synthesizes the outgoing edges of each block of one function.
type edgeBuilder struct {
	funcIdx uint32
	blocks  []*BasicBlock
	byStart map[uint32]int
	edges   []Edge
	diags   errors.Diagnostics
}

// buildEdges returns the deduplicated edges between blocks, plus a
// diagnostic for every successor that has no block. Branches that were
// left unresolved produce no edge; they were reported during resolution.
func buildEdges(funcIdx uint32, blocks []*BasicBlock) ([]Edge, errors.Diagnostics) {
	b := &edgeBuilder{
		funcIdx: funcIdx,
		blocks:  blocks,
		byStart: make(map[uint32]int, len(blocks)),
	}
	for i, blk := range blocks {
		b.byStart[blk.Start] = i
	}

	for i, blk := range blocks {
		t := blk.Terminator
		if t == nil || i == len(blocks)-1 {
			continue
		}
		switch {
		case t.Branch == disasm.BranchTable:
			for _, target := range t.TableTargets {
				b.toTarget(blk, t, target, EdgeConditionalTrue)
			}
			if t.Resolved {
				b.toTarget(blk, t, t.Target, EdgeConditionalFalse)
			}
		case t.IsBranchUnconditional():
			if t.Resolved {
				b.toTarget(blk, t, t.Target, EdgeUnconditional)
			}
		case t.IsBranchConditional() && t.StartsScope():
			b.toIndex(blk, t, i+1, EdgeConditionalTrue)
			b.toIndex(blk, t, i+2, EdgeConditionalFalse)
		case t.IsBranchConditional():
			if t.Resolved {
				b.toTarget(blk, t, t.Target, EdgeConditionalTrue)
			}
			b.toIndex(blk, t, i+1, EdgeConditionalFalse)
		default:
			b.toIndex(blk, t, i+1, EdgeFallthrough)
		}
	}
	return dedupEdges(b.edges), b.diags
}

func (b *edgeBuilder) toTarget(from *BasicBlock, t *disasm.Instruction, target uint32, kind EdgeKind) {
	idx, ok := b.byStart[target]
	if !ok {
		b.diags = append(b.diags, errors.MissingSuccessor(b.funcIdx, t.Offset,
			fmt.Sprintf("%s target 0x%x starts no block", t.Mnemonic, target)))
		return
	}
	b.edges = append(b.edges, Edge{From: from.ID, To: b.blocks[idx].ID, Kind: kind})
}

func (b *edgeBuilder) toIndex(from *BasicBlock, t *disasm.Instruction, idx int, kind EdgeKind) {
	if idx >= len(b.blocks) {
		b.diags = append(b.diags, errors.MissingSuccessor(b.funcIdx, t.Offset,
			fmt.Sprintf("%s has no %s successor block %d", t.Mnemonic, kind, idx)))
		return
	}
	b.edges = append(b.edges, Edge{From: from.ID, To: b.blocks[idx].ID, Kind: kind})
}

// dedupEdges drops repeated edges in place, keeping first occurrences in
// order. Applying it twice yields the same result.
func dedupEdges(edges []Edge) []Edge {
	seen := make(map[Edge]struct{}, len(edges))
	out := edges[:0]
	for _, e := range edges {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
