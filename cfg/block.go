package cfg

import (
	"github.com/wippyai/wasm-cfg/disasm"
)

// buildBlocks partitions instrs into basic blocks. Every instruction lands
// in exactly one block and blocks are returned in stream order.
//
// An empty stream yields a single empty block at offset 0 so that every
// function has an entry.
func buildBlocks(funcIdx uint32, instrs []*disasm.Instruction, targets map[uint32]struct{}, namer Namer) []*BasicBlock {
	if len(instrs) == 0 {
		return []*BasicBlock{{
			ID:   BlockID{Func: funcIdx},
			Name: namer.BlockName(funcIdx, 0),
		}}
	}

	var blocks []*BasicBlock
	start := 0
	for i := range instrs {
		if !closesBlock(instrs, i, targets) {
			continue
		}
		run := instrs[start : i+1 : i+1]
		first, last := run[0], run[len(run)-1]
		blocks = append(blocks, &BasicBlock{
			ID:           BlockID{Func: funcIdx, Offset: first.Offset},
			Name:         namer.BlockName(funcIdx, first.Offset),
			Instructions: run,
			Start:        first.Offset,
			End:          last.End,
			Terminator:   last,
		})
		start = i + 1
	}
	return blocks
}

// closesBlock reports whether a block boundary follows instrs[i].
func closesBlock(instrs []*disasm.Instruction, i int, targets map[uint32]struct{}) bool {
	if i == len(instrs)-1 {
		return true
	}
	in, next := instrs[i], instrs[i+1]
	if _, ok := targets[next.Offset]; ok {
		return true
	}
	switch {
	case in.IsBranchUnconditional(), in.IsBranchConditional():
		return true
	case in.EndsScope():
		return true
	case next.IsElse(), next.StartsScope():
		return true
	}
	return false
}
