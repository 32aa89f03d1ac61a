package cfg

import (
	"fmt"
	"strconv"

	"github.com/wippyai/wasm-cfg/disasm"
)

// BlockID identifies a basic block module-wide: the local function index
// plus the byte offset of the block's first instruction.
type BlockID struct {
	Func   uint32
	Offset uint32
}

func (id BlockID) String() string {
	return fmt.Sprintf("%d:0x%x", id.Func, id.Offset)
}

// BasicBlock is a maximal straight-line run of instructions.
//
// Instructions is a sub-slice of the owning function's stream; Start is the
// offset of its first instruction and End the exclusive end of its last.
type BasicBlock struct {
	ID           BlockID
	Name         string
	Instructions []*disasm.Instruction
	Start        uint32
	End          uint32
	Terminator   *disasm.Instruction
}

// Len returns the number of instructions in the block.
func (b *BasicBlock) Len() int { return len(b.Instructions) }

// EdgeKind is the semantic kind of a control-flow or call edge.
type EdgeKind uint8

const (
	EdgeUnconditional EdgeKind = iota
	EdgeConditionalTrue
	EdgeConditionalFalse
	EdgeFallthrough
	EdgeCall
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeUnconditional:
		return "unconditional"
	case EdgeConditionalTrue:
		return "conditional_true"
	case EdgeConditionalFalse:
		return "conditional_false"
	case EdgeFallthrough:
		return "fallthrough"
	case EdgeCall:
		return "call"
	default:
		return "EdgeKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Edge connects two basic blocks. It is a comparable value and is used
// directly as a map key for deduplication.
type Edge struct {
	From BlockID
	To   BlockID
	Kind EdgeKind
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s [%s]", e.From, e.To, e.Kind)
}
