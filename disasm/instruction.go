package disasm

import (
	"strconv"
	"strings"
)

// BranchKind classifies how an instruction transfers control to a label.
type BranchKind uint8

const (
	BranchNone BranchKind = iota
	// BranchUnconditional always leaves the current block (br).
	BranchUnconditional
	// BranchConditional may fall through (br_if, if, br_on_null, ...).
	BranchConditional
	// BranchTable selects one of several labels (br_table). It never falls
	// through, so it counts as unconditional for block partitioning.
	BranchTable
)

func (k BranchKind) String() string {
	switch k {
	case BranchNone:
		return "none"
	case BranchUnconditional:
		return "unconditional"
	case BranchConditional:
		return "conditional"
	case BranchTable:
		return "table"
	default:
		return "BranchKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ScopeKind classifies an instruction's role in structured control flow.
type ScopeKind uint8

const (
	ScopeNone ScopeKind = iota
	ScopeBlock
	ScopeLoop
	ScopeIf
	// ScopeElse marks a continuation inside an open scope (else, catch).
	ScopeElse
	// ScopeEnd closes the innermost open scope.
	ScopeEnd
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeNone:
		return "none"
	case ScopeBlock:
		return "block"
	case ScopeLoop:
		return "loop"
	case ScopeIf:
		return "if"
	case ScopeElse:
		return "else"
	case ScopeEnd:
		return "end"
	default:
		return "ScopeKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// CallKind classifies call instructions.
type CallKind uint8

const (
	CallNone CallKind = iota
	// CallDirect names its callee as the first operand.
	CallDirect
	// CallIndirect goes through a table; the table index is the last operand.
	CallIndirect
)

func (k CallKind) String() string {
	switch k {
	case CallNone:
		return "none"
	case CallDirect:
		return "direct"
	case CallIndirect:
		return "indirect"
	default:
		return "CallKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Instruction is one decoded instruction of a function body.
//
// Offset and End are byte positions relative to the start of the body's
// expression; End is exclusive. Operands holds the immediates as
// space-separated text tokens.
type Instruction struct {
	Mnemonic string
	Operands string

	Opcode    byte
	SubOpcode uint32 // for 0xFB..0xFE prefixed instructions

	Offset uint32
	End    uint32

	Branch BranchKind
	Scope  ScopeKind
	Call   CallKind

	// Set by branch resolution. Target is meaningful only when Resolved.
	Target   uint32
	Resolved bool
	// TableTargets holds the resolved non-default br_table labels in operand
	// order. The default label resolves into Target.
	TableTargets []uint32
}

// IsBranch reports whether the instruction transfers control to a label.
func (i *Instruction) IsBranch() bool { return i.Branch != BranchNone }

// IsBranchConditional reports whether the branch may fall through.
func (i *Instruction) IsBranchConditional() bool { return i.Branch == BranchConditional }

// IsBranchUnconditional reports whether the branch never falls through.
func (i *Instruction) IsBranchUnconditional() bool {
	return i.Branch == BranchUnconditional || i.Branch == BranchTable
}

// IsCall reports whether the instruction calls a function.
func (i *Instruction) IsCall() bool { return i.Call != CallNone }

// StartsScope reports whether the instruction opens a block, loop or if.
func (i *Instruction) StartsScope() bool {
	return i.Scope == ScopeBlock || i.Scope == ScopeLoop || i.Scope == ScopeIf
}

// EndsScope reports whether the instruction closes the innermost scope.
func (i *Instruction) EndsScope() bool { return i.Scope == ScopeEnd }

// IsElse reports whether the instruction continues an open scope.
func (i *Instruction) IsElse() bool { return i.Scope == ScopeElse }

// Tokens splits Operands into its text tokens.
func (i *Instruction) Tokens() []string { return strings.Fields(i.Operands) }

// Size returns the encoded length in bytes.
func (i *Instruction) Size() uint32 { return i.End - i.Offset }

func (i *Instruction) String() string {
	if i.Operands == "" {
		return i.Mnemonic
	}
	return i.Mnemonic + " " + i.Operands
}
