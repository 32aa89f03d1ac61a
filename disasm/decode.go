package disasm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-cfg/errors"
	"github.com/wippyai/wasm-cfg/wasm"
)

// Sub-opcodes whose immediates differ from the rest of their prefix group.
const (
	miscTruncSatLast  uint32 = 0x07
	miscMemoryInit    uint32 = 0x08
	miscMemoryCopy    uint32 = 0x0A
	miscTableInit     uint32 = 0x0C
	miscTableCopy     uint32 = 0x0E
	miscMemoryDiscard uint32 = 0x12

	simdLoad64Splat  uint32 = 0x0A
	simdStore        uint32 = 0x0B
	simdConst        uint32 = 0x0C
	simdShuffle      uint32 = 0x0D
	simdExtractFirst uint32 = 0x15
	simdReplaceLast  uint32 = 0x22
	simdLoad8Lane    uint32 = 0x54
	simdStore64Lane  uint32 = 0x5B
	simdLoad32Zero   uint32 = 0x5C
	simdLoad64Zero   uint32 = 0x5D

	atomicFence uint32 = 0x03

	gcStructNewDefault uint32 = 0x01
	gcStructSet        uint32 = 0x05
	gcArrayNewDefault  uint32 = 0x07
	gcArrayNewFixed    uint32 = 0x08
	gcArrayNewData     uint32 = 0x09
	gcArrayNewElem     uint32 = 0x0A
	gcArrayGet         uint32 = 0x0B
	gcArraySet         uint32 = 0x0E
	gcArrayLen         uint32 = 0x0F
	gcArrayFill        uint32 = 0x10
	gcArrayCopy        uint32 = 0x11
	gcArrayInitData    uint32 = 0x12
	gcArrayInitElem    uint32 = 0x13
	gcRefTest          uint32 = 0x14
	gcRefCastNull      uint32 = 0x17
	gcBrOnCast         uint32 = 0x18
	gcBrOnCastFail     uint32 = 0x19
	gcAnyConvertExtern uint32 = 0x1A
	gcI31GetU          uint32 = 0x1E
)

const memArgMultiMemBit = 0x40

// Disassemble decodes a function body expression into instructions.
//
// code is the body without its local declarations, normally ending with the
// function's final end. Offsets are relative to the start of code.
func Disassemble(code []byte) ([]*Instruction, error) {
	d := &decoder{r: bytes.NewReader(code), size: len(code)}
	// roughly 2 bytes per instruction on average
	instrs := make([]*Instruction, 0, len(code)/2)

	for d.r.Len() > 0 {
		start := d.pos()
		op, _ := d.r.ReadByte()
		in := &Instruction{Opcode: op, Offset: start}

		d.ops = d.ops[:0]
		if err := d.decode(in); err != nil {
			return nil, decodeError(in, err)
		}
		if d.err != nil {
			return nil, decodeError(in, d.err)
		}

		in.Mnemonic = Mnemonic(in.Opcode, in.SubOpcode)
		in.End = d.pos()
		in.Operands = strings.Join(d.ops, " ")
		instrs = append(instrs, in)
	}

	return instrs, nil
}

func decodeError(in *Instruction, cause error) error {
	if e, ok := cause.(*errors.Error); ok {
		e.Path = []string{errors.OffsetPath(in.Offset)}
		return e
	}
	if cause == io.EOF {
		cause = io.ErrUnexpectedEOF
	}
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Path(errors.OffsetPath(in.Offset)).
		Detail("truncated %s", Mnemonic(in.Opcode, in.SubOpcode)).
		Cause(cause).
		Build()
}

// decoder reads immediates and collects their text. The first read error is
// kept in err and subsequent reads return zero values.
type decoder struct {
	r    *bytes.Reader
	size int
	ops  []string
	err  error
}

func (d *decoder) pos() uint32 {
	return uint32(d.size - d.r.Len())
}

func (d *decoder) u8() byte {
	if d.err != nil {
		return 0
	}
	b, err := d.r.ReadByte()
	d.err = err
	return b
}

func (d *decoder) u32() uint32 {
	if d.err != nil {
		return 0
	}
	v, err := wasm.ReadLEB128u(d.r)
	d.err = err
	return v
}

func (d *decoder) u64() uint64 {
	if d.err != nil {
		return 0
	}
	v, err := wasm.ReadLEB128u64(d.r)
	d.err = err
	return v
}

func (d *decoder) s32() int32 {
	if d.err != nil {
		return 0
	}
	v, err := wasm.ReadLEB128s(d.r)
	d.err = err
	return v
}

func (d *decoder) s64() int64 {
	if d.err != nil {
		return 0
	}
	v, err := wasm.ReadLEB128s64(d.r)
	d.err = err
	return v
}

func (d *decoder) emit(s string) {
	d.ops = append(d.ops, s)
}

func (d *decoder) index() {
	d.emit(strconv.FormatUint(uint64(d.u32()), 10))
}

func (d *decoder) indices(n int) {
	for i := 0; i < n; i++ {
		d.index()
	}
}

func (d *decoder) decode(in *Instruction) error {
	switch op := in.Opcode; op {
	case wasm.OpBlock, wasm.OpTry:
		in.Scope = ScopeBlock
		d.blockType()
	case wasm.OpLoop:
		in.Scope = ScopeLoop
		d.blockType()
	case wasm.OpIf:
		in.Scope = ScopeIf
		in.Branch = BranchConditional
		d.blockType()
	case wasm.OpElse, wasm.OpCatchAll:
		in.Scope = ScopeElse
	case wasm.OpCatch:
		in.Scope = ScopeElse
		d.index()
	case wasm.OpEnd:
		in.Scope = ScopeEnd
	case wasm.OpDelegate:
		in.Scope = ScopeEnd
		d.index()
	case wasm.OpThrow, wasm.OpRethrow:
		d.index()
	case wasm.OpTryTable:
		in.Scope = ScopeBlock
		d.tryTable()

	case wasm.OpBr:
		in.Branch = BranchUnconditional
		d.index()
	case wasm.OpBrIf, wasm.OpBrOnNull, wasm.OpBrOnNonNull:
		in.Branch = BranchConditional
		d.index()
	case wasm.OpBrTable:
		in.Branch = BranchTable
		count := d.u32()
		if d.err == nil && int(count) > d.r.Len() {
			return errors.InvalidData(errors.PhaseDecode, nil,
				fmt.Sprintf("br_table with %d labels exceeds body", count))
		}
		d.indices(int(count) + 1)

	case wasm.OpCall, wasm.OpReturnCall:
		in.Call = CallDirect
		d.index()
	case wasm.OpCallIndirect, wasm.OpReturnCallIndirect:
		// type index first so the table index is the trailing operand
		in.Call = CallIndirect
		d.indices(2)
	case wasm.OpCallRef, wasm.OpReturnCallRef:
		d.index()

	case wasm.OpLocalGet, wasm.OpLocalSet, wasm.OpLocalTee,
		wasm.OpGlobalGet, wasm.OpGlobalSet,
		wasm.OpTableGet, wasm.OpTableSet,
		wasm.OpMemorySize, wasm.OpMemoryGrow,
		wasm.OpRefFunc:
		d.index()

	case wasm.OpSelectType:
		count := d.u32()
		for i := uint32(0); i < count && d.err == nil; i++ {
			d.emit(d.valType())
		}

	case wasm.OpI32Const:
		d.emit(strconv.FormatInt(int64(d.s32()), 10))
	case wasm.OpI64Const:
		d.emit(strconv.FormatInt(d.s64(), 10))
	case wasm.OpF32Const:
		v, err := wasm.ReadFloat32(d.r)
		if err != nil {
			return err
		}
		d.emit(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case wasm.OpF64Const:
		v, err := wasm.ReadFloat64(d.r)
		if err != nil {
			return err
		}
		d.emit(strconv.FormatFloat(v, 'g', -1, 64))

	case wasm.OpRefNull:
		d.emit(heapType(d.s64()))

	case wasm.OpPrefixMisc:
		return d.misc(in)
	case wasm.OpPrefixSIMD:
		d.simd(in)
	case wasm.OpPrefixAtomic:
		d.atomic(in)
	case wasm.OpPrefixGC:
		return d.gc(in)

	default:
		switch {
		case op >= wasm.OpI32Load && op <= wasm.OpI64Store32:
			d.memArg()
		case opcodeNames[op] == "":
			return errors.Unsupported(errors.PhaseDecode, fmt.Sprintf("unknown opcode 0x%02x", op))
		}
		// everything else in the table has no immediates
	}
	return nil
}

func (d *decoder) blockType() {
	bt := d.s64()
	if d.err != nil {
		return
	}
	switch {
	case bt == int64(wasm.BlockTypeVoid):
	case bt >= 0:
		d.emit("(type " + strconv.FormatInt(bt, 10) + ")")
	default:
		d.emit("(result " + d.refOrValType(byte(bt&0x7F)) + ")")
	}
}

func (d *decoder) valType() string {
	return d.refOrValType(d.u8())
}

func (d *decoder) refOrValType(b byte) string {
	switch wasm.ValType(b) {
	case wasm.ValRefNull:
		return "(ref null " + heapType(d.s64()) + ")"
	case wasm.ValRef:
		return "(ref " + heapType(d.s64()) + ")"
	}
	return wasm.ValType(b).String()
}

var abstractHeapTypes = map[byte]string{
	0x74: "noexn",
	0x73: "nofunc",
	0x72: "noextern",
	0x71: "none",
	0x70: "func",
	0x6F: "extern",
	0x6E: "any",
	0x6D: "eq",
	0x6C: "i31",
	0x6B: "struct",
	0x6A: "array",
	0x69: "exn",
}

// heapType formats an s33 heap type: a type index or an abstract type.
func heapType(v int64) string {
	if v >= 0 {
		return strconv.FormatInt(v, 10)
	}
	if name, ok := abstractHeapTypes[byte(v&0x7F)]; ok {
		return name
	}
	return "heap" + strconv.FormatInt(v, 10)
}

func (d *decoder) memArg() {
	align := d.u32()
	if align&memArgMultiMemBit != 0 {
		d.index()
		align &^= memArgMultiMemBit
	}
	offset := d.u64()
	if d.err != nil {
		return
	}
	d.emit("offset=" + strconv.FormatUint(offset, 10))
	if align < 64 {
		d.emit("align=" + strconv.FormatUint(1<<align, 10))
	}
}

func (d *decoder) tryTable() {
	d.blockType()
	count := d.u32()
	for i := uint32(0); i < count && d.err == nil; i++ {
		switch kind := d.u8(); kind {
		case 0x00:
			d.emit("(catch")
			d.index()
		case 0x01:
			d.emit("(catch_ref")
			d.index()
		case 0x02:
			d.emit("(catch_all")
		case 0x03:
			d.emit("(catch_all_ref")
		default:
			if d.err == nil {
				d.err = fmt.Errorf("unknown catch kind 0x%02x", kind)
			}
			return
		}
		d.index()
		d.ops[len(d.ops)-1] += ")"
	}
}

func (d *decoder) misc(in *Instruction) error {
	in.SubOpcode = d.u32()
	if d.err != nil {
		return nil
	}
	switch sub := in.SubOpcode; {
	case sub <= miscTruncSatLast:
	case sub > miscMemoryDiscard:
		return errors.Unsupported(errors.PhaseDecode, fmt.Sprintf("unknown 0xFC sub-opcode 0x%02x", sub))
	default:
		switch sub {
		case miscMemoryInit, miscMemoryCopy, miscTableInit, miscTableCopy:
			d.indices(2)
		default:
			d.index()
		}
	}
	return nil
}

func (d *decoder) simd(in *Instruction) {
	in.SubOpcode = d.u32()
	if d.err != nil {
		return
	}
	switch sub := in.SubOpcode; {
	case sub <= simdLoad64Splat || sub == simdStore:
		d.memArg()
	case sub == simdConst:
		var raw [16]byte
		if _, err := io.ReadFull(d.r, raw[:]); err != nil {
			d.err = err
			return
		}
		d.emit("i32x4")
		for i := 0; i < 16; i += 4 {
			d.emit(fmt.Sprintf("0x%08x", binary.LittleEndian.Uint32(raw[i:])))
		}
	case sub == simdShuffle:
		for i := 0; i < 16; i++ {
			d.emit(strconv.Itoa(int(d.u8())))
		}
	case sub >= simdExtractFirst && sub <= simdReplaceLast:
		d.emit(strconv.Itoa(int(d.u8())))
	case sub >= simdLoad8Lane && sub <= simdStore64Lane:
		d.memArg()
		d.emit(strconv.Itoa(int(d.u8())))
	case sub == simdLoad32Zero || sub == simdLoad64Zero:
		d.memArg()
	}
}

func (d *decoder) atomic(in *Instruction) {
	in.SubOpcode = d.u32()
	if in.SubOpcode == atomicFence {
		d.u8() // reserved
		return
	}
	d.memArg()
}

func (d *decoder) gc(in *Instruction) error {
	in.SubOpcode = d.u32()
	if d.err != nil {
		return nil
	}
	switch sub := in.SubOpcode; {
	case sub <= gcStructNewDefault, sub >= 0x06 && sub <= gcArrayNewDefault,
		sub >= gcArrayGet && sub <= gcArraySet, sub == gcArrayFill:
		d.index()
	case sub <= gcStructSet:
		// struct.get*, struct.set: type and field
		d.indices(2)
	case sub == gcArrayNewFixed, sub == gcArrayNewData, sub == gcArrayNewElem,
		sub == gcArrayCopy, sub == gcArrayInitData, sub == gcArrayInitElem:
		d.indices(2)
	case sub == gcArrayLen:
	case sub >= gcRefTest && sub <= gcRefCastNull:
		d.emit(heapType(d.s64()))
	case sub == gcBrOnCast || sub == gcBrOnCastFail:
		// the label goes first so branch resolution reads it like br_if
		in.Branch = BranchConditional
		flags := d.u8()
		d.index()
		d.emit(refType(flags&0x01 != 0, d.s64()))
		d.emit(refType(flags&0x02 != 0, d.s64()))
	case sub >= gcAnyConvertExtern && sub <= gcI31GetU:
	default:
		return errors.Unsupported(errors.PhaseDecode, fmt.Sprintf("unknown 0xFB sub-opcode 0x%02x", sub))
	}
	return nil
}

func refType(nullable bool, ht int64) string {
	if nullable {
		return "(ref null " + heapType(ht) + ")"
	}
	return "(ref " + heapType(ht) + ")"
}
