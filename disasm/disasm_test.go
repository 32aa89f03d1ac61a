package disasm

import (
	"errors"
	"testing"

	cfgerrors "github.com/wippyai/wasm-cfg/errors"
)

func TestDisassembleControlFlow(t *testing.T) {
	code := []byte{
		0x02, 0x40,                   // block
		0x03, 0x40,                   // loop
		0x20, 0x00,                   // local.get 0
		0x0D, 0x00,                   // br_if 0
		0x0C, 0x01,                   // br 1
		0x0B,                         // end
		0x0B,                         // end
		0x10, 0x03,                   // call 3
		0x11, 0x02, 0x00,             // call_indirect type 2 table 0
		0x0E, 0x02, 0x00, 0x01, 0x00, // br_table 0 1 default 0
		0x41, 0x7F,                   // i32.const -1
		0x28, 0x02, 0x08,             // i32.load align=4 offset=8
		0x0B,                         // end
	}

	want := []struct {
		mnemonic string
		operands string
		offset   uint32
		end      uint32
		branch   BranchKind
		scope    ScopeKind
		call     CallKind
	}{
		{"block", "", 0, 2, BranchNone, ScopeBlock, CallNone},
		{"loop", "", 2, 4, BranchNone, ScopeLoop, CallNone},
		{"local.get", "0", 4, 6, BranchNone, ScopeNone, CallNone},
		{"br_if", "0", 6, 8, BranchConditional, ScopeNone, CallNone},
		{"br", "1", 8, 10, BranchUnconditional, ScopeNone, CallNone},
		{"end", "", 10, 11, BranchNone, ScopeEnd, CallNone},
		{"end", "", 11, 12, BranchNone, ScopeEnd, CallNone},
		{"call", "3", 12, 14, BranchNone, ScopeNone, CallDirect},
		{"call_indirect", "2 0", 14, 17, BranchNone, ScopeNone, CallIndirect},
		{"br_table", "0 1 0", 17, 22, BranchTable, ScopeNone, CallNone},
		{"i32.const", "-1", 22, 24, BranchNone, ScopeNone, CallNone},
		{"i32.load", "offset=8 align=4", 24, 27, BranchNone, ScopeNone, CallNone},
		{"end", "", 27, 28, BranchNone, ScopeEnd, CallNone},
	}

	instrs, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if len(instrs) != len(want) {
		t.Fatalf("len(instrs) = %d, want %d", len(instrs), len(want))
	}
	for i, w := range want {
		in := instrs[i]
		if in.Mnemonic != w.mnemonic || in.Operands != w.operands {
			t.Errorf("instr %d = %q, want %q %q", i, in.String(), w.mnemonic, w.operands)
		}
		if in.Offset != w.offset || in.End != w.end {
			t.Errorf("instr %d range = [%d,%d), want [%d,%d)", i, in.Offset, in.End, w.offset, w.end)
		}
		if in.Branch != w.branch || in.Scope != w.scope || in.Call != w.call {
			t.Errorf("instr %d kinds = %v/%v/%v, want %v/%v/%v",
				i, in.Branch, in.Scope, in.Call, w.branch, w.scope, w.call)
		}
	}
}

func TestInstructionPredicates(t *testing.T) {
	tests := []struct {
		in                             Instruction
		branch, cond, uncond, call     bool
		startsScope, endsScope, isElse bool
	}{
		{in: Instruction{Branch: BranchUnconditional}, branch: true, uncond: true},
		{in: Instruction{Branch: BranchTable}, branch: true, uncond: true},
		{in: Instruction{Branch: BranchConditional}, branch: true, cond: true},
		{in: Instruction{Branch: BranchConditional, Scope: ScopeIf}, branch: true, cond: true, startsScope: true},
		{in: Instruction{Scope: ScopeLoop}, startsScope: true},
		{in: Instruction{Scope: ScopeEnd}, endsScope: true},
		{in: Instruction{Scope: ScopeElse}, isElse: true},
		{in: Instruction{Call: CallIndirect}, call: true},
		{in: Instruction{}},
	}
	for i, tt := range tests {
		in := &tt.in
		if in.IsBranch() != tt.branch ||
			in.IsBranchConditional() != tt.cond ||
			in.IsBranchUnconditional() != tt.uncond ||
			in.IsCall() != tt.call ||
			in.StartsScope() != tt.startsScope ||
			in.EndsScope() != tt.endsScope ||
			in.IsElse() != tt.isElse {
			t.Errorf("case %d: predicates disagree with kinds %v/%v/%v", i, in.Branch, in.Scope, in.Call)
		}
	}
}

func TestDisassembleImmediates(t *testing.T) {
	tests := []struct {
		name     string
		code     []byte
		mnemonic string
		operands string
	}{
		{"if result", []byte{0x04, 0x7F}, "if", "(result i32)"},
		{"block type index", []byte{0x02, 0x03}, "block", "(type 3)"},
		{"f32 const", []byte{0x43, 0x00, 0x00, 0xC0, 0x3F}, "f32.const", "1.5"},
		{"i64 const", []byte{0x42, 0x80, 0x7F}, "i64.const", "-128"},
		{"ref.null", []byte{0xD0, 0x70}, "ref.null", "func"},
		{"typed select", []byte{0x1C, 0x01, 0x7E}, "select", "i64"},
		{"multi memory load", []byte{0x29, 0x43, 0x01, 0x10}, "i64.load", "1 offset=16 align=8"},
		{"memory.copy", []byte{0xFC, 0x0A, 0x00, 0x01}, "memory.copy", "0 1"},
		{"trunc_sat", []byte{0xFC, 0x03}, "i32.trunc_sat_f64_u", ""},
		{"atomic fence", []byte{0xFE, 0x03, 0x00}, "atomic.fence", ""},
		{"atomic rmw", []byte{0xFE, 0x1E, 0x02, 0x00}, "i32.atomic.rmw.add", "offset=0 align=4"},
		{"extract lane", []byte{0xFD, 0x15, 0x07}, "i8x16.extract_lane_s", "7"},
		{"simd arithmetic", []byte{0xFD, 0xAE, 0x01}, "i32x4.add", ""},
		{"struct.get", []byte{0xFB, 0x02, 0x01, 0x02}, "struct.get", "1 2"},
		{"try_table", []byte{0x1F, 0x40, 0x02, 0x00, 0x05, 0x01, 0x02, 0x00}, "try_table", "(catch 5 1) (catch_all 0)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instrs, err := Disassemble(tt.code)
			if err != nil {
				t.Fatalf("Disassemble(%x): %v", tt.code, err)
			}
			if len(instrs) != 1 {
				t.Fatalf("len(instrs) = %d, want 1", len(instrs))
			}
			in := instrs[0]
			if in.Mnemonic != tt.mnemonic {
				t.Errorf("Mnemonic = %q, want %q", in.Mnemonic, tt.mnemonic)
			}
			if in.Operands != tt.operands {
				t.Errorf("Operands = %q, want %q", in.Operands, tt.operands)
			}
			if int(in.Size()) != len(tt.code) {
				t.Errorf("Size() = %d, want %d", in.Size(), len(tt.code))
			}
		})
	}
}

func TestDisassembleV128Const(t *testing.T) {
	code := append([]byte{0xFD, 0x0C}, make([]byte, 16)...)
	code[2] = 0x01
	instrs, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	want := "i32x4 0x00000001 0x00000000 0x00000000 0x00000000"
	if instrs[0].Operands != want {
		t.Errorf("Operands = %q, want %q", instrs[0].Operands, want)
	}
	if instrs[0].End != 18 {
		t.Errorf("End = %d, want 18", instrs[0].End)
	}
}

func TestDisassembleBrOnCast(t *testing.T) {
	// br_on_cast flags=3 label=0 (ref null any) (ref null eq)
	instrs, err := Disassemble([]byte{0xFB, 0x18, 0x03, 0x00, 0x6E, 0x6D})
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	in := instrs[0]
	if in.Branch != BranchConditional {
		t.Errorf("Branch = %v, want conditional", in.Branch)
	}
	if tokens := in.Tokens(); len(tokens) == 0 || tokens[0] != "0" {
		t.Errorf("Tokens() = %v, want label first", tokens)
	}
}

func TestDisassembleErrors(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		kind cfgerrors.Kind
	}{
		{"truncated br", []byte{0x0B, 0x0C}, cfgerrors.KindInvalidData},
		{"truncated f64", []byte{0x44, 0x00, 0x00}, cfgerrors.KindInvalidData},
		{"unknown opcode", []byte{0x27}, cfgerrors.KindUnsupported},
		{"unknown misc", []byte{0xFC, 0x40}, cfgerrors.KindUnsupported},
		{"unknown gc", []byte{0xFB, 0x40}, cfgerrors.KindUnsupported},
		{"oversized br_table", []byte{0x0E, 0xFF, 0x01, 0x00}, cfgerrors.KindInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Disassemble(tt.code)
			if err == nil {
				t.Fatal("Disassemble succeeded, want error")
			}
			var e *cfgerrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not *errors.Error", err)
			}
			if e.Phase != cfgerrors.PhaseDecode || e.Kind != tt.kind {
				t.Errorf("error = %v, want decode/%s", err, tt.kind)
			}
		})
	}
}

func TestDisassembleEmpty(t *testing.T) {
	instrs, err := Disassemble(nil)
	if err != nil {
		t.Fatalf("Disassemble(nil): %v", err)
	}
	if len(instrs) != 0 {
		t.Errorf("len(instrs) = %d, want 0", len(instrs))
	}
}

func TestMnemonicFallback(t *testing.T) {
	if got := Mnemonic(0xFD, 0x200); got != "0xfd.0x200" {
		t.Errorf("Mnemonic(0xFD, 0x200) = %q", got)
	}
	if got := Mnemonic(0x27, 0); got != "unknown_0x27" {
		t.Errorf("Mnemonic(0x27, 0) = %q", got)
	}
	if got := Mnemonic(0xC4, 0); got != "i64.extend32_s" {
		t.Errorf("Mnemonic(0xC4, 0) = %q, want i64.extend32_s", got)
	}
}
