// Package disasm decodes WebAssembly function bodies into an instruction
// stream suitable for control-flow recovery.
//
// Each Instruction carries its byte range within the body, its mnemonic,
// its immediates rendered as space-separated text, and a closed
// classification decided once at decode time:
//
//   - BranchKind: br is unconditional, br_table selects among labels, and
//     br_if, if, br_on_null, br_on_non_null and br_on_cast are conditional.
//   - ScopeKind: block, loop, if (and try, try_table as blocks) open scopes;
//     else and catch continue them; end and delegate close them.
//   - CallKind: call and return_call are direct; call_indirect and
//     return_call_indirect are indirect with the table index last.
//
// Branch operands keep their relative depth as the first token (every
// token for br_table). The resolution fields Target, Resolved and
// TableTargets are left for the cfg package to fill in.
//
//	instrs, err := disasm.Disassemble(body.Code)
//	for _, in := range instrs {
//	    fmt.Printf("%04x %s\n", in.Offset, in)
//	}
package disasm
