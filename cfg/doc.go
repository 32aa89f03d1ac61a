// Package cfg recovers control-flow graphs and the call graph of a
// WebAssembly module from its decoded instruction streams.
//
// WebAssembly expresses control flow through nested block, loop and if
// scopes with relative branch labels instead of jump addresses. For each
// function the package:
//
//  1. recovers scope nesting and resolves every branch label to an
//     absolute byte offset (a loop's header, or just past a block's end),
//  2. splits the stream into basic blocks at every boundary that a branch,
//     scope marker or resolved target introduces,
//  3. connects the blocks with unconditional, conditional and fallthrough
//     edges.
//
// Functions are independent, so BuildFunctionGraphs can run them on a
// worker pool; results are merged in function order and do not depend on
// the number of workers.
//
//	funcs := make([]*cfg.Function, len(bodies))
//	for i, body := range bodies {
//	    instrs, err := disasm.Disassemble(body)
//	    if err != nil {
//	        funcs[i] = cfg.FailedFunction(uint32(i), err)
//	        continue
//	    }
//	    funcs[i] = cfg.NewFunction(uint32(i), instrs)
//	}
//	m := cfg.BuildFunctionGraphs(funcs, cfg.WithWorkers(4))
//	fmt.Println(m.Summary())
//
// Problems that affect a single instruction, such as a branch whose label
// matches no enclosing scope, are collected as Diagnostics and the edge is
// left out. An unbalanced scope structure fails the whole function.
//
// The call graph is built on demand by Module.CallGraph. Indirect calls
// are approximated statically by their table operand.
package cfg
