// Package wasmcfg recovers control flow from WebAssembly modules.
//
// A module is decoded into per-function instruction streams, each stream is
// split into basic blocks connected by typed edges, and direct and indirect
// calls are collected into a module call graph.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	wasmcfg/
//	├── wasm/            Core WASM binary parsing and encoding
//	├── disasm/          Function body decoding into annotated instructions
//	├── cfg/             Scope resolution, basic blocks, edges, call graph
//	├── analyzer/        Input normalization, wazero validation, module build
//	├── export/          Graphviz DOT output and CBOR snapshots
//	├── errors/          Structured error types for debugging
//	└── cmd/wasmcfg/     Command line and interactive browser
//
// # Quick Start
//
// Analyze a module and walk its blocks:
//
//	m, err := analyzer.Analyze(ctx, wasmBytes, analyzer.Config{Workers: 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, f := range m.Functions {
//	    for _, b := range f.Blocks {
//	        fmt.Println(f.Name, b.Name, f.Successors(b.ID))
//	    }
//	}
//
//	g := m.CallGraph()
//	fmt.Println(g.Callers(3))
//
// # Diagnostics
//
// Malformed functions do not fail the module. A function whose body cannot
// be decoded or whose scopes do not nest carries an error in Function.Err
// and contributes no blocks. Branches whose label cannot be resolved and
// edges whose target block is missing are reported in Module.Diagnostics
// and the affected edge is omitted.
//
// # Thread Safety
//
// A built Module is read-only and safe for concurrent use. The call graph is
// built lazily on first use, guarded by a sync.Once.
package wasmcfg
