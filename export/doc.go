// Package export renders recovered graphs for other tools.
//
// FunctionDOT, ModuleDOT and CallGraphDOT produce Graphviz source. Edge
// colors encode the edge kind: blue unconditional, green conditional true,
// red conditional false, black fallthrough.
//
// Snapshot is a compact, self-contained copy of a module's graphs that
// round-trips through canonical CBOR, so equal analyses produce identical
// bytes and can be compared or cached by hash.
package export
