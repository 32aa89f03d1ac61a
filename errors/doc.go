// Package errors provides structured error types for wasm-cfg.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries a location path, the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCall, errors.KindOutOfBounds).
//		Path(errors.FuncPath(3), errors.OffsetPath(0x1a)).
//		Value(42).
//		Detail("callee %d outside prototype table", 42).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MalformedScope(funcIdx, offset, "end without open scope")
//	err := errors.UnresolvedBranch(funcIdx, offset, "br_if", 2)
//
// Non-fatal problems are gathered into Diagnostics. All errors implement
// the standard error interface and support errors.Is/As; Is matches on
// phase and kind.
package errors
