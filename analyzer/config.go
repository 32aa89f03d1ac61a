package analyzer

// Config holds configuration for a module analysis.
type Config struct {
	// Workers is the number of goroutines building function graphs.
	// 0 or 1 builds sequentially.
	Workers int

	// Validate compiles the module with wazero before analysis and rejects
	// it when compilation fails.
	Validate bool

	// EnableThreads accepts the threads proposal (atomics, shared memory)
	// during validation.
	EnableThreads bool

	// StrictBranches fails a function when any branch stays unresolved.
	StrictBranches bool

	// IgnoreNames skips the "name" custom section when naming functions.
	IgnoreNames bool

	// Hex forces the input to be read as hex text. Without it hex input is
	// still detected when the data does not start with the wasm magic.
	Hex bool
}
