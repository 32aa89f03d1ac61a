package wasm

// Module holds the metadata of a parsed WebAssembly module that control-flow
// recovery needs: signatures, the function index space and function bodies.
// Sections that carry no control-flow information are validated for order
// and skipped.
type Module struct {
	Types   []FuncType
	Imports []Import
	Funcs   []uint32 // Type indices for declared functions
	Exports []Export
	Code    []FuncBody
	Start   *uint32

	// Names is populated from the "name" custom section when present.
	Names *NameMap

	CustomSections []CustomSection
}

// FuncType represents a WebAssembly function signature with parameter and result types.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// ValType represents a WebAssembly value type.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValV128:
		return "v128"
	case ValFuncRef:
		return "funcref"
	case ValExtern:
		return "externref"
	case ValAnyRef:
		return "anyref"
	case ValEqRef:
		return "eqref"
	case ValI31Ref:
		return "i31ref"
	case ValStructRef:
		return "structref"
	case ValArrayRef:
		return "arrayref"
	case ValNullRef:
		return "nullref"
	case ValNullExternRef:
		return "nullexternref"
	case ValNullFuncRef:
		return "nullfuncref"
	case ValRefNull:
		return "ref null"
	case ValRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Import represents an imported function, table, memory, global, or tag.
type Import struct {
	Module string
	Name   string
	Kind   byte
	// TypeIdx is the signature of an imported function or tag.
	TypeIdx uint32
}

// Export describes an exported item.
// Kind uses KindFunc, KindTable, KindMemory, KindGlobal, or KindTag constants.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// FuncBody represents a function's local declarations and bytecode.
type FuncBody struct {
	Locals []LocalEntry
	Code   []byte // Raw code bytes including the final end opcode

	// Offset is the position of Code within the module binary.
	Offset int
}

// LocalEntry represents a group of local variables with the same type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// CustomSection holds a named custom section's data.
type CustomSection struct {
	Name string
	Data []byte
}

// NumImportedFuncs returns the number of imported functions
func (m *Module) NumImportedFuncs() int {
	count := 0
	for _, imp := range m.Imports {
		if imp.Kind == KindFunc {
			count++
		}
	}
	return count
}

// NumFuncs returns the size of the function index space (imports + locals).
func (m *Module) NumFuncs() int {
	return m.NumImportedFuncs() + len(m.Funcs)
}

// GetFuncType returns the type for a function index in the combined index
// space, or nil when the index or its type index is out of range.
func (m *Module) GetFuncType(funcIdx uint32) *FuncType {
	var typeIdx uint32
	imported := uint32(0)
	for _, imp := range m.Imports {
		if imp.Kind != KindFunc {
			continue
		}
		if imported == funcIdx {
			return m.typeAt(imp.TypeIdx)
		}
		imported++
	}
	local := funcIdx - imported
	if local >= uint32(len(m.Funcs)) {
		return nil
	}
	typeIdx = m.Funcs[local]
	return m.typeAt(typeIdx)
}

func (m *Module) typeAt(typeIdx uint32) *FuncType {
	if typeIdx >= uint32(len(m.Types)) {
		return nil
	}
	return &m.Types[typeIdx]
}
