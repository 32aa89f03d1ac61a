package wasm

import (
	"errors"
	"fmt"

	"github.com/wippyai/wasm-cfg/wasm/internal/binary"
)

// Parsing errors returned by ParseModule.
var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
	ErrUnsupported    = errors.New("unsupported encoding")
	ErrCountTooLarge  = errors.New("vector count exceeds remaining bytes")
)

// ParseModule parses the metadata and function bodies of a WebAssembly
// binary module.
func ParseModule(data []byte) (*Module, error) {
	r := binary.NewReader(data)

	magic, err := r.U32LE()
	if err != nil {
		return nil, r.Fail("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	version, err := r.U32LE()
	if err != nil {
		return nil, r.Fail("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	m := &Module{}

	// Section order is checked against the canonical order, not the IDs.
	var lastSectionOrder int

	for r.Len() > 0 {
		sectionID, _ := r.Byte()

		if sectionID != SectionCustom {
			order := sectionOrder(sectionID)
			if order == 0 {
				return nil, fmt.Errorf("unknown section ID: 0x%02x", sectionID)
			}
			if order <= lastSectionOrder {
				return nil, fmt.Errorf("section %d appears out of order", sectionID)
			}
			lastSectionOrder = order
		}

		sectionSize, err := r.U32()
		if err != nil {
			return nil, r.Fail("section size", err)
		}
		sr, err := r.Sub(int(sectionSize))
		if err != nil {
			return nil, r.Fail("section data", err)
		}

		switch sectionID {
		case SectionCustom:
			if err := parseCustomSection(sr, m); err != nil {
				return nil, fmt.Errorf("custom section: %w", err)
			}
		case SectionType:
			if err := parseTypeSection(sr, m); err != nil {
				return nil, fmt.Errorf("type section: %w", err)
			}
		case SectionImport:
			if err := parseImportSection(sr, m); err != nil {
				return nil, fmt.Errorf("import section: %w", err)
			}
		case SectionFunction:
			if err := parseFunctionSection(sr, m); err != nil {
				return nil, fmt.Errorf("function section: %w", err)
			}
		case SectionExport:
			if err := parseExportSection(sr, m); err != nil {
				return nil, fmt.Errorf("export section: %w", err)
			}
		case SectionStart:
			idx, err := sr.U32()
			if err != nil {
				return nil, fmt.Errorf("start section: %w", err)
			}
			m.Start = &idx
		case SectionCode:
			if err := parseCodeSection(sr, m); err != nil {
				return nil, fmt.Errorf("code section: %w", err)
			}
		default:
			// Tables, memories, globals, elements, data and tags do not
			// contribute to control flow.
		}
	}

	if len(m.Code) != len(m.Funcs) {
		return nil, fmt.Errorf("function and code section have inconsistent lengths: %d != %d",
			len(m.Funcs), len(m.Code))
	}

	if err := m.parseNames(); err != nil {
		return nil, fmt.Errorf("name section: %w", err)
	}

	return m, nil
}

// sectionOrder returns the canonical ordering for a section ID, or 0 for
// unknown IDs.
func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionTag:
		return 6
	case SectionGlobal:
		return 7
	case SectionExport:
		return 8
	case SectionStart:
		return 9
	case SectionElement:
		return 10
	case SectionDataCount:
		return 11
	case SectionCode:
		return 12
	case SectionData:
		return 13
	default:
		return 0
	}
}

func parseCustomSection(r *binary.Reader, m *Module) error {
	name, err := r.Name()
	if err != nil {
		return err
	}
	m.CustomSections = append(m.CustomSections, CustomSection{
		Name: name,
		Data: r.Rest(),
	})
	return nil
}

func parseTypeSection(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.Types = make([]FuncType, count)
	for i := uint32(0); i < count; i++ {
		form, err := r.Byte()
		if err != nil {
			return err
		}
		if form != FuncTypeByte {
			return fmt.Errorf("type %d: form 0x%02x: %w", i, form, ErrUnsupported)
		}
		params, err := readValTypes(r)
		if err != nil {
			return err
		}
		results, err := readValTypes(r)
		if err != nil {
			return err
		}
		m.Types[i] = FuncType{Params: params, Results: results}
	}
	return nil
}

func parseImportSection(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.Imports = make([]Import, count)
	for i := uint32(0); i < count; i++ {
		module, err := r.Name()
		if err != nil {
			return err
		}
		name, err := r.Name()
		if err != nil {
			return err
		}
		kind, err := r.Byte()
		if err != nil {
			return err
		}

		imp := Import{Module: module, Name: name, Kind: kind}

		switch kind {
		case KindFunc:
			imp.TypeIdx, err = r.U32()
		case KindTable:
			if _, err = readValType(r); err == nil {
				err = skipLimits(r)
			}
		case KindMemory:
			err = skipLimits(r)
		case KindGlobal:
			if _, err = readValType(r); err == nil {
				_, err = r.Byte()
			}
		case KindTag:
			if _, err = r.Byte(); err == nil {
				imp.TypeIdx, err = r.U32()
			}
		default:
			return fmt.Errorf("unknown import kind: %d", kind)
		}
		if err != nil {
			return err
		}

		m.Imports[i] = imp
	}
	return nil
}

func parseFunctionSection(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.Funcs = make([]uint32, count)
	for i := uint32(0); i < count; i++ {
		m.Funcs[i], err = r.U32()
		if err != nil {
			return err
		}
	}
	return nil
}

func parseExportSection(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.Exports = make([]Export, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.Name()
		if err != nil {
			return err
		}
		kind, err := r.Byte()
		if err != nil {
			return err
		}
		if kind > KindTag {
			return fmt.Errorf("invalid export kind: 0x%02x", kind)
		}
		idx, err := r.U32()
		if err != nil {
			return err
		}
		m.Exports[i] = Export{Name: name, Kind: kind, Idx: idx}
	}
	return nil
}

func parseCodeSection(r *binary.Reader, m *Module) error {
	count, err := readCount(r)
	if err != nil {
		return err
	}
	m.Code = make([]FuncBody, count)
	for i := range m.Code {
		size, err := r.U32()
		if err != nil {
			return err
		}
		br, err := r.Sub(int(size))
		if err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}

		groups, err := br.U32()
		if err != nil {
			return err
		}
		var locals []LocalEntry
		for j := uint32(0); j < groups; j++ {
			n, err := br.U32()
			if err != nil {
				return err
			}
			t, err := readValType(br)
			if err != nil {
				return err
			}
			locals = append(locals, LocalEntry{Count: n, ValType: t})
		}

		m.Code[i] = FuncBody{Locals: locals, Offset: br.Offset(), Code: br.Rest()}
	}
	return nil
}

// readCount reads a vector length. Every vector element takes at least one
// byte, so a count larger than the rest of the section is rejected before
// anything is allocated for it.
func readCount(r *binary.Reader) (uint32, error) {
	count, err := r.U32()
	if err != nil {
		return 0, err
	}
	if int64(count) > int64(r.Len()) {
		return 0, r.Fail("vector", fmt.Errorf("%w: %d > %d", ErrCountTooLarge, count, r.Len()))
	}
	return count, nil
}

func readValTypes(r *binary.Reader) ([]ValType, error) {
	count, err := readCount(r)
	if err != nil {
		return nil, err
	}
	types := make([]ValType, count)
	for i := uint32(0); i < count; i++ {
		types[i], err = readValType(r)
		if err != nil {
			return nil, err
		}
	}
	return types, nil
}

// readValType reads a value type, consuming the heap type that follows
// typed references (0x63/0x64).
func readValType(r *binary.Reader) (ValType, error) {
	b, err := r.Byte()
	if err != nil {
		return 0, err
	}
	if b == byte(ValRefNull) || b == byte(ValRef) {
		if _, err := r.S64(); err != nil {
			return 0, err
		}
	}
	return ValType(b), nil
}

func skipLimits(r *binary.Reader) error {
	flags, err := r.Byte()
	if err != nil {
		return err
	}
	n := 1
	if flags&LimitsHasMax != 0 {
		n = 2
	}
	for i := 0; i < n; i++ {
		if flags&LimitsMemory64 != 0 {
			_, err = r.U64()
		} else {
			_, err = r.U32()
		}
		if err != nil {
			return err
		}
	}
	return nil
}
