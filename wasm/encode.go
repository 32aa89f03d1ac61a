package wasm

import (
	"sort"

	"github.com/wippyai/wasm-cfg/wasm/internal/binary"
)

// Encode serializes the module to the binary format. Only the sections
// represented in Module are emitted; a "name" section is generated from
// Names when it is set and no custom section of that name exists.
func (m *Module) Encode() []byte {
	w := binary.NewWriter()
	w.U32LE(Magic)
	w.U32LE(Version)

	if len(m.Types) > 0 {
		s := binary.NewWriter()
		s.U32(uint32(len(m.Types)))
		for _, ft := range m.Types {
			s.Byte(FuncTypeByte)
			writeValTypes(s, ft.Params)
			writeValTypes(s, ft.Results)
		}
		w.Section(SectionType, s)
	}

	if len(m.Imports) > 0 {
		s := binary.NewWriter()
		s.U32(uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			s.Name(imp.Module)
			s.Name(imp.Name)
			s.Byte(imp.Kind)
			switch imp.Kind {
			case KindFunc:
				s.U32(imp.TypeIdx)
			case KindTable:
				s.Byte(byte(ValFuncRef))
				s.Byte(0)
				s.U32(0)
			case KindMemory:
				s.Byte(0)
				s.U32(1)
			case KindGlobal:
				s.Byte(byte(ValI32))
				s.Byte(0)
			case KindTag:
				s.Byte(0)
				s.U32(imp.TypeIdx)
			}
		}
		w.Section(SectionImport, s)
	}

	if len(m.Funcs) > 0 {
		s := binary.NewWriter()
		s.U32(uint32(len(m.Funcs)))
		for _, idx := range m.Funcs {
			s.U32(idx)
		}
		w.Section(SectionFunction, s)
	}

	if len(m.Exports) > 0 {
		s := binary.NewWriter()
		s.U32(uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			s.Name(exp.Name)
			s.Byte(exp.Kind)
			s.U32(exp.Idx)
		}
		w.Section(SectionExport, s)
	}

	if m.Start != nil {
		s := binary.NewWriter()
		s.U32(*m.Start)
		w.Section(SectionStart, s)
	}

	if len(m.Code) > 0 {
		s := binary.NewWriter()
		s.U32(uint32(len(m.Code)))
		for _, body := range m.Code {
			b := binary.NewWriter()
			b.U32(uint32(len(body.Locals)))
			for _, l := range body.Locals {
				b.U32(l.Count)
				b.Byte(byte(l.ValType))
			}
			b.Raw(body.Code)
			s.U32(uint32(b.Len()))
			s.Raw(b.Bytes())
		}
		w.Section(SectionCode, s)
	}

	hasNameSection := false
	for _, cs := range m.CustomSections {
		hasNameSection = hasNameSection || cs.Name == "name"
		writeCustomSection(w, cs.Name, cs.Data)
	}
	if m.Names != nil && !hasNameSection {
		writeCustomSection(w, "name", encodeNames(m.Names))
	}

	return w.Bytes()
}

func writeValTypes(w *binary.Writer, types []ValType) {
	w.U32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}

func writeCustomSection(w *binary.Writer, name string, data []byte) {
	s := binary.NewWriter()
	s.Name(name)
	s.Raw(data)
	w.Section(SectionCustom, s)
}

func encodeNames(n *NameMap) []byte {
	w := binary.NewWriter()
	if n.Module != "" {
		s := binary.NewWriter()
		s.Name(n.Module)
		w.Section(NameSubsectionModule, s)
	}
	if len(n.Funcs) > 0 {
		indices := make([]uint32, 0, len(n.Funcs))
		for idx := range n.Funcs {
			indices = append(indices, idx)
		}
		sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

		s := binary.NewWriter()
		s.U32(uint32(len(indices)))
		for _, idx := range indices {
			s.U32(idx)
			s.Name(n.Funcs[idx])
		}
		w.Section(NameSubsectionFunction, s)
	}
	return w.Bytes()
}
