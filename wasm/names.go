package wasm

import "github.com/wippyai/wasm-cfg/wasm/internal/binary"

// NameMap holds debug names from the "name" custom section.
type NameMap struct {
	Module string
	Funcs  map[uint32]string
}

// FuncName returns the debug name recorded for a function index.
func (n *NameMap) FuncName(idx uint32) (string, bool) {
	if n == nil {
		return "", false
	}
	name, ok := n.Funcs[idx]
	return name, ok
}

func (m *Module) parseNames() error {
	for _, cs := range m.CustomSections {
		if cs.Name != "name" {
			continue
		}
		names, err := parseNameSection(cs.Data)
		if err != nil {
			return err
		}
		m.Names = names
	}
	return nil
}

func parseNameSection(data []byte) (*NameMap, error) {
	r := binary.NewReader(data)
	names := &NameMap{Funcs: make(map[uint32]string)}

	for r.Len() > 0 {
		id, _ := r.Byte()
		size, err := r.U32()
		if err != nil {
			return nil, r.Fail("name subsection size", err)
		}
		sr, err := r.Sub(int(size))
		if err != nil {
			return nil, r.Fail("name subsection data", err)
		}

		switch id {
		case NameSubsectionModule:
			names.Module, err = sr.Name()
			if err != nil {
				return nil, sr.Fail("module name", err)
			}
		case NameSubsectionFunction:
			count, err := sr.U32()
			if err != nil {
				return nil, sr.Fail("function names", err)
			}
			for i := uint32(0); i < count; i++ {
				idx, err := sr.U32()
				if err != nil {
					return nil, sr.Fail("function names", err)
				}
				name, err := sr.Name()
				if err != nil {
					return nil, sr.Fail("function names", err)
				}
				names.Funcs[idx] = name
			}
		default:
			// Local, label and type names are not used.
		}
	}
	return names, nil
}
