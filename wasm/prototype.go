package wasm

import (
	"strconv"
	"strings"
)

// Prototype describes one entry of the function index space: imported
// functions first, then locally defined ones.
type Prototype struct {
	Name     string
	Params   []ValType
	Results  []ValType
	Imported bool
}

// ParamString returns the parameter types separated by spaces.
func (p Prototype) ParamString() string {
	return joinTypes(p.Params)
}

// ResultString returns the result types separated by spaces.
func (p Prototype) ResultString() string {
	return joinTypes(p.Results)
}

// Prototypes returns the function prototype table in index order.
//
// Names are taken from the name section when present, then from the import
// or the first export that refers to the function, falling back to $func<N>.
func (m *Module) Prototypes() []Prototype {
	exported := make(map[uint32]string)
	for _, exp := range m.Exports {
		if exp.Kind != KindFunc {
			continue
		}
		if _, ok := exported[exp.Idx]; !ok {
			exported[exp.Idx] = exp.Name
		}
	}

	protos := make([]Prototype, 0, m.NumFuncs())
	for _, imp := range m.Imports {
		if imp.Kind != KindFunc {
			continue
		}
		idx := uint32(len(protos))
		p := Prototype{Imported: true, Name: imp.Module + "." + imp.Name}
		if ft := m.typeAt(imp.TypeIdx); ft != nil {
			p.Params, p.Results = ft.Params, ft.Results
		}
		if name, ok := m.Names.FuncName(idx); ok {
			p.Name = name
		}
		protos = append(protos, p)
	}

	for _, typeIdx := range m.Funcs {
		idx := uint32(len(protos))
		p := Prototype{Name: "$func" + strconv.FormatUint(uint64(idx), 10)}
		if ft := m.typeAt(typeIdx); ft != nil {
			p.Params, p.Results = ft.Params, ft.Results
		}
		if name, ok := m.Names.FuncName(idx); ok {
			p.Name = name
		} else if name, ok := exported[idx]; ok {
			p.Name = name
		}
		protos = append(protos, p)
	}
	return protos
}

func joinTypes(types []ValType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
