package cfg

import (
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-cfg/errors"
)

// Module aggregates the per-function graphs of a module. Blocks, Edges and
// Diagnostics are the concatenation of the per-function values in function
// order.
type Module struct {
	Functions   []*Function
	Blocks      []*BasicBlock
	Edges       []Edge
	Diagnostics errors.Diagnostics

	ImportCount int
	Prototypes  []Prototype

	namer Namer
	log   *zap.Logger

	callOnce  sync.Once
	callGraph *CallGraph
}

// CallGraph returns the module's call graph, building it on first use.
func (m *Module) CallGraph() *CallGraph {
	m.callOnce.Do(func() {
		m.callGraph = BuildCallGraph(m.Functions, m.ImportCount, m.Prototypes, m.getNamer())
		for _, d := range m.callGraph.Diagnostics {
			m.logger().Warn("call graph diagnostic", zap.Error(d))
		}
	})
	return m.callGraph
}

// Failed returns the functions whose graphs could not be built.
func (m *Module) Failed() []*Function {
	var out []*Function
	for _, f := range m.Functions {
		if f.Failed() {
			out = append(out, f)
		}
	}
	return out
}

// LookupFunction finds a function by global index, by bare name or by
// display name.
func (m *Module) LookupFunction(s string) (*Function, error) {
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		for _, f := range m.Functions {
			if f.ID == uint32(n) {
				return f, nil
			}
		}
		return nil, errors.NotFound(errors.PhaseExport, "function", s)
	}
	for _, f := range m.Functions {
		if f.Name == s || m.prototype(f.ID).Name == s {
			return f, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseExport, "function", s)
}

// Summary reports module-wide counts.
type Summary struct {
	Functions   int
	Failed      int
	Blocks      int
	Edges       int
	Diagnostics int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d functions (%d failed), %d basic blocks, %d edges, %d diagnostics",
		s.Functions, s.Failed, s.Blocks, s.Edges, s.Diagnostics)
}

// Summary returns the module's counts.
func (m *Module) Summary() Summary {
	return Summary{
		Functions:   len(m.Functions),
		Failed:      len(m.Failed()),
		Blocks:      len(m.Blocks),
		Edges:       len(m.Edges),
		Diagnostics: len(m.Diagnostics),
	}
}

func (m *Module) prototype(globalIdx uint32) Prototype {
	if int(globalIdx) < len(m.Prototypes) {
		return m.Prototypes[globalIdx]
	}
	return fallbackPrototype(globalIdx)
}

func (m *Module) getNamer() Namer {
	if m.namer == nil {
		return DefaultNamer{}
	}
	return m.namer
}

func (m *Module) logger() *zap.Logger {
	if m.log == nil {
		return Logger()
	}
	return m.log
}
