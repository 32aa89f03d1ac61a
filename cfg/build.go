package cfg

import (
	"sync"

	"go.uber.org/zap"
)

type options struct {
	workers     int
	log         *zap.Logger
	namer       Namer
	strict      bool
	importCount int
	protos      []Prototype
}

// Option configures BuildFunctionGraphs.
type Option func(*options)

// WithWorkers runs function pipelines on n goroutines. Values below 2 build
// sequentially. Output order does not depend on n.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger used for diagnostics of this build.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithNamer replaces DefaultNamer for block and function names.
func WithNamer(n Namer) Option {
	return func(o *options) {
		o.namer = n
	}
}

// WithStrictBranches fails a whole function when any of its branches
// cannot be resolved, instead of reporting a diagnostic and skipping the
// edge.
func WithStrictBranches() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithPrototypes supplies the module's import count and its prototype
// table in global index order. Without it functions get fallback names and
// the call graph covers only the given functions.
func WithPrototypes(importCount int, protos []Prototype) Option {
	return func(o *options) {
		o.importCount = importCount
		o.protos = protos
	}
}

// BuildFunctionGraphs builds the basic blocks and edges of every function
// and aggregates them, in function order, into a Module.
//
// A function whose scopes are malformed gets Err set and contributes no
// blocks or edges; the remaining functions are unaffected.
func BuildFunctionGraphs(funcs []*Function, opts ...Option) *Module {
	o := &options{workers: 1, namer: DefaultNamer{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = Logger()
	}
	if o.namer == nil {
		o.namer = DefaultNamer{}
	}

	results := make([]functionResult, len(funcs))
	if o.workers < 2 || len(funcs) < 2 {
		for i, f := range funcs {
			results[i] = buildFunction(f, o)
		}
	} else {
		runPool(funcs, results, o)
	}

	m := &Module{
		ImportCount: o.importCount,
		Prototypes:  o.protos,
		namer:       o.namer,
		log:         o.log,
	}
	for i, f := range funcs {
		r := results[i]
		f.ID = uint32(o.importCount) + f.Index
		f.Name = o.namer.FuncName(m.prototype(f.ID))
		f.Blocks, f.Edges, f.Diagnostics, f.Err = r.blocks, r.edges, r.diags, r.err

		for _, d := range f.Diagnostics {
			o.log.Warn("control flow diagnostic",
				zap.Uint32("func", f.ID),
				zap.String("kind", string(d.Kind)),
				zap.Error(d))
		}
		if f.Err != nil {
			o.log.Warn("function skipped",
				zap.Uint32("func", f.ID),
				zap.String("name", f.Name),
				zap.Error(f.Err))
		}

		m.Functions = append(m.Functions, f)
		m.Blocks = append(m.Blocks, f.Blocks...)
		m.Edges = append(m.Edges, f.Edges...)
		m.Diagnostics = append(m.Diagnostics, f.Diagnostics...)
	}

	o.log.Debug("built function graphs",
		zap.Int("functions", len(m.Functions)),
		zap.Int("blocks", len(m.Blocks)),
		zap.Int("edges", len(m.Edges)))
	return m
}

// runPool fans function pipelines out to a fixed set of workers. Each
// worker writes only results[i] for the indices it receives.
func runPool(funcs []*Function, results []functionResult, o *options) {
	workers := o.workers
	if workers > len(funcs) {
		workers = len(funcs)
	}

	jobs := make(chan int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = buildFunction(funcs[i], o)
			}
		}()
	}
	for i := range funcs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
