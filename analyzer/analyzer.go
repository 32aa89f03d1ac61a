// Package analyzer runs the full control-flow recovery pipeline on a
// WebAssembly module: input normalization, optional validation, metadata
// parsing, per-function disassembly and graph construction.
package analyzer

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-cfg/cfg"
	"github.com/wippyai/wasm-cfg/disasm"
	"github.com/wippyai/wasm-cfg/errors"
	"github.com/wippyai/wasm-cfg/wasm"
)

// Result bundles the parsed module with the graphs recovered from it.
type Result struct {
	Wasm  *wasm.Module
	Graph *cfg.Module
}

// Analyze recovers the control-flow graphs of the module in data, which may
// be a binary module or its hex encoding.
func Analyze(ctx context.Context, data []byte, config Config) (*cfg.Module, error) {
	res, err := AnalyzeResult(ctx, data, config)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

// AnalyzeResult is Analyze that also returns the parsed module metadata.
func AnalyzeResult(ctx context.Context, data []byte, config Config) (*Result, error) {
	bin, err := Normalize(data, config.Hex)
	if err != nil {
		return nil, err
	}

	if config.Validate {
		if err := Validate(ctx, bin, config.EnableThreads); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mod, err := wasm.ParseModule(bin)
	if err != nil {
		return nil, errors.ParseFailed("module", err)
	}
	if config.IgnoreNames {
		mod.Names = nil
	}

	Logger().Debug("parsed module",
		zap.Int("imports", mod.NumImportedFuncs()),
		zap.Int("functions", len(mod.Code)),
		zap.Int("size", len(bin)))

	return &Result{Wasm: mod, Graph: Build(mod, config)}, nil
}

// Build disassembles every function body of mod and builds its graphs.
// A body that does not disassemble fails only its own function.
func Build(mod *wasm.Module, config Config) *cfg.Module {
	opts := []cfg.Option{
		cfg.WithWorkers(config.Workers),
		cfg.WithPrototypes(mod.NumImportedFuncs(), Prototypes(mod)),
		cfg.WithLogger(Logger()),
	}
	if config.StrictBranches {
		opts = append(opts, cfg.WithStrictBranches())
	}
	return cfg.BuildFunctionGraphs(Functions(mod), opts...)
}

// Functions disassembles the defined functions of mod in index order.
func Functions(mod *wasm.Module) []*cfg.Function {
	funcs := make([]*cfg.Function, len(mod.Code))
	for i, body := range mod.Code {
		idx := uint32(i)
		instrs, err := disasm.Disassemble(body.Code)
		if err != nil {
			Logger().Warn("function body does not disassemble",
				zap.Uint32("func", idx),
				zap.Int("offset", body.Offset),
				zap.Error(err))
			funcs[i] = cfg.FailedFunction(idx, err)
			continue
		}
		funcs[i] = cfg.NewFunction(idx, instrs)
	}
	return funcs
}

// Prototypes converts the prototype table of mod for display naming.
func Prototypes(mod *wasm.Module) []cfg.Prototype {
	src := mod.Prototypes()
	protos := make([]cfg.Prototype, len(src))
	for i, p := range src {
		protos[i] = cfg.Prototype{
			Name:    p.Name,
			Params:  p.ParamString(),
			Results: p.ResultString(),
		}
	}
	return protos
}
