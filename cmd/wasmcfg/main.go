// Command wasmcfg recovers basic blocks, control-flow edges and the call
// graph of a WebAssembly module and prints, exports or browses them.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-cfg/analyzer"
	"github.com/wippyai/wasm-cfg/cfg"
	"github.com/wippyai/wasm-cfg/export"
)

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	log := zap.NewNop()
	if opts.Verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	defer func() { _ = log.Sync() }()
	analyzer.SetLogger(log.Named("analyzer"))
	cfg.SetLogger(log.Named("cfg"))

	if opts.Interactive {
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (*options, error) {
	fs := flag.NewFlagSet("wasmcfg", flag.ContinueOnError)
	o := &options{}
	fs.StringVar(&o.WasmFile, "wasm", "", "Path to wasm module (binary or hex text, - for stdin)")
	fs.BoolVar(&o.Hex, "hex", false, "Read the input as hex text")
	fs.StringVar(&o.Func, "func", "", "Show blocks and edges of one function (name or index)")
	fs.BoolVar(&o.Calls, "calls", false, "Print the call graph")
	fs.StringVar(&o.DOT, "dot", "", "Write a Graphviz DOT file")
	fs.StringVar(&o.Snapshot, "snapshot", "", "Write a CBOR snapshot of the graphs")
	fs.IntVar(&o.Workers, "workers", 1, "Goroutines building function graphs")
	fs.BoolVar(&o.Validate, "validate", false, "Validate the module with wazero first")
	fs.BoolVar(&o.EnableThreads, "threads", false, "Accept the threads proposal during validation")
	fs.BoolVar(&o.StrictBranches, "strict", false, "Fail functions with unresolved branches and exit non-zero on diagnostics")
	fs.BoolVar(&o.IgnoreNames, "ignore-names", false, "Ignore the name section")
	fs.BoolVar(&o.Verbose, "v", false, "Log diagnostics to stderr")
	fs.BoolVar(&o.Interactive, "i", false, "Interactive mode with TUI")
	configFile := fs.String("config", "", "Path to a wasmcfg.toml file")
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintln(out, "Usage: wasmcfg -wasm <file.wasm> [-func name] [-calls] [-dot out.dot] [-snapshot out.cbor]")
		fmt.Fprintln(out, "       wasmcfg -wasm <file.wasm> -i  (interactive mode)")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.WasmFile == "" && fs.NArg() > 0 {
		o.WasmFile = fs.Arg(0)
	}
	if o.WasmFile == "" {
		fs.Usage()
		return nil, fmt.Errorf("no input module")
	}

	if *configFile != "" {
		fc, err := loadFileConfig(*configFile)
		if err != nil {
			return nil, err
		}
		fc.apply(o, setFlags(fs))
	}
	return o, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func run(ctx context.Context, opts *options, out io.Writer) error {
	data, err := readInput(opts.WasmFile)
	if err != nil {
		return err
	}

	res, err := analyzer.AnalyzeResult(ctx, data, opts.Config)
	if err != nil {
		return err
	}
	m := res.Graph

	r := newReport(out, isTerminal(out))
	r.header(opts.WasmFile, res)

	if opts.Func != "" {
		f, err := m.LookupFunction(opts.Func)
		if err != nil {
			return err
		}
		r.function(f)
	} else {
		r.functions(m)
	}
	if opts.Calls {
		r.callGraph(m.CallGraph())
	}
	r.diagnostics(m)

	if opts.DOT != "" {
		dot := export.ModuleDOT(m)
		if opts.Func != "" {
			f, _ := m.LookupFunction(opts.Func)
			dot = export.FunctionDOT(f)
		} else if opts.Calls {
			dot = export.CallGraphDOT(m.CallGraph())
		}
		if err := writeFile(opts.DOT, func(w io.Writer) error { return export.WriteDOT(w, dot) }); err != nil {
			return err
		}
	}

	if opts.Snapshot != "" {
		data, err := export.MarshalSnapshot(export.NewSnapshot(m, opts.Calls))
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.Snapshot, data, 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	if opts.StrictBranches {
		if err := m.Diagnostics.Err(); err != nil {
			return fmt.Errorf("%d control flow diagnostics: %w", len(m.Diagnostics), err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
