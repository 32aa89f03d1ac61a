package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/wasm-cfg/analyzer"
)

// fileConfig is the layout of a wasmcfg.toml file.
type fileConfig struct {
	Analysis analysisConfig `toml:"analysis"`
	Output   outputConfig   `toml:"output"`
}

type analysisConfig struct {
	Workers     int  `toml:"workers"`
	Validate    bool `toml:"validate"`
	Threads     bool `toml:"threads"`
	Strict      bool `toml:"strict"`
	IgnoreNames bool `toml:"ignore-names"`
	Hex         bool `toml:"hex"`
}

type outputConfig struct {
	DOT      string `toml:"dot"`
	Snapshot string `toml:"snapshot"`
	Calls    bool   `toml:"calls"`
	Verbose  bool   `toml:"verbose"`
}

// options is the merged configuration of one run.
type options struct {
	analyzer.Config

	WasmFile    string
	Func        string
	DOT         string
	Snapshot    string
	Calls       bool
	Verbose     bool
	Interactive bool
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var c fileConfig
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return &c, nil
}

// apply copies file settings into o for every option that was not set on
// the command line.
func (c *fileConfig) apply(o *options, set map[string]bool) {
	if !set["workers"] && c.Analysis.Workers != 0 {
		o.Workers = c.Analysis.Workers
	}
	if !set["validate"] {
		o.Validate = o.Validate || c.Analysis.Validate
	}
	if !set["threads"] {
		o.EnableThreads = o.EnableThreads || c.Analysis.Threads
	}
	if !set["strict"] {
		o.StrictBranches = o.StrictBranches || c.Analysis.Strict
	}
	if !set["ignore-names"] {
		o.IgnoreNames = o.IgnoreNames || c.Analysis.IgnoreNames
	}
	if !set["hex"] {
		o.Hex = o.Hex || c.Analysis.Hex
	}
	if !set["dot"] && c.Output.DOT != "" {
		o.DOT = c.Output.DOT
	}
	if !set["snapshot"] && c.Output.Snapshot != "" {
		o.Snapshot = c.Output.Snapshot
	}
	if !set["calls"] {
		o.Calls = o.Calls || c.Output.Calls
	}
	if !set["v"] {
		o.Verbose = o.Verbose || c.Output.Verbose
	}
}

// setFlags returns the names of the flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}
