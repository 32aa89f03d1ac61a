package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/wasm-cfg/analyzer"
	"github.com/wippyai/wasm-cfg/cfg"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	blockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD166"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var edgeStyles = map[cfg.EdgeKind]lipgloss.Style{
	cfg.EdgeUnconditional:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6CA0DC")),
	cfg.EdgeConditionalTrue:  lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
	cfg.EdgeConditionalFalse: errorStyle,
	cfg.EdgeFallthrough:      helpStyle,
	cfg.EdgeCall:             funcStyle,
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// report prints analysis results as text, styled when writing to a
// terminal.
type report struct {
	out   io.Writer
	color bool
}

func newReport(out io.Writer, color bool) *report {
	return &report{out: out, color: color}
}

func (r *report) render(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

func (r *report) header(file string, res *analyzer.Result) {
	fmt.Fprintf(r.out, "%s %s\n", r.render(titleStyle, "wasmcfg"), file)
	fmt.Fprintf(r.out, "Imported functions: %d\n", res.Wasm.NumImportedFuncs())
	fmt.Fprintf(r.out, "Defined functions: %d\n", len(res.Wasm.Code))
	fmt.Fprintf(r.out, "%s\n\n", res.Graph.Summary())
}

func (r *report) functions(m *cfg.Module) {
	for _, f := range m.Functions {
		if f.Err != nil {
			fmt.Fprintf(r.out, "  %4d %s  %s\n", f.ID, r.render(funcStyle, f.Name), r.render(errorStyle, f.Err.Error()))
			continue
		}
		fmt.Fprintf(r.out, "  %4d %s  %d blocks, %d edges\n", f.ID, r.render(funcStyle, f.Name), len(f.Blocks), len(f.Edges))
	}
}

func (r *report) function(f *cfg.Function) {
	fmt.Fprintf(r.out, "%s (index %d)\n", r.render(funcStyle, f.Name), f.ID)
	if f.Err != nil {
		fmt.Fprintf(r.out, "  %s\n", r.render(errorStyle, f.Err.Error()))
		return
	}
	for _, b := range f.Blocks {
		fmt.Fprintf(r.out, "\n%s [0x%x, 0x%x)\n", r.render(blockStyle, b.Name), b.Start, b.End)
		for _, in := range b.Instructions {
			fmt.Fprintf(r.out, "  %04x  %s\n", in.Offset, in)
		}
		for _, e := range f.Successors(b.ID) {
			to := fmt.Sprintf("-> 0x%x %s", e.To.Offset, e.Kind)
			fmt.Fprintf(r.out, "  %s\n", r.render(edgeStyles[e.Kind], to))
		}
	}
	fmt.Fprintln(r.out)
}

func (r *report) callGraph(g *cfg.CallGraph) {
	fmt.Fprintf(r.out, "\n%s %d nodes, %d calls\n", r.render(titleStyle, "call graph"), len(g.Nodes), len(g.Calls))
	for _, e := range g.Edges {
		fmt.Fprintf(r.out, "  %s -> %s\n", r.render(funcStyle, e.From), r.render(funcStyle, e.To))
	}
	for _, d := range g.Diagnostics {
		fmt.Fprintf(r.out, "  %s\n", r.render(warnStyle, d.Error()))
	}
}

func (r *report) diagnostics(m *cfg.Module) {
	if len(m.Diagnostics) == 0 {
		return
	}
	fmt.Fprintf(r.out, "\n%d diagnostics:\n", len(m.Diagnostics))
	for _, d := range m.Diagnostics {
		fmt.Fprintf(r.out, "  %s\n", r.render(warnStyle, d.Error()))
	}
}
