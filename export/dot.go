package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-cfg/cfg"
	"github.com/wippyai/wasm-cfg/errors"
)

// MaxLabelInstructions limits the instructions listed in a block's label.
const MaxLabelInstructions = 24

var edgeColors = map[cfg.EdgeKind]string{
	cfg.EdgeUnconditional:    "blue",
	cfg.EdgeConditionalTrue:  "green",
	cfg.EdgeConditionalFalse: "red",
	cfg.EdgeFallthrough:      "black",
	cfg.EdgeCall:             "gray40",
}

// FunctionDOT returns a Graphviz digraph of one function's blocks.
func FunctionDOT(f *cfg.Function) string {
	var sb strings.Builder
	sb.WriteString("digraph " + quote(f.Name) + " {\n")
	writeHeader(&sb, "\t")
	writeFunctionBody(&sb, f, "\t")
	sb.WriteString("}\n")
	return sb.String()
}

// ModuleDOT returns a Graphviz digraph with one cluster per function.
// Functions whose graph failed are skipped.
func ModuleDOT(m *cfg.Module) string {
	var sb strings.Builder
	sb.WriteString("digraph module {\n")
	writeHeader(&sb, "\t")
	for _, f := range m.Functions {
		if f.Failed() {
			continue
		}
		sb.WriteString("\tsubgraph \"cluster_func_" + strconv.FormatUint(uint64(f.ID), 10) + "\" {\n")
		sb.WriteString("\t\tlabel=" + quote(f.Name) + ";\n")
		writeFunctionBody(&sb, f, "\t\t")
		sb.WriteString("\t}\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

// CallGraphDOT returns a Graphviz digraph of the call graph. Repeated calls
// between the same pair of functions are drawn once.
func CallGraphDOT(g *cfg.CallGraph) string {
	var sb strings.Builder
	sb.WriteString("digraph calls {\n")
	sb.WriteString("\tnode [shape=box, fontname=\"Courier\"];\n")
	for i, name := range g.Nodes {
		fmt.Fprintf(&sb, "\tf%d [label=%s];\n", i, quote(name))
	}
	seen := make(map[cfg.CallEdge]bool, len(g.Calls))
	for _, c := range g.Calls {
		if seen[c] {
			continue
		}
		seen[c] = true
		fmt.Fprintf(&sb, "\tf%d -> f%d [color=%s];\n", c.Caller, c.Callee, edgeColors[cfg.EdgeCall])
	}
	sb.WriteString("}\n")
	return sb.String()
}

// WriteDOT writes a rendered graph to w.
func WriteDOT(w io.Writer, dot string) error {
	if _, err := io.WriteString(w, dot); err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "write dot")
	}
	return nil
}

func writeHeader(sb *strings.Builder, indent string) {
	sb.WriteString(indent + "rankdir=TB;\n")
	sb.WriteString(indent + "node [shape=box, fontname=\"Courier\"];\n")
}

func writeFunctionBody(sb *strings.Builder, f *cfg.Function, indent string) {
	for _, b := range f.Blocks {
		fmt.Fprintf(sb, "%s%s [label=%s];\n", indent, nodeID(b.ID), blockLabel(b))
	}
	for _, e := range f.Edges {
		fmt.Fprintf(sb, "%s%s -> %s [color=%s, label=%q];\n",
			indent, nodeID(e.From), nodeID(e.To), edgeColors[e.Kind], e.Kind.String())
	}
}

func nodeID(id cfg.BlockID) string {
	return fmt.Sprintf("b%d_%d", id.Func, id.Offset)
}

// blockLabel renders a left-justified label listing the block's
// instructions with their offsets.
func blockLabel(b *cfg.BasicBlock) string {
	var sb strings.Builder
	sb.WriteString(b.Name + `\l`)
	for i, in := range b.Instructions {
		if i == MaxLabelInstructions {
			fmt.Fprintf(&sb, `... %d more\l`, len(b.Instructions)-i)
			break
		}
		fmt.Fprintf(&sb, `%04x: %s\l`, in.Offset, in.String())
	}
	return `"` + strings.ReplaceAll(sb.String(), `"`, `\"`) + `"`
}

// quote makes s a DOT quoted string. Graphviz only understands escaped
// quotes and backslashes, so other characters are written as they are.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
