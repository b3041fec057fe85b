package analyzer

import (
	"fmt"
	"strings"

	"github.com/jeffasante/wasm-inspector/internal/callgraph"
)

// DOT renders g as a Graphviz DOT digraph: one node per function labeled
// with its display name, imported/exported functions shaded, and one edge
// per aggregated call-site pair labeled with its call count. This is
// output formatting built on the call graph the core already computes; it
// performs no analysis of its own.
func DOT(g *callgraph.Graph) string {
	var b strings.Builder
	b.WriteString("digraph callgraph {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, n := range g.Nodes {
		shape := "ellipse"
		fill := "white"
		switch {
		case n.IsImported:
			fill = "lightgray"
		case n.IsExported:
			fill = "lightblue"
		}
		b.WriteString(fmt.Sprintf("  n%d [label=%q shape=%s style=filled fillcolor=%s];\n",
			n.Index, nodeLabel(n), shape, fill))
	}
	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("  n%d -> n%d [label=%q];\n", e.From, e.To, fmt.Sprintf("%d", e.CallSiteCount)))
	}
	b.WriteString("}\n")
	return b.String()
}

func nodeLabel(n callgraph.Node) string {
	if n.DisplayName == "" {
		return fmt.Sprintf("func_%d", n.Index)
	}
	return n.DisplayName
}
