// Package callgraph builds the inter-function call graph of a decoded
// WebAssembly module: direct-call edges, reachability from the module's
// entry points, and the set of defined functions that reachability never
// touches.
package callgraph

import (
	"sort"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
	"github.com/jeffasante/wasm-inspector/internal/wasm/binary"
)

// Node describes one function in the combined index space.
type Node struct {
	Index         uint32
	DisplayName   string
	IsImported    bool
	IsExported    bool
	CallSiteCount int // sum of CallSiteCount across edges targeting this node
}

// Edge aggregates every direct call from From to To.
type Edge struct {
	From          uint32
	To            uint32
	CallSiteCount int
}

// Graph is the call graph of one module.
type Graph struct {
	Nodes                []Node
	Edges                []Edge
	EntryPoints          []uint32
	UnreachableFunctions []uint32
	// IndirectCallSites counts call_indirect occurrences seen while
	// scanning bodies; they never produce edges (target unresolved
	// statically) but performance/capability passes want the count.
	IndirectCallSites int
	// Warnings holds one entry per defined function whose body scan
	// stopped early; scanning continues with the next function.
	Warnings []wasm.BodyScanWarning
}

// Build scans every defined function body in m for direct-call
// instructions and computes reachability from the module's entry points
// (the start function, if any, plus every function-kind export).
func Build(m *wasm.Module) *Graph {
	g := &Graph{}

	exported := make(map[uint32]bool)
	for _, exp := range m.Exports {
		if exp.Kind == wasm.ExternKindFunc {
			exported[exp.Index] = true
		}
	}

	total := m.FunctionCount()
	imported := m.ImportedFunctionCount()
	for i := 0; i < total; i++ {
		idx := uint32(i)
		g.Nodes = append(g.Nodes, Node{
			Index:       idx,
			DisplayName: m.FunctionNames[idx],
			IsImported:  i < imported,
			IsExported:  exported[idx],
		})
	}

	edgeCounts := map[[2]uint32]int{}
	for i, fn := range m.Functions {
		callerIdx := uint32(imported + i)
		badCallOffset := -1
		err := binary.WalkBody(fn.Body, func(ev binary.Event) {
			if badCallOffset >= 0 {
				return // this function's scan already stopped
			}
			switch ev.Kind {
			case binary.EventCall:
				if int(ev.CalleeIndex) >= total {
					badCallOffset = ev.Offset
					return
				}
				edgeCounts[[2]uint32{callerIdx, ev.CalleeIndex}]++
			case binary.EventCallIndirect:
				g.IndirectCallSites++
			}
		})
		if badCallOffset >= 0 {
			g.Warnings = append(g.Warnings, wasm.BodyScanWarning{
				FunctionIndex: callerIdx,
				Offset:        fn.BodyOffset + badCallOffset,
				Message:       "call to out-of-range function index",
			})
		} else if err != nil {
			g.Warnings = append(g.Warnings, wasm.BodyScanWarning{
				FunctionIndex: callerIdx,
				Offset:        fn.BodyOffset,
				Message:       err.Error(),
			})
		}
	}

	for pair, count := range edgeCounts {
		if int(pair[1]) >= total {
			// Out-of-range callees never reach edgeCounts: the walk above
			// stops that function at the bad call and records a warning.
			// This guard only keeps the inDegree indexing below safe.
			continue
		}
		g.Edges = append(g.Edges, Edge{From: pair[0], To: pair[1], CallSiteCount: count})
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].From != g.Edges[j].From {
			return g.Edges[i].From < g.Edges[j].From
		}
		return g.Edges[i].To < g.Edges[j].To
	})

	inDegree := make([]int, total)
	adjacency := make(map[uint32][]uint32, total)
	for _, e := range g.Edges {
		inDegree[e.To] += e.CallSiteCount
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}
	for i := range g.Nodes {
		g.Nodes[i].CallSiteCount = inDegree[g.Nodes[i].Index]
	}

	seed := map[uint32]bool{}
	if m.StartFunction != nil {
		seed[*m.StartFunction] = true
	}
	for idx := range exported {
		seed[idx] = true
	}
	for idx := range seed {
		g.EntryPoints = append(g.EntryPoints, idx)
	}
	sort.Slice(g.EntryPoints, func(i, j int) bool { return g.EntryPoints[i] < g.EntryPoints[j] })

	reachable := bfs(seed, adjacency)
	for i := 0; i < len(m.Functions); i++ {
		idx := uint32(imported + i)
		if !reachable[idx] {
			g.UnreachableFunctions = append(g.UnreachableFunctions, idx)
		}
	}
	sort.Slice(g.UnreachableFunctions, func(i, j int) bool { return g.UnreachableFunctions[i] < g.UnreachableFunctions[j] })

	return g
}

func bfs(seed map[uint32]bool, adjacency map[uint32][]uint32) map[uint32]bool {
	visited := make(map[uint32]bool, len(seed))
	queue := make([]uint32, 0, len(seed))
	for idx := range seed {
		if !visited[idx] {
			visited[idx] = true
			queue = append(queue, idx)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return visited
}
