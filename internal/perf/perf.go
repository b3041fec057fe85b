// Package perf estimates a few coarse performance signals from a decoded
// module's sizes and call graph. Every figure here is a documented
// heuristic, not a measurement: the core never executes the module.
package perf

import (
	"sort"

	"github.com/jeffasante/wasm-inspector/internal/callgraph"
	"github.com/jeffasante/wasm-inspector/internal/memprofile"
	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

// coldStartOverheadMS and coldStartBytesPerMS are the fixed constants of
// the cold-start heuristic: a constant parse/instantiate floor plus a
// linear term over module size.
const (
	coldStartOverheadMS  = 2.0
	coldStartBytesPerMS  = 50_000.0
	smallFunctionBytes   = 32
	singleCallerFanIn    = 1
	largeCustomSectionKB = 8 * 1024
)

// Report is the performance estimate of one module.
type Report struct {
	ModuleSize             int
	CodeSize               int
	FunctionCount          int
	AverageFunctionSize    float64
	ComplexityScore        float64
	ColdStartEstimateMS    float64
	OptimizationSuggestions []string
}

// Build estimates a PerfReport from m's sizes, cg's call graph shape, and
// mem's memory-op counts. moduleSize is the original encoded byte length.
func Build(m *wasm.Module, cg *callgraph.Graph, mem *memprofile.Report, moduleSize int) *Report {
	r := &Report{ModuleSize: moduleSize, FunctionCount: len(m.Functions)}

	codeSize := 0
	for _, fn := range m.Functions {
		codeSize += len(fn.Body)
	}
	r.CodeSize = codeSize
	if len(m.Functions) > 0 {
		r.AverageFunctionSize = float64(codeSize) / float64(len(m.Functions))
	}

	r.ComplexityScore = complexityScore(m, cg, mem)
	r.ColdStartEstimateMS = coldStartOverheadMS + float64(moduleSize)/coldStartBytesPerMS

	r.OptimizationSuggestions = suggestions(m, cg)
	return r
}

// complexityScore weighs function count, average call-graph fan-out, and
// total memory-op count, normalized into 0-100 via a fixed divisor table. The
// divisors are calibration constants, not derived from any formal model.
func complexityScore(m *wasm.Module, cg *callgraph.Graph, mem *memprofile.Report) float64 {
	const (
		fnCountDivisor  = 500.0
		fanOutDivisor   = 10.0
		memOpsDivisor   = 2000.0
	)

	fnScore := float64(len(m.Functions)) / fnCountDivisor

	fanOut := 0.0
	if len(cg.Nodes) > 0 {
		fanOut = float64(len(cg.Edges)) / float64(len(cg.Nodes))
	}
	fanOutScore := fanOut / fanOutDivisor

	memOps := mem.Operations.Load + mem.Operations.Store + mem.Operations.Grow +
		mem.Operations.Size + mem.Operations.Copy + mem.Operations.Fill + mem.Operations.Init
	memScore := float64(memOps) / memOpsDivisor

	score := (fnScore + fanOutScore + memScore) / 3 * 100
	if score > 100 {
		score = 100
	}
	return score
}

// suggestions applies the fixed rule set: large custom-section payload,
// at least one small defined function with exactly one call site, and any
// unreachable function at all.
func suggestions(m *wasm.Module, cg *callgraph.Graph) []string {
	var out []string

	customBytes := 0
	for _, cs := range m.CustomSections {
		customBytes += len(cs.Payload)
	}
	if customBytes > largeCustomSectionKB {
		out = append(out, "strip debug info")
	}

	callSites := make(map[uint32]int, len(cg.Nodes))
	for _, e := range cg.Edges {
		callSites[e.To] += e.CallSiteCount
	}
	imported := m.ImportedFunctionCount()
	smallSingleCaller := 0
	for i, fn := range m.Functions {
		idx := uint32(imported + i)
		if len(fn.Body) <= smallFunctionBytes && callSites[idx] == singleCallerFanIn {
			smallSingleCaller++
		}
	}
	if smallSingleCaller > 0 {
		out = append(out, "consider inlining")
	}

	if len(cg.UnreachableFunctions) > 0 {
		out = append(out, "dead-code elimination")
	}

	sort.Strings(out)
	return out
}
