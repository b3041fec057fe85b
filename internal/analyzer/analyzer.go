// Package analyzer composes the five sub-reports (call graph, memory
// profile, capability/security, performance, compatibility) into one
// api.AnalysisReport, translating each internal package's types into the
// serialization-stable api shapes.
package analyzer

import (
	"fmt"

	"github.com/jeffasante/wasm-inspector/api"
	"github.com/jeffasante/wasm-inspector/internal/callgraph"
	"github.com/jeffasante/wasm-inspector/internal/capability"
	"github.com/jeffasante/wasm-inspector/internal/compat"
	"github.com/jeffasante/wasm-inspector/internal/memprofile"
	"github.com/jeffasante/wasm-inspector/internal/perf"
	"github.com/jeffasante/wasm-inspector/internal/wasm"
	"github.com/jeffasante/wasm-inspector/internal/wasm/binary"
)

// Limits re-exports binary.Limits so callers of this package never need to
// import internal/wasm/binary directly.
type Limits = binary.Limits

// Config bundles the decode limits and the memory-profiler hotspot count,
// the two pieces of explicit configuration spec.md §9's "no global state"
// note requires to be passed in rather than compiled in as a hidden
// package-level default.
type Config struct {
	Limits       Limits
	HotspotCount int
}

// Analyze decodes data and runs every analysis pass, returning the
// aggregate report. The only failure modes are the decoder's
// wasm.DecodeError and wasm.OversizeError; every downstream pass is
// infallible given a valid module and reports anomalies as findings
// instead of errors.
func Analyze(data []byte, cfg Config) (*api.AnalysisReport, error) {
	limits := cfg.Limits
	if limits.MaxModuleSize <= 0 {
		limits = binary.DefaultLimits()
	}

	m, err := binary.Decode(data, limits)
	if err != nil {
		return nil, fmt.Errorf("decode module: %w", err)
	}

	cg := callgraph.Build(m)
	mem := memprofile.Build(m, cfg.HotspotCount)
	sec := capability.Build(m, mem)
	pf := perf.Build(m, cg, mem, len(data))
	cp := compat.Build(m, sec)

	return &api.AnalysisReport{
		ModuleInfo:         moduleInfo(m),
		CallGraph:          callGraphReport(cg, m),
		MemoryAnalysis:     memoryAnalysis(mem),
		SecurityAnalysis:   securityAnalysis(sec),
		PerformanceMetrics: performanceMetrics(pf),
		Compatibility:      compatibility(cp),
	}, nil
}

func valueType(v wasm.ValueType) api.ValueType {
	return api.ValueType(wasm.ValueTypeName(v))
}

func valueTypes(vs []wasm.ValueType) []api.ValueType {
	out := make([]api.ValueType, len(vs))
	for i, v := range vs {
		out[i] = valueType(v)
	}
	return out
}

func externKind(k wasm.ExternKind) api.ExternKind {
	switch k {
	case wasm.ExternKindFunc:
		return api.ExternKindFunc
	case wasm.ExternKindTable:
		return api.ExternKindTable
	case wasm.ExternKindMemory:
		return api.ExternKindMemory
	case wasm.ExternKindGlobal:
		return api.ExternKindGlobal
	default:
		return api.ExternKind(k.String())
	}
}

func moduleInfo(m *wasm.Module) api.ModuleInfo {
	info := api.ModuleInfo{
		Version:       m.Version,
		StartFunction: m.StartFunction,
		FunctionNames: make(map[string]string, len(m.FunctionNames)),
	}
	for _, t := range m.Types {
		info.Types = append(info.Types, api.FuncType{
			Params:  valueTypes(t.Params),
			Results: valueTypes(t.Results),
		})
	}
	for _, imp := range m.Imports {
		info.Imports = append(info.Imports, importEntry(imp))
	}
	for _, fn := range m.Functions {
		locals := make([]api.LocalBlock, len(fn.Locals))
		for i, l := range fn.Locals {
			locals[i] = api.LocalBlock{Count: l.Count, Type: valueType(l.Type)}
		}
		info.Functions = append(info.Functions, api.DefinedFunction{
			TypeIndex: fn.TypeIndex,
			Locals:    locals,
			BodySize:  len(fn.Body),
		})
	}
	for _, t := range m.Tables {
		info.Tables = append(info.Tables, api.TableType{
			ElementKind: elementKindString(valueType(t.ElemType)),
			Initial:     t.Min,
			Maximum:     t.Max,
		})
	}
	for _, mt := range m.Memories {
		info.Memories = append(info.Memories, api.MemoryType{
			InitialPages: mt.Min,
			MaximumPages: mt.Max,
			Shared:       mt.Shared,
		})
	}
	for _, g := range m.Globals {
		info.Globals = append(info.Globals, api.GlobalType{
			ValueKind: valueType(g.Type.ValType),
			Mutable:   g.Type.Mutable,
		})
	}
	for _, exp := range m.Exports {
		info.Exports = append(info.Exports, api.Export{Name: exp.Name, Kind: externKind(exp.Kind), Index: exp.Index})
	}
	for _, el := range m.Elements {
		seg := api.ElementSegment{Mode: elementModeString(el.Mode), PayloadSize: el.PayloadSize}
		if el.Mode == wasm.ElementModeActive {
			ti := el.TableIndex
			seg.TableIndex = &ti
		}
		info.ElementSegments = append(info.ElementSegments, seg)
	}
	for _, d := range m.Data {
		seg := api.DataSegment{Mode: dataModeString(d.Mode), PayloadSize: d.PayloadLen}
		if d.Mode == wasm.DataModeActive {
			mi := d.MemIndex
			seg.MemoryIndex = &mi
		}
		info.DataSegments = append(info.DataSegments, seg)
	}
	for _, cs := range m.CustomSections {
		info.CustomSections = append(info.CustomSections, api.CustomSection{Name: cs.Name, Size: cs.Size})
	}
	for idx, name := range m.FunctionNames {
		info.FunctionNames[fmt.Sprintf("%d", idx)] = name
	}

	if info.Types == nil {
		info.Types = []api.FuncType{}
	}
	if info.Imports == nil {
		info.Imports = []api.Import{}
	}
	if info.Functions == nil {
		info.Functions = []api.DefinedFunction{}
	}
	if info.Tables == nil {
		info.Tables = []api.TableType{}
	}
	if info.Memories == nil {
		info.Memories = []api.MemoryType{}
	}
	if info.Globals == nil {
		info.Globals = []api.GlobalType{}
	}
	if info.Exports == nil {
		info.Exports = []api.Export{}
	}
	if info.ElementSegments == nil {
		info.ElementSegments = []api.ElementSegment{}
	}
	if info.DataSegments == nil {
		info.DataSegments = []api.DataSegment{}
	}
	if info.CustomSections == nil {
		info.CustomSections = []api.CustomSection{}
	}
	return info
}

// elementKindString renders an already-computed api.ValueType as the
// funcref/externref element-kind string element sections use; table
// element types are restricted to those two by the format.
func elementKindString(v api.ValueType) string {
	return string(v)
}

func elementModeString(m wasm.ElementMode) string {
	switch m {
	case wasm.ElementModeActive:
		return "active"
	case wasm.ElementModePassive:
		return "passive"
	case wasm.ElementModeDeclared:
		return "declared"
	default:
		return "unknown"
	}
}

func dataModeString(m wasm.DataMode) string {
	switch m {
	case wasm.DataModeActive:
		return "active"
	case wasm.DataModePassive:
		return "passive"
	default:
		return "unknown"
	}
}

func importEntry(imp *wasm.Import) api.Import {
	e := api.Import{Module: imp.Module, Name: imp.Name}
	switch imp.Kind {
	case wasm.ImportKindFunc:
		e.Kind.Function = &api.FunctionImportDesc{TypeIndex: imp.DescFunc}
	case wasm.ImportKindTable:
		e.Kind.Table = &api.TableImportDesc{
			ElementKind: elementKindString(valueType(imp.DescTable.ElemType)),
			Initial:     imp.DescTable.Min,
			Maximum:     imp.DescTable.Max,
		}
	case wasm.ImportKindMemory:
		e.Kind.Memory = &api.MemoryImportDesc{
			InitialPages: imp.DescMemory.Min,
			MaximumPages: imp.DescMemory.Max,
			Shared:       imp.DescMemory.Shared,
		}
	case wasm.ImportKindGlobal:
		e.Kind.Global = &api.GlobalImportDesc{
			ValueKind: valueType(imp.DescGlobal.ValType),
			Mutable:   imp.DescGlobal.Mutable,
		}
	}
	return e
}

func callGraphReport(g *callgraph.Graph, m *wasm.Module) api.CallGraph {
	out := api.CallGraph{
		EntryPoints:          g.EntryPoints,
		UnreachableFunctions: g.UnreachableFunctions,
		IndirectCallSites:    g.IndirectCallSites,
	}
	if out.EntryPoints == nil {
		out.EntryPoints = []uint32{}
	}
	if out.UnreachableFunctions == nil {
		out.UnreachableFunctions = []uint32{}
	}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, api.CallGraphNode{
			FunctionIndex: n.Index,
			Name:          n.DisplayName,
			IsImported:    n.IsImported,
			IsExported:    n.IsExported,
			CallCount:     n.CallSiteCount,
		})
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, api.CallGraphEdge{From: e.From, To: e.To, CallSites: e.CallSiteCount})
	}
	if out.Nodes == nil {
		out.Nodes = []api.CallGraphNode{}
	}
	if out.Edges == nil {
		out.Edges = []api.CallGraphEdge{}
	}
	return out
}

func memoryAnalysis(r *memprofile.Report) api.MemoryAnalysis {
	out := api.MemoryAnalysis{
		MemoryLayout: api.MemoryLayout{
			TotalInitialSize: int(r.Layout.InitialPages) * 65536,
			InitialPages:     r.Layout.InitialPages,
			MaximumPages:     r.Layout.MaximumPages,
			Shared:           r.Layout.Shared,
			MemoryCount:      r.Layout.MemoryCount,
			DataSegmentSize:  r.Layout.DataSegmentSize,
		},
		Operations: api.MemoryOperations{
			Load: r.Operations.Load, Store: r.Operations.Store, Grow: r.Operations.Grow,
			Size: r.Operations.Size, Copy: r.Operations.Copy, Fill: r.Operations.Fill, Init: r.Operations.Init,
		},
		SafetyNotes: r.SafetyNotes,
	}
	for _, h := range r.Hotspots {
		out.Hotspots = append(out.Hotspots, api.MemoryHotspot{FunctionIndex: h.FunctionIndex, Name: h.DisplayName, OpCount: h.OpCount})
	}
	for _, p := range r.Patterns {
		out.Patterns = append(out.Patterns, api.MemoryPattern{Name: p.Name, Description: p.Description, Evidence: p.Evidence})
	}
	if out.Hotspots == nil {
		out.Hotspots = []api.MemoryHotspot{}
	}
	if out.Patterns == nil {
		out.Patterns = []api.MemoryPattern{}
	}
	if out.SafetyNotes == nil {
		out.SafetyNotes = []string{}
	}
	return out
}

func securityAnalysis(r *capability.Report) api.SecurityAnalysis {
	out := api.SecurityAnalysis{
		WASIUsage: api.WASIUsage{
			UsesWASI:      r.WASIUsage.UsesWASI,
			WASIVersion:   r.WASIUsage.WASIVersion,
			WASIFunctions: r.WASIUsage.WASIFunctions,
		},
		Sandbox: api.Sandbox{
			Browser:            r.Sandbox.Browser,
			Node:               r.Sandbox.Node,
			CloudflareWorkers:  r.Sandbox.CloudflareWorkers,
			ServerSideWasmtime: r.Sandbox.ServerSideWasmtime,
		},
	}
	for _, c := range r.Capabilities {
		out.Capabilities = append(out.Capabilities, api.Capability{
			Name: c.Name, RiskLevel: api.RiskLevel(c.Risk), Description: c.Description, Evidence: c.Evidence,
		})
	}
	for _, v := range r.Vulnerabilities {
		out.Vulnerabilities = append(out.Vulnerabilities, api.Vulnerability{
			Name: v.Name, RiskLevel: api.RiskLevel(v.Risk), Description: v.Description,
		})
	}
	if out.Capabilities == nil {
		out.Capabilities = []api.Capability{}
	}
	if out.Vulnerabilities == nil {
		out.Vulnerabilities = []api.Vulnerability{}
	}
	if out.WASIUsage.WASIFunctions == nil {
		out.WASIUsage.WASIFunctions = []string{}
	}
	return out
}

func performanceMetrics(r *perf.Report) api.PerformanceMetrics {
	out := api.PerformanceMetrics{
		ModuleSize:              r.ModuleSize,
		CodeSize:                r.CodeSize,
		FunctionCount:           r.FunctionCount,
		AverageFunctionSize:     r.AverageFunctionSize,
		ComplexityScore:         r.ComplexityScore,
		ColdStartEstimateMS:     r.ColdStartEstimateMS,
		OptimizationSuggestions: r.OptimizationSuggestions,
	}
	if out.OptimizationSuggestions == nil {
		out.OptimizationSuggestions = []string{}
	}
	return out
}

func compatibility(r *compat.Report) api.Compatibility {
	var out api.Compatibility
	for _, v := range r.Verdicts {
		rv := runtimeVerdict(v)
		switch v.Runtime {
		case compat.RuntimeWasmtime:
			out.Wasmtime = rv
		case compat.RuntimeWasmer:
			out.Wasmer = rv
		case compat.RuntimeBrowser:
			out.Browser = rv
		case compat.RuntimeNodeJS:
			out.NodeJS = rv
		case compat.RuntimeDeno:
			out.Deno = rv
		case compat.RuntimeCloudflareWorkers:
			out.CloudflareWorkers = rv
		}
	}
	out.DetectedLanguage = string(r.DetectedLanguage)
	return out
}

func runtimeVerdict(v compat.Verdict) api.RuntimeVerdict {
	rv := api.RuntimeVerdict{Compatible: v.Compatible, Issues: v.Issues, RequiredFeatures: v.RequiredFeatures}
	if rv.Issues == nil {
		rv.Issues = []string{}
	}
	if rv.RequiredFeatures == nil {
		rv.RequiredFeatures = []string{}
	}
	return rv
}
