// Package memprofile classifies memory-touching opcodes in a decoded
// module's function bodies to produce per-family counts, hotspots, and a
// handful of heuristic allocation and safety findings.
package memprofile

import (
	"sort"
	"strings"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
	"github.com/jeffasante/wasm-inspector/internal/wasm/binary"
)

// DefaultHotspotCount is N in "top N functions by memory-op count" when
// the caller does not override it via AnalyzerConfig.WithHotspotCount.
const DefaultHotspotCount = 10

// Operations is the module-wide count per opcode family.
type Operations struct {
	Load  int
	Store int
	Grow  int
	Size  int
	Copy  int
	Fill  int
	Init  int
}

func (o Operations) total() int {
	return o.Load + o.Store + o.Grow + o.Size + o.Copy + o.Fill + o.Init
}

// Hotspot is one entry of the top-N functions by memory-op count.
type Hotspot struct {
	FunctionIndex uint32
	DisplayName   string
	OpCount       int
}

// Pattern is an allocation-shaped naming heuristic finding.
type Pattern struct {
	Name        string
	Description string
	Evidence    string
}

// Layout summarizes the module's declared memory limits and data coverage.
type Layout struct {
	InitialPages    uint32
	MaximumPages    *uint32
	Shared          bool
	MemoryCount     int
	DataSegmentSize int
}

// Report is the memory/instruction profile of one module.
type Report struct {
	Operations  Operations
	PerFunction map[uint32]Operations
	Hotspots    []Hotspot
	Patterns    []Pattern
	Layout      Layout
	SafetyNotes []string
}

var allocationNameHints = []string{"alloc", "malloc", "free", "dealloc"}

// Build profiles every defined function body in m, keeping the top
// hotspotCount functions by memory-op count. hotspotCount <= 0 falls back
// to DefaultHotspotCount.
func Build(m *wasm.Module, hotspotCount int) *Report {
	if hotspotCount <= 0 {
		hotspotCount = DefaultHotspotCount
	}
	r := &Report{PerFunction: map[uint32]Operations{}}

	imported := m.ImportedFunctionCount()
	sawGrow := false
	for i, fn := range m.Functions {
		idx := uint32(imported + i)
		var ops Operations
		_ = binary.WalkBody(fn.Body, func(ev binary.Event) {
			if ev.Kind != binary.EventMemoryOp {
				return
			}
			switch ev.Family {
			case binary.MemoryOpLoad:
				ops.Load++
			case binary.MemoryOpStore:
				ops.Store++
			case binary.MemoryOpGrow:
				ops.Grow++
				sawGrow = true
			case binary.MemoryOpSize:
				ops.Size++
			case binary.MemoryOpCopy:
				ops.Copy++
			case binary.MemoryOpFill:
				ops.Fill++
			case binary.MemoryOpInit:
				ops.Init++
			}
		})
		if ops.total() > 0 {
			r.PerFunction[idx] = ops
		}
		r.Operations.Load += ops.Load
		r.Operations.Store += ops.Store
		r.Operations.Grow += ops.Grow
		r.Operations.Size += ops.Size
		r.Operations.Copy += ops.Copy
		r.Operations.Fill += ops.Fill
		r.Operations.Init += ops.Init
	}

	r.Hotspots = topHotspots(r.PerFunction, m.FunctionNames, hotspotCount)
	r.Patterns = allocationPatterns(m)
	r.Layout = layoutOf(m)

	if sawGrow {
		boundedByDeclaration := r.Layout.MaximumPages != nil
		if !boundedByDeclaration {
			r.SafetyNotes = append(r.SafetyNotes, "memory.grow is used without a declared maximum page count; growth is unbounded at the module level (heuristic, not a bounds-check analysis)")
		}
	}

	return r
}

func topHotspots(perFn map[uint32]Operations, names map[uint32]string, hotspotCount int) []Hotspot {
	hotspots := make([]Hotspot, 0, len(perFn))
	for idx, ops := range perFn {
		hotspots = append(hotspots, Hotspot{FunctionIndex: idx, DisplayName: names[idx], OpCount: ops.total()})
	}
	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].OpCount != hotspots[j].OpCount {
			return hotspots[i].OpCount > hotspots[j].OpCount
		}
		return hotspots[i].FunctionIndex < hotspots[j].FunctionIndex
	})
	if len(hotspots) > hotspotCount {
		hotspots = hotspots[:hotspotCount]
	}
	return hotspots
}

// allocationPatterns looks for exported names that read as allocator entry
// points. This is a naming heuristic only, per spec: it says nothing about
// whether the function actually allocates.
func allocationPatterns(m *wasm.Module) []Pattern {
	var patterns []Pattern
	seen := map[string]bool{}
	for _, exp := range m.Exports {
		if exp.Kind != wasm.ExternKindFunc {
			continue
		}
		lower := strings.ToLower(exp.Name)
		for _, hint := range allocationNameHints {
			if strings.Contains(lower, hint) && !seen[hint] {
				seen[hint] = true
				patterns = append(patterns, Pattern{
					Name:        "allocator-shaped export: " + hint,
					Description: "exported function name suggests a bump/heap allocator entry point",
					Evidence:    exp.Name,
				})
			}
		}
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i].Name < patterns[j].Name })
	return patterns
}

func layoutOf(m *wasm.Module) Layout {
	l := Layout{MemoryCount: len(m.Memories)}
	for _, d := range m.Data {
		l.DataSegmentSize += d.PayloadLen
	}
	if len(m.Memories) > 0 {
		mem := m.Memories[0]
		l.InitialPages = mem.Min
		l.MaximumPages = mem.Max
		l.Shared = mem.Shared
	}
	return l
}
