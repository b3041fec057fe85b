package perf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeffasante/wasm-inspector/internal/callgraph"
	"github.com/jeffasante/wasm-inspector/internal/memprofile"
	"github.com/jeffasante/wasm-inspector/internal/wasm"
	"github.com/jeffasante/wasm-inspector/internal/wasm/binary"
)

func header() []byte { return []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00} }

func section(id byte, payload []byte) []byte {
	return append(append([]byte{id}, uleb128(uint64(len(payload)))...), payload...)
}

func uleb128(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func decode(t *testing.T, data []byte) *wasm.Module {
	m, err := binary.Decode(data, binary.DefaultLimits())
	require.NoError(t, err)
	return m
}

func TestBuild_EmptyModule(t *testing.T) {
	m := decode(t, header())
	cg := callgraph.Build(m)
	mem := memprofile.Build(m, 0)

	r := Build(m, cg, mem, len(header()))
	require.Zero(t, r.FunctionCount)
	require.Zero(t, r.AverageFunctionSize)
	require.Equal(t, coldStartOverheadMS+float64(len(header()))/coldStartBytesPerMS, r.ColdStartEstimateMS)
	require.Empty(t, r.OptimizationSuggestions)
}

func TestBuild_ColdStartEstimateLinearInModuleSize(t *testing.T) {
	m := decode(t, header())
	cg := callgraph.Build(m)
	mem := memprofile.Build(m, 0)

	small := Build(m, cg, mem, 1000)
	large := Build(m, cg, mem, 100000)
	require.Less(t, small.ColdStartEstimateMS, large.ColdStartEstimateMS)
}

func TestSuggestions_DeadCodeElimination(t *testing.T) {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(3, []byte{0x03, 0x00, 0x00, 0x00})...)
	b = append(b, section(7, []byte{0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00})...)
	b = append(b, section(10, []byte{
		0x03,
		0x02, 0x00, 0x0b,
		0x02, 0x00, 0x0b,
		0x02, 0x00, 0x0b,
	})...)

	m := decode(t, b)
	cg := callgraph.Build(m)
	mem := memprofile.Build(m, 0)
	r := Build(m, cg, mem, len(b))

	require.Contains(t, r.OptimizationSuggestions, "dead-code elimination")
}

func TestSuggestions_ConsiderInlining(t *testing.T) {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(3, []byte{0x02, 0x00, 0x00})...)
	b = append(b, section(7, []byte{0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00})...)
	b = append(b, section(10, []byte{
		0x02,
		0x04, 0x00, 0x10, 0x01, 0x0b, // function 0: call 1; end
		0x02, 0x00, 0x0b, // function 1: end (small, single caller)
	})...)

	m := decode(t, b)
	cg := callgraph.Build(m)
	mem := memprofile.Build(m, 0)
	r := Build(m, cg, mem, len(b))

	require.Contains(t, r.OptimizationSuggestions, "consider inlining")
}

func TestSuggestions_StripDebugInfo(t *testing.T) {
	b := header()
	payload := make([]byte, largeCustomSectionKB+1)
	name := []byte{0x05, 'd', 'w', 'a', 'r', 'f'}
	full := append(name, payload...)
	b = append(b, section(0, full)...)

	m := decode(t, b)
	cg := callgraph.Build(m)
	mem := memprofile.Build(m, 0)
	r := Build(m, cg, mem, len(b))

	require.Contains(t, r.OptimizationSuggestions, "strip debug info")
}

func TestComplexityScore_NeverExceeds100(t *testing.T) {
	m := decode(t, header())
	cg := callgraph.Build(m)
	mem := memprofile.Build(m, 0)
	score := complexityScore(m, cg, mem)
	require.GreaterOrEqual(t, score, 0.0)
	require.LessOrEqual(t, score, 100.0)
}
