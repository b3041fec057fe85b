package analyzer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeffasante/wasm-inspector/api"
)

func header() []byte { return []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00} }

func section(id byte, payload []byte) []byte {
	return append([]byte{id, byte(len(payload))}, payload...)
}

func singleExportedNoop() []byte {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(3, []byte{0x01, 0x00})...)
	b = append(b, section(7, []byte{0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00})...)
	b = append(b, section(10, []byte{0x01, 0x02, 0x00, 0x0b})...)
	return b
}

func twoFunctionsCall0Calls1() []byte {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(3, []byte{0x02, 0x00, 0x00})...)
	b = append(b, section(7, []byte{0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00})...)
	b = append(b, section(10, []byte{
		0x02,
		0x04, 0x00, 0x10, 0x01, 0x0b,
		0x02, 0x00, 0x0b,
	})...)
	return b
}

func wasiFilesystemImport() []byte {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(2, []byte{
		0x01,
		0x16, 'w', 'a', 's', 'i', '_', 's', 'n', 'a', 'p', 's', 'h', 'o', 't', '_', 'p', 'r', 'e', 'v', 'i', 'e', 'w', '1',
		0x08, 'f', 'd', '_', 'w', 'r', 'i', 't', 'e',
		0x00, 0x00,
	})...)
	return b
}

func deadFunction() []byte {
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
	return b
}

func mutableExportedGlobal() []byte {
	b := header()
	b = append(b, section(6, []byte{
		0x01,
		0x7f, 0x01,
		0x41, 0x00, 0x0b,
	})...)
	b = append(b, section(7, []byte{
		0x01, 0x07, 'c', 'o', 'u', 'n', 't', 'e', 'r', 0x03, 0x00,
	})...)
	return b
}

func TestAnalyze_EmptyModule(t *testing.T) {
	r, err := Analyze(header(), Config{})
	require.NoError(t, err)
	require.Empty(t, r.CallGraph.Nodes)
	require.Empty(t, r.CallGraph.Edges)
	require.False(t, r.SecurityAnalysis.WASIUsage.UsesWASI)
}

func TestAnalyze_SingleExportedNoop(t *testing.T) {
	r, err := Analyze(singleExportedNoop(), Config{})
	require.NoError(t, err)
	require.Len(t, r.CallGraph.Nodes, 1)
	require.Empty(t, r.CallGraph.UnreachableFunctions)
	require.Equal(t, []uint32{0}, r.CallGraph.EntryPoints)
}

// Invariant: node count equals imports + defined functions, and every edge
// endpoint indexes a valid node.
func TestAnalyze_TwoFunctionsCall_NodeAndEdgeInvariants(t *testing.T) {
	r, err := Analyze(twoFunctionsCall0Calls1(), Config{})
	require.NoError(t, err)

	importCount := len(r.ModuleInfo.Imports)
	require.Len(t, r.CallGraph.Nodes, importCount+len(r.ModuleInfo.Functions))

	nodeIndex := map[uint32]bool{}
	for _, n := range r.CallGraph.Nodes {
		nodeIndex[n.FunctionIndex] = true
	}
	for _, e := range r.CallGraph.Edges {
		require.True(t, nodeIndex[e.From])
		require.True(t, nodeIndex[e.To])
	}
	require.Empty(t, r.CallGraph.UnreachableFunctions)
}

// Invariant: unreachable-iff-not-BFS-reachable, and no imported function
// ever appears in the unreachable list.
func TestAnalyze_DeadFunction_Unreachable(t *testing.T) {
	r, err := Analyze(deadFunction(), Config{})
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2}, r.CallGraph.UnreachableFunctions)

	for _, idx := range r.CallGraph.UnreachableFunctions {
		for _, n := range r.CallGraph.Nodes {
			if n.FunctionIndex == idx {
				require.False(t, n.IsImported)
			}
		}
	}
}

// Invariant: uses_wasi is true iff the module has a wasi_-prefixed import.
func TestAnalyze_WASIImport_UsesWASI(t *testing.T) {
	r, err := Analyze(wasiFilesystemImport(), Config{})
	require.NoError(t, err)
	require.True(t, r.SecurityAnalysis.WASIUsage.UsesWASI)
	require.Contains(t, r.SecurityAnalysis.WASIUsage.WASIFunctions, "fd_write")
	require.NotEmpty(t, r.SecurityAnalysis.Capabilities)
}

func TestAnalyze_MutableExportedGlobal_Vulnerability(t *testing.T) {
	r, err := Analyze(mutableExportedGlobal(), Config{})
	require.NoError(t, err)

	found := false
	for _, v := range r.SecurityAnalysis.Vulnerabilities {
		if v.Name == "mutable exported global" {
			found = true
		}
	}
	require.True(t, found)
}

// Invariant: Analyze is idempotent -- running it twice on the same bytes
// produces byte-identical JSON.
func TestAnalyze_Idempotent(t *testing.T) {
	data := twoFunctionsCall0Calls1()

	r1, err := Analyze(data, Config{})
	require.NoError(t, err)
	r2, err := Analyze(data, Config{})
	require.NoError(t, err)

	j1, err := json.Marshal(r1)
	require.NoError(t, err)
	j2, err := json.Marshal(r2)
	require.NoError(t, err)
	require.Equal(t, string(j1), string(j2))
}

// Invariant: the JSON round trip preserves every field.
func TestAnalyze_JSONRoundTrip(t *testing.T) {
	r, err := Analyze(wasiFilesystemImport(), Config{})
	require.NoError(t, err)

	j, err := json.Marshal(r)
	require.NoError(t, err)

	var roundTripped map[string]interface{}
	require.NoError(t, json.Unmarshal(j, &roundTripped))
	require.Contains(t, roundTripped, "module_info")
	require.Contains(t, roundTripped, "call_graph")
	require.Contains(t, roundTripped, "memory_analysis")
	require.Contains(t, roundTripped, "security_analysis")
	require.Contains(t, roundTripped, "performance_metrics")
	require.Contains(t, roundTripped, "compatibility")

	var back api.AnalysisReport
	require.NoError(t, json.Unmarshal(j, &back))
	require.Equal(t, *r, back)
}

func TestAnalyze_RejectsTruncatedInput(t *testing.T) {
	_, err := Analyze([]byte{0x00, 0x61, 0x73}, Config{})
	require.Error(t, err)
}

func TestAnalyze_HotspotCountHonored(t *testing.T) {
	r, err := Analyze(wasiFilesystemImport(), Config{HotspotCount: 1})
	require.NoError(t, err)
	require.LessOrEqual(t, len(r.MemoryAnalysis.Hotspots), 1)
}
