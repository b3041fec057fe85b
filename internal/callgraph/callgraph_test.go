package callgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
	"github.com/jeffasante/wasm-inspector/internal/wasm/binary"
)

func header() []byte { return []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00} }

func section(id byte, payload []byte) []byte {
	return append([]byte{id, byte(len(payload))}, payload...)
}

func decode(t *testing.T, data []byte) *wasm.Module {
	m, err := binary.Decode(data, binary.DefaultLimits())
	require.NoError(t, err)
	return m
}

func TestBuild_EmptyModule(t *testing.T) {
	g := Build(decode(t, header()))
	require.Empty(t, g.Nodes)
	require.Empty(t, g.Edges)
	require.Empty(t, g.EntryPoints)
	require.Empty(t, g.UnreachableFunctions)
}

func TestBuild_SingleExportedNoop(t *testing.T) {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(3, []byte{0x01, 0x00})...)
	b = append(b, section(7, []byte{0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00})...)
	b = append(b, section(10, []byte{0x01, 0x02, 0x00, 0x0b})...)

	g := Build(decode(t, b))
	require.Len(t, g.Nodes, 1)
	require.Empty(t, g.Edges)
	require.Equal(t, []uint32{0}, g.EntryPoints)
	require.Empty(t, g.UnreachableFunctions)
}

func TestBuild_TwoFunctionsDirectCall(t *testing.T) {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(3, []byte{0x02, 0x00, 0x00})...)
	b = append(b, section(7, []byte{0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00})...)
	b = append(b, section(10, []byte{
		0x02,
		0x04, 0x00, 0x10, 0x01, 0x0b, // call 1; end
		0x02, 0x00, 0x0b, // end
	})...)

	g := Build(decode(t, b))
	require.Len(t, g.Edges, 1)
	require.Equal(t, Edge{From: 0, To: 1, CallSiteCount: 1}, g.Edges[0])
	require.Empty(t, g.UnreachableFunctions)
}

func TestBuild_SelfCall(t *testing.T) {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(3, []byte{0x01, 0x00})...)
	b = append(b, section(7, []byte{0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00})...)
	b = append(b, section(10, []byte{
		0x01,
		0x04, 0x00, 0x10, 0x00, 0x0b, // call 0; end
	})...)

	g := Build(decode(t, b))
	require.Len(t, g.Edges, 1)
	require.Equal(t, uint32(0), g.Edges[0].From)
	require.Equal(t, uint32(0), g.Edges[0].To)
	require.GreaterOrEqual(t, g.Edges[0].CallSiteCount, 1)
}

func TestBuild_DeadFunction(t *testing.T) {
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

	g := Build(decode(t, b))
	require.Equal(t, []uint32{1, 2}, g.UnreachableFunctions)
}

func TestBuild_ImportsOnlyNoDefinedFunctions(t *testing.T) {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(2, []byte{
		0x01,
		0x03, 'e', 'n', 'v',
		0x02, 'f', '1',
		0x00, 0x00,
	})...)

	g := Build(decode(t, b))
	require.Len(t, g.Nodes, 1)
	require.Empty(t, g.Edges)
	require.Empty(t, g.UnreachableFunctions)
}
