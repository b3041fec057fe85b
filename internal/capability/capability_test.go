package capability

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeffasante/wasm-inspector/internal/memprofile"
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

func TestBuild_WASIFilesystemImport(t *testing.T) {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(2, []byte{
		0x01,
		0x16, 'w', 'a', 's', 'i', '_', 's', 'n', 'a', 'p', 's', 'h', 'o', 't', '_', 'p', 'r', 'e', 'v', 'i', 'e', 'w', '1',
		0x08, 'f', 'd', '_', 'w', 'r', 'i', 't', 'e',
		0x00, 0x00,
	})...)

	m := decode(t, b)
	r := Build(m, memprofile.Build(m, 0))

	require.True(t, r.WASIUsage.UsesWASI)
	require.Contains(t, r.WASIUsage.WASIFunctions, "fd_write")
	require.Len(t, r.Capabilities, 1)
	require.Equal(t, "Filesystem I/O", r.Capabilities[0].Name)
	require.Equal(t, RiskHigh, r.Capabilities[0].Risk)
}

func TestBuild_NoWASI(t *testing.T) {
	m := decode(t, header())
	r := Build(m, memprofile.Build(m, 0))
	require.False(t, r.WASIUsage.UsesWASI)
	require.Empty(t, r.Capabilities)
}

func TestBuild_MutableExportedGlobalVulnerability(t *testing.T) {
	b := header()
	b = append(b, section(6, []byte{
		0x01,
		0x7f, 0x01,
		0x41, 0x00, 0x0b,
	})...)
	b = append(b, section(7, []byte{
		0x01, 0x07, 'c', 'o', 'u', 'n', 't', 'e', 'r', 0x03, 0x00,
	})...)

	m := decode(t, b)
	r := Build(m, memprofile.Build(m, 0))

	found := false
	for _, v := range r.Vulnerabilities {
		if v.Name == "mutable exported global" {
			found = true
			require.Equal(t, RiskLow, v.Risk)
		}
	}
	require.True(t, found)
}

// TestBuild_MutableExportedGlobalWithImportedGlobal exercises the combined
// global index space: an imported global occupies index 0, so the exported
// mutable global at combined index 1 is m.Globals[0], not m.Globals[1].
func TestBuild_MutableExportedGlobalWithImportedGlobal(t *testing.T) {
	b := header()
	b = append(b, section(2, []byte{
		0x01,
		0x03, 'e', 'n', 'v',
		0x01, 'g',
		0x03, // kind global
		0x7f, 0x00, // i32, immutable
	})...)
	b = append(b, section(6, []byte{
		0x01,
		0x7f, 0x01, // i32, mutable
		0x41, 0x00, 0x0b,
	})...)
	b = append(b, section(7, []byte{
		0x01, 0x07, 'c', 'o', 'u', 'n', 't', 'e', 'r', 0x03, 0x01, // export global at combined index 1
	})...)

	m := decode(t, b)
	r := Build(m, memprofile.Build(m, 0))

	found := false
	for _, v := range r.Vulnerabilities {
		if v.Name == "mutable exported global" {
			found = true
		}
	}
	require.True(t, found)
}

func TestBuild_UnboundedGrowthVulnerability(t *testing.T) {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(3, []byte{0x01, 0x00})...)
	b = append(b, section(5, []byte{0x01, 0x00, 0x01})...)
	b = append(b, section(10, []byte{
		0x01,
		0x06, 0x00, 0x41, 0x01, 0x40, 0x00, 0x0b,
	})...)

	m := decode(t, b)
	r := Build(m, memprofile.Build(m, 0))

	found := false
	for _, v := range r.Vulnerabilities {
		if v.Name == "unbounded memory growth" {
			found = true
		}
	}
	require.True(t, found)
}
