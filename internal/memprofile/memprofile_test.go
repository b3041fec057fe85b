package memprofile

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
	r := Build(decode(t, header()), 0)
	require.Zero(t, r.Operations.Load)
	require.Empty(t, r.Hotspots)
	require.Empty(t, r.SafetyNotes)
}

// memoryGrowNoMaxModule declares a memory with no maximum and a function
// whose body grows it once, to exercise the unbounded-growth safety note.
func memoryGrowNoMaxModule() []byte {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(3, []byte{0x01, 0x00})...)
	b = append(b, section(5, []byte{0x01, 0x00, 0x01})...) // 1 memory, flags=0 (no max), min=1
	b = append(b, section(10, []byte{
		0x01,
		0x06, 0x00, 0x41, 0x01, 0x40, 0x00, 0x0b, // i32.const 1; memory.grow 0; end
	})...)
	return b
}

func TestBuild_UnboundedMemoryGrowth(t *testing.T) {
	m := decode(t, memoryGrowNoMaxModule())
	r := Build(m, DefaultHotspotCount)
	require.Equal(t, 1, r.Operations.Grow)
	require.NotEmpty(t, r.SafetyNotes)
}

func TestBuild_AllocationPatternFromExportName(t *testing.T) {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(3, []byte{0x01, 0x00})...)
	b = append(b, section(7, []byte{0x01, 0x09, 'm', 'y', '_', 'm', 'a', 'l', 'l', 'o', 'c', 0x00, 0x00})...)
	b = append(b, section(10, []byte{0x01, 0x02, 0x00, 0x0b})...)

	m := decode(t, b)
	r := Build(m, DefaultHotspotCount)
	require.NotEmpty(t, r.Patterns)
}

func TestBuild_AtomicLoadCounted(t *testing.T) {
	b := header()
	b = append(b, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(3, []byte{0x01, 0x00})...)
	b = append(b, section(10, []byte{
		0x01,
		0x06, 0x00, 0xfe, 0x10, 0x02, 0x00, 0x0b, // locals=0; i32.atomic.load align=2 offset=0; end
	})...)

	m := decode(t, b)
	r := Build(m, DefaultHotspotCount)
	require.Equal(t, 1, r.Operations.Load)
}

func TestBuild_HotspotCountHonored(t *testing.T) {
	m := decode(t, memoryGrowNoMaxModule())
	r := Build(m, 0) // falls back to DefaultHotspotCount
	require.LessOrEqual(t, len(r.Hotspots), DefaultHotspotCount)
}
