package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

func TestDecode_EmptyModule(t *testing.T) {
	m, err := Decode(emptyModule(), DefaultLimits())
	require.NoError(t, err)
	require.EqualValues(t, 1, m.Version)
	require.Empty(t, m.Types)
	require.Empty(t, m.Imports)
	require.Empty(t, m.Functions)
	require.Empty(t, m.Exports)
}

func TestDecode_SingleExportedNoop(t *testing.T) {
	m, err := Decode(singleExportedNoop(), DefaultLimits())
	require.NoError(t, err)
	require.Len(t, m.Functions, 1)
	require.Len(t, m.Exports, 1)
	require.Equal(t, "main", m.Exports[0].Name)
	require.Equal(t, uint32(0), m.Exports[0].Index)
}

func TestDecode_TwoFunctionsCall(t *testing.T) {
	m, err := Decode(twoFunctionsCall0Calls1(), DefaultLimits())
	require.NoError(t, err)
	require.Len(t, m.Functions, 2)
}

func TestDecode_WASIImport(t *testing.T) {
	m, err := Decode(wasiFilesystemImport(), DefaultLimits())
	require.NoError(t, err)
	require.Len(t, m.Imports, 1)
	require.Equal(t, "wasi_snapshot_preview1", m.Imports[0].Module)
	require.Equal(t, "fd_write", m.Imports[0].Name)
}

func TestDecode_DeadFunctionModule(t *testing.T) {
	m, err := Decode(deadFunction(), DefaultLimits())
	require.NoError(t, err)
	require.Len(t, m.Functions, 3)
}

func TestDecode_MutableExportedGlobal(t *testing.T) {
	m, err := Decode(mutableExportedGlobal(), DefaultLimits())
	require.NoError(t, err)
	require.Len(t, m.Globals, 1)
	require.True(t, m.Globals[0].Type.Mutable)
	require.Len(t, m.Exports, 1)
	require.Equal(t, wasm.ExternKindGlobal, m.Exports[0].Kind)
}

// TestDecode_AtomicOpcodeTolerated exercises the accepted-input rule that
// threads/atomics opcodes are recognized, not rejected: a function body
// using i32.atomic.load must decode successfully.
func TestDecode_AtomicOpcodeTolerated(t *testing.T) {
	b := header()
	b = append(b, section(sectionType, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(sectionFunction, []byte{0x01, 0x00})...)
	b = append(b, section(sectionCode, []byte{
		0x01,
		0x06, 0x00, 0xfe, 0x10, 0x02, 0x00, OpcodeEnd, // locals=0; i32.atomic.load align=2 offset=0; end
	})...)

	m, err := Decode(b, DefaultLimits())
	require.NoError(t, err)
	require.Len(t, m.Functions, 1)
}

func TestDecode_MissingMagic(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}, DefaultLimits())
	require.Error(t, err)
}

func TestDecode_TooShort(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x61, 0x73}, DefaultLimits())
	require.Error(t, err)
}

func TestDecode_OversizeModule(t *testing.T) {
	_, err := Decode(singleExportedNoop(), Limits{MaxModuleSize: 4, MaxSectionSize: 4})
	require.Error(t, err)
}

func TestDecode_TruncatedCodeSection(t *testing.T) {
	b := header()
	b = append(b, section(sectionType, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(sectionFunction, []byte{0x01, 0x00})...)
	// code section declares size 5 but only supplies 2 bytes of payload.
	b = append(b, byte(sectionCode), 0x05, 0x01, 0x02)
	_, err := Decode(b, DefaultLimits())
	require.Error(t, err)
}

// TestDecode_DataCountSectionBeforeCode exercises the positional section
// order: DataCount (id 12) sits between Element (id 9) and Code (id 10) in
// a well-formed module, not at its numeric id position.
func TestDecode_DataCountSectionBeforeCode(t *testing.T) {
	b := header()
	b = append(b, section(sectionElement, []byte{0x00})...)   // 0 element segments
	b = append(b, section(sectionDataCount, []byte{0x00})...) // data count 0
	b = append(b, section(sectionCode, []byte{0x00})...)      // 0 code entries

	m, err := Decode(b, DefaultLimits())
	require.NoError(t, err)
	require.Empty(t, m.Elements)
	require.Empty(t, m.Functions)
}

func TestDecode_Idempotent(t *testing.T) {
	data := twoFunctionsCall0Calls1()
	m1, err := Decode(data, DefaultLimits())
	require.NoError(t, err)
	m2, err := Decode(data, DefaultLimits())
	require.NoError(t, err)
	require.Equal(t, m1.Functions, m2.Functions)
	require.Equal(t, m1.Exports, m2.Exports)
}
