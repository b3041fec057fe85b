// Package wasm holds the decoded, read-only in-memory representation of a
// WebAssembly binary module. Nothing in this package executes WebAssembly;
// it only materializes the structure that the analysis passes in sibling
// packages read.
package wasm

import "fmt"

// ValueType is a WebAssembly value type, encoded as its single-byte
// binary-format tag.
type ValueType = byte

const (
	ValueTypeI32       ValueType = 0x7f
	ValueTypeI64       ValueType = 0x7e
	ValueTypeF32       ValueType = 0x7d
	ValueTypeF64       ValueType = 0x7c
	ValueTypeV128      ValueType = 0x7b
	ValueTypeFuncref   ValueType = 0x70
	ValueTypeExternref ValueType = 0x6f
)

// ValueTypeName returns the WebAssembly text-format name of t, or "unknown"
// if t is not a value type this decoder recognizes.
func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncref:
		return "funcref"
	case ValueTypeExternref:
		return "externref"
	default:
		return "unknown"
	}
}

// ExternKind classifies an Import or Export.
type ExternKind byte

const (
	ExternKindFunc ExternKind = iota
	ExternKindTable
	ExternKindMemory
	ExternKindGlobal
)

func (k ExternKind) String() string {
	switch k {
	case ExternKindFunc:
		return "func"
	case ExternKindTable:
		return "table"
	case ExternKindMemory:
		return "memory"
	case ExternKindGlobal:
		return "global"
	default:
		return fmt.Sprintf("extern-kind(%d)", byte(k))
	}
}

// FuncType is a function signature: an ordered list of parameter value
// types and an ordered list of result value types.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

func (t *FuncType) String() string {
	return fmt.Sprintf("(%s) -> (%s)", valueTypesString(t.Params), valueTypesString(t.Results))
}

func valueTypesString(vs []ValueType) string {
	s := ""
	for i, v := range vs {
		if i > 0 {
			s += ", "
		}
		s += ValueTypeName(v)
	}
	return s
}

// TableType describes a table import or declaration.
type TableType struct {
	ElemType ValueType // ValueTypeFuncref or ValueTypeExternref
	Min      uint32
	Max      *uint32
}

// MemoryType describes a memory import or declaration.
type MemoryType struct {
	Min    uint32
	Max    *uint32
	Shared bool
}

// GlobalType describes a global import or declaration.
type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// ImportKind tags the payload carried by an Import.
type ImportKind byte

const (
	ImportKindFunc ImportKind = iota
	ImportKindTable
	ImportKindMemory
	ImportKindGlobal
)

// Import is one entry of the import section. Exactly the field matching
// Kind is populated.
type Import struct {
	Module string
	Name   string
	Kind   ImportKind

	// DescFunc is the type index, valid when Kind == ImportKindFunc.
	DescFunc uint32
	// DescTable is valid when Kind == ImportKindTable.
	DescTable *TableType
	// DescMemory is valid when Kind == ImportKindMemory.
	DescMemory *MemoryType
	// DescGlobal is valid when Kind == ImportKindGlobal.
	DescGlobal *GlobalType
}

func (i *Import) String() string {
	return fmt.Sprintf("%s::%s (%s)", i.Module, i.Name, ExternKind(i.Kind))
}

// Function is a locally defined function: its signature is
// Module.Types[TypeIndex]. Body is a sub-slice of the byte buffer the
// module was decoded from and must not outlive it.
type Function struct {
	TypeIndex uint32
	// Locals is the declared local-variable blocks, (count, type) pairs in
	// declaration order, not counting parameters.
	Locals []LocalBlock
	// Body is the raw instruction stream between the end of the locals
	// declarations and the function's own terminating OpcodeEnd, inclusive
	// of that trailing OpcodeEnd.
	Body []byte
	// BodyOffset is the offset of Body within the module's original byte
	// buffer, used to report decode errors with a meaningful position.
	BodyOffset int
}

// LocalBlock is one run-length-encoded local-variable declaration.
type LocalBlock struct {
	Count uint32
	Type  ValueType
}

// LocalCount returns the number of local variable slots this function
// declares (not counting parameters).
func (f *Function) LocalCount() uint32 {
	var n uint32
	for _, b := range f.Locals {
		n += b.Count
	}
	return n
}

// Export is one entry of the export section.
type Export struct {
	Name  string
	Kind  ExternKind
	Index uint32
}

// ElementMode classifies an element segment.
type ElementMode byte

const (
	ElementModeActive ElementMode = iota
	ElementModePassive
	ElementModeDeclared
)

// Element is one entry of the element section.
type Element struct {
	Mode        ElementMode
	TableIndex  uint32 // valid when Mode == ElementModeActive
	Init        []uint32
	PayloadSize int
}

// DataMode classifies a data segment.
type DataMode byte

const (
	DataModeActive DataMode = iota
	DataModePassive
)

// Data is one entry of the data section.
type Data struct {
	Mode       DataMode
	MemIndex   uint32 // valid when Mode == DataModeActive
	PayloadLen int
}

// CustomSection is a named, opaque section the decoder does not interpret,
// except for the distinguished "name" section, whose function-names
// subsection populates Module.FunctionNames.
type CustomSection struct {
	Name    string
	Size    int
	Payload []byte
}

// Module is the root of the decoded model. All slices are read-only once
// Decode returns; nothing in this package mutates a Module after
// construction.
type Module struct {
	Version uint32

	Types     []*FuncType
	Imports   []*Import
	Functions []*Function // defined functions only, imports excluded
	Tables    []*TableType
	Memories  []*MemoryType
	Globals   []*GlobalDecl
	Exports   []*Export

	StartFunction *uint32

	Elements []*Element
	Data     []*Data

	CustomSections []*CustomSection

	// FunctionNames maps a combined function index (imports first) to a
	// display name, populated from the "name" custom section when present
	// and synthesized otherwise. Always fully populated after Decode.
	FunctionNames map[uint32]string
}

// GlobalDecl is a locally defined global: its type plus a constant
// initializer expression, which this analyzer does not evaluate.
type GlobalDecl struct {
	Type GlobalType
	Init []byte
}

// ImportedFunctionCount returns the number of imports of kind
// ImportKindFunc, i.e. the size of the imported prefix of the combined
// function index space.
func (m *Module) ImportedFunctionCount() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Kind == ImportKindFunc {
			n++
		}
	}
	return n
}

// FunctionCount returns the size of the combined function index space:
// imported functions followed by defined functions.
func (m *Module) FunctionCount() int {
	return m.ImportedFunctionCount() + len(m.Functions)
}

// ImportedGlobalCount returns the number of imports of kind
// ImportKindGlobal, i.e. the size of the imported prefix of the combined
// global index space.
func (m *Module) ImportedGlobalCount() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Kind == ImportKindGlobal {
			n++
		}
	}
	return n
}

// IsImportedFunction reports whether idx falls in the imported prefix of
// the combined function index space.
func (m *Module) IsImportedFunction(idx uint32) bool {
	return int(idx) < m.ImportedFunctionCount()
}

// FunctionTypeIndex returns the type index of the function at the given
// combined index, whether imported or defined.
func (m *Module) FunctionTypeIndex(idx uint32) (uint32, bool) {
	imported := m.ImportedFunctionCount()
	if int(idx) < imported {
		i := 0
		for _, imp := range m.Imports {
			if imp.Kind != ImportKindFunc {
				continue
			}
			if i == int(idx) {
				return imp.DescFunc, true
			}
			i++
		}
		return 0, false
	}
	defIdx := int(idx) - imported
	if defIdx < 0 || defIdx >= len(m.Functions) {
		return 0, false
	}
	return m.Functions[defIdx].TypeIndex, true
}

// FuncTypeOf resolves the signature of the function at combined index idx.
func (m *Module) FuncTypeOf(idx uint32) (*FuncType, bool) {
	ti, ok := m.FunctionTypeIndex(idx)
	if !ok || int(ti) >= len(m.Types) {
		return nil, false
	}
	return m.Types[ti], true
}
