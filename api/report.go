// Package api holds the serialization-stable report types shared by the
// core analyzer and its drivers (CLI, browser host). Everything here
// round-trips through JSON with the canonical field names spec.md §6
// fixes; the core's internal packages compute these values and the
// aggregator in internal/analyzer assembles them into an AnalysisReport.
package api

// ValueType is the text-format name of a WebAssembly value type.
type ValueType string

const (
	ValueTypeI32       ValueType = "i32"
	ValueTypeI64       ValueType = "i64"
	ValueTypeF32       ValueType = "f32"
	ValueTypeF64       ValueType = "f64"
	ValueTypeV128      ValueType = "v128"
	ValueTypeFuncref   ValueType = "funcref"
	ValueTypeExternref ValueType = "externref"
)

// ExternKind names the kind of an import or export entry.
type ExternKind string

const (
	ExternKindFunc   ExternKind = "Function"
	ExternKindTable  ExternKind = "Table"
	ExternKindMemory ExternKind = "Memory"
	ExternKindGlobal ExternKind = "Global"
)

// RiskLevel is the severity of a capability or vulnerability finding.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValueType `json:"params"`
	Results []ValueType `json:"results"`
}

// FunctionImportDesc is the payload of an import.kind == Function tagged
// variant.
type FunctionImportDesc struct {
	TypeIndex uint32 `json:"type_index"`
}

// TableImportDesc is the payload of an import.kind == Table tagged
// variant.
type TableImportDesc struct {
	ElementKind string  `json:"element_kind"`
	Initial     uint32  `json:"initial"`
	Maximum     *uint32 `json:"maximum,omitempty"`
}

// MemoryImportDesc is the payload of an import.kind == Memory tagged
// variant.
type MemoryImportDesc struct {
	InitialPages uint32  `json:"initial_pages"`
	MaximumPages *uint32 `json:"maximum_pages,omitempty"`
	Shared       bool    `json:"shared"`
}

// GlobalImportDesc is the payload of an import.kind == Global tagged
// variant.
type GlobalImportDesc struct {
	ValueKind ValueType `json:"value_kind"`
	Mutable   bool      `json:"mutable"`
}

// ImportKind is the tagged-variant envelope for an Import's kind field:
// exactly one of Function/Table/Memory/Global is non-nil, encoded by
// Go's encoding/json as a single-key object matching spec.md §6's
// `{"Function":{"type_index":7}}` shape.
type ImportKind struct {
	Function *FunctionImportDesc `json:"Function,omitempty"`
	Table    *TableImportDesc    `json:"Table,omitempty"`
	Memory   *MemoryImportDesc   `json:"Memory,omitempty"`
	Global   *GlobalImportDesc   `json:"Global,omitempty"`
}

// Import is one entry of module_info.imports.
type Import struct {
	Module string     `json:"module"`
	Name   string     `json:"name"`
	Kind   ImportKind `json:"kind"`
}

// LocalBlock is one run-length-encoded local-variable declaration.
type LocalBlock struct {
	Count uint32    `json:"count"`
	Type  ValueType `json:"type"`
}

// DefinedFunction is one entry of module_info.functions.
type DefinedFunction struct {
	TypeIndex uint32       `json:"type_index"`
	Locals    []LocalBlock `json:"locals"`
	BodySize  int          `json:"body_size"`
}

// TableType is one entry of module_info.tables.
type TableType struct {
	ElementKind string  `json:"element_kind"`
	Initial     uint32  `json:"initial"`
	Maximum     *uint32 `json:"maximum,omitempty"`
}

// MemoryType is one entry of module_info.memories.
type MemoryType struct {
	InitialPages uint32  `json:"initial_pages"`
	MaximumPages *uint32 `json:"maximum_pages,omitempty"`
	Shared       bool    `json:"shared"`
}

// GlobalType is one entry of module_info.globals.
type GlobalType struct {
	ValueKind ValueType `json:"value_kind"`
	Mutable   bool      `json:"mutable"`
}

// Export is one entry of module_info.exports.
type Export struct {
	Name  string     `json:"name"`
	Kind  ExternKind `json:"kind"`
	Index uint32     `json:"index"`
}

// ElementSegment is one entry of module_info.element_segments.
type ElementSegment struct {
	Mode        string `json:"mode"`
	TableIndex  *uint32 `json:"table_index,omitempty"`
	PayloadSize int    `json:"payload_size"`
}

// DataSegment is one entry of module_info.data_segments.
type DataSegment struct {
	Mode        string  `json:"mode"`
	MemoryIndex *uint32 `json:"memory_index,omitempty"`
	PayloadSize int     `json:"payload_size"`
}

// CustomSection is one entry of module_info.custom_sections.
type CustomSection struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// ModuleInfo is the module_info top-level key.
type ModuleInfo struct {
	Version         uint32            `json:"version"`
	Types           []FuncType        `json:"types"`
	Imports         []Import          `json:"imports"`
	Functions       []DefinedFunction `json:"functions"`
	Tables          []TableType       `json:"tables"`
	Memories        []MemoryType      `json:"memories"`
	Globals         []GlobalType      `json:"globals"`
	Exports         []Export          `json:"exports"`
	StartFunction   *uint32           `json:"start_function,omitempty"`
	ElementSegments []ElementSegment  `json:"element_segments"`
	DataSegments    []DataSegment     `json:"data_segments"`
	CustomSections  []CustomSection   `json:"custom_sections"`
	FunctionNames   map[string]string `json:"function_names"`
}

// CallGraphNode is one entry of call_graph.nodes.
type CallGraphNode struct {
	FunctionIndex uint32 `json:"function_index"`
	Name          string `json:"name"`
	IsImported    bool   `json:"is_imported"`
	IsExported    bool   `json:"is_exported"`
	CallCount     int    `json:"call_count"`
}

// CallGraphEdge is one entry of call_graph.edges.
type CallGraphEdge struct {
	From       uint32 `json:"from"`
	To         uint32 `json:"to"`
	CallSites  int    `json:"call_sites"`
}

// CallGraph is the call_graph top-level key.
type CallGraph struct {
	Nodes                []CallGraphNode `json:"nodes"`
	Edges                []CallGraphEdge `json:"edges"`
	EntryPoints          []uint32        `json:"entry_points"`
	UnreachableFunctions []uint32        `json:"unreachable_functions"`
	IndirectCallSites    int             `json:"indirect_call_sites"`
}

// MemoryLayout is memory_analysis.memory_layout.
type MemoryLayout struct {
	TotalInitialSize int     `json:"total_initial_size"`
	InitialPages     uint32  `json:"initial_pages"`
	MaximumPages     *uint32 `json:"maximum_pages,omitempty"`
	Shared           bool    `json:"shared"`
	MemoryCount      int     `json:"memory_count"`
	DataSegmentSize  int     `json:"data_segment_size"`
}

// MemoryOperations is memory_analysis.operations.
type MemoryOperations struct {
	Load  int `json:"load"`
	Store int `json:"store"`
	Grow  int `json:"grow"`
	Size  int `json:"size"`
	Copy  int `json:"copy"`
	Fill  int `json:"fill"`
	Init  int `json:"init"`
}

// MemoryHotspot is one entry of memory_analysis.hotspots.
type MemoryHotspot struct {
	FunctionIndex uint32 `json:"function_index"`
	Name          string `json:"name"`
	OpCount       int    `json:"op_count"`
}

// MemoryPattern is one entry of memory_analysis.patterns.
type MemoryPattern struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Evidence    string `json:"evidence"`
}

// MemoryAnalysis is the memory_analysis top-level key.
type MemoryAnalysis struct {
	MemoryLayout MemoryLayout     `json:"memory_layout"`
	Operations   MemoryOperations `json:"operations"`
	Hotspots     []MemoryHotspot  `json:"hotspots"`
	Patterns     []MemoryPattern  `json:"patterns"`
	SafetyNotes  []string         `json:"safety_notes"`
}

// Capability is one entry of security_analysis.capabilities.
type Capability struct {
	Name        string    `json:"name"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Description string    `json:"description"`
	Evidence    []string  `json:"evidence"`
}

// Vulnerability is one entry of security_analysis.vulnerabilities.
type Vulnerability struct {
	Name        string    `json:"name"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Description string    `json:"description"`
}

// WASIUsage is security_analysis.wasi_usage.
type WASIUsage struct {
	UsesWASI      bool     `json:"uses_wasi"`
	WASIVersion   string   `json:"wasi_version,omitempty"`
	WASIFunctions []string `json:"wasi_functions"`
}

// Sandbox is security_analysis.sandbox.
type Sandbox struct {
	Browser            bool `json:"browser"`
	Node               bool `json:"node"`
	CloudflareWorkers  bool `json:"cloudflare_workers"`
	ServerSideWasmtime bool `json:"server_side_wasmtime"`
}

// SecurityAnalysis is the security_analysis top-level key.
type SecurityAnalysis struct {
	Capabilities    []Capability    `json:"capabilities"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	WASIUsage       WASIUsage       `json:"wasi_usage"`
	Sandbox         Sandbox         `json:"sandbox"`
}

// PerformanceMetrics is the performance_metrics top-level key.
type PerformanceMetrics struct {
	ModuleSize              int      `json:"module_size"`
	CodeSize                int      `json:"code_size"`
	FunctionCount           int      `json:"function_count"`
	AverageFunctionSize     float64  `json:"average_function_size"`
	ComplexityScore         float64  `json:"complexity_score"`
	ColdStartEstimateMS     float64  `json:"cold_start_estimate_ms"`
	OptimizationSuggestions []string `json:"optimization_suggestions"`
}

// RuntimeVerdict is one per-runtime entry of the compatibility key.
type RuntimeVerdict struct {
	Compatible       bool     `json:"compatible"`
	Issues           []string `json:"issues"`
	RequiredFeatures []string `json:"required_features"`
}

// Compatibility is the compatibility top-level key.
type Compatibility struct {
	Wasmtime           RuntimeVerdict `json:"wasmtime"`
	Wasmer             RuntimeVerdict `json:"wasmer"`
	Browser            RuntimeVerdict `json:"browser"`
	NodeJS             RuntimeVerdict `json:"node_js"`
	Deno               RuntimeVerdict `json:"deno"`
	CloudflareWorkers  RuntimeVerdict `json:"cloudflare_workers"`
	DetectedLanguage   string         `json:"detected_language,omitempty"`
}

// AnalysisReport is the root of the canonical JSON shape spec.md §6
// fixes. It is the sole return value of Analyze on success.
type AnalysisReport struct {
	ModuleInfo          ModuleInfo         `json:"module_info"`
	CallGraph           CallGraph          `json:"call_graph"`
	MemoryAnalysis      MemoryAnalysis     `json:"memory_analysis"`
	SecurityAnalysis    SecurityAnalysis   `json:"security_analysis"`
	PerformanceMetrics  PerformanceMetrics `json:"performance_metrics"`
	Compatibility       Compatibility      `json:"compatibility"`
}
