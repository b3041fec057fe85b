package binary

// sectionID identifies a top-level WASM section, per the binary format's
// fixed encoding and declaration order.
type sectionID byte

const (
	sectionCustom    sectionID = 0
	sectionType      sectionID = 1
	sectionImport    sectionID = 2
	sectionFunction  sectionID = 3
	sectionTable     sectionID = 4
	sectionMemory    sectionID = 5
	sectionGlobal    sectionID = 6
	sectionExport    sectionID = 7
	sectionStart     sectionID = 8
	sectionElement   sectionID = 9
	sectionCode      sectionID = 10
	sectionData      sectionID = 11
	sectionDataCount sectionID = 12
)

// sectionOrder is the canonical positional sequence of non-custom sections
// in a well-formed module. DataCount sits between Element and Code, not at
// its numeric position 12, so ordering must be checked against this slice
// rather than against the raw id values.
var sectionOrder = []sectionID{
	sectionType, sectionImport, sectionFunction, sectionTable, sectionMemory,
	sectionGlobal, sectionExport, sectionStart, sectionElement, sectionDataCount,
	sectionCode, sectionData,
}

// sectionPosition returns s's index into sectionOrder, or -1 for an unknown
// section id (custom sections are never passed here).
func sectionPosition(s sectionID) int {
	for i, id := range sectionOrder {
		if id == s {
			return i
		}
	}
	return -1
}

func (s sectionID) String() string {
	names := map[sectionID]string{
		sectionCustom: "custom", sectionType: "type", sectionImport: "import",
		sectionFunction: "function", sectionTable: "table", sectionMemory: "memory",
		sectionGlobal: "global", sectionExport: "export", sectionStart: "start",
		sectionElement: "element", sectionCode: "code", sectionData: "data",
		sectionDataCount: "data count",
	}
	if n, ok := names[s]; ok {
		return n
	}
	return "unknown"
}
