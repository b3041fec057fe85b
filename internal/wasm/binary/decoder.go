package binary

import (
	"fmt"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

// Limits bounds resource use while decoding an adversarial input. Zero
// values mean "use DefaultLimits".
type Limits struct {
	// MaxModuleSize is the largest input accepted, in bytes.
	MaxModuleSize int
	// MaxSectionSize is the largest single section payload accepted, in
	// bytes.
	MaxSectionSize int
}

// DefaultLimits matches spec: 64 MiB module cap, and the same figure for
// any one section (a section can never legitimately exceed its module).
func DefaultLimits() Limits {
	return Limits{MaxModuleSize: 64 << 20, MaxSectionSize: 64 << 20}
}

var wasmMagic = [4]byte{0x00, 0x61, 0x73, 0x6d}

// Decode parses data as a WebAssembly binary module. It either returns a
// complete *wasm.Module or an error -- never a partial model. The returned
// Module's function bodies are subslices of data; the caller must keep
// data alive for as long as the Module is in use.
func Decode(data []byte, limits Limits) (*wasm.Module, error) {
	defaults := DefaultLimits()
	if limits.MaxModuleSize <= 0 {
		limits.MaxModuleSize = defaults.MaxModuleSize
	}
	if limits.MaxSectionSize <= 0 {
		limits.MaxSectionSize = defaults.MaxSectionSize
	}
	if len(data) > limits.MaxModuleSize {
		return nil, &wasm.OversizeError{Limit: limits.MaxModuleSize, Actual: len(data)}
	}
	if len(data) < 8 {
		return nil, &wasm.DecodeError{Offset: 0, Message: "input shorter than the 8-byte module header"}
	}
	var magic [4]byte
	copy(magic[:], data[0:4])
	if magic != wasmMagic {
		return nil, &wasm.DecodeError{Offset: 0, Message: "missing WASM magic number"}
	}

	c := newCursor(data[8:])
	version := uint32(data[4]) | uint32(data[5])<<8 | uint32(data[6])<<16 | uint32(data[7])<<24

	m := &wasm.Module{Version: version}
	var typeIndices []uint32
	var codeSectionOffset = -1
	var codeSectionBody []byte

	prevPosition := -1
	sawNonCustom := false

	for c.len() > 0 {
		idOffset := 8 + c.offset()
		idByte, err := c.readByte()
		if err != nil {
			return nil, &wasm.DecodeError{Offset: idOffset, Message: "reading section id: " + err.Error()}
		}
		id := sectionID(idByte)

		sizeOffset := 8 + c.offset()
		size, err := c.readU32()
		if err != nil {
			return nil, &wasm.DecodeError{Offset: sizeOffset, Message: "reading section size: " + err.Error()}
		}
		if int(size) > limits.MaxSectionSize {
			return nil, &wasm.OversizeError{Limit: limits.MaxSectionSize, Actual: int(size), Section: id.String()}
		}

		payloadOffset := 8 + c.offset()
		payload, err := c.readBytes(int(size))
		if err != nil {
			return nil, &wasm.DecodeError{Offset: payloadOffset, Message: fmt.Sprintf("truncated %s section: %s", id, err)}
		}

		if id != sectionCustom {
			position := sectionPosition(id)
			if position == -1 {
				position = len(sectionOrder) // unknown sections sort after everything known
			}
			unknownAfterUnknown := position == len(sectionOrder) && prevPosition == len(sectionOrder)
			if sawNonCustom && position <= prevPosition && !unknownAfterUnknown {
				return nil, &wasm.DecodeError{Offset: idOffset, Message: fmt.Sprintf("section %s out of order", id)}
			}
			prevPosition = position
			sawNonCustom = true
		}

		pc := newCursor(payload)
		switch id {
		case sectionCustom:
			name, err := pc.readString()
			if err != nil {
				return nil, &wasm.DecodeError{Offset: payloadOffset, Message: "custom section name: " + err.Error()}
			}
			rest := payload[pc.offset():]
			cs := &wasm.CustomSection{Name: name, Size: len(payload), Payload: rest}
			m.CustomSections = append(m.CustomSections, cs)
			if name == "name" {
				if fnNames, err := decodeNameSection(rest); err == nil {
					m.FunctionNames = fnNames
				}
			}
		case sectionType:
			if m.Types, err = decodeTypeSection(pc); err != nil {
				return nil, &wasm.DecodeError{Offset: payloadOffset, Message: "type section: " + err.Error()}
			}
		case sectionImport:
			if m.Imports, err = decodeImportSection(pc); err != nil {
				return nil, &wasm.DecodeError{Offset: payloadOffset, Message: "import section: " + err.Error()}
			}
		case sectionFunction:
			if typeIndices, err = decodeU32Vec(pc); err != nil {
				return nil, &wasm.DecodeError{Offset: payloadOffset, Message: "function section: " + err.Error()}
			}
		case sectionTable:
			if m.Tables, err = decodeTableSection(pc); err != nil {
				return nil, &wasm.DecodeError{Offset: payloadOffset, Message: "table section: " + err.Error()}
			}
		case sectionMemory:
			if m.Memories, err = decodeMemorySection(pc); err != nil {
				return nil, &wasm.DecodeError{Offset: payloadOffset, Message: "memory section: " + err.Error()}
			}
		case sectionGlobal:
			if m.Globals, err = decodeGlobalSection(pc); err != nil {
				return nil, &wasm.DecodeError{Offset: payloadOffset, Message: "global section: " + err.Error()}
			}
		case sectionExport:
			if m.Exports, err = decodeExportSection(pc); err != nil {
				return nil, &wasm.DecodeError{Offset: payloadOffset, Message: "export section: " + err.Error()}
			}
		case sectionStart:
			idx, err := pc.readU32()
			if err != nil {
				return nil, &wasm.DecodeError{Offset: payloadOffset, Message: "start section: " + err.Error()}
			}
			m.StartFunction = &idx
		case sectionElement:
			if m.Elements, err = decodeElementSection(pc); err != nil {
				return nil, &wasm.DecodeError{Offset: payloadOffset, Message: "element section: " + err.Error()}
			}
		case sectionCode:
			codeSectionOffset = payloadOffset
			codeSectionBody = payload
		case sectionData:
			if m.Data, err = decodeDataSection(pc); err != nil {
				return nil, &wasm.DecodeError{Offset: payloadOffset, Message: "data section: " + err.Error()}
			}
		case sectionDataCount:
			// Only used by validators to pre-check memory.init/data.drop
			// indices against the data section before it is read; this
			// analyzer decodes the data section itself regardless, so the
			// count is not otherwise needed.
		default:
			// Unknown non-custom section id: treated the same as an
			// unrecognized custom section rather than a hard failure,
			// since the binary format reserves room for future sections.
			m.CustomSections = append(m.CustomSections, &wasm.CustomSection{Name: fmt.Sprintf("section-%d", idByte), Size: len(payload)})
		}
	}

	if codeSectionBody != nil {
		pc := newCursor(codeSectionBody)
		fns, err := decodeCodeSection(pc, typeIndices, codeSectionOffset)
		if err != nil {
			return nil, &wasm.DecodeError{Offset: codeSectionOffset, Message: "code section: " + err.Error()}
		}
		m.Functions = fns
	} else if len(typeIndices) > 0 {
		return nil, &wasm.DecodeError{Offset: 8, Message: "function section declared functions but no code section is present"}
	}

	if err := validate(m); err != nil {
		return nil, err
	}

	m.FunctionNames = synthesizeNames(m)
	return m, nil
}

func validate(m *wasm.Module) error {
	for i, fn := range m.Functions {
		if int(fn.TypeIndex) >= len(m.Types) {
			return &wasm.DecodeError{Offset: fn.BodyOffset, Message: fmt.Sprintf("function %d: type index %d out of range", i, fn.TypeIndex)}
		}
	}
	for i, imp := range m.Imports {
		if imp.Kind == wasm.ImportKindFunc && int(imp.DescFunc) >= len(m.Types) {
			return &wasm.DecodeError{Offset: 0, Message: fmt.Sprintf("import %d: type index %d out of range", i, imp.DescFunc)}
		}
	}
	total := m.FunctionCount()
	for i, exp := range m.Exports {
		var limit int
		switch exp.Kind {
		case wasm.ExternKindFunc:
			limit = total
		case wasm.ExternKindTable:
			limit = len(m.Tables) + countImportKind(m, wasm.ImportKindTable)
		case wasm.ExternKindMemory:
			limit = len(m.Memories) + countImportKind(m, wasm.ImportKindMemory)
		case wasm.ExternKindGlobal:
			limit = len(m.Globals) + countImportKind(m, wasm.ImportKindGlobal)
		}
		if int(exp.Index) >= limit {
			return &wasm.DecodeError{Offset: 0, Message: fmt.Sprintf("export %d (%s): index %d out of range", i, exp.Name, exp.Index)}
		}
	}
	if m.StartFunction != nil && int(*m.StartFunction) >= total {
		return &wasm.DecodeError{Offset: 0, Message: fmt.Sprintf("start function index %d out of range", *m.StartFunction)}
	}
	return nil
}

func countImportKind(m *wasm.Module, k wasm.ImportKind) int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Kind == k {
			n++
		}
	}
	return n
}

// synthesizeNames fills in FunctionNames for every function in the
// combined index space that the "name" custom section (if any) did not
// already cover: "func_<index>" for defined functions, "<module>::<name>"
// for imports, per spec's name recovery rule.
func synthesizeNames(m *wasm.Module) map[uint32]string {
	names := m.FunctionNames
	if names == nil {
		names = map[uint32]string{}
	}
	idx := uint32(0)
	for _, imp := range m.Imports {
		if imp.Kind != wasm.ImportKindFunc {
			continue
		}
		if _, ok := names[idx]; !ok {
			names[idx] = fmt.Sprintf("%s::%s", imp.Module, imp.Name)
		}
		idx++
	}
	for range m.Functions {
		if _, ok := names[idx]; !ok {
			names[idx] = fmt.Sprintf("func_%d", idx)
		}
		idx++
	}
	return names
}
