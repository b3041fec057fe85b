package binary

import (
	"fmt"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

func decodeImportSection(c *cursor) ([]*wasm.Import, error) {
	n, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("import count: %w", err)
	}
	imports := make([]*wasm.Import, 0, n)
	for i := uint32(0); i < n; i++ {
		imp, err := decodeImport(c)
		if err != nil {
			return nil, fmt.Errorf("import %d: %w", i, err)
		}
		imports = append(imports, imp)
	}
	return imports, nil
}

func decodeImport(c *cursor) (*wasm.Import, error) {
	mod, err := c.readString()
	if err != nil {
		return nil, fmt.Errorf("module name: %w", err)
	}
	name, err := c.readString()
	if err != nil {
		return nil, fmt.Errorf("field name: %w", err)
	}
	kindByte, err := c.readByte()
	if err != nil {
		return nil, fmt.Errorf("kind: %w", err)
	}
	imp := &wasm.Import{Module: mod, Name: name}
	switch wasm.ExternKind(kindByte) {
	case wasm.ExternKindFunc:
		imp.Kind = wasm.ImportKindFunc
		if imp.DescFunc, err = c.readU32(); err != nil {
			return nil, fmt.Errorf("func type index: %w", err)
		}
	case wasm.ExternKindTable:
		imp.Kind = wasm.ImportKindTable
		tt, err := decodeTableType(c)
		if err != nil {
			return nil, fmt.Errorf("table type: %w", err)
		}
		imp.DescTable = tt
	case wasm.ExternKindMemory:
		imp.Kind = wasm.ImportKindMemory
		mt, err := decodeMemoryType(c)
		if err != nil {
			return nil, fmt.Errorf("memory type: %w", err)
		}
		imp.DescMemory = mt
	case wasm.ExternKindGlobal:
		imp.Kind = wasm.ImportKindGlobal
		gt, err := decodeGlobalType(c)
		if err != nil {
			return nil, fmt.Errorf("global type: %w", err)
		}
		imp.DescGlobal = gt
	default:
		return nil, fmt.Errorf("unknown import kind byte 0x%02x", kindByte)
	}
	return imp, nil
}

func decodeTableType(c *cursor) (*wasm.TableType, error) {
	elem, err := c.readValueType()
	if err != nil {
		return nil, fmt.Errorf("element type: %w", err)
	}
	if elem != wasm.ValueTypeFuncref && elem != wasm.ValueTypeExternref {
		return nil, fmt.Errorf("invalid table element type 0x%02x", elem)
	}
	min, max, _, err := decodeLimits(c)
	if err != nil {
		return nil, err
	}
	return &wasm.TableType{ElemType: elem, Min: min, Max: max}, nil
}

func decodeMemoryType(c *cursor) (*wasm.MemoryType, error) {
	min, max, shared, err := decodeLimits(c)
	if err != nil {
		return nil, err
	}
	return &wasm.MemoryType{Min: min, Max: max, Shared: shared}, nil
}

func decodeGlobalType(c *cursor) (*wasm.GlobalType, error) {
	vt, err := c.readValueType()
	if err != nil {
		return nil, fmt.Errorf("value type: %w", err)
	}
	mutByte, err := c.readByte()
	if err != nil {
		return nil, fmt.Errorf("mutability: %w", err)
	}
	if mutByte > 1 {
		return nil, fmt.Errorf("invalid mutability byte 0x%02x", mutByte)
	}
	return &wasm.GlobalType{ValType: vt, Mutable: mutByte == 1}, nil
}
