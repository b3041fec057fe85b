package binary

import (
	"fmt"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

func decodeTypeSection(c *cursor) ([]*wasm.FuncType, error) {
	n, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("type count: %w", err)
	}
	types := make([]*wasm.FuncType, 0, n)
	for i := uint32(0); i < n; i++ {
		form, err := c.readByte()
		if err != nil {
			return nil, fmt.Errorf("type %d form: %w", i, err)
		}
		if form != 0x60 {
			return nil, fmt.Errorf("type %d: unexpected form byte 0x%02x, want 0x60 (func)", i, form)
		}
		ft := &wasm.FuncType{}
		if ft.Params, err = decodeValueTypeVec(c); err != nil {
			return nil, fmt.Errorf("type %d params: %w", i, err)
		}
		if ft.Results, err = decodeValueTypeVec(c); err != nil {
			return nil, fmt.Errorf("type %d results: %w", i, err)
		}
		types = append(types, ft)
	}
	return types, nil
}

func decodeValueTypeVec(c *cursor) ([]wasm.ValueType, error) {
	n, err := c.readU32()
	if err != nil {
		return nil, err
	}
	vs := make([]wasm.ValueType, n)
	for i := range vs {
		if vs[i], err = c.readValueType(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return vs, nil
}

func decodeLimits(c *cursor) (min uint32, max *uint32, shared bool, err error) {
	flags, err := c.readByte()
	if err != nil {
		return 0, nil, false, fmt.Errorf("limits flags: %w", err)
	}
	hasMax := flags&0x01 != 0
	shared = flags&0x02 != 0
	if min, err = c.readU32(); err != nil {
		return 0, nil, false, fmt.Errorf("limits min: %w", err)
	}
	if hasMax {
		m, err := c.readU32()
		if err != nil {
			return 0, nil, false, fmt.Errorf("limits max: %w", err)
		}
		max = &m
	}
	return min, max, shared, nil
}
