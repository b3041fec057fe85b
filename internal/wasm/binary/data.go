package binary

import (
	"fmt"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

func decodeDataSection(c *cursor) ([]*wasm.Data, error) {
	n, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("data count: %w", err)
	}
	out := make([]*wasm.Data, 0, n)
	for i := uint32(0); i < n; i++ {
		d, err := decodeData(c)
		if err != nil {
			return nil, fmt.Errorf("data %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func decodeData(c *cursor) (*wasm.Data, error) {
	flags, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	d := &wasm.Data{}
	switch flags {
	case 0: // active, memory 0, expr, bytes
		if _, err := decodeConstExpr(c); err != nil {
			return nil, fmt.Errorf("offset expr: %w", err)
		}
		d.Mode = wasm.DataModeActive
	case 1: // passive, bytes
		d.Mode = wasm.DataModePassive
	case 2: // active, explicit memory, expr, bytes
		if d.MemIndex, err = c.readU32(); err != nil {
			return nil, fmt.Errorf("memory index: %w", err)
		}
		if _, err := decodeConstExpr(c); err != nil {
			return nil, fmt.Errorf("offset expr: %w", err)
		}
		d.Mode = wasm.DataModeActive
	default:
		return nil, fmt.Errorf("unknown data segment flags %d", flags)
	}
	n, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("payload length: %w", err)
	}
	if _, err := c.readBytes(int(n)); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	d.PayloadLen = int(n)
	return d, nil
}
