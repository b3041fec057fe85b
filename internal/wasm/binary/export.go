package binary

import (
	"fmt"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

func decodeExportSection(c *cursor) ([]*wasm.Export, error) {
	n, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("export count: %w", err)
	}
	out := make([]*wasm.Export, 0, n)
	for i := uint32(0); i < n; i++ {
		name, err := c.readString()
		if err != nil {
			return nil, fmt.Errorf("export %d name: %w", i, err)
		}
		kindByte, err := c.readByte()
		if err != nil {
			return nil, fmt.Errorf("export %d kind: %w", i, err)
		}
		idx, err := c.readU32()
		if err != nil {
			return nil, fmt.Errorf("export %d index: %w", i, err)
		}
		if kindByte > byte(wasm.ExternKindGlobal) {
			return nil, fmt.Errorf("export %d: unknown kind byte 0x%02x", i, kindByte)
		}
		out = append(out, &wasm.Export{Name: name, Kind: wasm.ExternKind(kindByte), Index: idx})
	}
	return out, nil
}
