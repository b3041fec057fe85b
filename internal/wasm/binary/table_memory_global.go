package binary

import (
	"fmt"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

func decodeTableSection(c *cursor) ([]*wasm.TableType, error) {
	n, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("table count: %w", err)
	}
	out := make([]*wasm.TableType, 0, n)
	for i := uint32(0); i < n; i++ {
		tt, err := decodeTableType(c)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", i, err)
		}
		out = append(out, tt)
	}
	return out, nil
}

func decodeMemorySection(c *cursor) ([]*wasm.MemoryType, error) {
	n, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("memory count: %w", err)
	}
	out := make([]*wasm.MemoryType, 0, n)
	for i := uint32(0); i < n; i++ {
		mt, err := decodeMemoryType(c)
		if err != nil {
			return nil, fmt.Errorf("memory %d: %w", i, err)
		}
		out = append(out, mt)
	}
	return out, nil
}

func decodeGlobalSection(c *cursor) ([]*wasm.GlobalDecl, error) {
	n, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("global count: %w", err)
	}
	out := make([]*wasm.GlobalDecl, 0, n)
	for i := uint32(0); i < n; i++ {
		gt, err := decodeGlobalType(c)
		if err != nil {
			return nil, fmt.Errorf("global %d type: %w", i, err)
		}
		init, err := decodeConstExpr(c)
		if err != nil {
			return nil, fmt.Errorf("global %d init: %w", i, err)
		}
		out = append(out, &wasm.GlobalDecl{Type: *gt, Init: init})
	}
	return out, nil
}

// decodeConstExpr reads a constant initializer expression verbatim,
// without evaluating it: one opcode (i32/i64/f32/f64.const or
// global.get, or ref.null/ref.func under reference-types) followed by its
// immediate, then the terminating OpcodeEnd. The raw bytes are kept for
// callers that only need to know the expression's size.
func decodeConstExpr(c *cursor) ([]byte, error) {
	start := c.offset()
	op, err := c.readByte()
	if err != nil {
		return nil, fmt.Errorf("opcode: %w", err)
	}
	switch op {
	case OpcodeI32Const:
		if _, err := c.readS32(); err != nil {
			return nil, err
		}
	case OpcodeI64Const:
		if _, err := c.readS64(); err != nil {
			return nil, err
		}
	case 0x43:
		if _, err := c.readBytes(4); err != nil {
			return nil, err
		}
	case 0x44:
		if _, err := c.readBytes(8); err != nil {
			return nil, err
		}
	case OpcodeGlobalGet:
		if _, err := c.readU32(); err != nil {
			return nil, err
		}
	case 0xd0: // ref.null
		if _, err := c.readByte(); err != nil {
			return nil, err
		}
	case 0xd2: // ref.func
		if _, err := c.readU32(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported const expr opcode 0x%02x", op)
	}
	end, err := c.readByte()
	if err != nil {
		return nil, fmt.Errorf("terminating end: %w", err)
	}
	if end != OpcodeEnd {
		return nil, fmt.Errorf("const expr not terminated by end (got 0x%02x)", end)
	}
	return c.buf[start:c.offset()], nil
}
