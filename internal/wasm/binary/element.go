package binary

import (
	"fmt"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

// decodeElementSection understands all eight element segment encodings
// (flags 0-7, including the expression-based variants 4-7 the
// reference-types proposal added) well enough to classify mode, target
// table, and payload size; it does not
// interpret the initializer expressions or the element kind/type bytes
// beyond skipping them.
func decodeElementSection(c *cursor) ([]*wasm.Element, error) {
	n, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("element count: %w", err)
	}
	out := make([]*wasm.Element, 0, n)
	for i := uint32(0); i < n; i++ {
		el, err := decodeElement(c)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, el)
	}
	return out, nil
}

func decodeElement(c *cursor) (*wasm.Element, error) {
	start := c.offset()
	flags, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	el := &wasm.Element{}
	switch flags {
	case 0: // active, table 0, expr, vec(funcidx)
		if _, err := decodeConstExpr(c); err != nil {
			return nil, fmt.Errorf("offset expr: %w", err)
		}
		el.Mode = wasm.ElementModeActive
		if el.Init, err = decodeU32Vec(c); err != nil {
			return nil, fmt.Errorf("func indices: %w", err)
		}
	case 1: // passive, elemkind, vec(funcidx)
		if _, err := c.readByte(); err != nil {
			return nil, fmt.Errorf("elemkind: %w", err)
		}
		el.Mode = wasm.ElementModePassive
		if el.Init, err = decodeU32Vec(c); err != nil {
			return nil, fmt.Errorf("func indices: %w", err)
		}
	case 2: // active, explicit table, expr, elemkind, vec(funcidx)
		if el.TableIndex, err = c.readU32(); err != nil {
			return nil, fmt.Errorf("table index: %w", err)
		}
		if _, err := decodeConstExpr(c); err != nil {
			return nil, fmt.Errorf("offset expr: %w", err)
		}
		if _, err := c.readByte(); err != nil {
			return nil, fmt.Errorf("elemkind: %w", err)
		}
		el.Mode = wasm.ElementModeActive
		if el.Init, err = decodeU32Vec(c); err != nil {
			return nil, fmt.Errorf("func indices: %w", err)
		}
	case 3: // declared, elemkind, vec(funcidx)
		if _, err := c.readByte(); err != nil {
			return nil, fmt.Errorf("elemkind: %w", err)
		}
		el.Mode = wasm.ElementModeDeclared
		if el.Init, err = decodeU32Vec(c); err != nil {
			return nil, fmt.Errorf("func indices: %w", err)
		}
	case 4: // active, table 0, expr, vec(expr) of funcref
		if _, err := decodeConstExpr(c); err != nil {
			return nil, fmt.Errorf("offset expr: %w", err)
		}
		el.Mode = wasm.ElementModeActive
		if err := skipExprVec(c); err != nil {
			return nil, fmt.Errorf("init exprs: %w", err)
		}
	case 5: // passive, reftype, vec(expr)
		if _, err := c.readValueType(); err != nil {
			return nil, fmt.Errorf("reftype: %w", err)
		}
		el.Mode = wasm.ElementModePassive
		if err := skipExprVec(c); err != nil {
			return nil, fmt.Errorf("init exprs: %w", err)
		}
	case 6: // active, explicit table, expr, reftype, vec(expr)
		if el.TableIndex, err = c.readU32(); err != nil {
			return nil, fmt.Errorf("table index: %w", err)
		}
		if _, err := decodeConstExpr(c); err != nil {
			return nil, fmt.Errorf("offset expr: %w", err)
		}
		if _, err := c.readValueType(); err != nil {
			return nil, fmt.Errorf("reftype: %w", err)
		}
		el.Mode = wasm.ElementModeActive
		if err := skipExprVec(c); err != nil {
			return nil, fmt.Errorf("init exprs: %w", err)
		}
	case 7: // declared, reftype, vec(expr)
		if _, err := c.readValueType(); err != nil {
			return nil, fmt.Errorf("reftype: %w", err)
		}
		el.Mode = wasm.ElementModeDeclared
		if err := skipExprVec(c); err != nil {
			return nil, fmt.Errorf("init exprs: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown element segment flags %d", flags)
	}
	el.PayloadSize = c.offset() - start
	return el, nil
}

func decodeU32Vec(c *cursor) ([]uint32, error) {
	n, err := c.readU32()
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		if out[i], err = c.readU32(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

func skipExprVec(c *cursor) error {
	n, err := c.readU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		if _, err := decodeConstExpr(c); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}
