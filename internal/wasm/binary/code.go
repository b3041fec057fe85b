package binary

import (
	"fmt"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

// decodeCodeSection decodes the code section's entries, zipping each with
// the corresponding type index from typeIndices (the function section),
// per spec: the two sections are declared separately but always have
// matching length and are consumed in lockstep. baseOffset is the offset
// of the code section's payload within the original module buffer, used so
// each function's body can report an absolute offset on a scan error.
func decodeCodeSection(c *cursor, typeIndices []uint32, baseOffset int) ([]*wasm.Function, error) {
	n, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("code count: %w", err)
	}
	if int(n) != len(typeIndices) {
		return nil, fmt.Errorf("code section has %d entries but function section declared %d", n, len(typeIndices))
	}
	out := make([]*wasm.Function, 0, n)
	for i := uint32(0); i < n; i++ {
		size, err := c.readU32()
		if err != nil {
			return nil, fmt.Errorf("function %d body size: %w", i, err)
		}
		entryStart := c.offset()
		fn, err := decodeFunctionBody(c, typeIndices[i], baseOffset)
		if err != nil {
			return nil, fmt.Errorf("function %d body: %w", i, err)
		}
		if c.offset()-entryStart != int(size) {
			return nil, fmt.Errorf("function %d: declared body size %d but consumed %d bytes", i, size, c.offset()-entryStart)
		}
		out = append(out, fn)
	}
	return out, nil
}

func decodeFunctionBody(c *cursor, typeIndex uint32, baseOffset int) (*wasm.Function, error) {
	localBlockCount, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("local block count: %w", err)
	}
	locals := make([]wasm.LocalBlock, 0, localBlockCount)
	for i := uint32(0); i < localBlockCount; i++ {
		count, err := c.readU32()
		if err != nil {
			return nil, fmt.Errorf("local block %d count: %w", i, err)
		}
		vt, err := c.readValueType()
		if err != nil {
			return nil, fmt.Errorf("local block %d type: %w", i, err)
		}
		locals = append(locals, wasm.LocalBlock{Count: count, Type: vt})
	}

	bodyStart := c.offset()
	depth := 0
	for {
		if c.eof() {
			return nil, fmt.Errorf("%w: missing terminating end", ErrBodyTruncated)
		}
		op := c.buf[c.pos]
		// Scan only far enough to find the matching top-level end; the
		// full instruction-by-instruction walk (with call/memory-op
		// extraction) happens later, lazily, over the returned Body slice.
		switch op {
		case OpcodeBlock, OpcodeLoop, OpcodeIf:
			c.pos++
			if _, err := readBlockType(c); err != nil {
				return nil, fmt.Errorf("block type: %w", err)
			}
			depth++
			continue
		case OpcodeEnd:
			c.pos++
			if depth == 0 {
				body := c.buf[bodyStart:c.pos]
				return &wasm.Function{TypeIndex: typeIndex, Locals: locals, Body: body, BodyOffset: baseOffset + bodyStart}, nil
			}
			depth--
			continue
		}
		if err := skipInstructionOperandsOnly(c, op); err != nil {
			return nil, err
		}
	}
}

// skipInstructionOperandsOnly advances c past one instruction's operand
// bytes, including op itself: op is read but not yet consumed from c, and
// this function advances past it before its operands. It is a narrower twin of the
// dispatch in WalkBody: code.go only needs to find the function's end, not
// to classify calls or memory ops, so this skips unconditionally instead of
// emitting events.
func skipInstructionOperandsOnly(c *cursor, op Opcode) error {
	c.pos++ // consume op
	switch {
	case op == OpcodeElse:
		return nil
	case op == OpcodeBr || op == OpcodeBrIf || op == OpcodeCall ||
		op == OpcodeLocalGet || op == OpcodeLocalSet || op == OpcodeLocalTee ||
		op == OpcodeGlobalGet || op == OpcodeGlobalSet ||
		op == OpcodeTableGet || op == OpcodeTableSet:
		_, err := c.readU32()
		return err
	case op == OpcodeCallIndirect:
		if _, err := c.readU32(); err != nil {
			return err
		}
		_, err := c.readU32()
		return err
	case op == OpcodeBrTable:
		n, err := c.readU32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			if _, err := c.readU32(); err != nil {
				return err
			}
		}
		_, err = c.readU32()
		return err
	case op == OpcodeReturn || op == OpcodeUnreachable || op == OpcodeNop ||
		op == OpcodeDrop || op == OpcodeSelect:
		return nil
	case op == OpcodeSelectVec:
		n, err := c.readU32()
		if err != nil {
			return err
		}
		_, err = c.readBytes(int(n))
		return err
	case IsLoad(op) || IsStore(op):
		if _, err := c.readU32(); err != nil {
			return err
		}
		_, err := c.readU32()
		return err
	case op == OpcodeMemorySize || op == OpcodeMemoryGrow:
		_, err := c.readByte()
		return err
	case op == OpcodeI32Const:
		_, err := c.readS32()
		return err
	case op == OpcodeI64Const:
		_, err := c.readS64()
		return err
	case op == 0x43:
		_, err := c.readBytes(4)
		return err
	case op == 0x44:
		_, err := c.readBytes(8)
		return err
	case op >= 0x45 && op <= 0xc4:
		return nil
	case op == 0xd0: // ref.null
		_, err := c.readByte()
		return err
	case op == 0xd1: // ref.is_null
		return nil
	case op == 0xd2: // ref.func
		_, err := c.readU32()
		return err
	case op == OpcodeMiscPrefix:
		return skipMisc(c)
	case op == OpcodeVecPrefix:
		return fmt.Errorf("SIMD opcode not supported by this walker")
	case op == OpcodeAtomicPrefix:
		return skipAtomic(c)
	default:
		return fmt.Errorf("unrecognized opcode 0x%02x", op)
	}
}

// skipAtomic is skipInstructionOperandsOnly's twin for the 0xfe-prefixed
// threads/atomics opcode space; see walkAtomic for the operand shapes.
func skipAtomic(c *cursor) error {
	sub, err := c.readU32()
	if err != nil {
		return err
	}
	if Opcode(sub) == AtomicOpcodeFence {
		_, err := c.readByte()
		return err
	}
	switch {
	case Opcode(sub) == AtomicOpcodeNotify, Opcode(sub) == AtomicOpcodeWait32, Opcode(sub) == AtomicOpcodeWait64,
		Opcode(sub) >= atomicOpcodeLoadLo && Opcode(sub) <= atomicOpcodeLoadHi,
		Opcode(sub) >= atomicOpcodeRMWLo && Opcode(sub) <= atomicOpcodeRMWHi:
		if _, err := c.readU32(); err != nil {
			return err
		}
		_, err := c.readU32()
		return err
	default:
		return fmt.Errorf("unrecognized atomic sub-opcode 0x%02x", sub)
	}
}

func skipMisc(c *cursor) error {
	sub, err := c.readU32()
	if err != nil {
		return err
	}
	switch Opcode(sub) {
	case 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07:
		return nil
	case MiscOpcodeMemoryInit:
		if _, err := c.readU32(); err != nil {
			return err
		}
		_, err := c.readByte()
		return err
	case MiscOpcodeDataDrop, MiscOpcodeElemDrop:
		_, err := c.readU32()
		return err
	case MiscOpcodeMemoryCopy:
		if _, err := c.readByte(); err != nil {
			return err
		}
		_, err := c.readByte()
		return err
	case MiscOpcodeMemoryFill:
		_, err := c.readByte()
		return err
	case MiscOpcodeTableInit, MiscOpcodeTableCopy:
		if _, err := c.readU32(); err != nil {
			return err
		}
		_, err := c.readU32()
		return err
	case 0x0f, 0x10, 0x11:
		_, err := c.readU32()
		return err
	default:
		return fmt.Errorf("unrecognized misc sub-opcode 0x%02x", sub)
	}
}
