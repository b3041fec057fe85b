package binary

import (
	"errors"
	"fmt"
)

// EventKind tags a Event emitted while walking a function body.
type EventKind int

const (
	// EventCall fires on a direct call (opcode 0x10); CalleeIndex is the
	// decoded function index operand.
	EventCall EventKind = iota
	// EventCallIndirect fires on call_indirect (0x11); the callee is not
	// resolved statically, per spec.
	EventCallIndirect
	// EventMemoryOp fires on any opcode classified into a MemoryOpFamily.
	EventMemoryOp
)

// MemoryOpFamily buckets memory-touching opcodes for the memory profiler.
type MemoryOpFamily string

const (
	MemoryOpLoad  MemoryOpFamily = "load"
	MemoryOpStore MemoryOpFamily = "store"
	MemoryOpGrow  MemoryOpFamily = "grow"
	MemoryOpSize  MemoryOpFamily = "size"
	MemoryOpCopy  MemoryOpFamily = "copy"
	MemoryOpFill  MemoryOpFamily = "fill"
	MemoryOpInit  MemoryOpFamily = "init"
)

// Event is one instruction of interest observed during a body walk. Offset
// is relative to the start of the function body slice passed to WalkBody.
type Event struct {
	Kind        EventKind
	Offset      int
	Opcode      Opcode
	CalleeIndex uint32         // EventCall
	TypeIndex   uint32         // EventCallIndirect
	TableIndex  uint32         // EventCallIndirect
	Family      MemoryOpFamily // EventMemoryOp
}

// ErrBodyTruncated is wrapped into the error WalkBody returns when the
// instruction stream ends before a matching OpcodeEnd is found.
var ErrBodyTruncated = errors.New("function body truncated")

// WalkBody scans one function's instruction stream, invoking visit for
// every call, call_indirect, and memory-op instruction it recognizes. It
// understands opcode lengths well enough to advance past every other MVP,
// bulk-memory, and reference-type instruction without interpreting them.
//
// It is intentionally not a validating decoder: control-flow nesting
// (block/loop/if/else/end) is tracked only deep enough to find the body's
// final end, never evaluated. Bulk-memory, reference-types, and threads
// (atomics) opcodes are recognized and sized out, per the accepted input
// format: the MVP plus those three proposals are tolerated, not merely
// the MVP alone. SIMD is the one opcode space this walker cannot size
// itself out of; encountering one returns an error so the caller can
// record a BodyScanWarning and move on to the next function, per the
// decoder's documented failure mode.
func WalkBody(body []byte, visit func(Event)) error {
	c := newCursor(body)
	depth := 1 // body starts already inside the implicit function block
	for depth > 0 {
		if c.eof() {
			return fmt.Errorf("%w at offset %d", ErrBodyTruncated, c.offset())
		}
		offset := c.offset()
		op, err := c.readByte()
		if err != nil {
			return fmt.Errorf("reading opcode at offset %d: %w", offset, err)
		}

		switch {
		case op == OpcodeBlock || op == OpcodeLoop || op == OpcodeIf:
			if _, err := readBlockType(c); err != nil {
				return fmt.Errorf("block type at offset %d: %w", offset, err)
			}
			depth++
		case op == OpcodeElse:
			// same depth, no operand
		case op == OpcodeEnd:
			depth--
		case op == OpcodeBr || op == OpcodeBrIf:
			if _, err := c.readU32(); err != nil {
				return fmt.Errorf("label index at offset %d: %w", offset, err)
			}
		case op == OpcodeBrTable:
			n, err := c.readU32()
			if err != nil {
				return fmt.Errorf("br_table count at offset %d: %w", offset, err)
			}
			for i := uint32(0); i < n; i++ {
				if _, err := c.readU32(); err != nil {
					return fmt.Errorf("br_table label at offset %d: %w", offset, err)
				}
			}
			if _, err := c.readU32(); err != nil {
				return fmt.Errorf("br_table default label at offset %d: %w", offset, err)
			}
		case op == OpcodeReturn || op == OpcodeUnreachable || op == OpcodeNop ||
			op == OpcodeDrop || op == OpcodeSelect:
			// no operand
		case op == OpcodeSelectVec:
			n, err := c.readU32()
			if err != nil {
				return fmt.Errorf("select vec count at offset %d: %w", offset, err)
			}
			if _, err := c.readBytes(int(n)); err != nil {
				return fmt.Errorf("select vec types at offset %d: %w", offset, err)
			}
		case op == OpcodeCall:
			idx, err := c.readU32()
			if err != nil {
				return fmt.Errorf("call index at offset %d: %w", offset, err)
			}
			visit(Event{Kind: EventCall, Offset: offset, Opcode: op, CalleeIndex: idx})
		case op == OpcodeCallIndirect:
			typeIdx, err := c.readU32()
			if err != nil {
				return fmt.Errorf("call_indirect type index at offset %d: %w", offset, err)
			}
			tableIdx, err := c.readU32()
			if err != nil {
				return fmt.Errorf("call_indirect table index at offset %d: %w", offset, err)
			}
			visit(Event{Kind: EventCallIndirect, Offset: offset, Opcode: op, TypeIndex: typeIdx, TableIndex: tableIdx})
		case op == OpcodeLocalGet || op == OpcodeLocalSet || op == OpcodeLocalTee ||
			op == OpcodeGlobalGet || op == OpcodeGlobalSet ||
			op == OpcodeTableGet || op == OpcodeTableSet:
			if _, err := c.readU32(); err != nil {
				return fmt.Errorf("index operand at offset %d: %w", offset, err)
			}
		case IsLoad(op) || IsStore(op):
			if _, err := c.readU32(); err != nil { // align
				return fmt.Errorf("memarg align at offset %d: %w", offset, err)
			}
			if _, err := c.readU32(); err != nil { // offset
				return fmt.Errorf("memarg offset at offset %d: %w", offset, err)
			}
			family := MemoryOpLoad
			if IsStore(op) {
				family = MemoryOpStore
			}
			visit(Event{Kind: EventMemoryOp, Offset: offset, Opcode: op, Family: family})
		case op == OpcodeMemorySize || op == OpcodeMemoryGrow:
			if _, err := c.readByte(); err != nil { // reserved memory index
				return fmt.Errorf("memory index byte at offset %d: %w", offset, err)
			}
			family := MemoryOpSize
			if op == OpcodeMemoryGrow {
				family = MemoryOpGrow
			}
			visit(Event{Kind: EventMemoryOp, Offset: offset, Opcode: op, Family: family})
		case op == OpcodeI32Const:
			if _, err := c.readS32(); err != nil {
				return fmt.Errorf("i32.const at offset %d: %w", offset, err)
			}
		case op == OpcodeI64Const:
			if _, err := c.readS64(); err != nil {
				return fmt.Errorf("i64.const at offset %d: %w", offset, err)
			}
		case op == 0x43: // f32.const
			if _, err := c.readBytes(4); err != nil {
				return fmt.Errorf("f32.const at offset %d: %w", offset, err)
			}
		case op == 0x44: // f64.const
			if _, err := c.readBytes(8); err != nil {
				return fmt.Errorf("f64.const at offset %d: %w", offset, err)
			}
		case op >= 0x45 && op <= 0xc4:
			// Numeric comparison/arithmetic/conversion opcodes: all take no
			// immediate operands in the MVP encoding.
		case op == 0xd0: // ref.null
			if _, err := c.readByte(); err != nil {
				return fmt.Errorf("ref.null heap type at offset %d: %w", offset, err)
			}
		case op == 0xd1: // ref.is_null: no operand
		case op == 0xd2: // ref.func
			if _, err := c.readU32(); err != nil {
				return fmt.Errorf("ref.func index at offset %d: %w", offset, err)
			}
		case op == OpcodeMiscPrefix:
			if err := walkMisc(c, offset, visit); err != nil {
				return err
			}
		case op == OpcodeVecPrefix:
			return fmt.Errorf("SIMD opcode at offset %d not supported by this walker", offset)
		case op == OpcodeAtomicPrefix:
			if err := walkAtomic(c, offset, visit); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unrecognized opcode 0x%02x at offset %d", op, offset)
		}
	}
	return nil
}

// readBlockType consumes a WebAssembly blocktype: either 0x40 (empty), a
// single value-type byte, or a signed LEB128 type index (encoded as a
// 33-bit signed integer per the spec; 32 bits is sufficient range for any
// module this analyzer accepts).
func readBlockType(c *cursor) (int64, error) {
	if c.eof() {
		return 0, errBlockTypeEOF
	}
	b := c.buf[c.pos]
	if b == 0x40 {
		c.pos++
		return -1, nil
	}
	switch b {
	case 0x7f, 0x7e, 0x7d, 0x7c, 0x7b, 0x70, 0x6f:
		c.pos++
		return int64(b), nil
	}
	return c.readS64()
}

var errBlockTypeEOF = fmt.Errorf("block type: %w", ErrBodyTruncated)

// walkMisc decodes the 0xfc-prefixed (bulk-memory / saturating-conversion)
// opcode space.
func walkMisc(c *cursor, offset int, visit func(Event)) error {
	sub, err := c.readU32()
	if err != nil {
		return fmt.Errorf("misc sub-opcode at offset %d: %w", offset, err)
	}
	switch Opcode(sub) {
	case 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07:
		// i32/i64.trunc_sat_f32/f64_s/u: no operand.
		return nil
	case MiscOpcodeMemoryInit:
		if _, err := c.readU32(); err != nil { // data index
			return fmt.Errorf("memory.init data index at offset %d: %w", offset, err)
		}
		if _, err := c.readByte(); err != nil { // reserved memory index
			return fmt.Errorf("memory.init memory index at offset %d: %w", offset, err)
		}
		visit(Event{Kind: EventMemoryOp, Offset: offset, Opcode: OpcodeMiscPrefix, Family: MemoryOpInit})
	case MiscOpcodeDataDrop:
		if _, err := c.readU32(); err != nil {
			return fmt.Errorf("data.drop index at offset %d: %w", offset, err)
		}
	case MiscOpcodeMemoryCopy:
		if _, err := c.readByte(); err != nil {
			return fmt.Errorf("memory.copy dst index at offset %d: %w", offset, err)
		}
		if _, err := c.readByte(); err != nil {
			return fmt.Errorf("memory.copy src index at offset %d: %w", offset, err)
		}
		visit(Event{Kind: EventMemoryOp, Offset: offset, Opcode: OpcodeMiscPrefix, Family: MemoryOpCopy})
	case MiscOpcodeMemoryFill:
		if _, err := c.readByte(); err != nil {
			return fmt.Errorf("memory.fill index at offset %d: %w", offset, err)
		}
		visit(Event{Kind: EventMemoryOp, Offset: offset, Opcode: OpcodeMiscPrefix, Family: MemoryOpFill})
	case MiscOpcodeTableInit:
		if _, err := c.readU32(); err != nil {
			return fmt.Errorf("table.init elem index at offset %d: %w", offset, err)
		}
		if _, err := c.readU32(); err != nil {
			return fmt.Errorf("table.init table index at offset %d: %w", offset, err)
		}
	case MiscOpcodeElemDrop:
		if _, err := c.readU32(); err != nil {
			return fmt.Errorf("elem.drop index at offset %d: %w", offset, err)
		}
	case MiscOpcodeTableCopy:
		if _, err := c.readU32(); err != nil {
			return fmt.Errorf("table.copy dst index at offset %d: %w", offset, err)
		}
		if _, err := c.readU32(); err != nil {
			return fmt.Errorf("table.copy src index at offset %d: %w", offset, err)
		}
	case 0x0f, 0x10, 0x11: // table.grow, table.size, table.fill
		if _, err := c.readU32(); err != nil {
			return fmt.Errorf("table op index at offset %d: %w", offset, err)
		}
		if sub == 0x0f || sub == 0x11 {
			// table.grow/table.fill additionally need a second operand
			// beyond the table index, but those are value/i32 operands
			// popped from the stack at runtime, not immediates.
		}
	default:
		return fmt.Errorf("unrecognized misc sub-opcode 0x%02x at offset %d", sub, offset)
	}
	return nil
}

// walkAtomic decodes the 0xfe-prefixed (threads/atomics) opcode space.
// Every sub-opcode but fence carries a memarg (align, offset), identical in
// shape to a plain load/store; atomic.fence carries a single reserved byte
// instead. Loads and notify/wait (which read the watched cell) are counted
// as MemoryOpLoad; stores and every read-modify-write op are counted as
// MemoryOpStore, since both mutate memory.
func walkAtomic(c *cursor, offset int, visit func(Event)) error {
	sub, err := c.readU32()
	if err != nil {
		return fmt.Errorf("atomic sub-opcode at offset %d: %w", offset, err)
	}

	if Opcode(sub) == AtomicOpcodeFence {
		if _, err := c.readByte(); err != nil { // reserved
			return fmt.Errorf("atomic.fence reserved byte at offset %d: %w", offset, err)
		}
		return nil
	}

	switch {
	case Opcode(sub) == AtomicOpcodeNotify, Opcode(sub) == AtomicOpcodeWait32, Opcode(sub) == AtomicOpcodeWait64,
		Opcode(sub) >= atomicOpcodeLoadLo && Opcode(sub) <= atomicOpcodeLoadHi:
		if err := readMemarg(c, offset); err != nil {
			return err
		}
		visit(Event{Kind: EventMemoryOp, Offset: offset, Opcode: OpcodeAtomicPrefix, Family: MemoryOpLoad})
	case Opcode(sub) >= atomicOpcodeRMWLo && Opcode(sub) <= atomicOpcodeRMWHi:
		if err := readMemarg(c, offset); err != nil {
			return err
		}
		visit(Event{Kind: EventMemoryOp, Offset: offset, Opcode: OpcodeAtomicPrefix, Family: MemoryOpStore})
	default:
		return fmt.Errorf("unrecognized atomic sub-opcode 0x%02x at offset %d", sub, offset)
	}
	return nil
}

func readMemarg(c *cursor, offset int) error {
	if _, err := c.readU32(); err != nil { // align
		return fmt.Errorf("memarg align at offset %d: %w", offset, err)
	}
	if _, err := c.readU32(); err != nil { // offset
		return fmt.Errorf("memarg offset at offset %d: %w", offset, err)
	}
	return nil
}
