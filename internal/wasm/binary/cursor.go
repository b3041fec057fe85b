// Package binary decodes the WebAssembly binary format into an
// *wasm.Module. It understands exactly the MVP feature set plus the "name"
// custom section, bulk-memory, reference-type and threads/atomics opcodes
// (which are recognized well enough to skip over and count) -- anything not needed to
// build wasm.Module or to walk a function body for call/memory opcodes is
// out of scope, per the opcode-length-walker note in the design notes.
package binary

import (
	"fmt"
	"io"

	"github.com/tetratelabs/wabin/leb128"

	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

// cursor is a position-tracking byte reader. It wraps the leb128 decoding
// functions (which take an io.Reader) while keeping enough state to report
// a byte offset on decode failure.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) offset() int { return c.pos }

func (c *cursor) len() int { return len(c.buf) - c.pos }

func (c *cursor) eof() bool { return c.pos >= len(c.buf) }

// Read implements io.Reader so *cursor can feed the leb128 package.
func (c *cursor) Read(p []byte) (int, error) {
	n := copy(p, c.buf[c.pos:])
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	c.pos += n
	return n, nil
}

func (c *cursor) readByte() (byte, error) {
	if c.eof() {
		return 0, io.ErrUnexpectedEOF
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) readBytes(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// readU32 etc. decode through c itself (c.Read advances c.pos as bytes are
// consumed), so no separate bookkeeping of the leb128 byte count is needed.

func (c *cursor) readU32() (uint32, error) {
	v, _, err := leb128.DecodeUint32(c)
	return v, err
}

func (c *cursor) readU64() (uint64, error) {
	v, _, err := leb128.DecodeUint64(c)
	return v, err
}

func (c *cursor) readS32() (int32, error) {
	v, _, err := leb128.DecodeInt32(c)
	return v, err
}

func (c *cursor) readS64() (int64, error) {
	v, _, err := leb128.DecodeInt64(c)
	return v, err
}

func (c *cursor) readString() (string, error) {
	n, err := c.readU32()
	if err != nil {
		return "", fmt.Errorf("string length: %w", err)
	}
	b, err := c.readBytes(int(n))
	if err != nil {
		return "", fmt.Errorf("string bytes: %w", err)
	}
	return string(b), nil
}

func (c *cursor) readValueType() (wasm.ValueType, error) {
	b, err := c.readByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeF32, wasm.ValueTypeF64,
		wasm.ValueTypeV128, wasm.ValueTypeFuncref, wasm.ValueTypeExternref:
		return b, nil
	default:
		return 0, fmt.Errorf("invalid value type byte 0x%02x", b)
	}
}
