package wasm

import "fmt"

// DecodeError is returned when the module bytes are malformed: truncation,
// an invalid opcode encountered while parsing a section header, an
// out-of-range index, or a type mismatch. The decoder never attempts
// recovery from a DecodeError; analysis of the whole module aborts.
type DecodeError struct {
	Offset  int
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at offset %d: %s", e.Offset, e.Message)
}

// OversizeError is returned when the input, or one of its sections,
// exceeds a configured limit. It is reported before any allocation
// proportional to the oversized content.
type OversizeError struct {
	Limit   int
	Actual  int
	Section string
}

func (e *OversizeError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("module size %d exceeds limit %d", e.Actual, e.Limit)
	}
	return fmt.Sprintf("%s section size %d exceeds limit %d", e.Section, e.Actual, e.Limit)
}

// BodyScanWarning records a per-function recoverable anomaly found while
// scanning a function body for calls or memory operations, such as an
// out-of-range callee index or a truncated LEB128 operand. It never aborts
// analysis; the offending function's scan simply stops early.
type BodyScanWarning struct {
	FunctionIndex uint32
	Offset        int
	Message       string
}

func (w *BodyScanWarning) Error() string {
	return fmt.Sprintf("function %d: body scan warning at offset %d: %s", w.FunctionIndex, w.Offset, w.Message)
}
