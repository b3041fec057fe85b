package binary

import "fmt"

const (
	nameSubsectionModule   = 0
	nameSubsectionFunction = 1
	nameSubsectionLocal    = 2
)

// decodeNameSection parses the "name" custom section's function-names
// subsection (id 1) into idx -> name. Other subsections (module name,
// local names) are skipped; nothing downstream needs them. A malformed
// name section is not a decode failure for the module as a whole -- it is
// optional debug information -- so decodeNameSection returns the names
// decoded before the fault together with an error the caller may choose to
// ignore.
func decodeNameSection(payload []byte) (map[uint32]string, error) {
	c := newCursor(payload)
	names := map[uint32]string{}
	for !c.eof() {
		id, err := c.readByte()
		if err != nil {
			return names, fmt.Errorf("subsection id: %w", err)
		}
		size, err := c.readU32()
		if err != nil {
			return names, fmt.Errorf("subsection size: %w", err)
		}
		body, err := c.readBytes(int(size))
		if err != nil {
			return names, fmt.Errorf("subsection body: %w", err)
		}
		if id == nameSubsectionFunction {
			fm, err := decodeNameMap(body)
			if err != nil {
				return names, fmt.Errorf("function name map: %w", err)
			}
			for idx, name := range fm {
				names[idx] = name
			}
		}
		// nameSubsectionModule and nameSubsectionLocal carry no
		// information this analyzer reports today; skipped.
	}
	return names, nil
}

func decodeNameMap(payload []byte) (map[uint32]string, error) {
	c := newCursor(payload)
	n, err := c.readU32()
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	out := make(map[uint32]string, n)
	for i := uint32(0); i < n; i++ {
		idx, err := c.readU32()
		if err != nil {
			return nil, fmt.Errorf("entry %d index: %w", i, err)
		}
		name, err := c.readString()
		if err != nil {
			return nil, fmt.Errorf("entry %d name: %w", i, err)
		}
		out[idx] = name
	}
	return out, nil
}
