package binary

// This file builds minimal, hand-encoded WASM binaries for the seed
// scenarios in spec.md §8, shared across this package's and sibling
// packages' tests. Nothing here decodes LEB128 through the real codec;
// every value is small enough to encode as a single byte, which is valid
// LEB128 for 0-127.

func header() []byte {
	return []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
}

func section(id sectionID, payload []byte) []byte {
	return append([]byte{byte(id), byte(len(payload))}, payload...)
}

// emptyModule returns the bytes of a header-only module: no sections.
func emptyModule() []byte {
	return header()
}

// singleExportedNoop returns one type `() -> ()`, one function of that
// type with body `end`, exported as "main".
func singleExportedNoop() []byte {
	b := header()
	b = append(b, section(sectionType, []byte{0x01, 0x60, 0x00, 0x00})...) // 1 type: () -> ()
	b = append(b, section(sectionFunction, []byte{0x01, 0x00})...)         // 1 function, type 0
	b = append(b, section(sectionExport, []byte{
		0x01,                              // 1 export
		0x04, 'm', 'a', 'i', 'n',          // name "main"
		0x00, // kind func
		0x00, // index 0
	})...)
	b = append(b, section(sectionCode, []byte{
		0x01,       // 1 code entry
		0x02,       // body size
		0x00,       // 0 local decls
		OpcodeEnd,
	})...)
	return b
}

// twoFunctionsCall0Calls1 returns function 0 (exported "main") with body
// `call 1; end`, and function 1 with body `end`.
func twoFunctionsCall0Calls1() []byte {
	b := header()
	b = append(b, section(sectionType, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(sectionFunction, []byte{0x02, 0x00, 0x00})...) // 2 functions, both type 0
	b = append(b, section(sectionExport, []byte{
		0x01,
		0x04, 'm', 'a', 'i', 'n',
		0x00,
		0x00,
	})...)
	b = append(b, section(sectionCode, []byte{
		0x02, // 2 code entries
		0x04, 0x00, OpcodeCall, 0x01, OpcodeEnd, // function 0: call 1; end
		0x02, 0x00, OpcodeEnd, // function 1: end
	})...)
	return b
}

// wasiFilesystemImport returns a module importing
// wasi_snapshot_preview1::fd_write as its only function, with no defined
// functions.
func wasiFilesystemImport() []byte {
	b := header()
	b = append(b, section(sectionType, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(sectionImport, []byte{
		0x01, // 1 import
		0x16, 'w', 'a', 's', 'i', '_', 's', 'n', 'a', 'p', 's', 'h', 'o', 't', '_', 'p', 'r', 'e', 'v', 'i', 'e', 'w', '1',
		0x08, 'f', 'd', '_', 'w', 'r', 'i', 't', 'e',
		0x00, // kind func
		0x00, // type index 0
	})...)
	return b
}

// deadFunction returns three defined functions, type () -> (), only index
// 0 exported, none of them calling each other.
func deadFunction() []byte {
	b := header()
	b = append(b, section(sectionType, []byte{0x01, 0x60, 0x00, 0x00})...)
	b = append(b, section(sectionFunction, []byte{0x03, 0x00, 0x00, 0x00})...)
	b = append(b, section(sectionExport, []byte{
		0x01,
		0x04, 'm', 'a', 'i', 'n',
		0x00,
		0x00,
	})...)
	b = append(b, section(sectionCode, []byte{
		0x03,
		0x02, 0x00, OpcodeEnd,
		0x02, 0x00, OpcodeEnd,
		0x02, 0x00, OpcodeEnd,
	})...)
	return b
}

// mutableExportedGlobal returns a module with one mutable i32 global,
// exported.
func mutableExportedGlobal() []byte {
	b := header()
	b = append(b, section(sectionGlobal, []byte{
		0x01,                   // 1 global
		0x7f, 0x01,             // i32, mutable
		0x41, 0x00, OpcodeEnd, // init expr: i32.const 0; end
	})...)
	b = append(b, section(sectionExport, []byte{
		0x01,
		0x07, 'c', 'o', 'u', 'n', 't', 'e', 'r',
		0x03, // kind global
		0x00,
	})...)
	return b
}
