//go:build js

// Command wasminspect-host is the GOOS=js entry point: it registers the
// browser-facing analysis function and blocks forever, letting the host
// page call back into Go via syscall/js.
package main

import "github.com/jeffasante/wasm-inspector/wasmhost"

func main() {
	wasmhost.Register()
	select {}
}
