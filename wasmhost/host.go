//go:build js

// Package wasmhost exposes the wasminspect core to a browser host via
// syscall/js: one exported function taking a Uint8Array and returning the
// canonical JSON report as a string. Only this analysis entry point is in
// scope; unlike wazero's internal/gojs, there is no Node.js syscall
// emulation layer here.
package wasmhost

import (
	"encoding/json"
	"syscall/js"

	"github.com/pkg/errors"

	wasminspect "github.com/jeffasante/wasm-inspector"
)

// AnalyzeJS is the syscall/js-exported entry point: wasminspectAnalyze(
// bytes: Uint8Array) -> string. On success the string is the canonical
// JSON report; on failure it is a JSON object {"error": "..."}.
func AnalyzeJS(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return errorJSON(errors.New("wasminspectAnalyze expects exactly one argument"))
	}

	buf := args[0]
	data := make([]byte, buf.Get("length").Int())
	js.CopyBytesToGo(data, buf)

	report, err := wasminspect.Analyze(data, wasminspect.NewAnalyzerConfig())
	if err != nil {
		return errorJSON(errors.Wrap(err, "analyze"))
	}

	out, err := json.Marshal(report)
	if err != nil {
		return errorJSON(errors.Wrap(err, "marshal report"))
	}
	return string(out)
}

func errorJSON(err error) string {
	out, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(out)
}

// Register installs wasminspectAnalyze as a global JS function. Call once
// from main, then block (e.g. select {}) to keep the Go runtime alive for
// the JS host to call back into.
func Register() {
	js.Global().Set("wasminspectAnalyze", js.FuncOf(AnalyzeJS))
}
