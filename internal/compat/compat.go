// Package compat derives a per-runtime compatibility verdict and a
// best-effort source-language guess from a decoded module and its
// security analysis. None of it executes the module; every verdict is a
// fixed feature-matrix lookup over static signals.
package compat

import (
	"strings"

	"github.com/jeffasante/wasm-inspector/internal/capability"
	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

// Runtime names the fixed set of hosting environments the matrix covers.
type Runtime string

const (
	RuntimeWasmtime           Runtime = "Wasmtime"
	RuntimeWasmer             Runtime = "Wasmer"
	RuntimeBrowser            Runtime = "Browser"
	RuntimeNodeJS             Runtime = "Node.js"
	RuntimeDeno               Runtime = "Deno"
	RuntimeCloudflareWorkers  Runtime = "Cloudflare Workers"
)

// Language is a best-effort guess at the module's source language.
type Language string

const (
	LanguageRust           Language = "Rust"
	LanguageCPlusPlus      Language = "C/C++"
	LanguageAssemblyScript Language = "AssemblyScript"
	LanguageGo             Language = "Go"
	LanguageUnknown        Language = "Unknown"
)

// Verdict is the compatibility result for one runtime.
type Verdict struct {
	Runtime          Runtime
	Compatible       bool
	Issues           []string
	RequiredFeatures []string
}

// Report is the compatibility analysis of one module.
type Report struct {
	Verdicts         []Verdict
	DetectedLanguage Language
}

// Build evaluates m against the fixed per-runtime feature matrix, using
// sec for the WASI/filesystem/network capability signals the matrix
// consults.
func Build(m *wasm.Module, sec *capability.Report) *Report {
	r := &Report{DetectedLanguage: detectLanguage(m)}

	hasFS := hasCapability(sec, "Filesystem I/O")
	hasNet := hasCapability(sec, "Network I/O")
	sharedMem := hasSharedMemory(m)
	multiMem := len(m.Memories) > 1

	r.Verdicts = []Verdict{
		wasmtimeVerdict(sharedMem, multiMem),
		wasmerVerdict(sharedMem, multiMem),
		browserVerdict(sec.WASIUsage.UsesWASI, hasFS, hasNet, multiMem),
		nodeVerdict(multiMem),
		denoVerdict(sec.WASIUsage.UsesWASI, hasNet, multiMem),
		cloudflareVerdict(hasFS, hasNet, multiMem),
	}
	return r
}

func hasCapability(sec *capability.Report, name string) bool {
	for _, f := range sec.Capabilities {
		if f.Name == name {
			return true
		}
	}
	return false
}

func hasSharedMemory(m *wasm.Module) bool {
	for _, mt := range m.Memories {
		if mt.Shared {
			return true
		}
	}
	return false
}

func wasmtimeVerdict(sharedMem, multiMem bool) Verdict {
	v := Verdict{Runtime: RuntimeWasmtime, Compatible: true}
	if sharedMem {
		v.RequiredFeatures = append(v.RequiredFeatures, "threads")
	}
	if multiMem {
		v.Issues = append(v.Issues, "module declares more than one memory")
		v.RequiredFeatures = append(v.RequiredFeatures, "multi-memory")
	}
	return v
}

func wasmerVerdict(sharedMem, multiMem bool) Verdict {
	v := Verdict{Runtime: RuntimeWasmer, Compatible: true}
	if sharedMem {
		v.RequiredFeatures = append(v.RequiredFeatures, "threads")
	}
	if multiMem {
		v.Issues = append(v.Issues, "module declares more than one memory")
		v.RequiredFeatures = append(v.RequiredFeatures, "multi-memory")
	}
	return v
}

func browserVerdict(usesWASI, hasFS, hasNet, multiMem bool) Verdict {
	v := Verdict{Runtime: RuntimeBrowser, Compatible: true}
	if usesWASI && (hasFS || hasNet) {
		v.Compatible = false
		v.Issues = append(v.Issues, "WASI filesystem or socket imports have no browser polyfill")
	}
	if multiMem {
		v.Issues = append(v.Issues, "module declares more than one memory")
		v.RequiredFeatures = append(v.RequiredFeatures, "multi-memory")
	}
	return v
}

func nodeVerdict(multiMem bool) Verdict {
	v := Verdict{Runtime: RuntimeNodeJS, Compatible: true}
	if multiMem {
		v.Issues = append(v.Issues, "module declares more than one memory")
		v.RequiredFeatures = append(v.RequiredFeatures, "multi-memory")
	}
	return v
}

func denoVerdict(usesWASI, hasNet, multiMem bool) Verdict {
	v := Verdict{Runtime: RuntimeDeno, Compatible: true}
	if usesWASI && hasNet {
		v.Issues = append(v.Issues, "WASI socket imports require explicit Deno network permissions")
	}
	if multiMem {
		v.Issues = append(v.Issues, "module declares more than one memory")
		v.RequiredFeatures = append(v.RequiredFeatures, "multi-memory")
	}
	return v
}

func cloudflareVerdict(hasFS, hasNet, multiMem bool) Verdict {
	v := Verdict{Runtime: RuntimeCloudflareWorkers, Compatible: true}
	if hasFS || hasNet {
		v.Compatible = false
		v.Issues = append(v.Issues, "Workers sandbox offers no filesystem or raw socket access")
	}
	if multiMem {
		v.Issues = append(v.Issues, "module declares more than one memory")
		v.RequiredFeatures = append(v.RequiredFeatures, "multi-memory")
	}
	return v
}

// detectLanguage guesses the module's source language from custom-section
// names and export-name substrings. This is a naming heuristic, not a
// structural analysis; it can be fooled by a module that happens to share
// a toolchain's naming convention.
func detectLanguage(m *wasm.Module) Language {
	for _, cs := range m.CustomSections {
		if strings.Contains(cs.Name, "asconfig") {
			return LanguageAssemblyScript
		}
	}

	sawGoRuntime, sawGoImport := false, false
	for _, exp := range m.Exports {
		switch {
		case strings.HasPrefix(exp.Name, "__wasm_bindgen"), strings.HasPrefix(exp.Name, "__rustc_"):
			return LanguageRust
		case strings.HasPrefix(exp.Name, "__cxa_"), strings.HasPrefix(exp.Name, "_ZN"):
			return LanguageCPlusPlus
		case strings.HasPrefix(exp.Name, "runtime."):
			sawGoRuntime = true
		}
	}
	for _, imp := range m.Imports {
		if strings.HasPrefix(imp.Module, "go.") || strings.HasPrefix(imp.Name, "runtime.") {
			sawGoImport = true
		}
	}
	if sawGoRuntime && sawGoImport {
		return LanguageGo
	}
	return LanguageUnknown
}
