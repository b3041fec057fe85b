// Package capability pattern-matches a decoded module's imports and
// sections against a fixed rule table to infer capabilities, WASI usage,
// and a handful of heuristic vulnerability findings.
package capability

import (
	"sort"
	"strings"

	"github.com/jeffasante/wasm-inspector/internal/memprofile"
	"github.com/jeffasante/wasm-inspector/internal/wasm"
)

// Finding is one inferred capability.
type Finding struct {
	Name        string
	Risk        RiskLevel
	Description string
	Evidence    []string // "module::name" import pairs that triggered it
}

// Vulnerability is one heuristic security observation that is not tied to
// a specific import.
type Vulnerability struct {
	Name        string
	Risk        RiskLevel
	Description string
}

// WASIUsage summarizes the module's use of the WebAssembly System
// Interface.
type WASIUsage struct {
	UsesWASI      bool
	WASIVersion   string
	WASIFunctions []string
}

// Sandbox reports, per hosting environment, whether this module's imports
// are expected to be satisfiable inside that environment's default
// sandbox. These booleans are the narrower "can the sandbox even offer
// these imports" signal; CompatibilityChecker (internal/compat) computes
// the fuller per-runtime verdict from Capabilities and WASIUsage and does
// not read them.
type Sandbox struct {
	Browser            bool
	Node               bool
	CloudflareWorkers  bool
	ServerSideWasmtime bool
}

// Report is the capability/security analysis of one module.
type Report struct {
	Capabilities  []Finding
	Vulnerabilities []Vulnerability
	WASIUsage     WASIUsage
	Sandbox       Sandbox
}

// wasiPreview1Functions is the canonical wasi_snapshot_preview1 function
// name set, used to report precisely which WASI functions a module
// imports rather than just which name-prefix rule matched.
var wasiPreview1Functions = map[string]bool{
	"args_get": true, "args_sizes_get": true,
	"clock_res_get": true, "clock_time_get": true,
	"environ_get": true, "environ_sizes_get": true,
	"fd_advise": true, "fd_allocate": true, "fd_close": true, "fd_datasync": true,
	"fd_fdstat_get": true, "fd_fdstat_set_flags": true, "fd_fdstat_set_rights": true,
	"fd_filestat_get": true, "fd_filestat_set_size": true, "fd_filestat_set_times": true,
	"fd_pread": true, "fd_prestat_dir_name": true, "fd_prestat_get": true, "fd_pwrite": true,
	"fd_read": true, "fd_readdir": true, "fd_renumber": true, "fd_seek": true,
	"fd_sync": true, "fd_tell": true, "fd_write": true,
	"path_create_directory": true, "path_filestat_get": true, "path_filestat_set_times": true,
	"path_link": true, "path_open": true, "path_readlink": true, "path_remove_directory": true,
	"path_rename": true, "path_symlink": true, "path_unlink_file": true,
	"poll_oneoff": true,
	"proc_exit": true, "proc_raise": true,
	"random_get":  true,
	"sched_yield": true,
	"sock_accept": true, "sock_recv": true, "sock_send": true, "sock_shutdown": true,
}

// Build classifies m's imports and sections, consulting mem for the
// memory.grow/maximum-pages signal the "unbounded growth" vulnerability
// needs.
func Build(m *wasm.Module, mem *memprofile.Report) *Report {
	r := &Report{}

	findings := map[string]*Finding{}
	var wasiFns []string
	wasiModule := ""

	for _, imp := range m.Imports {
		if imp.Kind != wasm.ImportKindFunc {
			continue
		}
		if strings.HasPrefix(imp.Module, "wasi_") {
			r.WASIUsage.UsesWASI = true
			if wasiModule == "" {
				wasiModule = imp.Module
			}
			if wasiPreview1Functions[imp.Name] {
				wasiFns = append(wasiFns, imp.Name)
			}
		}
		if rl, ok := match(imp.Module, imp.Name); ok {
			f, exists := findings[rl.Capability]
			if !exists {
				f = &Finding{Name: rl.Capability, Risk: rl.Risk, Description: rl.Description}
				findings[rl.Capability] = f
			}
			f.Evidence = append(f.Evidence, imp.Module+"::"+imp.Name)
		}
	}
	r.WASIUsage.WASIVersion = wasiModule
	sort.Strings(wasiFns)
	r.WASIUsage.WASIFunctions = wasiFns

	for _, f := range findings {
		sort.Strings(f.Evidence)
		r.Capabilities = append(r.Capabilities, *f)
	}
	sort.Slice(r.Capabilities, func(i, j int) bool { return r.Capabilities[i].Name < r.Capabilities[j].Name })

	r.Vulnerabilities = vulnerabilities(m, mem)

	r.Sandbox = Sandbox{
		Browser:            !hasFilesystemOrSocket(r.Capabilities),
		Node:                true,
		CloudflareWorkers:  !hasFilesystemOrSocket(r.Capabilities),
		ServerSideWasmtime: true,
	}

	return r
}

func hasFilesystemOrSocket(findings []Finding) bool {
	for _, f := range findings {
		if f.Name == "Filesystem I/O" || f.Name == "Network I/O" {
			return true
		}
	}
	return false
}

func vulnerabilities(m *wasm.Module, mem *memprofile.Report) []Vulnerability {
	var vulns []Vulnerability

	if mem.Operations.Grow > 0 && mem.Layout.MaximumPages == nil {
		vulns = append(vulns, Vulnerability{
			Name:        "unbounded memory growth",
			Risk:        RiskMedium,
			Description: "memory.grow is used but the memory declares no maximum page count",
		})
	}

	importedGlobals := m.ImportedGlobalCount()
	for _, exp := range m.Exports {
		if exp.Kind != wasm.ExternKindGlobal {
			continue
		}
		localIndex := int(exp.Index) - importedGlobals
		if localIndex < 0 || localIndex >= len(m.Globals) {
			continue
		}
		if m.Globals[localIndex].Type.Mutable {
			vulns = append(vulns, Vulnerability{
				Name:        "mutable exported global",
				Risk:        RiskLow,
				Description: "export \"" + exp.Name + "\" exposes a mutable global for host mutation",
			})
			break
		}
	}

	for _, mt := range m.Memories {
		if mt.Shared {
			vulns = append(vulns, Vulnerability{
				Name:        "shared memory",
				Risk:        RiskLow,
				Description: "module declares a shared memory, implying threads/atomics usage",
			})
			break
		}
	}

	sort.Slice(vulns, func(i, j int) bool { return vulns[i].Name < vulns[j].Name })
	return vulns
}
