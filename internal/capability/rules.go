package capability

import "strings"

// RiskLevel is the severity of an inferred capability or vulnerability.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// rule matches an import by (module, name) prefix or exact match and maps
// it to a named capability finding. Empty NamePrefixes and NameContains
// mean "any name in this module"; ModuleExact forces an exact module match
// instead of a ModulePrefix match. NameContains is matched against the
// lower-cased name, for substring rules like env::*alloc*/*free*.
type rule struct {
	ModulePrefix string
	ModuleExact  string
	NamePrefixes []string
	NameContains []string
	Capability   string
	Risk         RiskLevel
	Description  string
}

// ruleTable is the fixed capability inference table from spec §4.4. Order
// matters: the first matching rule wins, most specific first.
var ruleTable = []rule{
	{
		ModuleExact:  "wasi_snapshot_preview1",
		NamePrefixes: []string{"fd_", "path_"},
		Capability:   "Filesystem I/O",
		Risk:         RiskHigh,
		Description:  "imports WASI filesystem/descriptor functions",
	},
	{
		ModuleExact:  "wasi_snapshot_preview1",
		NamePrefixes: []string{"sock_"},
		Capability:   "Network I/O",
		Risk:         RiskHigh,
		Description:  "imports WASI socket functions",
	},
	{
		ModuleExact:  "wasi_snapshot_preview1",
		NamePrefixes: []string{"proc_", "environ_", "args_"},
		Capability:   "Process/env introspection",
		Risk:         RiskMedium,
		Description:  "imports WASI process, environment, or argument functions",
	},
	{
		ModuleExact:  "wasi_snapshot_preview1",
		NamePrefixes: []string{"clock_", "random_"},
		Capability:   "Clock / randomness",
		Risk:         RiskLow,
		Description:  "imports WASI clock or randomness functions",
	},
	{
		ModuleExact:  "env",
		NamePrefixes: []string{"emscripten_"},
		Capability:   "Emscripten host",
		Risk:         RiskMedium,
		Description:  "imports an Emscripten runtime support function",
	},
	{
		ModuleExact:  "env",
		NameContains: []string{"alloc", "free"},
		Capability:   "Host allocator",
		Risk:         RiskLow,
		Description:  "imports a host-provided allocator function",
	},
}

// match finds the first rule matching (module, name), if any.
func match(module, name string) (rule, bool) {
	for _, r := range ruleTable {
		if r.ModuleExact != "" && r.ModuleExact != module {
			continue
		}
		if r.ModulePrefix != "" && !strings.HasPrefix(module, r.ModulePrefix) {
			continue
		}
		if len(r.NamePrefixes) > 0 {
			matched := false
			for _, p := range r.NamePrefixes {
				if strings.HasPrefix(name, p) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if len(r.NameContains) > 0 {
			matched := false
			lower := strings.ToLower(name)
			for _, s := range r.NameContains {
				if strings.Contains(lower, s) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		return r, true
	}
	return rule{}, false
}
