// Package wasminspect is the public facade over the static WebAssembly
// module analyzer. The real work lives in internal/; this package only
// exposes the single Analyze entry point and its configuration, mirroring
// the thin-facade-over-internal layout this corpus uses for its runtimes.
package wasminspect

import (
	"github.com/jeffasante/wasm-inspector/api"
	"github.com/jeffasante/wasm-inspector/internal/analyzer"
)

// AnalysisReport is the canonical, JSON-serializable analysis result.
type AnalysisReport = api.AnalysisReport

const (
	defaultHotspotCount = 10
)

// defaultConfig mirrors wazero's engineLessConfig pattern: a single
// package-level template that every With* option clones rather than
// mutates, so concurrent callers building different configs never share
// state.
var defaultConfig = &AnalyzerConfig{
	maxModuleSize:  64 << 20,
	maxSectionSize: 64 << 20,
	hotspotCount:   defaultHotspotCount,
}

// AnalyzerConfig carries every piece of explicit configuration Analyze
// accepts: size limits and the memory-profiler hotspot count. There is no
// package-level mutable default beyond the immutable template above.
type AnalyzerConfig struct {
	maxModuleSize  int
	maxSectionSize int
	hotspotCount   int
}

// NewAnalyzerConfig returns the default configuration: a 64 MiB module and
// section size limit, and a top-10 memory hotspot list.
func NewAnalyzerConfig() *AnalyzerConfig {
	cfg := *defaultConfig
	return &cfg
}

func (c *AnalyzerConfig) clone() *AnalyzerConfig {
	cp := *c
	return &cp
}

// WithMaxModuleSize bounds the largest input Analyze accepts, in bytes.
func (c *AnalyzerConfig) WithMaxModuleSize(n int) *AnalyzerConfig {
	ret := c.clone()
	ret.maxModuleSize = n
	return ret
}

// WithMaxSectionSize bounds the largest single section payload Analyze
// accepts, in bytes.
func (c *AnalyzerConfig) WithMaxSectionSize(n int) *AnalyzerConfig {
	ret := c.clone()
	ret.maxSectionSize = n
	return ret
}

// WithHotspotCount sets N in "top N functions by memory-op count" for the
// memory profiler's hotspot list.
func (c *AnalyzerConfig) WithHotspotCount(n int) *AnalyzerConfig {
	ret := c.clone()
	ret.hotspotCount = n
	return ret
}

// Analyze decodes data as a WebAssembly binary module and runs every
// analysis pass, returning the aggregate report. The only failure modes
// are malformed module bytes or an input exceeding the configured size
// limits; every downstream pass is infallible given a valid module.
func Analyze(data []byte, cfg *AnalyzerConfig) (*AnalysisReport, error) {
	if cfg == nil {
		cfg = defaultConfig
	}
	return analyzer.Analyze(data, analyzer.Config{
		Limits: analyzer.Limits{
			MaxModuleSize:  cfg.maxModuleSize,
			MaxSectionSize: cfg.maxSectionSize,
		},
		HotspotCount: cfg.hotspotCount,
	})
}
