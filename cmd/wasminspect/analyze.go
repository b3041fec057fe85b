package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeffasante/wasm-inspector/api"
	"github.com/jeffasante/wasm-inspector/internal/analyzer"
	"github.com/jeffasante/wasm-inspector/internal/callgraph"
	"github.com/jeffasante/wasm-inspector/internal/wasm/binary"
	"github.com/jeffasante/wasm-inspector/internal/xlog"
	wasminspect "github.com/jeffasante/wasm-inspector"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		format       string
		securityOnly bool
		memoryOnly   bool
		graphOnly    bool
		outputPath   string
		logLevel     string
		metricsAddr  string
	)

	cmd := &cobra.Command{
		Use:   "analyze <path.wasm>",
		Short: "Decode and analyze a WebAssembly binary module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindEnv(cmd, viper.GetViper()); err != nil {
				return err
			}

			log, err := xlog.New(logLevel, "text")
			if err != nil {
				return &argError{err}
			}

			if metricsAddr != "" {
				serveMetrics(metricsAddr)
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return &argError{errors.Wrapf(err, "read %s", path)}
			}

			start := time.Now()
			report, err := wasminspect.Analyze(data, wasminspect.NewAnalyzerConfig())
			if metricsAddr != "" {
				analysisDuration.Observe(time.Since(start).Seconds())
				outcome := "success"
				if err != nil {
					outcome = "failure"
				}
				analysisCounter.WithLabelValues(outcome).Inc()
			}
			if err != nil {
				return &analysisError{err}
			}

			if securityOnly {
				return writeOutput(outputPath, mustJSON(report.SecurityAnalysis))
			}
			if memoryOnly {
				return writeOutput(outputPath, mustJSON(report.MemoryAnalysis))
			}
			if graphOnly {
				m, decodeErr := binary.Decode(data, binary.DefaultLimits())
				if decodeErr != nil {
					return &analysisError{decodeErr}
				}
				g := callgraph.Build(m)
				return writeOutput(outputPath, analyzer.DOT(g))
			}

			var rendered string
			switch format {
			case "json":
				rendered = mustJSON(report)
			case "detailed":
				rendered = renderDetailed(report)
			default:
				rendered = renderSummary(report)
			}

			log.Debugf("analyzed %s: %d functions", path, report.PerformanceMetrics.FunctionCount)
			return writeOutput(outputPath, rendered)
		},
	}

	cmd.Flags().StringVar(&format, "format", "summary", "output format: summary, detailed, json")
	cmd.Flags().BoolVar(&securityOnly, "security-only", false, "print only the security analysis")
	cmd.Flags().BoolVar(&memoryOnly, "memory-only", false, "print only the memory analysis")
	cmd.Flags().BoolVar(&graphOnly, "graph-only", false, "print only the call graph, as Graphviz DOT")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write output to this path instead of stdout")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

func mustJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(b)
}

func writeOutput(path, content string) error {
	if path == "" {
		fmt.Println(content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		return &argError{errors.Wrapf(err, "write %s", path)}
	}
	return nil
}

func renderSummary(r *api.AnalysisReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module: version=%d functions=%d imports=%d exports=%d\n",
		r.ModuleInfo.Version, len(r.ModuleInfo.Functions), len(r.ModuleInfo.Imports), len(r.ModuleInfo.Exports))
	fmt.Fprintf(&b, "call graph: nodes=%d edges=%d unreachable=%d\n",
		len(r.CallGraph.Nodes), len(r.CallGraph.Edges), len(r.CallGraph.UnreachableFunctions))
	fmt.Fprintf(&b, "memory: load=%d store=%d grow=%d\n",
		r.MemoryAnalysis.Operations.Load, r.MemoryAnalysis.Operations.Store, r.MemoryAnalysis.Operations.Grow)
	fmt.Fprintf(&b, "security: %d capabilities, %d vulnerabilities, wasi=%v\n",
		len(r.SecurityAnalysis.Capabilities), len(r.SecurityAnalysis.Vulnerabilities), r.SecurityAnalysis.WASIUsage.UsesWASI)
	fmt.Fprintf(&b, "performance: complexity=%.1f cold_start_ms=%.2f\n",
		r.PerformanceMetrics.ComplexityScore, r.PerformanceMetrics.ColdStartEstimateMS)
	fmt.Fprintf(&b, "compatibility: browser=%v cloudflare_workers=%v language=%s\n",
		r.Compatibility.Browser.Compatible, r.Compatibility.CloudflareWorkers.Compatible, r.Compatibility.DetectedLanguage)
	return strings.TrimRight(b.String(), "\n")
}

func renderDetailed(r *api.AnalysisReport) string {
	var b strings.Builder
	b.WriteString(renderSummary(r))
	b.WriteString("\n\ncapabilities:\n")
	for _, c := range r.SecurityAnalysis.Capabilities {
		fmt.Fprintf(&b, "  - %s (%s): %s\n", c.Name, c.RiskLevel, c.Description)
	}
	b.WriteString("vulnerabilities:\n")
	for _, v := range r.SecurityAnalysis.Vulnerabilities {
		fmt.Fprintf(&b, "  - %s (%s): %s\n", v.Name, v.RiskLevel, v.Description)
	}
	b.WriteString("optimization suggestions:\n")
	for _, s := range r.PerformanceMetrics.OptimizationSuggestions {
		fmt.Fprintf(&b, "  - %s\n", s)
	}
	return strings.TrimRight(b.String(), "\n")
}
