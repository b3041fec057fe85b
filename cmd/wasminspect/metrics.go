package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// analysisCounter and analysisDuration are registered with the default
// registry at startup, but only updated and served when --metrics-addr is
// set; the core itself never touches Prometheus,
// matching the ambient-stack decision that instrumentation is a driver
// concern, not a core one.
var (
	analysisCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wasminspect_analyses_total",
		Help: "Number of modules analyzed, by outcome.",
	}, []string{"outcome"})

	analysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "wasminspect_analysis_duration_seconds",
		Help: "Wall-clock duration of a single analyze call.",
	})
)

func init() {
	prometheus.MustRegister(analysisCounter, analysisDuration)
}

// serveMetrics starts a background HTTP server exposing /metrics on addr.
// Called only when the CLI's --metrics-addr flag is non-empty.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
