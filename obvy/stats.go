package tempo

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsInternal is the process-local prometheus registry and the
// collectors hanging off it. One instance serves the whole process,
// its Handler is mounted at /metrics.
type StatsInternal struct {
	Registry    *prometheus.Registry
	RunTotal    *prometheus.CounterVec
	WWWTotal    *prometheus.CounterVec
	RunDuration prometheus.Histogram
}

// NewStatsInternal creates the registry and registers all collectors
func NewStatsInternal() *StatsInternal {
	reg := prometheus.NewRegistry()

	runTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempo_analysis_runs_total",
			Help: "Completed analysis runs by data-quality branch",
		},
		[]string{"quality"},
	)

	wwwTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempo_http_requests_total",
			Help: "HTTP requests by status and method",
		},
		[]string{"status", "method"},
	)

	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tempo_analysis_duration_seconds",
			Help:    "Wall time of one full analysis run",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	reg.MustRegister(runTotal, wwwTotal, runDuration)

	return &StatsInternal{
		Registry:    reg,
		RunTotal:    runTotal,
		WWWTotal:    wwwTotal,
		RunDuration: runDuration,
	}
}

// RecRun counts one completed analysis under its quality branch.
// Every non-full label doubles as the fallback counter.
func (s *StatsInternal) RecRun(quality string) {
	s.RunTotal.WithLabelValues(quality).Inc()
}

// RecAnalysisTimer records the wall time of one analysis run
func (s *StatsInternal) RecAnalysisTimer(d time.Duration) {
	s.RunDuration.Observe(d.Seconds())
}

// RecWWW counts one HTTP request
func (s *StatsInternal) RecWWW(status, method string) {
	s.WWWTotal.WithLabelValues(status, method).Inc()
}

// Handler exposes the registry for the /metrics endpoint
func (s *StatsInternal) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})
}
