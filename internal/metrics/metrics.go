package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the FindMyAI backend
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Cache and rate limiting
	CacheHitsTotal         *prometheus.CounterVec
	CacheMissesTotal       *prometheus.CounterVec
	RateLimitExceededTotal *prometheus.CounterVec

	// Trending calculator
	TrendingRunsTotal    *prometheus.CounterVec
	TrendingRunDuration  prometheus.Histogram
	TrendingToolsCurrent prometheus.Gauge

	// Importer
	ImportRunsTotal       *prometheus.CounterVec
	ImportCandidatesTotal *prometheus.CounterVec
	EnrichmentTotal       *prometheus.CounterVec

	// Outbound calls (sources, AI providers, page metadata, search, storage)
	ExternalCallDuration *prometheus.HistogramVec

	SearchQueriesTotal *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all collectors with the default registry
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),

			CacheHitsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),
			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limit violations",
				},
				[]string{"endpoint", "method"},
			),

			TrendingRunsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "trending_runs_total",
					Help: "Trending score runs by outcome (ok, partial, failed)",
				},
				[]string{"status"},
			),
			TrendingRunDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "trending_run_duration_seconds",
					Help:    "Wall time of a full trending score run",
					Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300},
				},
			),
			TrendingToolsCurrent: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "trending_tools_current",
					Help: "Number of tools flagged trending by the last run",
				},
			),

			ImportRunsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "import_runs_total",
					Help: "Importer executions per source by outcome (ok, failed, cancelled)",
				},
				[]string{"source", "status"},
			),
			ImportCandidatesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "import_candidates_total",
					Help: "Import candidates by outcome (imported, skipped, failed)",
				},
				[]string{"source", "outcome"},
			),
			EnrichmentTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "enrichment_total",
					Help: "Generative enrichment attempts by outcome (ok, fallback, circuit_open)",
				},
				[]string{"provider", "outcome"},
			),

			ExternalCallDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "external_call_duration_seconds",
					Help:    "Latency of outbound calls in seconds",
					Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
				},
				[]string{"service", "status"},
			),

			SearchQueriesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "search_queries_total",
					Help: "Tool searches by backend (elasticsearch, sql)",
				},
				[]string{"backend"},
			),
			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance, initializing it on first use
func Get() *Metrics {
	return Initialize()
}
