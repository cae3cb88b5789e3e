package metrics

import "time"

func RecordCacheHit(cacheName string) {
	Get().CacheHitsTotal.WithLabelValues(cacheName).Inc()
}

func RecordCacheMiss(cacheName string) {
	Get().CacheMissesTotal.WithLabelValues(cacheName).Inc()
}

func RecordRateLimitExceeded(endpoint, method string) {
	Get().RateLimitExceededTotal.WithLabelValues(endpoint, method).Inc()
}

func RecordError(errorType, endpoint string) {
	Get().ErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordTrendingRun records one finished trending run
func RecordTrendingRun(status string, trending int, duration time.Duration) {
	m := Get()
	m.TrendingRunsTotal.WithLabelValues(status).Inc()
	m.TrendingRunDuration.Observe(duration.Seconds())
	m.TrendingToolsCurrent.Set(float64(trending))
}

func RecordImportRun(source, status string) {
	Get().ImportRunsTotal.WithLabelValues(source, status).Inc()
}

// RecordImportCandidate counts a candidate outcome: imported, skipped or failed
func RecordImportCandidate(source, outcome string) {
	Get().ImportCandidatesTotal.WithLabelValues(source, outcome).Inc()
}

func RecordEnrichment(provider, outcome string) {
	Get().EnrichmentTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordExternalCall observes the latency of an outbound call
func RecordExternalCall(service string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	Get().ExternalCallDuration.WithLabelValues(service, status).Observe(time.Since(start).Seconds())
}

func RecordSearch(backend string) {
	Get().SearchQueriesTotal.WithLabelValues(backend).Inc()
}
