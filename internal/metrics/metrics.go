// Package metrics exposes Prometheus instruments for resolutions and source calls.
// All instruments register on the default registry served at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resolutionsTotal counts finished resolutions by status and verdict
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthlens_resolutions_total",
		Help: "Total claim resolutions by status and verdict",
	}, []string{"status", "verdict"})

	// resolutionDuration tracks end-to-end resolution latency
	resolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "truthlens_resolution_duration_seconds",
		Help:    "Claim resolution duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	})

	// sourceRequests counts adapter calls by source and outcome
	sourceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthlens_source_requests_total",
		Help: "Total source adapter calls by source and outcome",
	}, []string{"source", "outcome"})

	// enrichmentAttempts counts individual classifier attempts
	enrichmentAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthlens_enrichment_attempts_total",
		Help: "Total enrichment attempts by outcome",
	}, []string{"outcome"})

	// cacheLookups counts lookup cache hits and misses per source
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthlens_cache_lookups_total",
		Help: "Total lookup cache reads by source and result",
	}, []string{"source", "result"})
)

// Source call outcomes
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// ObserveResolution records a finished resolution
func ObserveResolution(status, verdict string, elapsed time.Duration) {
	resolutionsTotal.WithLabelValues(status, verdict).Inc()
	resolutionDuration.Observe(elapsed.Seconds())
}

// ObserveSource records one adapter call
func ObserveSource(source, outcome string) {
	sourceRequests.WithLabelValues(source, outcome).Inc()
}

// ObserveEnrichmentAttempt records one classifier attempt
func ObserveEnrichmentAttempt(outcome string) {
	enrichmentAttempts.WithLabelValues(outcome).Inc()
}

// ObserveCache records a cache read
func ObserveCache(source string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(source, result).Inc()
}
