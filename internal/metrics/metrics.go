// Package metrics provides Prometheus metrics for the catch-up service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values for RequestsTotal.
const (
	ResultOK       = "ok"
	ResultCached   = "cached"
	ResultInvalid  = "invalid"
	ResultFailed   = "failed"
	ResultLimited  = "rate_limited"
	ResultBadInput = "bad_request"
)

var (
	// RequestsTotal counts catch-up requests by outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catchup",
			Name:      "requests_total",
			Help:      "Total number of catch-up requests",
		},
		[]string{"result"},
	)

	// CacheHits counts summaries served from the cache.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "catchup",
			Name:      "cache_hits_total",
			Help:      "Total number of summary cache hits",
		},
	)

	// CacheMisses counts lookups that required a generation.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "catchup",
			Name:      "cache_misses_total",
			Help:      "Total number of summary cache misses",
		},
	)

	// GenerationDuration measures summary generation time.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catchup",
			Name:      "generation_duration_seconds",
			Help:      "Duration of summary generation in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"status"},
	)

	// ErrorsTotal counts errors by operation.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catchup",
			Name:      "errors_total",
			Help:      "Total number of errors",
		},
		[]string{"operation"},
	)
)

// RecordRequest records the outcome of a catch-up request.
func RecordRequest(result string) {
	RequestsTotal.WithLabelValues(result).Inc()
}

// RecordGeneration records one call to the summary generator.
func RecordGeneration(ok bool, seconds float64) {
	status := "ok"
	if !ok {
		status = "error"
	}
	GenerationDuration.WithLabelValues(status).Observe(seconds)
}

// RecordError records an error for operation.
func RecordError(operation string) {
	ErrorsTotal.WithLabelValues(operation).Inc()
}
