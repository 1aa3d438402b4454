// Package metrics provides Prometheus metrics for concept extraction, discipline classification
// and the external services the reading log depends on.
//
// Usage:
//
//	metrics.RecordExtraction("completed")
//	metrics.RecordLLMRequest("ok", time.Since(start))
//	metrics.RecordCatalogRequest("error")
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExtractionOutcomesTotal counts per-book extraction outcomes by resulting status.
	ExtractionOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readlog_extraction_outcomes_total",
			Help: "Total number of concept extraction attempts by outcome status",
		},
		[]string{"status"}, // "completed", "empty", "failed"
	)

	// ClassificationsTotal counts discipline classifications.
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readlog_discipline_classifications_total",
			Help: "Total number of discipline classifications by result",
		},
		[]string{"result"}, // "matched", "fallback", "error"
	)

	// LLMRequestDuration tracks text-generation latency, including retries.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "readlog_llm_request_duration_seconds",
			Help:    "Duration of text generation calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"outcome"}, // "ok", "error", "circuit_open"
	)

	// CatalogRequestsTotal counts library-catalog searches.
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readlog_catalog_requests_total",
			Help: "Total number of library catalog searches by outcome",
		},
		[]string{"outcome"}, // "ok", "error", "circuit_open"
	)

	// CircuitBreakerOpen is 1 while the named breaker is open or half-open.
	CircuitBreakerOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "readlog_circuit_breaker_open",
			Help: "Whether a circuit breaker is currently not closed",
		},
		[]string{"name"},
	)
)

// RecordExtraction records one extraction outcome.
func RecordExtraction(status string) {
	ExtractionOutcomesTotal.WithLabelValues(status).Inc()
}

// RecordClassification records one discipline classification.
func RecordClassification(result string) {
	ClassificationsTotal.WithLabelValues(result).Inc()
}

// RecordLLMRequest records a text-generation call.
func RecordLLMRequest(outcome string, d time.Duration) {
	LLMRequestDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordCatalogRequest records a catalog search.
func RecordCatalogRequest(outcome string) {
	CatalogRequestsTotal.WithLabelValues(outcome).Inc()
}

// SetBreakerOpen records a circuit breaker transition.
func SetBreakerOpen(name string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	CircuitBreakerOpen.WithLabelValues(name).Set(v)
}
