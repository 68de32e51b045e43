// Package metrics exposes Prometheus collectors for the fleetlens API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestsTotal counts API requests by route and status code.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetlens_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	// APIRequestDuration tracks API request latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetlens_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "route"},
	)

	// QueryDuration tracks store query latency by operation.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetlens_store_query_duration_seconds",
			Help:    "Store query duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)

	// QueryErrors counts failed store queries by operation.
	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetlens_store_query_errors_total",
			Help: "Total number of failed store queries",
		},
		[]string{"operation"},
	)

	// FallbackPayloads counts generated payloads served instead of table data.
	FallbackPayloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetlens_fallback_payloads_total",
			Help: "Total number of generated fallback payloads served",
		},
		[]string{"table", "reason"},
	)

	// Unauthorized counts requests rejected by the API key gate.
	Unauthorized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetlens_unauthorized_requests_total",
			Help: "Total number of requests rejected for a missing or wrong API key",
		},
	)
)

// RecordRequest records one finished API request.
func RecordRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordQuery records one store query.
func RecordQuery(operation string, d time.Duration, err error) {
	QueryDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		QueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordFallback records a generated payload served for table.
func RecordFallback(table, reason string) {
	FallbackPayloads.WithLabelValues(table, reason).Inc()
}
