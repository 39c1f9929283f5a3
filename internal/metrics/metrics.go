// Package metrics exposes Prometheus instrumentation for the HTTP surface,
// the content store and admin logins.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chapterpress_http_requests_total",
			Help: "Total number of HTTP requests by method, route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chapterpress_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chapterpress_store_errors_total",
			Help: "Total number of content store failures by operation",
		},
		[]string{"op"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chapterpress_login_attempts_total",
			Help: "Admin login attempts by result (success, failure, throttled)",
		},
		[]string{"result"},
	)

	ContentWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chapterpress_content_writes_total",
			Help: "Successful content mutations by entity and action",
		},
		[]string{"entity", "action"},
	)

	PageCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chapterpress_page_cache_lookups_total",
			Help: "Public page cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// RecordRequest records one served HTTP request.
func RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(op string) {
	StoreErrors.WithLabelValues(op).Inc()
}

// RecordLogin counts a login attempt.
func RecordLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}

// RecordWrite counts a successful content mutation.
func RecordWrite(entity, action string) {
	ContentWrites.WithLabelValues(entity, action).Inc()
}

// RecordCacheLookup counts a page cache lookup.
func RecordCacheLookup(result string) {
	PageCacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
