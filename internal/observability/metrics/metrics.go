// internal/observability/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Common label names for consistent metrics
const (
	LabelStatus  = "status"
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelScheme  = "scheme"
	LabelStore   = "store"
	LabelHit     = "hit"
	LabelSuccess = "success"
)

var (
	// RequestsTotal counts all HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secgate_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	// RequestDuration tracks the duration of HTTP requests
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "secgate_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	// AuthenticationTotal counts authentication attempts by scheme and outcome
	AuthenticationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secgate_authentication_total",
			Help: "Total number of authentication attempts",
		},
		[]string{LabelScheme, LabelSuccess},
	)

	// ContextLoadTotal counts security context recoveries by store and outcome
	ContextLoadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secgate_context_load_total",
			Help: "Total number of security context recoveries from backing stores",
		},
		[]string{LabelStore, LabelHit},
	)

	// ContextSaveTotal counts security context writes by store
	ContextSaveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secgate_context_save_total",
			Help: "Total number of security context writes to backing stores",
		},
		[]string{LabelStore, LabelSuccess},
	)

	// RememberMeIssuedTotal counts remember-me tokens issued
	RememberMeIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "secgate_rememberme_issued_total",
			Help: "Total number of remember-me tokens issued",
		},
	)
)

// Collector provides methods for recording metrics
type Collector struct{}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{}
}

// RecordRequest records metrics for an HTTP request
func (c *Collector) RecordRequest(method, path string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, path, http.StatusText(status)).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAuthentication records an authentication attempt
func (c *Collector) RecordAuthentication(scheme string, success bool) {
	AuthenticationTotal.WithLabelValues(scheme, boolToString(success)).Inc()
}

// RecordContextLoad records a security context recovery from a backing store
func (c *Collector) RecordContextLoad(store string, hit bool) {
	ContextLoadTotal.WithLabelValues(store, boolToString(hit)).Inc()
}

// RecordContextSave records a security context write to a backing store
func (c *Collector) RecordContextSave(store string, success bool) {
	ContextSaveTotal.WithLabelValues(store, boolToString(success)).Inc()
}

// RecordRememberMeIssued records an issued remember-me token
func (c *Collector) RecordRememberMeIssued() {
	RememberMeIssuedTotal.Inc()
}

// Handler returns an HTTP handler for exposing metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// boolToString converts a boolean to a string representation
func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
