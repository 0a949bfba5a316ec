// internal/observability/observability.go
package observability

import (
	"net/http"
	"time"

	"secgate/internal/contextutil"
	"secgate/internal/httputils"
	"secgate/internal/observability/logging"
	"secgate/internal/observability/metrics"
)

// Provider provides observability capabilities
type Provider struct {
	Logger  *logging.Logger
	Metrics *metrics.Collector
}

// NewProvider creates a new observability provider
func NewProvider(logLevel string) (*Provider, error) {
	logger, err := logging.NewLogger(logLevel)
	if err != nil {
		return nil, err
	}

	return &Provider{
		Logger:  logger,
		Metrics: metrics.NewCollector(),
	}, nil
}

// MetricsHandler returns the HTTP handler exposing prometheus metrics
func (p *Provider) MetricsHandler() http.Handler {
	return metrics.Handler()
}

// Middleware creates an HTTP middleware for request observation. It attaches
// trace/span IDs and a request-scoped logger to the context, and records
// request metrics on completion.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ctx := contextutil.EnrichContext(r.Context(), p.Logger)
		logger := contextutil.GetLogger(ctx)

		wrapper := httputils.NewResponseWriter(w)
		wrapper.Header().Set("X-Trace-ID", contextutil.GetTraceID(ctx))

		logger.Debug("Request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		duration := time.Since(startTime)
		p.Metrics.RecordRequest(r.Method, r.URL.Path, wrapper.StatusCode, duration)

		logger.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.StatusCode,
			"bytes", wrapper.BytesWritten,
			"duration", duration,
		)
	})
}
