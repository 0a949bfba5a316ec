// internal/contextutil/context.go
package contextutil

import (
	"context"

	"secgate/internal/observability/logging"
	"secgate/internal/security"
)

// Key is a type-safe key for context values
type Key string

const (
	// LoggerKey is the key for the logger
	LoggerKey Key = "secgate:logger"

	// TraceIDKey is the key for the trace ID
	TraceIDKey Key = "secgate:trace_id"

	// SpanIDKey is the key for the span ID
	SpanIDKey Key = "secgate:span_id"

	// HolderKey is the key for the per-request security context holder
	HolderKey Key = "secgate:holder"

	// SchemeKey is the key for the authentication scheme that produced the
	// current identity
	SchemeKey Key = "secgate:scheme"

	// RequestIDKey is the key for the request ID
	RequestIDKey Key = "secgate:request_id"
)

// Scheme identifies the authentication scheme used for a request
type Scheme string

const (
	// SchemeBasic is HTTP Basic authentication
	SchemeBasic Scheme = "basic"

	// SchemeBearer is bearer token authentication
	SchemeBearer Scheme = "bearer"

	// SchemeRememberMe is remember-me cookie re-authentication
	SchemeRememberMe Scheme = "remember-me"
)

// WithLogger adds a logger to a context
func WithLogger(ctx context.Context, logger *logging.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// GetLogger retrieves a logger from a context
func GetLogger(ctx context.Context) *logging.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*logging.Logger); ok {
		return logger
	}
	return nil
}

// WithTraceID adds a trace ID to a context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves a trace ID from a context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithSpanID adds a span ID to a context
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves a span ID from a context
func GetSpanID(ctx context.Context) string {
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok {
		return spanID
	}
	return ""
}

// WithHolder binds a security context holder to a request context. The
// propagation stage is the only writer; everything downstream reads.
func WithHolder(ctx context.Context, holder *security.Holder) context.Context {
	return context.WithValue(ctx, HolderKey, holder)
}

// GetHolder retrieves the bound security context holder, or nil when the
// propagation stage has not run for this request.
func GetHolder(ctx context.Context) *security.Holder {
	if holder, ok := ctx.Value(HolderKey).(*security.Holder); ok {
		return holder
	}
	return nil
}

// GetIdentity resolves the current identity through the bound holder,
// forcing lazy store recovery on first access. Returns nil when no holder
// is bound, resolution fails, or the request is unauthenticated.
func GetIdentity(ctx context.Context) *security.Identity {
	holder := GetHolder(ctx)
	if holder == nil {
		return nil
	}
	sctx, err := holder.Context()
	if err != nil {
		return nil
	}
	return sctx.Identity()
}

// WithScheme adds the authentication scheme to a context
func WithScheme(ctx context.Context, scheme Scheme) context.Context {
	return context.WithValue(ctx, SchemeKey, scheme)
}

// GetScheme retrieves the authentication scheme from a context
func GetScheme(ctx context.Context) Scheme {
	if scheme, ok := ctx.Value(SchemeKey).(Scheme); ok {
		return scheme
	}
	return ""
}

// WithRequestID adds a request ID to a context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves a request ID from a context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// EnrichContext adds standard observability items to a context
func EnrichContext(ctx context.Context, logger *logging.Logger) context.Context {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = logging.NewTraceID()
		ctx = WithTraceID(ctx, traceID)
	}

	spanID := logging.NewSpanID()
	ctx = WithSpanID(ctx, spanID)

	if logger != nil {
		logger = logger.With(
			logging.TraceIDKey, traceID,
			logging.SpanIDKey, spanID,
		)
		ctx = WithLogger(ctx, logger)
	}

	return ctx
}
