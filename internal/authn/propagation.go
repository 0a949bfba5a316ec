// internal/authn/propagation.go
package authn

import (
	"net/http"

	"secgate/internal/contextutil"
	"secgate/internal/observability/logging"
	"secgate/internal/security"
	"secgate/internal/store"
)

// Propagator is the pipeline stage that binds a lazy security context
// resolution to the request exactly once and guarantees teardown. It runs
// before any authentication stage.
type Propagator struct {
	store  store.ContextStore
	logger *logging.Logger
}

// NewPropagator creates a propagation stage over the given store
func NewPropagator(contextStore store.ContextStore, logger *logging.Logger) *Propagator {
	if contextStore == nil {
		contextStore = store.Null{}
	}
	return &Propagator{
		store:  contextStore,
		logger: logger.WithModule("authn.propagation"),
	}
}

// Name returns the name of this pipeline stage
func (p *Propagator) Name() string {
	return "context-propagation"
}

// GetMiddleware returns the propagation middleware. A holder already bound
// to the request marks a re-entrant invocation (nested dispatch into the
// same pipeline): the rest of the pipeline runs without rebinding, so the
// store is never consulted twice for one request.
func (p *Propagator) GetMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if contextutil.GetHolder(ctx) != nil {
			next.ServeHTTP(w, r)
			return
		}

		holder := security.NewHolder()
		holder.SetDeferred(p.store.LoadDeferred(r))

		// Teardown must run even when the pipeline panics or the request
		// is aborted, so a reused execution context never observes a stale
		// binding.
		defer holder.Clear()

		next.ServeHTTP(w, r.WithContext(contextutil.WithHolder(ctx, holder)))
	})
}
