// internal/store/store.go
package store

import (
	"net/http"

	"secgate/internal/security"
)

// ContextStore is a collaborator capable of loading and saving a security
// context for a request.
type ContextStore interface {
	// Name returns the store name used in logs and metrics
	Name() string

	// LoadDeferred returns a lazy resolution of the context this store has
	// for the request. The store is not consulted until the resolution is
	// first evaluated.
	LoadDeferred(r *http.Request) security.Deferred

	// Save persists the context for reuse by a future request
	Save(sctx *security.Context, r *http.Request, w http.ResponseWriter) error
}

// Null is a ContextStore that never has anything and persists nothing. It
// substitutes for an unconfigured store list.
type Null struct{}

// Name returns the store name
func (Null) Name() string { return "null" }

// LoadDeferred always reports generated
func (Null) LoadDeferred(*http.Request) security.Deferred {
	return security.Generated()
}

// Save is a no-op
func (Null) Save(*security.Context, *http.Request, http.ResponseWriter) error {
	return nil
}

// Chain combines an ordered list of stores into one. Loads fold left to
// right: the first store that actually recovered something wins, and the
// aggregate is generated only when every store came up empty. Saves write
// through to every store.
type Chain struct {
	stores []ContextStore
}

// NewChain creates a store chain. An empty list behaves like Null.
func NewChain(stores ...ContextStore) *Chain {
	return &Chain{stores: stores}
}

// Name returns the store name
func (c *Chain) Name() string { return "chain" }

// LoadDeferred folds the children's resolutions per the fallback-chain rule
func (c *Chain) LoadDeferred(r *http.Request) security.Deferred {
	deferreds := make([]security.Deferred, len(c.stores))
	for i, s := range c.stores {
		deferreds[i] = s.LoadDeferred(r)
	}
	return security.ChainDeferred(deferreds...)
}

// Save writes the context through to every store. All stores are attempted;
// the first error is returned.
func (c *Chain) Save(sctx *security.Context, r *http.Request, w http.ResponseWriter) error {
	var firstErr error
	for _, s := range c.stores {
		if err := s.Save(sctx, r, w); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
