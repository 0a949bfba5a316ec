// internal/security/holder.go
package security

// Holder is the per-request access point for the active security context.
// A holder is bound to exactly one request's context.Context by the
// propagation stage and owned by that request's goroutine, so no locking is
// needed.
type Holder struct {
	pending  Deferred
	resolved *Context
}

// NewHolder creates an unbound holder.
func NewHolder() *Holder {
	return &Holder{}
}

// SetDeferred installs the pending lazy resolution for this request. It is
// not evaluated until Context is first called.
func (h *Holder) SetDeferred(d Deferred) {
	h.pending = d
	h.resolved = nil
}

// SetContext eagerly installs a resolved context, bypassing any pending
// resolution. Used after successful authentication.
func (h *Holder) SetContext(ctx *Context) {
	h.resolved = ctx
}

// Context returns the security context for the request, forcing evaluation
// of the pending resolution on first access if nothing was set eagerly.
func (h *Holder) Context() (*Context, error) {
	if h.resolved != nil {
		return h.resolved, nil
	}
	if h.pending != nil {
		ctx, err := h.pending.Get()
		if err != nil {
			return nil, err
		}
		h.resolved = ctx
		return ctx, nil
	}
	h.resolved = NewEmptyContext()
	return h.resolved, nil
}

// Clear drops both the pending resolution and any resolved context. The
// propagation stage calls this unconditionally at teardown so nothing leaks
// into a reused execution context.
func (h *Holder) Clear() {
	h.pending = nil
	h.resolved = nil
}
