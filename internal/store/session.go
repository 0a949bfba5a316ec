// internal/store/session.go
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"secgate/internal/observability/logging"
	"secgate/internal/observability/metrics"
	"secgate/internal/security"
	"secgate/internal/session"
)

// persistedContext is the wire form of a saved security context. Credential
// material is never part of it.
type persistedContext struct {
	Subject     string   `json:"subject"`
	Authorities []string `json:"authorities,omitempty"`
	Provider    string   `json:"provider,omitempty"`
	RemoteAddr  string   `json:"remote_addr,omitempty"`
}

// SessionStore persists security contexts in a session backend, keyed by a
// session token carried in a cookie.
type SessionStore struct {
	sessions *session.Manager
	logger   *logging.Logger
	metrics  *metrics.Collector
}

// NewSessionStore creates a session-backed context store
func NewSessionStore(sessions *session.Manager, logger *logging.Logger, collector *metrics.Collector) *SessionStore {
	return &SessionStore{
		sessions: sessions,
		logger:   logger.WithModule("store.session"),
		metrics:  collector,
	}
}

// Name returns the store name
func (s *SessionStore) Name() string { return "session" }

// LoadDeferred returns a lazy resolution of the context saved under the
// request's session. A request without a session cookie is absence, decided
// without touching the backend.
func (s *SessionStore) LoadDeferred(r *http.Request) security.Deferred {
	token, ok := s.sessions.Token(r)
	if !ok {
		return security.Generated()
	}

	ctx := r.Context()
	return security.Lazy(func() (*security.Context, bool, error) {
		data, err := s.sessions.Get(ctx, token)
		if errors.Is(err, session.ErrNotFound) {
			s.metrics.RecordContextLoad(s.Name(), false)
			return nil, true, nil
		}
		if err != nil {
			s.metrics.RecordContextLoad(s.Name(), false)
			return nil, false, fmt.Errorf("session lookup: %w", err)
		}

		var persisted persistedContext
		if err := json.Unmarshal(data, &persisted); err != nil {
			// A malformed record is a store failure, not absence. Drop the
			// broken session so the next request starts clean.
			s.logger.Warn("Discarding malformed session record")
			_ = s.sessions.DeleteRecord(ctx, token)
			return nil, false, fmt.Errorf("decode session record: %w", err)
		}

		identity := security.NewIdentity(persisted.Subject, persisted.Authorities, persisted.Provider).
			WithDetails(security.Details{
				RemoteAddr:   persisted.RemoteAddr,
				SessionToken: token,
			})

		s.metrics.RecordContextLoad(s.Name(), true)
		return security.NewContext(identity), false, nil
	})
}

// Save persists the context under the request's session, issuing a session
// cookie when the request has none. Saving an empty context destroys any
// existing session instead.
func (s *SessionStore) Save(sctx *security.Context, r *http.Request, w http.ResponseWriter) error {
	ctx := r.Context()

	identity := sctx.Identity()
	if identity == nil {
		if token, ok := s.sessions.Token(r); ok {
			return s.sessions.Destroy(ctx, w, token)
		}
		return nil
	}

	data, err := json.Marshal(persistedContext{
		Subject:     identity.Subject,
		Authorities: identity.Authorities,
		Provider:    identity.Provider,
		RemoteAddr:  identity.Details.RemoteAddr,
	})
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	if _, err := s.sessions.Save(ctx, w, r, data); err != nil {
		s.metrics.RecordContextSave(s.Name(), false)
		return fmt.Errorf("session save: %w", err)
	}

	s.metrics.RecordContextSave(s.Name(), true)
	s.logger.Debug("Security context persisted", "subject", identity.Subject)
	return nil
}
