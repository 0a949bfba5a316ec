// internal/session/session.go
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"secgate/internal/observability/logging"
)

// ErrNotFound is returned by a Backend when no live session exists for a token
var ErrNotFound = errors.New("session not found")

// Backend is the persistence medium for session payloads. Implementations
// own their timeout and cleanup behavior.
type Backend interface {
	// Get returns the payload stored for the token, or ErrNotFound
	Get(ctx context.Context, token string) ([]byte, error)

	// Put stores the payload for the token until expiresAt
	Put(ctx context.Context, token string, data []byte, expiresAt time.Time) error

	// Delete removes the session for the token; deleting an absent session is not an error
	Delete(ctx context.Context, token string) error

	// Close releases backend resources
	Close() error
}

// Config holds session manager configuration
type Config struct {
	// CookieName is the name of the session cookie
	CookieName string

	// TTL is the session lifetime
	TTL time.Duration

	// Secure marks issued cookies as HTTPS-only
	Secure bool
}

// Manager issues session tokens, tracks them in a cookie, and reads and
// writes session payloads through a Backend.
type Manager struct {
	backend Backend
	config  Config
	logger  *logging.Logger
}

// NewManager creates a session manager over the given backend
func NewManager(backend Backend, config Config, logger *logging.Logger) *Manager {
	if config.CookieName == "" {
		config.CookieName = "SECGATE_SESSION"
	}
	if config.TTL <= 0 {
		config.TTL = 30 * time.Minute
	}
	return &Manager{
		backend: backend,
		config:  config,
		logger:  logger.WithModule("session"),
	}
}

// CookieName returns the name of the session cookie
func (m *Manager) CookieName() string {
	return m.config.CookieName
}

// Token returns the session token carried by the request's cookie, if any.
// This is a pure header inspection; no backend I/O happens here.
func (m *Manager) Token(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Get loads the payload for the given token from the backend
func (m *Manager) Get(ctx context.Context, token string) ([]byte, error) {
	return m.backend.Get(ctx, token)
}

// Save stores the payload under the request's existing session token, or
// issues a new token and sets the session cookie on the response.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, r *http.Request, data []byte) (string, error) {
	token, ok := m.Token(r)
	if !ok {
		token = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     m.config.CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(m.config.TTL / time.Second),
			HttpOnly: true,
			Secure:   m.config.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if err := m.backend.Put(ctx, token, data, time.Now().Add(m.config.TTL)); err != nil {
		return "", err
	}
	return token, nil
}

// Destroy removes the session for the token and expires the cookie
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, token string) error {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return m.backend.Delete(ctx, token)
}

// DeleteRecord drops the backend record for a token without touching the
// response. The cookie simply misses on the next request.
func (m *Manager) DeleteRecord(ctx context.Context, token string) error {
	return m.backend.Delete(ctx, token)
}

// Close releases the underlying backend
func (m *Manager) Close() error {
	return m.backend.Close()
}
