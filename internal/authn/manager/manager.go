// internal/authn/manager/manager.go
package manager

import (
	"context"
	"fmt"
	"net/http"

	"secgate/internal/authn"
	"secgate/internal/authn/basic"
	"secgate/internal/authn/bearer"
	"secgate/internal/authn/password"
	"secgate/internal/authn/rememberme"
	"secgate/internal/config"
	"secgate/internal/observability/logging"
	"secgate/internal/observability/metrics"
	"secgate/internal/session"
	"secgate/internal/store"
)

// Manager assembles the security pipeline: the propagation stage wraps an
// ordered chain of credential authentication stages.
type Manager struct {
	logger     *logging.Logger
	propagator *authn.Propagator
	stages     []authn.Middleware

	sessions   *session.Manager
	rememberMe *rememberme.Service
}

// NewManager creates a pipeline manager from already-built stages
func NewManager(propagator *authn.Propagator, stages []authn.Middleware, logger *logging.Logger) *Manager {
	return &Manager{
		logger:     logger.WithModule("authn.manager"),
		propagator: propagator,
		stages:     stages,
	}
}

// Middleware builds the complete security middleware chain. Stages run in
// list order; propagation always runs first so every stage sees a bound
// holder.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	handler := next
	for i := len(m.stages) - 1; i >= 0; i-- {
		handler = m.stages[i].GetMiddleware(handler)
		m.logger.Debug("Added stage to middleware chain", "stage", m.stages[i].Name())
	}
	return m.propagator.GetMiddleware(handler)
}

// Stages returns the configured authentication stages
func (m *Manager) Stages() []authn.Middleware {
	return m.stages
}

// Sessions returns the session manager, or nil when sessions are disabled
func (m *Manager) Sessions() *session.Manager {
	return m.sessions
}

// RememberMe returns the remember-me service, or nil when disabled
func (m *Manager) RememberMe() *rememberme.Service {
	return m.rememberMe
}

// Close releases pipeline resources (session backends)
func (m *Manager) Close() error {
	if m.sessions != nil {
		return m.sessions.Close()
	}
	return nil
}

// NewManagerFromConfig creates a Manager with stores and stages configured
// from application config
func NewManagerFromConfig(cfg *config.Config, logger *logging.Logger, collector *metrics.Collector) (*Manager, error) {
	factoryLogger := logger.WithModule("authn.factory")

	// Session backend
	var backend session.Backend
	switch cfg.Session.Backend {
	case "postgres":
		pg, err := session.OpenPostgres(cfg.Session.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres session backend: %w", err)
		}
		backend = pg
		factoryLogger.Info("Postgres session backend enabled", "dsn", logging.RedactDSN(cfg.Session.PostgresDSN))
	default:
		backend = session.NewMemoryBackend(cfg.Session.GCInterval)
		factoryLogger.Info("Memory session backend enabled")
	}

	sessions := session.NewManager(backend, session.Config{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.CookieSecure,
	}, logger)

	// Backing store chain. The session store is the only durable store;
	// the fold still goes through Chain so additional stores slot in by
	// configuration.
	contextStore := store.NewChain(
		store.NewSessionStore(sessions, logger, collector),
	)

	// Remember-me service, wired as success/failure hooks and as its own
	// re-authentication stage
	var rememberMe *rememberme.Service
	var success authn.SuccessHandler
	var failure authn.FailureHandler
	if cfg.Auth.RememberMe.Enabled {
		var err error
		rememberMe, err = rememberme.New(rememberme.Config{
			CookieName: cfg.Auth.RememberMe.CookieName,
			Key:        cfg.Auth.RememberMe.Key,
			TTL:        cfg.Auth.RememberMe.TTL,
			Secure:     cfg.Session.CookieSecure,
		}, logger, collector)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize remember-me: %w", err)
		}
		success = rememberMe
		failure = rememberMe
		factoryLogger.Info("Remember-me enabled")
	}

	// Stage order matters: explicit credentials first, then bearer, then
	// the remember-me cookie as the last resort.
	var stages []authn.Middleware

	passwordProvider := password.NewProvider(usersFromConfig(cfg.Auth.Users), logger)
	stages = append(stages, basic.New(basic.Config{
		Realm:     cfg.Auth.Realm,
		Providers: []authn.Provider{passwordProvider},
		Store:     contextStore,
		Success:   success,
		Failure:   failure,
	}, logger, collector))
	factoryLogger.Info("Basic authentication enabled", "users", len(cfg.Auth.Users))

	if cfg.Auth.Bearer.Enabled {
		bearerStage, err := bearer.New(context.Background(), bearer.Config{
			Issuer:   cfg.Auth.Bearer.Issuer,
			ClientID: cfg.Auth.Bearer.ClientID,
		}, contextStore, logger, collector)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize bearer authentication: %w", err)
		}
		stages = append(stages, bearerStage)
		factoryLogger.Info("Bearer authentication enabled", "issuer", cfg.Auth.Bearer.Issuer)
	}

	if rememberMe != nil {
		stages = append(stages, rememberMe.NewStage(contextStore, logger, collector))
	}

	m := NewManager(authn.NewPropagator(contextStore, logger), stages, logger)
	m.sessions = sessions
	m.rememberMe = rememberMe
	return m, nil
}

func usersFromConfig(users []config.User) []password.User {
	converted := make([]password.User, len(users))
	for i, u := range users {
		converted[i] = password.User{
			Name:         u.Name,
			PasswordHash: u.PasswordHash,
			Authorities:  u.Authorities,
		}
	}
	return converted
}
