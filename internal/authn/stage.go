// internal/authn/stage.go
package authn

import (
	"net/http"

	"secgate/internal/contextutil"
	"secgate/internal/observability/logging"
	"secgate/internal/observability/metrics"
	"secgate/internal/security"
	"secgate/internal/store"
)

// StageConfig assembles one credential authentication stage
type StageConfig struct {
	// Name is the stage name, also used as the metrics scheme label
	Name string

	// Scheme is recorded in the request context on success
	Scheme contextutil.Scheme

	// Converter extracts the credential this stage handles
	Converter Converter

	// Providers is the ordered provider chain; the first provider that
	// supports the credential attempts verification
	Providers []Provider

	// Store receives the fresh context on success (write-through).
	// Defaults to store.Null.
	Store store.ContextStore

	// Success runs after a verified login. Defaults to a no-op.
	Success SuccessHandler

	// Failure runs after a rejected login. Defaults to a no-op.
	Failure FailureHandler

	// EntryPoint produces the failure response. Required unless
	// ContinueOnFailure is set.
	EntryPoint EntryPoint

	// ContinueOnFailure makes the stage treat a rejected credential as
	// absence: hooks run, but the pipeline continues unauthenticated.
	// Used by cookie-based re-authentication, never by challenge schemes.
	ContinueOnFailure bool
}

// Stage is a pipeline stage that authenticates requests carrying inline
// credentials: it extracts a credential, verifies it through the provider
// chain, publishes the fresh context through the holder, persists it, and
// drives the success/failure side effects.
type Stage struct {
	config  StageConfig
	logger  *logging.Logger
	metrics *metrics.Collector
}

// NewStage creates a credential authentication stage
func NewStage(config StageConfig, logger *logging.Logger, collector *metrics.Collector) *Stage {
	if config.Store == nil {
		config.Store = store.Null{}
	}
	if config.Success == nil {
		config.Success = NoopSuccessHandler{}
	}
	if config.Failure == nil {
		config.Failure = NoopFailureHandler{}
	}
	return &Stage{
		config:  config,
		logger:  logger.WithModule("authn." + config.Name),
		metrics: collector,
	}
}

// Name returns the name of this pipeline stage
func (s *Stage) Name() string {
	return s.config.Name
}

// GetMiddleware returns the authentication middleware for this stage
func (s *Stage) GetMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := contextutil.GetLogger(ctx)
		if logger == nil {
			logger = s.logger
		}

		cred, err := s.config.Converter.Convert(r)
		if err != nil {
			// A credential too malformed to parse is absence, not an error.
			logger.Debug("Credential conversion failed, continuing unauthenticated", logging.Err(err))
			next.ServeHTTP(w, r)
			return
		}
		if cred == nil {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := s.authenticate(r, cred)
		cred.Erase()

		if err != nil {
			s.metrics.RecordAuthentication(s.config.Name, false)
			logger.Debug("Authentication failed", "stage", s.config.Name, logging.Err(err))

			// Clear any eagerly resolved context; failure never leaves a
			// half-authenticated state behind.
			if holder := contextutil.GetHolder(ctx); holder != nil {
				holder.SetContext(security.NewEmptyContext())
			}

			s.config.Failure.OnLoginFail(w, r, err)

			if s.config.ContinueOnFailure {
				next.ServeHTTP(w, r)
				return
			}
			s.config.EntryPoint.Commence(w, r, err)
			return
		}

		identity = identity.WithDetails(security.Details{RemoteAddr: r.RemoteAddr})
		identity.EraseCredentials()
		sctx := security.NewContext(identity)

		if holder := contextutil.GetHolder(ctx); holder != nil {
			holder.SetContext(sctx)
		}

		if err := s.config.Store.Save(sctx, r, w); err != nil {
			logger.Error("Failed to persist security context", logging.Err(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		s.metrics.RecordAuthentication(s.config.Name, true)
		logger.Debug("Authentication succeeded", "subject", identity.Subject, "stage", s.config.Name)

		s.config.Success.OnLoginSuccess(w, r, identity)

		next.ServeHTTP(w, r.WithContext(contextutil.WithScheme(ctx, s.config.Scheme)))
	})
}

// authenticate submits the credential to the provider chain; the first
// provider that supports the credential decides the outcome.
func (s *Stage) authenticate(r *http.Request, cred Credential) (*security.Identity, error) {
	for _, p := range s.config.Providers {
		if !p.Supports(cred) {
			continue
		}
		return p.Authenticate(r.Context(), cred)
	}
	return nil, ErrNoProvider
}
