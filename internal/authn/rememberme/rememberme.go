// internal/authn/rememberme/rememberme.go
package rememberme

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"secgate/internal/authn"
	"secgate/internal/contextutil"
	"secgate/internal/observability/logging"
	"secgate/internal/observability/metrics"
	"secgate/internal/security"
	"secgate/internal/store"
)

// cookieToken is the credential form of a presented remember-me cookie. It
// is a distinct type so the service's provider claims it and nothing else
// does.
type cookieToken struct {
	raw []byte
}

func (t *cookieToken) Principal() string { return "" }
func (t *cookieToken) Erase() {
	for i := range t.raw {
		t.raw[i] = 0
	}
	t.raw = nil
}

type claims struct {
	Authorities []string `json:"authorities,omitempty"`
	jwt.RegisteredClaims
}

// Config holds remember-me configuration
type Config struct {
	// CookieName is the name of the remember-me cookie
	CookieName string

	// Key is the HMAC key signing remember-me tokens
	Key string

	// TTL is the token lifetime
	TTL time.Duration

	// Secure marks issued cookies as HTTPS-only
	Secure bool
}

// Service issues and verifies signed remember-me tokens. It is wired in
// three places: as the login-success hook of the credential stage (token
// issuance), as the login-fail hook (token invalidation), and as its own
// pipeline stage that re-authenticates requests presenting the cookie.
type Service struct {
	config  Config
	logger  *logging.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// New creates a remember-me service
func New(config Config, logger *logging.Logger, collector *metrics.Collector) (*Service, error) {
	if config.Key == "" {
		return nil, fmt.Errorf("remember-me enabled but no signing key provided")
	}
	if config.CookieName == "" {
		config.CookieName = "SECGATE_REMEMBER"
	}
	if config.TTL <= 0 {
		config.TTL = 14 * 24 * time.Hour
	}
	return &Service{
		config:  config,
		logger:  logger.WithModule("authn.rememberme"),
		metrics: collector,
		now:     time.Now,
	}, nil
}

// CookieName returns the name of the remember-me cookie
func (s *Service) CookieName() string {
	return s.config.CookieName
}

// OnLoginSuccess issues a signed remember-me token for the authenticated
// identity. Implements authn.SuccessHandler.
func (s *Service) OnLoginSuccess(w http.ResponseWriter, r *http.Request, identity *security.Identity) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Authorities: identity.Authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
		},
	})

	signed, err := token.SignedString([]byte(s.config.Key))
	if err != nil {
		s.logger.Error("Failed to sign remember-me token", logging.Err(err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.config.TTL / time.Second),
		HttpOnly: true,
		Secure:   s.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.metrics.RecordRememberMeIssued()
	s.logger.Debug("Remember-me token issued", "subject", identity.Subject)
}

// OnLoginFail invalidates any presented remember-me cookie. Implements
// authn.FailureHandler.
func (s *Service) OnLoginFail(w http.ResponseWriter, r *http.Request, _ error) {
	if _, err := r.Cookie(s.config.CookieName); err != nil {
		return
	}
	s.ClearCookie(w)
}

// ClearCookie expires the remember-me cookie on the response
func (s *Service) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Convert extracts the remember-me cookie as a credential. Requests already
// carrying explicit credentials, or an eagerly authenticated context, are
// left alone. Implements authn.Converter.
func (s *Service) Convert(r *http.Request) (authn.Credential, error) {
	// An earlier stage already authenticated this request. The pending lazy
	// resolution is deliberately not forced just to decide whether to try
	// the cookie.
	if contextutil.GetScheme(r.Context()) != "" {
		return nil, nil
	}

	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	return &cookieToken{raw: []byte(cookie.Value)}, nil
}

// Name returns the provider name
func (s *Service) Name() string {
	return "remember-me"
}

// Supports reports whether the credential is a remember-me cookie token
func (s *Service) Supports(c authn.Credential) bool {
	_, ok := c.(*cookieToken)
	return ok
}

// Authenticate verifies the token signature and expiry and rebuilds the
// identity from its claims. Implements authn.Provider.
func (s *Service) Authenticate(_ context.Context, c authn.Credential) (*security.Identity, error) {
	cred, ok := c.(*cookieToken)
	if !ok {
		return nil, authn.ErrNoProvider
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(string(cred.raw), &parsed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Key), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authn.ErrBadCredentials, err)
	}
	if parsed.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", authn.ErrBadCredentials)
	}

	return security.NewIdentity(parsed.Subject, parsed.Authorities, s.Name()), nil
}

// NewStage creates the remember-me re-authentication pipeline stage. A
// rejected cookie clears itself and the request continues unauthenticated;
// stale remember-me state never blocks a request.
func (s *Service) NewStage(contextStore store.ContextStore, logger *logging.Logger, collector *metrics.Collector) *authn.Stage {
	return authn.NewStage(authn.StageConfig{
		Name:              "rememberme",
		Scheme:            contextutil.SchemeRememberMe,
		Converter:         s,
		Providers:         []authn.Provider{s},
		Store:             contextStore,
		Failure:           s,
		ContinueOnFailure: true,
	}, logger, collector)
}
