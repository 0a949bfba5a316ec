// internal/authn/bearer/bearer.go
package bearer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"secgate/internal/authn"
	"secgate/internal/contextutil"
	"secgate/internal/observability/logging"
	"secgate/internal/observability/metrics"
	"secgate/internal/security"
	"secgate/internal/store"
)

const scheme = "Bearer "

// Converter extracts a bearer token from the Authorization header
type Converter struct{}

// Convert returns a token credential for "Authorization: Bearer <token>".
// An empty or absent token yields no credential.
func (Converter) Convert(r *http.Request) (authn.Credential, error) {
	header := r.Header.Get("Authorization")
	if len(header) < len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return nil, nil
	}
	raw := strings.TrimSpace(header[len(scheme):])
	if raw == "" {
		return nil, nil
	}
	return authn.NewToken(raw), nil
}

// audiences helps unmarshall the audience claim which can be either a string or an array
type audiences []string

func (a *audiences) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = []string{single}
		return nil
	}

	var multiple []string
	if err := json.Unmarshal(data, &multiple); err == nil {
		*a = multiple
		return nil
	}

	return fmt.Errorf("invalid audience claim format")
}

// Config holds bearer token verification configuration
type Config struct {
	// Issuer is the token issuer URL
	Issuer string

	// ClientID is the audience the token must be issued for
	ClientID string
}

// Provider verifies OIDC-issued bearer tokens
type Provider struct {
	verifier *oidc.IDTokenVerifier
	clientID string
	logger   *logging.Logger
}

// NewProvider creates a bearer token provider, performing issuer discovery
func NewProvider(ctx context.Context, config Config, logger *logging.Logger) (*Provider, error) {
	if config.Issuer == "" {
		return nil, fmt.Errorf("bearer authentication enabled but no issuer provided")
	}
	if config.ClientID == "" {
		return nil, fmt.Errorf("bearer authentication enabled but no client ID provided")
	}

	logger = logger.WithModule("authn.bearer")
	logger.Debug("Initializing OIDC provider for bearer authentication", "issuer", config.Issuer)

	oidcProvider, err := oidc.NewProvider(ctx, config.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OIDC provider: %w", err)
	}

	return &Provider{
		verifier: oidcProvider.Verifier(&oidc.Config{
			ClientID:          config.ClientID,
			SkipClientIDCheck: true, // audience is checked below for better error reporting
		}),
		clientID: config.ClientID,
		logger:   logger,
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "bearer"
}

// Supports reports whether the credential is a bearer token
func (p *Provider) Supports(c authn.Credential) bool {
	_, ok := c.(*authn.Token)
	return ok
}

// Authenticate verifies the token signature, issuer, and audience, and
// builds an identity from its claims. Scopes become authorities.
func (p *Provider) Authenticate(ctx context.Context, c authn.Credential) (*security.Identity, error) {
	cred, ok := c.(*authn.Token)
	if !ok {
		return nil, authn.ErrNoProvider
	}

	idToken, err := p.verifier.Verify(ctx, cred.Raw())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authn.ErrBadCredentials, err)
	}

	var claims struct {
		Subject string    `json:"sub"`
		Azp     string    `json:"azp,omitempty"`
		Aud     audiences `json:"aud,omitempty"`
		Scope   string    `json:"scope,omitempty"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: parsing claims: %v", authn.ErrBadCredentials, err)
	}

	if claims.Azp != p.clientID && !slices.Contains(claims.Aud, p.clientID) {
		p.logger.Debug("Bearer token audience mismatch",
			"expectedClientID", p.clientID,
			"aud", claims.Aud,
			"azp", claims.Azp,
		)
		return nil, fmt.Errorf("%w: audience mismatch", authn.ErrBadCredentials)
	}

	return security.NewIdentity(claims.Subject, strings.Fields(claims.Scope), p.Name()), nil
}

// EntryPoint challenges the client to present a bearer token
type EntryPoint struct{}

// Commence writes the bearer challenge response
func (EntryPoint) Commence(w http.ResponseWriter, r *http.Request, _ error) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, "Invalid bearer token", http.StatusForbidden)
}

// New creates the bearer authentication pipeline stage
func New(ctx context.Context, config Config, contextStore store.ContextStore, logger *logging.Logger, collector *metrics.Collector) (*authn.Stage, error) {
	provider, err := NewProvider(ctx, config, logger)
	if err != nil {
		return nil, err
	}
	return authn.NewStage(authn.StageConfig{
		Name:       "bearer",
		Scheme:     contextutil.SchemeBearer,
		Converter:  Converter{},
		Providers:  []authn.Provider{provider},
		Store:      contextStore,
		EntryPoint: EntryPoint{},
	}, logger, collector), nil
}
