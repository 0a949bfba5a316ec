// internal/authn/types.go
package authn

import (
	"context"
	"errors"
	"net/http"

	"secgate/internal/security"
)

// Credential is raw authentication material extracted from a request,
// awaiting verification.
type Credential interface {
	// Principal identifies the party attempting authentication
	Principal() string

	// Erase wipes secret material. Called once verification has completed,
	// regardless of outcome.
	Erase()
}

// Password is a username/password credential pair
type Password struct {
	Username string
	secret   []byte
}

// NewPassword creates a password credential
func NewPassword(username, password string) *Password {
	return &Password{Username: username, secret: []byte(password)}
}

// Principal returns the username
func (p *Password) Principal() string { return p.Username }

// Secret returns the password
func (p *Password) Secret() string { return string(p.secret) }

// Erase wipes the password
func (p *Password) Erase() {
	for i := range p.secret {
		p.secret[i] = 0
	}
	p.secret = nil
}

// Token is an opaque bearer token credential
type Token struct {
	raw []byte
}

// NewToken creates a bearer token credential
func NewToken(raw string) *Token {
	return &Token{raw: []byte(raw)}
}

// Principal is unknown until the token is verified
func (t *Token) Principal() string { return "" }

// Raw returns the token material
func (t *Token) Raw() string { return string(t.raw) }

// Erase wipes the token
func (t *Token) Erase() {
	for i := range t.raw {
		t.raw[i] = 0
	}
	t.raw = nil
}

// Converter extracts a credential from an incoming request. Absence of a
// credential, or one too malformed to parse, yields (nil, nil): the request
// proceeds unauthenticated.
type Converter interface {
	Convert(r *http.Request) (Credential, error)
}

// Provider verifies one kind of credential and produces an identity
type Provider interface {
	// Name returns the provider name
	Name() string

	// Supports tests whether this provider can verify the credential
	Supports(c Credential) bool

	// Authenticate verifies the credential. On success the returned
	// identity is verified and carries no secret material.
	Authenticate(ctx context.Context, c Credential) (*security.Identity, error)
}

// SuccessHandler runs after a credential was verified and the context
// persisted. It may issue a long-lived reauthentication token to the caller.
type SuccessHandler interface {
	OnLoginSuccess(w http.ResponseWriter, r *http.Request, identity *security.Identity)
}

// FailureHandler runs after an authentication attempt failed
type FailureHandler interface {
	OnLoginFail(w http.ResponseWriter, r *http.Request, err error)
}

// EntryPoint produces the client-visible response when authentication is
// required but absent or failed (e.g. a re-authentication challenge).
type EntryPoint interface {
	Commence(w http.ResponseWriter, r *http.Request, err error)
}

// Middleware is one link in the security pipeline
type Middleware interface {
	// Name returns the name of this pipeline stage
	Name() string

	// GetMiddleware returns an http.Handler middleware for this stage
	GetMiddleware(next http.Handler) http.Handler
}

// Typed authentication failures. They never escape the stage boundary;
// the entry point converts them into the client response.
var (
	// ErrNoProvider means no configured provider supports the credential
	ErrNoProvider = errors.New("no provider supports the submitted credential")

	// ErrBadCredentials means a provider rejected the credential
	ErrBadCredentials = errors.New("bad credentials")
)

// NoopSuccessHandler is the default success hook; it does nothing
type NoopSuccessHandler struct{}

// OnLoginSuccess does nothing
func (NoopSuccessHandler) OnLoginSuccess(http.ResponseWriter, *http.Request, *security.Identity) {}

// NoopFailureHandler is the default failure hook; it does nothing
type NoopFailureHandler struct{}

// OnLoginFail does nothing
func (NoopFailureHandler) OnLoginFail(http.ResponseWriter, *http.Request, error) {}
