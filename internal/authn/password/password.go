// internal/authn/password/password.go
package password

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"secgate/internal/authn"
	"secgate/internal/observability/logging"
	"secgate/internal/security"
)

// User is one entry in the registry
type User struct {
	// Name is the login name
	Name string

	// PasswordHash is the bcrypt hash of the user's password
	PasswordHash string

	// Authorities are the authority names granted on login
	Authorities []string
}

// dummyHash is compared against when the user is unknown, so lookup misses
// and password mismatches take comparable time.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Provider verifies username/password credentials against an in-memory
// user registry with bcrypt-hashed passwords.
type Provider struct {
	users  map[string]User
	logger *logging.Logger
}

// NewProvider creates a password provider over the given users
func NewProvider(users []User, logger *logging.Logger) *Provider {
	registry := make(map[string]User, len(users))
	for _, u := range users {
		registry[u.Name] = u
	}
	return &Provider{
		users:  registry,
		logger: logger.WithModule("authn.password"),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "password"
}

// Supports reports whether the credential is a password credential
func (p *Provider) Supports(c authn.Credential) bool {
	_, ok := c.(*authn.Password)
	return ok
}

// Authenticate verifies the password against the registry
func (p *Provider) Authenticate(_ context.Context, c authn.Credential) (*security.Identity, error) {
	cred, ok := c.(*authn.Password)
	if !ok {
		return nil, authn.ErrNoProvider
	}

	user, found := p.users[cred.Username]
	if !found {
		// Burn a comparison anyway; an early return would leak which
		// usernames exist.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(cred.Secret()))
		return nil, authn.ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(cred.Secret())); err != nil {
		return nil, authn.ErrBadCredentials
	}

	return security.NewIdentity(user.Name, user.Authorities, p.Name()), nil
}

// HashPassword produces a bcrypt hash suitable for the registry. Exposed
// for configuration tooling and tests.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
