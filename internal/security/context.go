// internal/security/context.go
package security

// Details carries request-scoped metadata attached to an identity at
// creation time.
type Details struct {
	// RemoteAddr is the network address the authentication request came from
	RemoteAddr string

	// SessionToken is the session the identity was recovered from, if any
	SessionToken string
}

// Identity represents a resolved principal
type Identity struct {
	// Subject is the unique identifier for this identity
	Subject string

	// Authorities are the granted authority names
	Authorities []string

	// Provider is the name of the provider that authenticated this identity
	// (e.g. "password", "bearer", "remember-me")
	Provider string

	// Authenticated indicates the identity has been verified. Identities
	// recovered from a backing store are always authenticated; transient
	// unverified values only exist inside a provider during verification.
	Authenticated bool

	// Details is opaque request metadata attached at creation time
	Details Details

	credentials []byte
}

// NewIdentity creates a verified identity. The returned value is treated as
// immutable by every consumer.
func NewIdentity(subject string, authorities []string, provider string) *Identity {
	return &Identity{
		Subject:       subject,
		Authorities:   append([]string(nil), authorities...),
		Provider:      provider,
		Authenticated: true,
	}
}

// WithDetails returns a copy of the identity carrying the given details.
func (i *Identity) WithDetails(details Details) *Identity {
	clone := *i
	clone.Authorities = append([]string(nil), i.Authorities...)
	clone.Details = details
	return &clone
}

// HasAuthority reports whether the identity was granted the named authority.
func (i *Identity) HasAuthority(name string) bool {
	for _, a := range i.Authorities {
		if a == name {
			return true
		}
	}
	return false
}

// EraseCredentials wipes any credential material still attached to the
// identity. Called once verification has completed.
func (i *Identity) EraseCredentials() {
	for j := range i.credentials {
		i.credentials[j] = 0
	}
	i.credentials = nil
}

// Context holds zero or one identity for the duration of one request.
// A context is never mutated in place: authentication replaces it wholesale.
type Context struct {
	identity *Identity
}

// NewEmptyContext creates a context holding no identity.
func NewEmptyContext() *Context {
	return &Context{}
}

// NewContext creates a context holding the given identity.
func NewContext(identity *Identity) *Context {
	return &Context{identity: identity}
}

// Identity returns the held identity, or nil if the context is empty.
func (c *Context) Identity() *Identity {
	if c == nil {
		return nil
	}
	return c.identity
}

// IsAuthenticated reports whether the context holds a verified identity.
func (c *Context) IsAuthenticated() bool {
	return c != nil && c.identity != nil && c.identity.Authenticated
}
