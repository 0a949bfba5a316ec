// internal/config/types.go
package config

import (
	"time"
)

// User is one entry in the configured user registry
type User struct {
	// Name is the login name
	Name string `mapstructure:"name"`

	// PasswordHash is the bcrypt hash of the user's password
	PasswordHash string `mapstructure:"passwordHash"`

	// Authorities are the authority names granted on login
	Authorities []string `mapstructure:"authorities"`
}

// Config represents the complete application configuration
type Config struct {
	// Server holds HTTP server configuration
	Server struct {
		// Address is the address to listen on
		Address string
		// ShutdownTimeout is the maximum time to wait for a graceful shutdown
		ShutdownTimeout time.Duration
	}

	// Metrics holds metrics server configuration
	Metrics struct {
		// Address is the address to listen on for the metrics server
		Address string
	}

	// Auth holds authentication configuration
	Auth struct {
		// Realm is the Basic authentication protection space
		Realm string

		// Users is the in-memory user registry
		Users []User

		// Bearer holds bearer token authentication configuration
		Bearer struct {
			// Enabled indicates whether bearer authentication is enabled
			Enabled bool
			// Issuer is the token issuer URL
			Issuer string
			// ClientID is the audience tokens must be issued for
			ClientID string
		}

		// RememberMe holds remember-me configuration
		RememberMe struct {
			// Enabled indicates whether remember-me is enabled
			Enabled bool
			// Key is the HMAC key signing remember-me tokens
			Key string
			// CookieName is the name of the remember-me cookie
			CookieName string
			// TTL is the token lifetime
			TTL time.Duration
		}
	}

	// Session holds session store configuration
	Session struct {
		// Backend selects the session backend ("memory" or "postgres")
		Backend string
		// PostgresDSN is the postgres connection string for the postgres backend
		PostgresDSN string
		// CookieName is the name of the session cookie
		CookieName string
		// TTL is the session lifetime
		TTL time.Duration
		// GCInterval is how often the memory backend collects expired sessions
		GCInterval time.Duration
		// CookieSecure marks issued cookies as HTTPS-only
		CookieSecure bool
	}

	// Observability holds observability configuration
	Observability struct {
		// LogLevel is the minimum level emitted (debug, info, warn, error)
		LogLevel string
	}
}
