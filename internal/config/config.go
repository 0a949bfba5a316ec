// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads the configuration from all sources and returns the merged result
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	Settings.PopulateViperDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("SECGATE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Load from config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// It's okay if the config file doesn't exist, but other errors should be reported
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	config := &Config{}

	// Populate server configuration
	config.Server.Address = v.GetString("SERVER_ADDR")
	shutdownTimeout, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	config.Server.ShutdownTimeout = shutdownTimeout

	// Populate metrics configuration
	config.Metrics.Address = v.GetString("METRICS_ADDR")

	// Populate authentication configuration
	config.Auth.Realm = v.GetString("AUTH_REALM")
	if err := v.UnmarshalKey("AUTH_USERS", &config.Auth.Users); err != nil {
		return nil, fmt.Errorf("invalid user registry: %w", err)
	}

	// Bearer
	config.Auth.Bearer.Enabled = v.GetBool("AUTH_BEARER_ENABLED")
	config.Auth.Bearer.Issuer = v.GetString("AUTH_BEARER_ISSUER")
	config.Auth.Bearer.ClientID = v.GetString("AUTH_BEARER_CLIENT_ID")

	// Remember-me
	config.Auth.RememberMe.Enabled = v.GetBool("AUTH_REMEMBERME_ENABLED")
	config.Auth.RememberMe.Key = v.GetString("AUTH_REMEMBERME_KEY")
	config.Auth.RememberMe.CookieName = v.GetString("AUTH_REMEMBERME_COOKIE_NAME")
	rememberTTL, err := time.ParseDuration(v.GetString("AUTH_REMEMBERME_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid remember-me TTL: %w", err)
	}
	config.Auth.RememberMe.TTL = rememberTTL

	// Populate session configuration
	config.Session.Backend = v.GetString("SESSION_BACKEND")
	config.Session.PostgresDSN = v.GetString("SESSION_POSTGRES_DSN")
	config.Session.CookieName = v.GetString("SESSION_COOKIE_NAME")
	config.Session.CookieSecure = v.GetBool("SESSION_COOKIE_SECURE")
	sessionTTL, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid session TTL: %w", err)
	}
	config.Session.TTL = sessionTTL
	gcInterval, err := time.ParseDuration(v.GetString("SESSION_GC_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid session GC interval: %w", err)
	}
	config.Session.GCInterval = gcInterval

	// Populate observability configuration
	config.Observability.LogLevel = v.GetString("LOG_LEVEL")

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig performs validation on the loaded configuration
func validateConfig(cfg *Config) error {
	// Validate session configuration
	switch cfg.Session.Backend {
	case "memory":
	case "postgres":
		if cfg.Session.PostgresDSN == "" {
			return fmt.Errorf("postgres DSN is required when using the postgres session backend")
		}
	default:
		return fmt.Errorf("invalid session backend: '%s'", cfg.Session.Backend)
	}

	// Validate authentication configurations
	if err := validateAuthConfig(cfg); err != nil {
		return err
	}

	return nil
}

// validateAuthConfig validates authentication configuration
func validateAuthConfig(cfg *Config) error {
	for _, u := range cfg.Auth.Users {
		if u.Name == "" {
			return fmt.Errorf("user registry entry with empty name")
		}
		if u.PasswordHash == "" {
			return fmt.Errorf("user '%s' has no password hash", u.Name)
		}
	}

	// Validate bearer configuration
	if cfg.Auth.Bearer.Enabled {
		if cfg.Auth.Bearer.Issuer == "" {
			return fmt.Errorf("bearer issuer is required when bearer authentication is enabled")
		}
		if cfg.Auth.Bearer.ClientID == "" {
			return fmt.Errorf("bearer client ID is required when bearer authentication is enabled")
		}
	}

	// Validate remember-me configuration
	if cfg.Auth.RememberMe.Enabled {
		if cfg.Auth.RememberMe.Key == "" {
			return fmt.Errorf("remember-me key is required when remember-me is enabled")
		}
	}

	return nil
}
