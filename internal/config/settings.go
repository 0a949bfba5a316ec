// internal/config/settings.go
package config

import "github.com/spf13/viper"

// SettingType represents the type of a setting
type SettingType string

const (
	// String type for string settings
	String SettingType = "string"
	// Bool type for boolean settings
	Bool SettingType = "bool"
)

// Setting defines a configuration setting
type Setting struct {
	// Name is the name of the setting
	Name string
	// Short is a short description of the setting
	Short string
	// Type is the type of the setting
	Type SettingType
	// Default is the default value of the setting
	Default interface{}
	// Env is the environment variable name for the setting
	Env string
	// Required indicates whether the setting is required
	Required bool
}

// SettingList is a list of settings
type SettingList []Setting

// PopulateViperDefaults sets default values for all settings in Viper
func (sl SettingList) PopulateViperDefaults(v *viper.Viper) {
	for _, s := range sl {
		v.SetDefault(s.Name, s.Default)
	}
}

// Settings defines all application settings
var Settings = SettingList{
	// Server settings
	{
		Name:    "SERVER_ADDR",
		Short:   "Address on which the server listens",
		Type:    String,
		Default: ":8000",
		Env:     "SERVER_ADDR",
	},
	{
		Name:    "METRICS_ADDR",
		Short:   "Address on which the metrics server listens",
		Type:    String,
		Default: ":9090",
		Env:     "METRICS_ADDR",
	},
	{
		Name:    "SHUTDOWN_TIMEOUT",
		Short:   "Maximum time to wait for graceful shutdown",
		Type:    String,
		Default: "30s",
		Env:     "SHUTDOWN_TIMEOUT",
	},

	// Authentication settings
	{
		Name:    "AUTH_REALM",
		Short:   "Protection space reported in Basic challenges",
		Type:    String,
		Default: "secgate",
		Env:     "AUTH_REALM",
	},
	{
		Name:    "AUTH_BEARER_ENABLED",
		Short:   "Enable bearer token authentication",
		Type:    Bool,
		Default: false,
		Env:     "AUTH_BEARER_ENABLED",
	},
	{
		Name:    "AUTH_BEARER_ISSUER",
		Short:   "Issuer URL for bearer token verification",
		Type:    String,
		Default: "",
		Env:     "AUTH_BEARER_ISSUER",
	},
	{
		Name:    "AUTH_BEARER_CLIENT_ID",
		Short:   "Audience bearer tokens must be issued for",
		Type:    String,
		Default: "",
		Env:     "AUTH_BEARER_CLIENT_ID",
	},
	{
		Name:    "AUTH_REMEMBERME_ENABLED",
		Short:   "Enable remember-me token issuance and re-authentication",
		Type:    Bool,
		Default: false,
		Env:     "AUTH_REMEMBERME_ENABLED",
	},
	{
		Name:    "AUTH_REMEMBERME_KEY",
		Short:   "HMAC key signing remember-me tokens",
		Type:    String,
		Default: "",
		Env:     "AUTH_REMEMBERME_KEY",
	},
	{
		Name:    "AUTH_REMEMBERME_COOKIE_NAME",
		Short:   "Name of the remember-me cookie",
		Type:    String,
		Default: "SECGATE_REMEMBER",
		Env:     "AUTH_REMEMBERME_COOKIE_NAME",
	},
	{
		Name:    "AUTH_REMEMBERME_TTL",
		Short:   "Lifetime of remember-me tokens",
		Type:    String,
		Default: "336h",
		Env:     "AUTH_REMEMBERME_TTL",
	},

	// Session settings
	{
		Name:    "SESSION_BACKEND",
		Short:   "Session backend (memory or postgres)",
		Type:    String,
		Default: "memory",
		Env:     "SESSION_BACKEND",
	},
	{
		Name:    "SESSION_POSTGRES_DSN",
		Short:   "Postgres connection string for the postgres session backend",
		Type:    String,
		Default: "",
		Env:     "SESSION_POSTGRES_DSN",
	},
	{
		Name:    "SESSION_COOKIE_NAME",
		Short:   "Name of the session cookie",
		Type:    String,
		Default: "SECGATE_SESSION",
		Env:     "SESSION_COOKIE_NAME",
	},
	{
		Name:    "SESSION_COOKIE_SECURE",
		Short:   "Mark issued cookies as HTTPS-only",
		Type:    Bool,
		Default: false,
		Env:     "SESSION_COOKIE_SECURE",
	},
	{
		Name:    "SESSION_TTL",
		Short:   "Session lifetime",
		Type:    String,
		Default: "30m",
		Env:     "SESSION_TTL",
	},
	{
		Name:    "SESSION_GC_INTERVAL",
		Short:   "How often the memory backend collects expired sessions",
		Type:    String,
		Default: "1m",
		Env:     "SESSION_GC_INTERVAL",
	},

	// Observability settings
	{
		Name:    "LOG_LEVEL",
		Short:   "Minimum log level (debug, info, warn, error)",
		Type:    String,
		Default: "info",
		Env:     "LOG_LEVEL",
	},
}
