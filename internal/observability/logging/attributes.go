// internal/observability/logging/attributes.go
package logging

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// RedactedURL wraps a url.URL for logging without exposing sensitive information
type RedactedURL struct {
	url *url.URL
}

// LogValue implements slog.LogValuer to avoid revealing passwords
func (u RedactedURL) LogValue() slog.Value {
	return slog.StringValue(u.url.Redacted())
}

// RedactURL returns a safely loggable URL value
func RedactURL(url *url.URL) RedactedURL {
	return RedactedURL{url: url}
}

// RedactedAuthorization is an Authorization header value for safe logging:
// the scheme is kept, the credential part is masked.
type RedactedAuthorization string

// LogValue implements slog.LogValuer to avoid revealing credentials
func (s RedactedAuthorization) LogValue() slog.Value {
	scheme, _, found := strings.Cut(string(s), " ")
	if !found {
		return slog.StringValue("xxxxx")
	}
	return slog.StringValue(scheme + " xxxxx")
}

// RedactAuthorization returns a safely loggable Authorization header value
func RedactAuthorization(s string) slog.LogValuer {
	return RedactedAuthorization(s)
}

var dsnPasswordRe = regexp.MustCompile(`(?P<Key>password)=\S+`)

// RedactedDSN is a postgres connection string for safe logging
type RedactedDSN string

// LogValue implements slog.LogValuer to avoid revealing passwords in
// key=value connection strings and URL-style DSNs
func (s RedactedDSN) LogValue() slog.Value {
	if u, err := url.Parse(string(s)); err == nil && u.Scheme != "" && u.User != nil {
		return slog.StringValue(u.Redacted())
	}
	if dsnPasswordRe.MatchString(string(s)) {
		return slog.StringValue(dsnPasswordRe.ReplaceAllString(string(s), `${Key}=xxxxx`))
	}
	return slog.StringValue(string(s))
}

// RedactDSN returns a safely loggable database connection string
func RedactDSN(s string) slog.LogValuer {
	return RedactedDSN(s)
}
