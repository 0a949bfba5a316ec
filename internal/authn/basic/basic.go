// internal/authn/basic/basic.go
package basic

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"secgate/internal/authn"
	"secgate/internal/contextutil"
	"secgate/internal/observability/logging"
	"secgate/internal/observability/metrics"
	"secgate/internal/store"
)

const scheme = "Basic "

// Converter extracts a username/password credential from an HTTP Basic
// Authorization header. Requests without the header, or with one that does
// not parse, yield no credential: Basic is never a hard requirement at
// extraction time.
type Converter struct{}

// Convert decodes "Authorization: Basic <base64(username:password)>". The
// pair is split on the first colon, so passwords may contain colons and
// usernames may not.
func (Converter) Convert(r *http.Request) (authn.Credential, error) {
	header := r.Header.Get("Authorization")
	if len(header) < len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(scheme):]))
	if err != nil {
		// Malformed is treated as absence; the pipeline continues
		// unauthenticated and the route decides what that means.
		return nil, nil
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return nil, nil
	}

	return authn.NewPassword(username, password), nil
}

// EntryPoint challenges the client to authenticate with Basic credentials
type EntryPoint struct {
	// Realm is the protection space reported to the client
	Realm string
}

// Commence writes the Basic challenge response
func (e EntryPoint) Commence(w http.ResponseWriter, r *http.Request, _ error) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", e.Realm))
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// Config holds Basic authentication stage configuration
type Config struct {
	// Realm is the protection space in the challenge
	Realm string

	// Providers is the ordered provider chain consulted for password
	// credentials
	Providers []authn.Provider

	// Store receives successful contexts (write-through)
	Store store.ContextStore

	// Success runs after a verified login (e.g. remember-me issuance)
	Success authn.SuccessHandler

	// Failure runs after a rejected login
	Failure authn.FailureHandler
}

// New creates the Basic authentication pipeline stage
func New(config Config, logger *logging.Logger, collector *metrics.Collector) *authn.Stage {
	return authn.NewStage(authn.StageConfig{
		Name:       "basic",
		Scheme:     contextutil.SchemeBasic,
		Converter:  Converter{},
		Providers:  config.Providers,
		Store:      config.Store,
		Success:    config.Success,
		Failure:    config.Failure,
		EntryPoint: EntryPoint{Realm: config.Realm},
	}, logger, collector)
}
