// internal/server/routes.go
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"secgate/internal/authn/basic"
	"secgate/internal/authn/rememberme"
	"secgate/internal/contextutil"
	"secgate/internal/observability/logging"
	"secgate/internal/session"
)

// whoamiResponse is the JSON body returned by /whoami
type whoamiResponse struct {
	Authenticated bool     `json:"authenticated"`
	Subject       string   `json:"subject,omitempty"`
	Authorities   []string `json:"authorities,omitempty"`
	Provider      string   `json:"provider,omitempty"`
	Scheme        string   `json:"scheme,omitempty"`
}

// Routes is the demonstration application surface behind the security
// pipeline. Reading /whoami is what forces the lazy context resolution for
// requests that did not authenticate inline.
type Routes struct {
	*mux.Router
	realm      string
	sessions   *session.Manager
	rememberMe *rememberme.Service
	logger     *logging.Logger
}

// NewRoutes creates the application router
func NewRoutes(realm string, sessions *session.Manager, rememberMe *rememberme.Service, logger *logging.Logger) *Routes {
	r := &Routes{
		Router:     mux.NewRouter(),
		realm:      realm,
		sessions:   sessions,
		rememberMe: rememberMe,
		logger:     logger.WithModule("server.routes"),
	}

	r.HandleFunc("/healthz", r.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/whoami", r.handleWhoami).Methods(http.MethodGet)
	r.HandleFunc("/login", r.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", r.handleLogout).Methods(http.MethodPost)

	return r
}

func (r *Routes) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleWhoami reports the resolved identity. This read goes through the
// holder and triggers the deferred store recovery on first access.
func (r *Routes) handleWhoami(w http.ResponseWriter, req *http.Request) {
	holder := contextutil.GetHolder(req.Context())
	if holder == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sctx, err := holder.Context()
	if err != nil {
		r.logger.Error("Security context resolution failed", logging.Err(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	response := whoamiResponse{
		Authenticated: sctx.IsAuthenticated(),
		Scheme:        string(contextutil.GetScheme(req.Context())),
	}
	if identity := sctx.Identity(); identity != nil {
		response.Subject = identity.Subject
		response.Authorities = identity.Authorities
		response.Provider = identity.Provider
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// handleLogin requires the request to have authenticated inline; the
// authentication stage has already persisted the context by the time this
// handler runs.
func (r *Routes) handleLogin(w http.ResponseWriter, req *http.Request) {
	identity := contextutil.GetIdentity(req.Context())
	if identity == nil || !identity.Authenticated {
		basic.EntryPoint{Realm: r.realm}.Commence(w, req, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(whoamiResponse{
		Authenticated: true,
		Subject:       identity.Subject,
		Authorities:   identity.Authorities,
		Provider:      identity.Provider,
		Scheme:        string(contextutil.GetScheme(req.Context())),
	})
}

// handleLogout destroys the session and invalidates the remember-me cookie
func (r *Routes) handleLogout(w http.ResponseWriter, req *http.Request) {
	if r.sessions != nil {
		if token, ok := r.sessions.Token(req); ok {
			if err := r.sessions.Destroy(req.Context(), w, token); err != nil {
				r.logger.Error("Failed to destroy session", logging.Err(err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}
	}
	if r.rememberMe != nil {
		r.rememberMe.ClearCookie(w)
	}
	w.WriteHeader(http.StatusNoContent)
}
