package manager

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secgate/internal/authn"
	"secgate/internal/authn/password"
	"secgate/internal/config"
	"secgate/internal/contextutil"
	"secgate/internal/observability/logging"
	"secgate/internal/observability/metrics"
)

// namedStage records the order in which stages see the request
type namedStage struct {
	name  string
	trace *[]string
}

func (s *namedStage) Name() string { return s.name }

func (s *namedStage) GetMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*s.trace = append(*s.trace, s.name)
		next.ServeHTTP(w, r)
	})
}

func TestMiddlewareStageOrder(t *testing.T) {
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)

	var trace []string
	stages := []authn.Middleware{
		&namedStage{name: "first", trace: &trace},
		&namedStage{name: "second", trace: &trace},
		&namedStage{name: "third", trace: &trace},
	}

	m := NewManager(authn.NewPropagator(nil, logger), stages, logger)
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, contextutil.GetHolder(r.Context()), "propagation runs before every stage")
		trace = append(trace, "handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"first", "second", "third", "handler"}, trace)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := password.HashPassword("s3cret")
	require.NoError(t, err)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Auth.Users = []config.User{
		{Name: "alice", PasswordHash: hash, Authorities: []string{"users"}},
	}
	cfg.Auth.RememberMe.Enabled = true
	cfg.Auth.RememberMe.Key = "test-signing-key"
	cfg.Session.GCInterval = time.Minute
	return cfg
}

func newPipeline(t *testing.T) (*Manager, http.Handler) {
	t.Helper()
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)

	m, err := NewManagerFromConfig(testConfig(t), logger, metrics.NewCollector())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity := contextutil.GetIdentity(r.Context()); identity != nil {
			w.Write([]byte(identity.Subject))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	return m, handler
}

func cookieByName(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no cookie named %s", name)
	return nil
}

func TestLoginIssuesSessionAndRememberMe(t *testing.T) {
	m, handler := newPipeline(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("alice:s3cret")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	cookies := rec.Result().Cookies()
	session := cookieByName(t, cookies, m.Sessions().CookieName())
	remember := cookieByName(t, cookies, m.RememberMe().CookieName())
	assert.NotEmpty(t, session.Value)
	assert.NotEmpty(t, remember.Value)
}

func TestRememberMeSurvivesSessionLoss(t *testing.T) {
	m, handler := newPipeline(t)

	login := httptest.NewRequest(http.MethodGet, "/", nil)
	login.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("alice:s3cret")))
	loginRec := httptest.NewRecorder()
	handler.ServeHTTP(loginRec, login)
	require.Equal(t, http.StatusOK, loginRec.Code)

	cookies := loginRec.Result().Cookies()
	session := cookieByName(t, cookies, m.Sessions().CookieName())
	remember := cookieByName(t, cookies, m.RememberMe().CookieName())

	// Expire the session server-side; only the remember-me cookie remains
	// valid.
	require.NoError(t, m.Sessions().DeleteRecord(login.Context(), session.Value))

	replay := httptest.NewRequest(http.MethodGet, "/", nil)
	replay.AddCookie(remember)
	replayRec := httptest.NewRecorder()
	handler.ServeHTTP(replayRec, replay)

	assert.Equal(t, http.StatusOK, replayRec.Code)
	assert.Equal(t, "alice", replayRec.Body.String(), "the remember-me stage re-authenticates the request")
}

func TestWrongPasswordChallengesAndClearsRememberMe(t *testing.T) {
	m, handler := newPipeline(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("alice:wrong")))
	req.AddCookie(&http.Cookie{Name: m.RememberMe().CookieName(), Value: "stale"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	remember := cookieByName(t, rec.Result().Cookies(), m.RememberMe().CookieName())
	assert.Empty(t, remember.Value, "a failed login invalidates the presented remember-me cookie")
}
