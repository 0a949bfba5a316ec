package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secgate/internal/observability/logging"
	"secgate/internal/observability/metrics"
	"secgate/internal/security"
	"secgate/internal/session"
)

func newSessionFixture(t *testing.T) (*SessionStore, *session.Manager) {
	t.Helper()
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)
	backend := session.NewMemoryBackend(time.Minute)
	t.Cleanup(func() { _ = backend.Close() })
	sessions := session.NewManager(backend, session.Config{TTL: time.Hour}, logger)
	return NewSessionStore(sessions, logger, metrics.NewCollector()), sessions
}

func TestSessionStoreNoCookieIsGenerated(t *testing.T) {
	s, _ := newSessionFixture(t)

	d := s.LoadDeferred(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, d.IsGenerated(), "no cookie means absence without backend I/O")

	ctx, err := d.Get()
	require.NoError(t, err)
	assert.False(t, ctx.IsAuthenticated())
}

func TestSessionStoreSaveLoadRoundTrip(t *testing.T) {
	s, _ := newSessionFixture(t)

	identity := security.NewIdentity("alice", []string{"users"}, "password").
		WithDetails(security.Details{RemoteAddr: "10.0.0.1:1234"})
	sctx := security.NewContext(identity)

	saveReq := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, s.Save(sctx, saveReq, rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	loadReq := httptest.NewRequest(http.MethodGet, "/", nil)
	loadReq.AddCookie(cookies[0])

	d := s.LoadDeferred(loadReq)
	loaded, err := d.Get()
	require.NoError(t, err)
	assert.False(t, d.IsGenerated())

	got := loaded.Identity()
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Subject)
	assert.Equal(t, []string{"users"}, got.Authorities)
	assert.Equal(t, "password", got.Provider)
	assert.Equal(t, "10.0.0.1:1234", got.Details.RemoteAddr)
	assert.Equal(t, cookies[0].Value, got.Details.SessionToken)
}

func TestSessionStoreUnknownTokenIsAbsence(t *testing.T) {
	s, _ := newSessionFixture(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "SECGATE_SESSION", Value: "never-issued"})

	d := s.LoadDeferred(r)
	ctx, err := d.Get()
	require.NoError(t, err)
	assert.False(t, ctx.IsAuthenticated())
	assert.True(t, d.IsGenerated())
}

func TestSessionStoreMalformedRecordIsDropped(t *testing.T) {
	s, sessions := newSessionFixture(t)
	ctx := context.Background()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "SECGATE_SESSION", Value: "broken"})
	_, err := sessions.Save(ctx, httptest.NewRecorder(), r, []byte("not json"))
	require.NoError(t, err)

	d := s.LoadDeferred(r)
	_, err = d.Get()
	assert.Error(t, err, "a malformed record is a store failure, not absence")

	_, err = sessions.Get(ctx, "broken")
	assert.ErrorIs(t, err, session.ErrNotFound, "the broken record is dropped")
}

func TestSessionStoreSaveEmptyContextDestroysSession(t *testing.T) {
	s, sessions := newSessionFixture(t)
	ctx := context.Background()

	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	r.AddCookie(&http.Cookie{Name: "SECGATE_SESSION", Value: "tok"})
	_, err := sessions.Save(ctx, httptest.NewRecorder(), r, []byte(`{"subject":"alice"}`))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, s.Save(security.NewEmptyContext(), r, rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge, "the session cookie is expired")

	_, err = sessions.Get(ctx, "tok")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionStoreSaveEmptyContextWithoutSession(t *testing.T) {
	s, _ := newSessionFixture(t)

	rec := httptest.NewRecorder()
	err := s.Save(security.NewEmptyContext(), httptest.NewRequest(http.MethodPost, "/logout", nil), rec)
	require.NoError(t, err)
	assert.Empty(t, rec.Result().Cookies())
}
