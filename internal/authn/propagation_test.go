package authn

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secgate/internal/contextutil"
	"secgate/internal/observability/logging"
	"secgate/internal/security"
)

// fakeStore is a backing store with observable load/recovery/save counts
type fakeStore struct {
	subject    string
	loads      int
	recoveries int
	saved      []*security.Context
	saveErr    error
}

func (f *fakeStore) Name() string { return "fake" }

func (f *fakeStore) LoadDeferred(*http.Request) security.Deferred {
	f.loads++
	return security.Lazy(func() (*security.Context, bool, error) {
		f.recoveries++
		if f.subject == "" {
			return security.NewEmptyContext(), true, nil
		}
		return security.NewContext(security.NewIdentity(f.subject, nil, "fake")), false, nil
	})
}

func (f *fakeStore) Save(sctx *security.Context, _ *http.Request, _ http.ResponseWriter) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, sctx)
	return nil
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)
	return logger
}

func TestPropagatorResolvesThroughHolder(t *testing.T) {
	st := &fakeStore{subject: "alice"}
	p := NewPropagator(st, testLogger(t))

	var subject string
	handler := p.GetMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := contextutil.GetIdentity(r.Context())
		require.NotNil(t, identity)
		subject = identity.Subject
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "alice", subject)
	assert.Equal(t, 1, st.recoveries)
}

func TestPropagatorIsLazy(t *testing.T) {
	st := &fakeStore{subject: "alice"}
	p := NewPropagator(st, testLogger(t))

	handler := p.GetMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		// Never touches the security context.
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 1, st.loads)
	assert.Equal(t, 0, st.recoveries, "a request that never reads the context must not hit the store")
}

func TestPropagatorReentrantInvocation(t *testing.T) {
	st := &fakeStore{subject: "alice"}
	p := NewPropagator(st, testLogger(t))

	var holders []*security.Holder
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		holders = append(holders, contextutil.GetHolder(r.Context()))
		_ = contextutil.GetIdentity(r.Context())
	})

	// Nested dispatch into the same pipeline: the outer binding must win.
	handler := p.GetMiddleware(p.GetMiddleware(inner))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 1, st.loads, "re-entrant invocation must not rebuild the resolution")
	assert.Equal(t, 1, st.recoveries)
	require.Len(t, holders, 1)
}

func TestPropagatorTeardown(t *testing.T) {
	st := &fakeStore{subject: "alice"}
	p := NewPropagator(st, testLogger(t))

	var holder *security.Holder
	handler := p.GetMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		holder = contextutil.GetHolder(r.Context())
		_ = contextutil.GetIdentity(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, holder)
	ctx, err := holder.Context()
	require.NoError(t, err)
	assert.Nil(t, ctx.Identity(), "teardown must clear the holder binding")
}

func TestPropagatorTeardownOnPanic(t *testing.T) {
	st := &fakeStore{subject: "alice"}
	p := NewPropagator(st, testLogger(t))

	var holder *security.Holder
	handler := p.GetMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		holder = contextutil.GetHolder(r.Context())
		_ = contextutil.GetIdentity(r.Context())
		panic("downstream failure")
	}))

	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})

	require.NotNil(t, holder)
	ctx, err := holder.Context()
	require.NoError(t, err)
	assert.Nil(t, ctx.Identity(), "teardown must run even when the pipeline panics")
}

func TestPropagatorNilStoreDefaultsToNull(t *testing.T) {
	p := NewPropagator(nil, testLogger(t))

	var authenticated bool
	handler := p.GetMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		holder := contextutil.GetHolder(r.Context())
		require.NotNil(t, holder)
		ctx, err := holder.Context()
		require.NoError(t, err)
		authenticated = ctx.IsAuthenticated()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, authenticated)
}
