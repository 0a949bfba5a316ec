package store

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secgate/internal/security"
)

// stubStore is a ContextStore with a fixed resolution and observable saves
type stubStore struct {
	name       string
	subject    string
	loadErr    error
	saveErr    error
	recoveries int
	saves      int
}

func (s *stubStore) Name() string { return s.name }

func (s *stubStore) LoadDeferred(*http.Request) security.Deferred {
	return security.Lazy(func() (*security.Context, bool, error) {
		s.recoveries++
		if s.loadErr != nil {
			return nil, false, s.loadErr
		}
		if s.subject == "" {
			return nil, true, nil
		}
		return security.NewContext(security.NewIdentity(s.subject, nil, s.name)), false, nil
	})
}

func (s *stubStore) Save(*security.Context, *http.Request, http.ResponseWriter) error {
	s.saves++
	return s.saveErr
}

func TestNullStore(t *testing.T) {
	d := Null{}.LoadDeferred(httptest.NewRequest(http.MethodGet, "/", nil))

	ctx, err := d.Get()
	require.NoError(t, err)
	assert.False(t, ctx.IsAuthenticated())
	assert.True(t, d.IsGenerated())

	assert.NoError(t, Null{}.Save(security.NewEmptyContext(), nil, nil))
}

func TestChainFirstRecoveryWins(t *testing.T) {
	first := &stubStore{name: "first", subject: "alice"}
	second := &stubStore{name: "second", subject: "bob"}
	chain := NewChain(first, second)

	d := chain.LoadDeferred(httptest.NewRequest(http.MethodGet, "/", nil))
	ctx, err := d.Get()
	require.NoError(t, err)
	require.NotNil(t, ctx.Identity())
	assert.Equal(t, "alice", ctx.Identity().Subject)
	assert.False(t, d.IsGenerated())

	assert.Equal(t, 0, second.recoveries, "later stores are not consulted once one recovered")
}

func TestChainFallsBack(t *testing.T) {
	first := &stubStore{name: "first"}
	second := &stubStore{name: "second", subject: "bob"}
	chain := NewChain(first, second)

	d := chain.LoadDeferred(httptest.NewRequest(http.MethodGet, "/", nil))
	ctx, err := d.Get()
	require.NoError(t, err)
	require.NotNil(t, ctx.Identity())
	assert.Equal(t, "bob", ctx.Identity().Subject)
	assert.False(t, d.IsGenerated())
}

func TestChainAllEmpty(t *testing.T) {
	chain := NewChain(&stubStore{name: "first"}, &stubStore{name: "second"})

	d := chain.LoadDeferred(httptest.NewRequest(http.MethodGet, "/", nil))
	ctx, err := d.Get()
	require.NoError(t, err)
	assert.False(t, ctx.IsAuthenticated())
	assert.True(t, d.IsGenerated())
}

func TestChainEmptyListBehavesLikeNull(t *testing.T) {
	d := NewChain().LoadDeferred(httptest.NewRequest(http.MethodGet, "/", nil))

	ctx, err := d.Get()
	require.NoError(t, err)
	assert.False(t, ctx.IsAuthenticated())
	assert.True(t, d.IsGenerated())
}

func TestChainSaveWritesThrough(t *testing.T) {
	first := &stubStore{name: "first"}
	second := &stubStore{name: "second"}
	chain := NewChain(first, second)

	err := chain.Save(security.NewEmptyContext(), httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	require.NoError(t, err)
	assert.Equal(t, 1, first.saves)
	assert.Equal(t, 1, second.saves)
}

func TestChainSaveFirstErrorWins(t *testing.T) {
	errFirst := errors.New("first failed")
	errSecond := errors.New("second failed")
	first := &stubStore{name: "first", saveErr: errFirst}
	second := &stubStore{name: "second", saveErr: errSecond}
	chain := NewChain(first, second)

	err := chain.Save(security.NewEmptyContext(), httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	assert.ErrorIs(t, err, errFirst)
	assert.Equal(t, 1, second.saves, "every store is still attempted")
}
