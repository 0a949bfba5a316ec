package security

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolderForcesPendingOnce(t *testing.T) {
	source := recovered("alice")
	h := NewHolder()
	h.SetDeferred(source.deferred())

	first, err := h.Context()
	require.NoError(t, err)
	second, err := h.Context()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "alice", first.Identity().Subject)
	assert.Equal(t, 1, source.calls)
}

func TestHolderEagerOverridesPending(t *testing.T) {
	source := recovered("alice")
	h := NewHolder()
	h.SetDeferred(source.deferred())

	eager := NewContext(NewIdentity("bob", nil, "test"))
	h.SetContext(eager)

	ctx, err := h.Context()
	require.NoError(t, err)
	assert.Same(t, eager, ctx)
	assert.Equal(t, 0, source.calls, "an eagerly set context must suppress store recovery")
}

func TestHolderUnbound(t *testing.T) {
	h := NewHolder()

	ctx, err := h.Context()
	require.NoError(t, err)
	require.NotNil(t, ctx)
	assert.Nil(t, ctx.Identity())
}

func TestHolderResolutionError(t *testing.T) {
	loadErr := errors.New("store unreachable")
	h := NewHolder()
	h.SetDeferred(Lazy(func() (*Context, bool, error) { return nil, false, loadErr }))

	_, err := h.Context()
	assert.ErrorIs(t, err, loadErr)
}

func TestHolderClear(t *testing.T) {
	source := recovered("alice")
	h := NewHolder()
	h.SetDeferred(source.deferred())

	_, err := h.Context()
	require.NoError(t, err)

	h.Clear()

	ctx, err := h.Context()
	require.NoError(t, err)
	assert.Nil(t, ctx.Identity(), "a cleared holder must not expose the previous context")
	assert.Equal(t, 1, source.calls, "clearing must not re-trigger recovery")
}
