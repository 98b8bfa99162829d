package revert

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Selector(t *testing.T) {
	// Well-known OpenZeppelin selector for Unauthorized().
	assert.Equal(t, "0x82b42900", ErrUnauthorized.SelectorHex())
	assert.Equal(t, "Unauthorized()", ErrUnauthorized.Error())
	assert.Equal(t, "Unauthorized", ErrUnauthorized.Name())
}

func TestError_IdentityComparison(t *testing.T) {
	a := New("AlreadyPaused")
	b := New("AlreadyPaused")

	assert.True(t, errors.Is(a, a))
	assert.False(t, errors.Is(a, b), "distinct kinds with the same name must not match")
	assert.Equal(t, a.Selector(), b.Selector())
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrZeroAddress, "transfer to %s", "0x0")
	assert.ErrorIs(t, err, ErrZeroAddress)
	assert.Contains(t, err.Error(), "ZeroAddress()")

	kind, ok := As(fmt.Errorf("outer: %w", err))
	require.True(t, ok)
	assert.Same(t, ErrZeroAddress, kind)
}

func TestAs_PlainError(t *testing.T) {
	_, ok := As(errors.New("disk full"))
	assert.False(t, ok)
}
