package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	t.Run("new error exposes code and message", func(t *testing.T) {
		err := New(CodeConflict, "request already pending")
		assert.Equal(t, "request already pending", err.Error())
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeNotFound))
		assert.Equal(t, CodeConflict, CodeOf(err))
	})

	t.Run("wrap keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeInternal, "failed to load profile")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to load profile", err.Error())
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("respond: %w", New(CodeInvalidState, "request is not pending"))
		assert.True(t, Is(err, CodeInvalidState))
		assert.Equal(t, CodeInvalidState, CodeOf(err))
	})

	t.Run("inner codes are found through nested wraps", func(t *testing.T) {
		err := Wrap(New(CodeTimeout, "tx timeout"), CodeInternal, "failed")
		assert.True(t, HasCode(err, CodeTimeout))
		assert.True(t, HasCode(err, CodeInternal))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, Code(""), CodeOf(err))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}
