package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type customError struct {
	Msg string
}

func (e customError) Error() string { return e.Msg }

func TestWrap(t *testing.T) {
	t.Run("wrap non-nil error", func(t *testing.T) {
		wrapped := Wrap(ErrNotFound, "credential not found")
		assert.Equal(t, "credential not found: not found", wrapped.Error())
		assert.True(t, Is(wrapped, ErrNotFound))
	})

	t.Run("wrap nil error", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "ignored"))
	})

	t.Run("double wrap keeps chain", func(t *testing.T) {
		wrapped := Wrap(Wrap(ErrUnavailable, "store down"), "load credential")
		assert.True(t, Is(wrapped, ErrUnavailable))
		assert.False(t, Is(wrapped, ErrNotFound))
	})
}

func TestAs(t *testing.T) {
	err := Wrap(customError{Msg: "boom"}, "context")

	var target customError
	assert.True(t, As(err, &target))
	assert.Equal(t, "boom", target.Msg)
}

func TestNew(t *testing.T) {
	err := New("test error")
	assert.EqualError(t, err, "test error")
	assert.False(t, errors.Is(err, ErrInvalidInput))
}
