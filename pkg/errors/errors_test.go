package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeErrorMessage(t *testing.T) {
	err := NewNavigation("r-1", "entry page unreachable", stderrors.New("timeout"))
	assert.Equal(t, "[navigation] r-1: entry page unreachable - timeout", err.Error())

	err = NewValidation("", "day is required")
	assert.Equal(t, "[validation] day is required", err.Error())
}

func TestScrapeErrorIs(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", NewNotFound("r-9", "restaurant not found"))
	assert.True(t, stderrors.Is(wrapped, ErrNotFound))
	assert.False(t, stderrors.Is(wrapped, ErrInvalidInput))
	assert.Equal(t, ErrorTypeNotFound, TypeOf(wrapped))
	assert.Equal(t, ErrorType(""), TypeOf(stderrors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewNavigation("", "x", nil).IsRetryable())
	assert.True(t, NewStorage("", "x", nil).IsRetryable())
	assert.True(t, NewModel("", "x", nil).IsRetryable())
	assert.False(t, NewParsing("", "x", nil).IsRetryable())
	assert.False(t, NewValidation("", "x").IsRetryable())
}
