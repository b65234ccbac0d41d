package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewError(CONFIG_LOAD_FAILED, "could not load config")
		assert.Equal(t, "[CONFIG_LOAD_FAILED] could not load config", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("file missing")
		err := WrapError(CONFIG_LOAD_FAILED, "could not load config", cause)
		assert.Equal(t, "[CONFIG_LOAD_FAILED] could not load config: file missing", err.Error())
	})
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := WrapError(ETL_READ_FAILED, "read failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestError_Is(t *testing.T) {
	err := NewError(ETL_MISSING_COLUMN, "missing column 'id'")

	t.Run("same code matches", func(t *testing.T) {
		target := NewError(ETL_MISSING_COLUMN, "different message")
		assert.True(t, errors.Is(err, target))
	})

	t.Run("different code does not match", func(t *testing.T) {
		target := NewError(ETL_PARSE_FAILED, "missing column 'id'")
		assert.False(t, errors.Is(err, target))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", err)
		target := NewError(ETL_MISSING_COLUMN, "")
		assert.True(t, errors.Is(wrapped, target))
	})
}

func TestNewRetryableError(t *testing.T) {
	err := NewRetryableError(ETL_READ_FAILED, "transient failure")
	assert.True(t, err.Retryable)

	nonRetryable := NewError(ETL_READ_FAILED, "permanent failure")
	assert.False(t, nonRetryable.Retryable)
}

func TestCodeOf(t *testing.T) {
	t.Run("typed error", func(t *testing.T) {
		err := NewError(CONFIG_PARSE_FAILED, "bad yaml")
		assert.Equal(t, CONFIG_PARSE_FAILED, CodeOf(err))
	})

	t.Run("wrapped typed error", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", NewError(CONFIG_PARSE_FAILED, "bad yaml"))
		assert.Equal(t, CONFIG_PARSE_FAILED, CodeOf(err))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	})
}
