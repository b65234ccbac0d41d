package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/stretchr/testify/assert"

	"github.com/pathforge/rolegraph/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category Category
		code     string
	}{
		{
			name: "auth error by driver code",
			err: &db.Neo4jError{
				Code: "Neo.ClientError.Security.Unauthorized",
				Msg:  "The client is unauthorized due to authentication failure.",
			},
			category: CategoryAuth,
			code:     "Neo.ClientError.Security.Unauthorized",
		},
		{
			name: "token expired is auth",
			err: &db.Neo4jError{
				Code: "Neo.ClientError.Security.TokenExpired",
				Msg:  "token expired",
			},
			category: CategoryAuth,
			code:     "Neo.ClientError.Security.TokenExpired",
		},
		{
			name:     "deadline exceeded is timeout",
			err:      fmt.Errorf("query failed: %w", context.DeadlineExceeded),
			category: CategoryTimeout,
		},
		{
			name:     "timeout wording",
			err:      errors.New("i/o timeout while reading handshake"),
			category: CategoryTimeout,
		},
		{
			name:     "timed out wording",
			err:      errors.New("connection timed out"),
			category: CategoryTimeout,
		},
		{
			name:     "connection refused is network",
			err:      errors.New("dial tcp 127.0.0.1:7687: connect: connection refused"),
			category: CategoryNetwork,
		},
		{
			name:     "dns failure is network",
			err:      errors.New("lookup graph.internal: no such host"),
			category: CategoryNetwork,
		},
		{
			name:     "anything else is other",
			err:      errors.New("syntax error near MERGE"),
			category: CategoryOther,
		},
		{
			name:     "nil is ok",
			err:      nil,
			category: CategoryOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := Classify(tt.err)
			assert.Equal(t, tt.category, cls.Category)
			if tt.code != "" {
				assert.Equal(t, tt.code, cls.Code)
			}
			if tt.category != CategoryOK {
				assert.NotEmpty(t, cls.Hint)
			}
		})
	}
}

func TestClassify_AuthWinsOverMessageWording(t *testing.T) {
	// An auth error whose message mentions a timeout must still be auth:
	// classification rules apply in order.
	err := &db.Neo4jError{
		Code: "Neo.ClientError.Security.Unauthorized",
		Msg:  "authentication handshake timed out",
	}
	assert.Equal(t, CategoryAuth, Classify(err).Category)
}

func TestCategory_ErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeAuthenticationFailed, CategoryAuth.ErrorCode())
	assert.Equal(t, ErrCodeNetworkUnavailable, CategoryNetwork.ErrorCode())
	assert.Equal(t, ErrCodeTimeout, CategoryTimeout.ErrorCode())
	assert.Equal(t, ErrCodeUnexpected, CategoryOther.ErrorCode())
}

func TestWrapClassified_Retryability(t *testing.T) {
	t.Run("network is retryable", func(t *testing.T) {
		err := wrapClassified("op failed", errors.New("connection refused"))
		var typedErr *types.Error
		assert.True(t, errors.As(err, &typedErr))
		assert.True(t, typedErr.Retryable)
		assert.Equal(t, ErrCodeNetworkUnavailable, typedErr.Code)
	})

	t.Run("auth is not retryable", func(t *testing.T) {
		err := wrapClassified("op failed", &db.Neo4jError{Code: "Neo.ClientError.Security.Unauthorized"})
		var typedErr *types.Error
		assert.True(t, errors.As(err, &typedErr))
		assert.False(t, typedErr.Retryable)
		assert.Equal(t, ErrCodeAuthenticationFailed, typedErr.Code)
	})
}
