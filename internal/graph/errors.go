package graph

import "github.com/pathforge/rolegraph/internal/types"

// Graph database error codes. The taxonomy is closed and backend-decoupled:
// a single classification function maps driver failures onto it, so a
// different backing store can be substituted without touching callers.
const (
	// ErrCodeNotConnected signals an operation against an unset handle.
	ErrCodeNotConnected types.ErrorCode = "GRAPH_NOT_CONNECTED"

	// ErrCodeInvalidConfig signals invalid client configuration.
	ErrCodeInvalidConfig types.ErrorCode = "GRAPH_INVALID_CONFIG"

	// Connectivity taxonomy produced by Classify.
	ErrCodeAuthenticationFailed types.ErrorCode = "GRAPH_AUTHENTICATION_FAILED"
	ErrCodeNetworkUnavailable   types.ErrorCode = "GRAPH_NETWORK_UNAVAILABLE"
	ErrCodeTimeout              types.ErrorCode = "GRAPH_TIMEOUT"
	ErrCodeUnexpected           types.ErrorCode = "GRAPH_UNEXPECTED"
)
