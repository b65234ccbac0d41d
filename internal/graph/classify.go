package graph

import (
	"context"
	"errors"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/pathforge/rolegraph/internal/types"
)

// Category is the classification of a graph connectivity failure, plus the
// terminal states the health checker can produce.
type Category string

const (
	CategoryDisabled      Category = "disabled"
	CategoryMisconfigured Category = "misconfigured"
	CategoryAuth          Category = "auth"
	CategoryNetwork       Category = "network"
	CategoryTimeout       Category = "timeout"
	CategoryOther         Category = "other"
	CategoryOK            Category = "ok"
)

// Classification is the result of classifying a backend failure.
type Classification struct {
	Category Category
	// Code is the driver error code when the backend reported one.
	Code string
	// Hint is actionable guidance specific to the category.
	Hint string
}

// networkSubstrings are message fragments that indicate a host-resolution or
// connectivity problem when no typed driver error is available.
var networkSubstrings = []string{
	"dns",
	"no such host",
	"name or service not known",
	"nodename nor servname provided",
	"connection refused",
	"connection reset",
}

// Classify maps an arbitrary backend error onto the closed failure taxonomy.
// Rules are applied in order; the first match wins:
// typed auth error, typed connectivity error, timeout wording,
// network wording, otherwise CategoryOther.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Category: CategoryOK}
	}

	var neoErr *db.Neo4jError
	if errors.As(err, &neoErr) && strings.HasPrefix(neoErr.Code, "Neo.ClientError.Security.") {
		return Classification{
			Category: CategoryAuth,
			Code:     neoErr.Code,
			Hint:     "Authentication failed. Verify graph.username/graph.password and database auth.",
		}
	}

	if neo4j.IsConnectivityError(err) {
		code := ""
		if neoErr != nil {
			code = neoErr.Code
		}
		return Classification{
			Category: CategoryNetwork,
			Code:     code,
			Hint:     "Graph database unavailable. Check graph.uri host/port and network connectivity.",
		}
	}

	msg := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout") {
		return Classification{
			Category: CategoryTimeout,
			Hint:     "Connection timed out. Consider raising graph.connect_timeout and verify reachability.",
		}
	}

	for _, s := range networkSubstrings {
		if strings.Contains(msg, s) {
			return Classification{
				Category: CategoryNetwork,
				Hint:     "Host resolution/connectivity issue. Verify graph.uri host and port are correct and reachable.",
			}
		}
	}

	code := ""
	if neoErr != nil {
		code = neoErr.Code
	}
	return Classification{
		Category: CategoryOther,
		Code:     code,
		Hint:     "Unexpected error during graph connectivity. Check backend logs for details.",
	}
}

// ErrorCode maps a failure category to its taxonomy error code.
func (c Category) ErrorCode() types.ErrorCode {
	switch c {
	case CategoryAuth:
		return ErrCodeAuthenticationFailed
	case CategoryNetwork:
		return ErrCodeNetworkUnavailable
	case CategoryTimeout:
		return ErrCodeTimeout
	default:
		return ErrCodeUnexpected
	}
}

// wrapClassified wraps a backend error with its classified taxonomy code.
// Network and timeout failures are retryable; auth and unexpected are not.
func wrapClassified(message string, err error) error {
	cls := Classify(err)
	switch cls.Category {
	case CategoryNetwork, CategoryTimeout:
		return types.WrapRetryableError(cls.Category.ErrorCode(), message, err)
	default:
		return types.WrapError(cls.Category.ErrorCode(), message, err)
	}
}
