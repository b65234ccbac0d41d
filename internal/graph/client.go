package graph

import (
	"context"
	"time"

	"github.com/pathforge/rolegraph/internal/types"
)

// Client provides an interface for graph database operations.
// Implementations must be thread-safe for concurrent access: a single
// long-lived handle is shared by all requests, and every ExecuteRead/
// ExecuteWrite call opens its own short-lived session against it.
type Client interface {
	// Connect establishes a connection to the graph database. Calling it
	// again while already connected is a no-op that reuses the handle.
	Connect(ctx context.Context) error

	// Close releases the connection handle. Safe to call when already
	// closed or never opened.
	Close(ctx context.Context) error

	// VerifyConnectivity performs a lightweight round trip to confirm the
	// handle is alive. A failure is reported, not fatal; the handle is
	// retained for a later retry.
	VerifyConnectivity(ctx context.Context) error

	// IsConnected reports whether a usable handle exists.
	IsConnected() bool

	// ExecuteRead runs a Cypher query in a read transaction.
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)

	// ExecuteWrite runs a Cypher query in a write transaction.
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)
}

// QueryResult represents the result of a Cypher query execution.
type QueryResult struct {
	// Records contains the result rows as maps of column name to value.
	Records []map[string]any

	// Columns contains the names of the columns in the result set.
	Columns []string

	// Summary contains metadata about the query execution.
	Summary QuerySummary
}

// QuerySummary provides metadata about query execution.
type QuerySummary struct {
	ExecutionTime        time.Duration
	NodesCreated         int
	RelationshipsCreated int
	PropertiesSet        int
}

// ClientConfig contains configuration options for graph database clients.
type ClientConfig struct {
	// URI is the connection URI for the graph database.
	// For Neo4j, use:
	//   - "bolt://host:port" for unencrypted connections
	//   - "bolt+s://host:port" for TLS encrypted connections
	//   - "neo4j://" or "neo4j+s://" for routing
	URI string

	// Username for authentication.
	Username string

	// Password for authentication.
	Password string

	// Database name to connect to. Empty string uses the default database.
	Database string

	// MaxPoolSize limits the number of connections in the driver pool.
	MaxPoolSize int

	// ConnectTimeout bounds connection establishment and connectivity
	// verification.
	ConnectTimeout time.Duration

	// QueryTimeout bounds every ExecuteRead/ExecuteWrite call so a slow or
	// partitioned backend cannot stall the caller indefinitely.
	QueryTimeout time.Duration
}

// Validate checks if the configuration is valid.
func (c ClientConfig) Validate() error {
	if c.URI == "" {
		return types.NewError(ErrCodeInvalidConfig, "URI cannot be empty")
	}
	if c.Username == "" {
		return types.NewError(ErrCodeInvalidConfig, "Username cannot be empty")
	}
	if c.Password == "" {
		return types.NewError(ErrCodeInvalidConfig, "Password cannot be empty")
	}
	if c.ConnectTimeout <= 0 {
		return types.NewError(ErrCodeInvalidConfig, "ConnectTimeout must be positive")
	}
	if c.QueryTimeout <= 0 {
		return types.NewError(ErrCodeInvalidConfig, "QueryTimeout must be positive")
	}
	return nil
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URI:            "bolt://localhost:7687",
		Username:       "neo4j",
		Password:       "password",
		Database:       "",
		MaxPoolSize:    50,
		ConnectTimeout: 3 * time.Second,
		QueryTimeout:   3 * time.Second,
	}
}
