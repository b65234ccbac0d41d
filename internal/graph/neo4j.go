package graph

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pathforge/rolegraph/internal/types"
)

// Neo4jClient implements Client for Neo4j graph databases. It owns a single
// long-lived driver shared across concurrent requests; each operation opens
// its own short-lived session against it.
type Neo4jClient struct {
	config ClientConfig
	logger *slog.Logger

	mu     sync.RWMutex
	driver neo4j.DriverWithContext
}

// NewNeo4jClient creates a new Neo4j client with the given configuration.
// The client must be connected via Connect() before use.
func NewNeo4jClient(config ClientConfig, logger *slog.Logger) (*Neo4jClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Neo4jClient{
		config: config,
		logger: logger,
	}, nil
}

// Connect establishes the driver handle. Idempotent: when already connected
// it reuses the existing handle. An early connectivity-verification failure
// is logged and the handle retained, so the health check can retry later.
func (c *Neo4jClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.driver != nil {
		c.logger.Debug("graph client already connected, reusing driver")
		return nil
	}

	auth := neo4j.BasicAuth(c.config.Username, c.config.Password, "")
	driver, err := neo4j.NewDriverWithContext(c.config.URI, auth, func(config *neo4j.Config) {
		config.MaxConnectionPoolSize = c.config.MaxPoolSize
		config.ConnectionAcquisitionTimeout = c.config.ConnectTimeout
		// Encryption is controlled by the URI scheme (bolt:// vs bolt+s://).
	})
	if err != nil {
		return wrapClassified("failed to create graph driver", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		c.logger.Warn("graph connectivity verification failed, keeping driver for later retry",
			"error", err)
	} else {
		c.logger.Info("graph client connected", "uri", c.config.URI)
	}

	c.driver = driver
	return nil
}

// Close releases the driver handle. Safe to call when already closed or
// never opened.
func (c *Neo4jClient) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.driver == nil {
		return nil
	}

	err := c.driver.Close(ctx)
	c.driver = nil
	if err != nil {
		c.logger.Warn("error closing graph driver", "error", err)
		return wrapClassified("failed to close graph driver", err)
	}
	c.logger.Info("graph client closed")
	return nil
}

// VerifyConnectivity performs a lightweight round trip bounded by the
// connect timeout.
func (c *Neo4jClient) VerifyConnectivity(ctx context.Context) error {
	driver := c.handle()
	if driver == nil {
		return types.NewError(ErrCodeNotConnected, "driver not initialized")
	}

	verifyCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		return wrapClassified("connectivity verification failed", err)
	}
	return nil
}

// IsConnected reports whether a usable handle exists.
func (c *Neo4jClient) IsConnected() bool {
	return c.handle() != nil
}

// ExecuteRead executes a Cypher query in a read transaction.
func (c *Neo4jClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return c.execute(ctx, cypher, params, false)
}

// ExecuteWrite executes a Cypher query in a write transaction.
func (c *Neo4jClient) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return c.execute(ctx, cypher, params, true)
}

func (c *Neo4jClient) execute(ctx context.Context, cypher string, params map[string]any, write bool) (QueryResult, error) {
	driver := c.handle()
	if driver == nil {
		return QueryResult{}, types.NewError(ErrCodeNotConnected, "driver not connected")
	}

	queryCtx, cancel := context.WithTimeout(ctx, c.config.QueryTimeout)
	defer cancel()

	startTime := time.Now()

	session := driver.NewSession(queryCtx, neo4j.SessionConfig{
		DatabaseName: c.config.Database,
	})
	defer session.Close(queryCtx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		neoResult, err := tx.Run(queryCtx, cypher, params)
		if err != nil {
			return nil, err
		}

		records, err := neoResult.Collect(queryCtx)
		if err != nil {
			return nil, err
		}

		summary, err := neoResult.Consume(queryCtx)
		if err != nil {
			return nil, err
		}

		return convertResult(records, summary), nil
	}

	var result any
	var err error
	if write {
		result, err = session.ExecuteWrite(queryCtx, work)
	} else {
		result, err = session.ExecuteRead(queryCtx, work)
	}
	if err != nil {
		return QueryResult{}, wrapClassified("query execution failed", err)
	}

	queryResult := result.(QueryResult)
	queryResult.Summary.ExecutionTime = time.Since(startTime)

	return queryResult, nil
}

// handle returns the current driver under a read lock.
func (c *Neo4jClient) handle() neo4j.DriverWithContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.driver
}

// convertResult converts Neo4j records and summary to the QueryResult format.
func convertResult(records []*neo4j.Record, summary neo4j.ResultSummary) QueryResult {
	result := QueryResult{
		Records: make([]map[string]any, 0, len(records)),
		Columns: []string{},
	}

	if len(records) > 0 {
		result.Columns = records[0].Keys
	}

	for _, record := range records {
		recordMap := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			recordMap[key] = record.Values[i]
		}
		result.Records = append(result.Records, recordMap)
	}

	if summary != nil && summary.Counters() != nil {
		counters := summary.Counters()
		result.Summary = QuerySummary{
			NodesCreated:         counters.NodesCreated(),
			RelationshipsCreated: counters.RelationshipsCreated(),
			PropertiesSet:        counters.PropertiesSet(),
		}
	}

	return result
}
