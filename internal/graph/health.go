package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pathforge/rolegraph/internal/config"
	"github.com/pathforge/rolegraph/internal/types"
)

// Status is the 4-valued summary of the graph integration.
type Status string

const (
	StatusDisabled      Status = "disabled"
	StatusMisconfigured Status = "misconfigured"
	StatusHealthy       Status = "healthy"
	StatusUnhealthy     Status = "unhealthy"
)

// Report is the structured result of a health check. Check never fails;
// monitoring callers always get a deterministic report instead of having to
// handle errors.
type Report struct {
	Healthy   bool      `json:"healthy"`
	Category  Category  `json:"category"`
	Message   string    `json:"message"`
	Hint      string    `json:"hint,omitempty"`
	Code      string    `json:"code,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Status derives the 4-valued summary from the report.
func (r Report) Status() Status {
	switch r.Category {
	case CategoryDisabled:
		return StatusDisabled
	case CategoryMisconfigured:
		return StatusMisconfigured
	}
	if r.Healthy {
		return StatusHealthy
	}
	return StatusUnhealthy
}

// Checker performs the layered graph health check: feature flag,
// configuration completeness, handle presence, connectivity verification,
// and a trivial query round trip. It caches the last report so detail can be
// retrieved without re-running the check.
type Checker struct {
	client Client
	cfg    config.GraphConfig
	logger *slog.Logger

	mu   sync.RWMutex
	last *Report
}

// NewChecker creates a health checker over the given client and settings.
func NewChecker(client Client, cfg config.GraphConfig, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Check runs the layered health check and returns a structured report.
// Rules are evaluated in order; the first matching rule wins.
func (c *Checker) Check(ctx context.Context) Report {
	report := c.check(ctx)
	report.CheckedAt = time.Now()

	c.mu.Lock()
	c.last = &report
	c.mu.Unlock()

	return report
}

func (c *Checker) check(ctx context.Context) Report {
	if !c.cfg.Enabled {
		return Report{
			Category: CategoryDisabled,
			Message:  "Graph feature disabled by flag.",
			Hint:     "Set graph.enabled=true (ROLEGRAPH_GRAPH_ENABLED) to enable.",
		}
	}

	if missing := c.cfg.MissingKeys(); len(missing) > 0 {
		return Report{
			Category: CategoryMisconfigured,
			Message:  fmt.Sprintf("Missing required settings: %s", strings.Join(missing, ", ")),
			Hint:     "Provide graph.uri, graph.username, and graph.password.",
		}
	}

	if c.client == nil || !c.client.IsConnected() {
		return Report{
			Category: CategoryNetwork,
			Message:  "Graph driver not initialized.",
			Hint:     "Check earlier startup logs for driver initialization errors.",
		}
	}

	if err := c.client.VerifyConnectivity(ctx); err != nil {
		c.logger.Debug("graph connectivity verification failed", "error", err)
		return c.failureReport(err)
	}

	query := c.cfg.HealthQuery
	if query == "" {
		query = config.DefaultHealthQuery
	}

	result, err := c.client.ExecuteRead(ctx, query, nil)
	if err != nil {
		c.logger.Debug("graph health query failed", "error", err)
		return c.failureReport(err)
	}

	if len(result.Records) == 0 {
		return Report{
			Category: CategoryOther,
			Message:  "Health query returned no record.",
			Hint:     "Ensure the configured graph.health_query returns a single record.",
		}
	}

	okValue := healthValue(result.Records[0], result.Columns)
	if isOK(okValue) {
		return Report{
			Healthy:  true,
			Category: CategoryOK,
			Message:  "Connected",
		}
	}

	return Report{
		Category: CategoryOther,
		Message:  fmt.Sprintf("Unexpected health query result: %v", okValue),
		Hint:     "Ensure the configured graph.health_query returns 1 or a truthy value.",
	}
}

func (c *Checker) failureReport(err error) Report {
	cls := Classify(err)
	return Report{
		Category: cls.Category,
		Message:  err.Error(),
		Hint:     cls.Hint,
		Code:     cls.Code,
	}
}

// HealthStatus folds the report into the service-level health model: the
// graph being down never makes the service unhealthy, because requests are
// served from the in-memory fallback. Disabled is plain healthy; any other
// non-ok category is degraded.
func (r Report) HealthStatus() types.HealthStatus {
	status := types.Degraded(r.Message)
	if r.Healthy || r.Category == CategoryDisabled {
		status = types.Healthy(r.Message)
	}
	if !r.CheckedAt.IsZero() {
		status.CheckedAt = r.CheckedAt
	}
	return status
}

// Status runs the check and derives the 4-valued summary.
func (c *Checker) Status(ctx context.Context) Status {
	return c.Check(ctx).Status()
}

// LastReport returns the cached report from the most recent Check without
// re-running it. The second return is false when no check has run yet.
func (c *Checker) LastReport() (Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.last == nil {
		return Report{}, false
	}
	return *c.last, true
}

// healthValue extracts the value under the logical key "ok", falling back to
// the first column when the configured query names its column differently.
func healthValue(record map[string]any, columns []string) any {
	if v, ok := record["ok"]; ok {
		return v
	}
	if len(columns) > 0 {
		return record[columns[0]]
	}
	return nil
}

// isOK coerces the health value to an integer and compares against 1,
// falling back to truthiness when integer coercion fails.
func isOK(value any) bool {
	switch v := value.(type) {
	case int64:
		return v == 1
	case int:
		return v == 1
	case float64:
		return int64(v) == 1
	case bool:
		return v
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n == 1
		}
		return v != ""
	case nil:
		return false
	default:
		return true
	}
}
