package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathforge/rolegraph/internal/config"
	"github.com/pathforge/rolegraph/internal/types"
)

func enabledGraphConfig() config.GraphConfig {
	cfg := config.DefaultConfig().Graph
	cfg.Enabled = true
	cfg.URI = "bolt://localhost:7687"
	cfg.Username = "neo4j"
	cfg.Password = "secret"
	return cfg
}

func TestChecker_DisabledWinsRegardlessOfConnection(t *testing.T) {
	cfg := enabledGraphConfig()
	cfg.Enabled = false

	mock := NewMockClient()
	require.NoError(t, mock.Connect(context.Background()))

	checker := NewChecker(mock, cfg, nil)
	report := checker.Check(context.Background())

	assert.False(t, report.Healthy)
	assert.Equal(t, CategoryDisabled, report.Category)
	assert.Equal(t, StatusDisabled, report.Status())
	// Short-circuit: nothing was asked of the client.
	assert.Empty(t, mock.GetCallsByMethod("VerifyConnectivity"))
	assert.Empty(t, mock.GetCallsByMethod("ExecuteRead"))
}

func TestChecker_Misconfigured(t *testing.T) {
	cfg := enabledGraphConfig()
	cfg.Password = ""
	cfg.URI = ""

	checker := NewChecker(NewMockClient(), cfg, nil)
	report := checker.Check(context.Background())

	assert.False(t, report.Healthy)
	assert.Equal(t, CategoryMisconfigured, report.Category)
	assert.Equal(t, StatusMisconfigured, report.Status())
	assert.Contains(t, report.Message, "graph.uri")
	assert.Contains(t, report.Message, "graph.password")
	assert.NotContains(t, report.Message, "graph.username")
}

func TestChecker_DriverNotInitialized(t *testing.T) {
	checker := NewChecker(NewMockClient(), enabledGraphConfig(), nil)
	report := checker.Check(context.Background())

	assert.False(t, report.Healthy)
	assert.Equal(t, CategoryNetwork, report.Category)
	assert.Equal(t, StatusUnhealthy, report.Status())
	assert.Contains(t, report.Message, "not initialized")
}

func TestChecker_VerifyConnectivityFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category Category
	}{
		{
			name:     "auth failure",
			err:      &db.Neo4jError{Code: "Neo.ClientError.Security.Unauthorized", Msg: "unauthorized"},
			category: CategoryAuth,
		},
		{
			name:     "network failure",
			err:      errors.New("dial tcp: connection refused"),
			category: CategoryNetwork,
		},
		{
			name:     "timeout",
			err:      errors.New("handshake timed out"),
			category: CategoryTimeout,
		},
		{
			name:     "uncategorized",
			err:      errors.New("protocol violation"),
			category: CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockClient()
			require.NoError(t, mock.Connect(context.Background()))
			mock.SetVerifyError(tt.err)

			checker := NewChecker(mock, enabledGraphConfig(), nil)
			report := checker.Check(context.Background())

			assert.False(t, report.Healthy)
			assert.Equal(t, tt.category, report.Category)
			assert.Equal(t, StatusUnhealthy, report.Status())
			assert.NotEmpty(t, report.Hint)
			// The health query never ran.
			assert.Empty(t, mock.GetCallsByMethod("ExecuteRead"))
		})
	}
}

func TestChecker_HealthQuery(t *testing.T) {
	t.Run("healthy on ok=1", func(t *testing.T) {
		mock := NewMockClient()
		require.NoError(t, mock.Connect(context.Background()))
		mock.AddReadResult(QueryResult{
			Records: []map[string]any{{"ok": int64(1)}},
			Columns: []string{"ok"},
		})

		checker := NewChecker(mock, enabledGraphConfig(), nil)
		report := checker.Check(context.Background())

		assert.True(t, report.Healthy)
		assert.Equal(t, CategoryOK, report.Category)
		assert.Equal(t, StatusHealthy, report.Status())

		reads := mock.GetCallsByMethod("ExecuteRead")
		require.Len(t, reads, 1)
		assert.Equal(t, config.DefaultHealthQuery, reads[0].Args[0])
	})

	t.Run("no record", func(t *testing.T) {
		mock := NewMockClient()
		require.NoError(t, mock.Connect(context.Background()))
		mock.AddReadResult(QueryResult{Records: []map[string]any{}})

		checker := NewChecker(mock, enabledGraphConfig(), nil)
		report := checker.Check(context.Background())

		assert.False(t, report.Healthy)
		assert.Equal(t, CategoryOther, report.Category)
		assert.Contains(t, report.Message, "no record")
	})

	t.Run("unexpected value", func(t *testing.T) {
		mock := NewMockClient()
		require.NoError(t, mock.Connect(context.Background()))
		mock.AddReadResult(QueryResult{
			Records: []map[string]any{{"ok": int64(0)}},
			Columns: []string{"ok"},
		})

		checker := NewChecker(mock, enabledGraphConfig(), nil)
		report := checker.Check(context.Background())

		assert.False(t, report.Healthy)
		assert.Equal(t, CategoryOther, report.Category)
		assert.Contains(t, report.Message, "0")
	})

	t.Run("first column fallback", func(t *testing.T) {
		mock := NewMockClient()
		require.NoError(t, mock.Connect(context.Background()))
		mock.AddReadResult(QueryResult{
			Records: []map[string]any{{"alive": int64(1)}},
			Columns: []string{"alive"},
		})

		cfg := enabledGraphConfig()
		cfg.HealthQuery = "RETURN 1 AS alive"
		checker := NewChecker(mock, cfg, nil)
		report := checker.Check(context.Background())

		assert.True(t, report.Healthy)
	})

	t.Run("query error is classified", func(t *testing.T) {
		mock := NewMockClient()
		require.NoError(t, mock.Connect(context.Background()))
		mock.SetReadError(errors.New("connection reset by peer"))

		checker := NewChecker(mock, enabledGraphConfig(), nil)
		report := checker.Check(context.Background())

		assert.False(t, report.Healthy)
		assert.Equal(t, CategoryNetwork, report.Category)
	})
}

func TestHealthValue(t *testing.T) {
	tests := []struct {
		name    string
		record  map[string]any
		columns []string
		want    any
	}{
		{
			name:    "ok key wins over columns",
			record:  map[string]any{"ok": int64(1), "alive": int64(0)},
			columns: []string{"alive", "ok"},
			want:    int64(1),
		},
		{
			name:    "first column when ok absent",
			record:  map[string]any{"alive": int64(1), "extra": int64(0)},
			columns: []string{"alive", "extra"},
			want:    int64(1),
		},
		{
			name:    "nil when ok absent and no columns",
			record:  map[string]any{"alive": int64(1), "extra": int64(0)},
			columns: nil,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Run repeatedly so a map-iteration-order dependency would surface.
			for i := 0; i < 20; i++ {
				assert.Equal(t, tt.want, healthValue(tt.record, tt.columns))
			}
		})
	}
}

func TestChecker_LastReport(t *testing.T) {
	mock := NewMockClient()
	require.NoError(t, mock.Connect(context.Background()))
	mock.AddReadResult(QueryResult{
		Records: []map[string]any{{"ok": int64(1)}},
		Columns: []string{"ok"},
	})

	checker := NewChecker(mock, enabledGraphConfig(), nil)

	_, ok := checker.LastReport()
	assert.False(t, ok)

	checked := checker.Check(context.Background())
	cached, ok := checker.LastReport()
	require.True(t, ok)
	assert.Equal(t, checked, cached)
	assert.False(t, cached.CheckedAt.IsZero())

	// LastReport does not re-run the check.
	calls := mock.CallCount()
	_, _ = checker.LastReport()
	assert.Equal(t, calls, mock.CallCount())
}

func TestReport_HealthStatus(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   types.HealthState
	}{
		{"healthy", Report{Healthy: true, Category: CategoryOK}, types.HealthStateHealthy},
		{"disabled is healthy", Report{Category: CategoryDisabled}, types.HealthStateHealthy},
		{"misconfigured degrades", Report{Category: CategoryMisconfigured}, types.HealthStateDegraded},
		{"network failure degrades", Report{Category: CategoryNetwork}, types.HealthStateDegraded},
		{"auth failure degrades", Report{Category: CategoryAuth}, types.HealthStateDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.report.HealthStatus()
			assert.Equal(t, tt.want, status.State)
			assert.Equal(t, tt.report.Message, status.Message)
		})
	}
}

func TestIsOK(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"int64 one", int64(1), true},
		{"int64 zero", int64(0), false},
		{"int one", 1, true},
		{"float one", float64(1), true},
		{"bool true", true, true},
		{"bool false", false, false},
		{"numeric string", "1", true},
		{"numeric string zero", "0", false},
		{"non-numeric string is truthy", "yes", true},
		{"empty string", "", false},
		{"nil", nil, false},
		{"non-coercible value is truthy", struct{}{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isOK(tt.value))
		})
	}
}
