package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.Graph.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Graph.ConnectTimeout)
	assert.Equal(t, DefaultHealthQuery, cfg.Graph.HealthQuery)
	assert.Equal(t, "info", cfg.Logging.Level)

	err := NewValidator().Validate(cfg)
	require.NoError(t, err)
}

func TestGraphConfig_MissingKeys(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GraphConfig
		missing []string
	}{
		{
			name:    "all present",
			cfg:     GraphConfig{URI: "bolt://localhost:7687", Username: "neo4j", Password: "secret"},
			missing: nil,
		},
		{
			name:    "all absent",
			cfg:     GraphConfig{},
			missing: []string{"graph.uri", "graph.username", "graph.password"},
		},
		{
			name:    "password absent",
			cfg:     GraphConfig{URI: "bolt://localhost:7687", Username: "neo4j"},
			missing: []string{"graph.password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.missing, tt.cfg.MissingKeys())
			assert.Equal(t, len(tt.missing) == 0, tt.cfg.Configured())
		})
	}
}

func TestValidator_RejectsBadValues(t *testing.T) {
	t.Run("bad uri scheme", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Graph.URI = "http://localhost:7687"

		err := NewValidator().Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "graph.uri")
	})

	t.Run("pool size out of range", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Graph.MaxPoolSize = 0

		err := NewValidator().Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "graph.maxpoolsize")
	})

	t.Run("nil config", func(t *testing.T) {
		err := NewValidator().Validate(nil)
		require.Error(t, err)
	})
}

func TestLoader_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rolegraph.yaml")
	content := []byte(`
server:
  addr: ":9090"
graph:
  enabled: true
  uri: bolt://graph.internal:7687
  username: neo4j
  password: secret
  connect_timeout: 5s
logging:
  level: debug
  format: text
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Graph.Enabled)
	assert.Equal(t, "bolt://graph.internal:7687", cfg.Graph.URI)
	assert.Equal(t, 5*time.Second, cfg.Graph.ConnectTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unspecified keys keep their defaults.
	assert.Equal(t, DefaultHealthQuery, cfg.Graph.HealthQuery)
	assert.Equal(t, 50, cfg.Graph.MaxPoolSize)
}

func TestLoader_LoadWithDefaults(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := NewLoader(NewValidator()).LoadWithDefaults(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().Server.Addr, cfg.Server.Addr)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("ROLEGRAPH_GRAPH_URI", "bolt://env-host:7687")
		t.Setenv("ROLEGRAPH_GRAPH_ENABLED", "true")

		cfg, err := NewLoader(NewValidator()).LoadWithDefaults("")
		require.NoError(t, err)
		assert.Equal(t, "bolt://env-host:7687", cfg.Graph.URI)
		assert.True(t, cfg.Graph.Enabled)
	})
}

func TestLoader_LoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(NewValidator()).Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

		_, err := NewLoader(NewValidator()).Load(path)
		require.Error(t, err)
	})
}
