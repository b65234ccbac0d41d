package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/pathforge/rolegraph/internal/types"
)

// Loader handles loading configuration from files and the environment.
type Loader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperLoader implements Loader using Viper.
type viperLoader struct {
	validator Validator
}

// NewLoader creates a new Loader instance.
func NewLoader(validator Validator) Loader {
	return &viperLoader{
		validator: validator,
	}
}

// Load loads configuration from the specified file path, applies
// ROLEGRAPH_* environment overrides, and validates the result.
// Returns an error if the file doesn't exist or cannot be parsed.
func (l *viperLoader) Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to read config file", err)
	}

	return l.unmarshal(v)
}

// LoadWithDefaults loads configuration from the specified file path.
// If the file doesn't exist, defaults plus environment overrides are used.
func (l *viperLoader) LoadWithDefaults(path string) (*Config, error) {
	if path == "" {
		return l.unmarshal(newViper())
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return l.unmarshal(newViper())
	}
	return l.Load(path)
}

func (l *viperLoader) unmarshal(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal config", err)
	}
	if cfg.Graph.HealthQuery == "" {
		cfg.Graph.HealthQuery = DefaultHealthQuery
	}
	if err := l.validator.Validate(cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "configuration validation failed", err)
	}
	return cfg, nil
}

// newViper builds a viper instance with environment binding so every config
// key can be overridden, e.g. graph.uri via ROLEGRAPH_GRAPH_URI.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("ROLEGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"server.addr",
		"server.cors_allow_origins",
		"server.shutdown_timeout",
		"server.max_list_limit",
		"server.max_adjacency",
		"graph.enabled",
		"graph.uri",
		"graph.username",
		"graph.password",
		"graph.database",
		"graph.max_pool_size",
		"graph.connect_timeout",
		"graph.query_timeout",
		"graph.health_query",
		"logging.level",
		"logging.format",
		"tracing.enabled",
		"tracing.service_name",
	} {
		_ = v.BindEnv(key)
	}

	return v
}
