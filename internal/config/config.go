package config

import (
	"time"
)

// Config is the root configuration for the rolegraph service.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Graph   GraphConfig   `mapstructure:"graph" yaml:"graph"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr             string        `mapstructure:"addr" yaml:"addr"`
	CORSAllowOrigins string        `mapstructure:"cors_allow_origins" yaml:"cors_allow_origins"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxListLimit     int           `mapstructure:"max_list_limit" yaml:"max_list_limit" validate:"min=1"`
	MaxAdjacency     int           `mapstructure:"max_adjacency" yaml:"max_adjacency" validate:"min=1,max=100"`
}

// GraphConfig contains the Neo4j graph integration settings.
// The feature flag gates all graph usage; when it is off the service runs
// against the in-memory fallback store.
type GraphConfig struct {
	Enabled        bool          `mapstructure:"enabled" yaml:"enabled"`
	URI            string        `mapstructure:"uri" yaml:"uri"`
	Username       string        `mapstructure:"username" yaml:"username"`
	Password       string        `mapstructure:"password" yaml:"password"`
	Database       string        `mapstructure:"database" yaml:"database"`
	MaxPoolSize    int           `mapstructure:"max_pool_size" yaml:"max_pool_size" validate:"min=1,max=500"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout" validate:"min=100ms"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" yaml:"query_timeout" validate:"min=100ms"`
	HealthQuery    string        `mapstructure:"health_query" yaml:"health_query"`
}

// MissingKeys returns the config keys required for graph usage that are not
// set. Used by the health checker to report misconfiguration precisely.
func (g GraphConfig) MissingKeys() []string {
	var missing []string
	if g.URI == "" {
		missing = append(missing, "graph.uri")
	}
	if g.Username == "" {
		missing = append(missing, "graph.username")
	}
	if g.Password == "" {
		missing = append(missing, "graph.password")
	}
	return missing
}

// Configured reports whether all required connection settings are present.
func (g GraphConfig) Configured() bool {
	return len(g.MissingKeys()) == 0
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}
