package config

import "time"

// DefaultHealthQuery is the trivial round-trip query used by the health
// checker when none is configured.
const DefaultHealthQuery = "RETURN 1 AS ok"

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:             ":8080",
			CORSAllowOrigins: "*",
			ShutdownTimeout:  10 * time.Second,
			MaxListLimit:     5000,
			MaxAdjacency:     100,
		},
		Graph: GraphConfig{
			Enabled:        false,
			URI:            "",
			Username:       "",
			Password:       "",
			Database:       "",
			MaxPoolSize:    50,
			ConnectTimeout: 3 * time.Second,
			QueryTimeout:   3 * time.Second,
			HealthQuery:    DefaultHealthQuery,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "rolegraph",
		},
	}
}
