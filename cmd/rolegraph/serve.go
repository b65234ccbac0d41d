package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/pathforge/rolegraph/internal/api"
	"github.com/pathforge/rolegraph/internal/config"
	"github.com/pathforge/rolegraph/internal/graph"
	"github.com/pathforge/rolegraph/internal/observability"
	"github.com/pathforge/rolegraph/internal/rolegraph"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Starts the rolegraph HTTP server. When the graph integration is
enabled and the driver initializes, requests are served from Neo4j;
otherwise the server runs degraded against the in-memory store. A graph
connection failure at startup is logged, never fatal.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	_, shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	client := initGraphClient(ctx, cfg, logger)
	if client != nil {
		// Driver handle is owned here; closed exactly once on the way out.
		defer func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Warn("graph driver close failed", "error", err)
			}
		}()
	}

	checker := graph.NewChecker(clientOrNil(client), cfg.Graph, logger)

	var repo rolegraph.Repository
	if client != nil && client.IsConnected() {
		repo = rolegraph.NewNeo4jRepository(client)
		logger.Info("serving from graph repository", "uri", cfg.Graph.URI)
	} else {
		repo = rolegraph.NewMemoryRepository()
		logger.Warn("serving from in-memory repository",
			"graph_enabled", cfg.Graph.Enabled)
	}
	repo = rolegraph.NewTracedRepository(repo, otel.Tracer("rolegraph"))

	server := api.NewServer(cfg.Server, logger, repo, checker)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	return server.Shutdown(context.Background())
}

// initGraphClient builds and connects the Neo4j client when the graph
// integration is enabled and fully configured. Any failure is absorbed: the
// health checker reports the detail and the server runs degraded.
func initGraphClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) *graph.Neo4jClient {
	if !cfg.Graph.Enabled || !cfg.Graph.Configured() {
		return nil
	}

	client, err := graph.NewNeo4jClient(graphClientConfig(cfg.Graph), logger)
	if err != nil {
		logger.Warn("graph client initialization failed", "error", err)
		return nil
	}

	if err := client.Connect(ctx); err != nil {
		logger.Warn("graph connection failed, continuing degraded", "error", err)
	}
	return client
}

// clientOrNil avoids handing the checker a typed-nil interface value.
func clientOrNil(client *graph.Neo4jClient) graph.Client {
	if client == nil {
		return nil
	}
	return client
}

func graphClientConfig(g config.GraphConfig) graph.ClientConfig {
	return graph.ClientConfig{
		URI:            g.URI,
		Username:       g.Username,
		Password:       g.Password,
		Database:       g.Database,
		MaxPoolSize:    g.MaxPoolSize,
		ConnectTimeout: g.ConnectTimeout,
		QueryTimeout:   g.QueryTimeout,
	}
}
