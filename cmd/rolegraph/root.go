package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pathforge/rolegraph/internal/config"
	"github.com/pathforge/rolegraph/internal/observability"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "rolegraph",
	Short: "Rolegraph - role and competency graph service",
	Long: `Rolegraph serves a role/competency graph backed by Neo4j, with an
in-memory fallback when the graph is disabled or unreachable. It exposes
coalesce-semantics upserts, role lookups, and adjacency-based role
suggestions over HTTP, plus a seed-file ingestion CLI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal-driven cancellation.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig loads configuration from --config (when set) or defaults plus
// environment overrides, and builds the service logger from it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	loader := config.NewLoader(config.NewValidator())
	cfg, err := loader.LoadWithDefaults(configFile)
	if err != nil {
		return nil, nil, err
	}

	logger := observability.NewLogger(cfg.Logging, os.Stdout)
	return cfg, logger, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("rolegraph v0.1.0")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(versionCmd)
}
