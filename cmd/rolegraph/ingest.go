package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pathforge/rolegraph/internal/etl"
	"github.com/pathforge/rolegraph/internal/graph"
	"github.com/pathforge/rolegraph/internal/rolegraph"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest seed files into the graph",
	Long: `Loads CSV or JSON seed files and upserts their rows into the graph.
Ingestion requires a reachable graph: unlike the server, this command
refuses to run degraded.`,
}

var ingestRolesCmd = &cobra.Command{
	Use:   "roles <file>",
	Short: "Ingest role nodes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, func(ctx context.Context, repo rolegraph.Repository) (int, error) {
			upserts, err := etl.ReadRoles(args[0])
			if err != nil {
				return 0, err
			}
			for _, upsert := range upserts {
				if err := repo.UpsertRole(ctx, upsert); err != nil {
					return 0, err
				}
			}
			return len(upserts), nil
		})
	},
}

var ingestCompetenciesCmd = &cobra.Command{
	Use:   "competencies <file>",
	Short: "Ingest competency nodes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, func(ctx context.Context, repo rolegraph.Repository) (int, error) {
			upserts, err := etl.ReadCompetencies(args[0])
			if err != nil {
				return 0, err
			}
			for _, upsert := range upserts {
				if err := repo.UpsertCompetency(ctx, upsert); err != nil {
					return 0, err
				}
			}
			return len(upserts), nil
		})
	},
}

var ingestRequiresCmd = &cobra.Command{
	Use:   "requires <file>",
	Short: "Ingest role-requires-competency edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, func(ctx context.Context, repo rolegraph.Repository) (int, error) {
			upserts, err := etl.ReadRequires(args[0])
			if err != nil {
				return 0, err
			}
			for _, upsert := range upserts {
				if err := repo.UpsertRequires(ctx, upsert); err != nil {
					return 0, err
				}
			}
			return len(upserts), nil
		})
	},
}

var ingestAdjacencyCmd = &cobra.Command{
	Use:   "adjacency <file>",
	Short: "Ingest role-adjacency edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, func(ctx context.Context, repo rolegraph.Repository) (int, error) {
			upserts, err := etl.ReadAdjacency(args[0])
			if err != nil {
				return 0, err
			}
			for _, upsert := range upserts {
				if err := repo.UpsertAdjacency(ctx, upsert); err != nil {
					return 0, err
				}
			}
			return len(upserts), nil
		})
	},
}

// runIngest connects to the graph, runs ingest, and reports the row count.
// The graph must be enabled, configured, and reachable.
func runIngest(cmd *cobra.Command, ingest func(context.Context, rolegraph.Repository) (int, error)) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.Graph.Enabled {
		return fmt.Errorf("graph integration is disabled; enable graph.enabled before ingesting")
	}
	if missing := cfg.Graph.MissingKeys(); len(missing) > 0 {
		return fmt.Errorf("graph configuration incomplete: missing %v", missing)
	}

	client, err := graph.NewNeo4jClient(graphClientConfig(cfg.Graph), logger)
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("graph driver close failed", "error", err)
		}
	}()

	if err := client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("graph unreachable: %w", err)
	}

	count, err := ingest(ctx, rolegraph.NewNeo4jRepository(client))
	if err != nil {
		return err
	}

	cmd.Printf("Ingested %d rows\n", count)
	return nil
}

func init() {
	ingestCmd.AddCommand(ingestRolesCmd)
	ingestCmd.AddCommand(ingestCompetenciesCmd)
	ingestCmd.AddCommand(ingestRequiresCmd)
	ingestCmd.AddCommand(ingestAdjacencyCmd)
}
