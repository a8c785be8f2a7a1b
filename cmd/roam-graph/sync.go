package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pdiddy/roam-graph/pkg/types"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild the snapshot and mirror it to Neo4j",
	Long: `Sync runs the full pipeline: rebuild the SQLite snapshot from the note
collection, replace the Neo4j graph with its contents, and verify the remote
counts. Sync takes no flags; all configuration comes from ROAM_GRAPH_*
environment variables or .secrets/ files.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := types.PipelineConfig{Build: buildConfig(), Mirror: mirrorConfig()}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()

	store, err := buildSnapshot(ctx, cfg.Build)
	if err != nil {
		return err
	}
	defer store.Close()

	return mirrorSnapshot(ctx, store, cfg.Mirror)
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
