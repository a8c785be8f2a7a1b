package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/roam-graph/internal/builder"
	"github.com/pdiddy/roam-graph/internal/snapshot"
	"github.com/pdiddy/roam-graph/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the snapshot from the note collection",
	Long: `Build discovers .org note files under ROAM_GRAPH_NOTES_DIR, rebuilds the
SQLite snapshot at ROAM_GRAPH_DB_PATH from scratch (pass 1 creates nodes and
tags, pass 2 resolves links), and prints a statistics report.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := buildSnapshot(context.Background(), cfg)
	if err != nil {
		return err
	}
	return store.Close()
}

// buildConfig assembles the build-phase settings from viper.
func buildConfig() types.BuildConfig {
	return types.BuildConfig{
		NotesDir: viper.GetString("notes_dir"),
		DBPath:   viper.GetString("db_path"),
	}
}

// buildSnapshot recreates the snapshot from the note collection and prints
// the run report plus statistics. The caller closes the returned store.
func buildSnapshot(ctx context.Context, cfg types.BuildConfig) (*snapshot.Store, error) {
	store, err := snapshot.Create(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	if _, err := builder.New(store, cfg.NotesDir).Run(ctx, os.Stdout); err != nil {
		store.Close()
		return nil, err
	}
	if err := printStats(ctx, store, os.Stdout); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
