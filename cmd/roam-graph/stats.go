package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/roam-graph/internal/snapshot"
	"github.com/pdiddy/roam-graph/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics for an existing snapshot",
	Long: `Stats reports totals, a sample of nodes, and the most connected notes and
most used tags for the snapshot at ROAM_GRAPH_DB_PATH. With --export it also
writes the full graph dump to YAML and JSON files next to the snapshot.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db_path")
	if dbPath == "" {
		return fmt.Errorf("missing required configuration: %s", types.EnvDBPath)
	}

	ctx := context.Background()
	store, err := snapshot.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := printStats(ctx, store, os.Stdout); err != nil {
		return err
	}

	if doExport, _ := cmd.Flags().GetBool("export"); doExport {
		yamlPath, err := store.ExportYAML(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Exported to", yamlPath)

		jsonPath, err := store.ExportJSON(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Exported to", jsonPath)
	}
	return nil
}

// printStats writes the statistics report for a snapshot to w.
func printStats(ctx context.Context, store *snapshot.Store, w io.Writer) error {
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nnodes: %d\n", stats.Nodes)
	if len(stats.Sample) > 0 {
		fmt.Fprintln(w, "sample nodes:")
		for _, n := range stats.Sample {
			fmt.Fprintf(w, "  %-9s %-32s %s\n", n.ID, n.File, n.Title)
		}
	}

	fmt.Fprintf(w, "links: %d\n", stats.Links)
	printNodeRanks(w, "top outgoing links", stats.TopOutgoing)
	printNodeRanks(w, "top backlinks", stats.TopBacklinks)

	fmt.Fprintf(w, "distinct tags: %d\n", stats.DistinctTags)
	if len(stats.TopTags) > 0 {
		fmt.Fprintln(w, "top tags:")
		for _, r := range stats.TopTags {
			fmt.Fprintf(w, "  %4d  %s\n", r.Count, r.Name)
		}
	}
	return nil
}

func printNodeRanks(w io.Writer, heading string, ranks []types.NodeRank) {
	if len(ranks) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", heading)
	for _, r := range ranks {
		title := r.Title
		if title == "" {
			title = r.ID
		}
		fmt.Fprintf(w, "  %4d  %s\n", r.Count, title)
	}
}

func init() {
	statsCmd.Flags().Bool("export", false, "write the graph dump to YAML and JSON files beside the snapshot")

	rootCmd.AddCommand(statsCmd)
}
