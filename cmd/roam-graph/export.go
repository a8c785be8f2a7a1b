// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/roam-graph/internal/mirror"
	"github.com/pdiddy/roam-graph/internal/snapshot"
	"github.com/pdiddy/roam-graph/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Mirror an existing snapshot to Neo4j",
	Long: `Export reads the snapshot at ROAM_GRAPH_DB_PATH and replaces the Neo4j
graph with its contents: clear, note entities, link relationships, tag
entities, tag relationships. Afterwards it re-queries the remote counts for
comparison and prints a few useful Cypher queries.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db_path")
	if dbPath == "" {
		return fmt.Errorf("missing required configuration: %s", types.EnvDBPath)
	}
	cfg := mirrorConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := snapshot.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return mirrorSnapshot(context.Background(), store, cfg)
}

// mirrorConfig assembles the export-phase settings from viper and loaded
// secrets. Explicit environment values win over secrets.
func mirrorConfig() types.MirrorConfig {
	return types.MirrorConfig{
		URI:      secretDefault("neo4j-uri", viper.GetString("neo4j_uri")),
		Username: secretDefault("neo4j-user", viper.GetString("neo4j_user")),
		Password: secretDefault("neo4j-password", viper.GetString("neo4j_password")),
	}
}

// mirrorSnapshot pushes the snapshot's contents into Neo4j, verifies the
// remote counts against the local ones, and prints example queries. The
// verification is informational; only failed writes make the run fail.
func mirrorSnapshot(ctx context.Context, store *snapshot.Store, cfg types.MirrorConfig) error {
	dump, err := store.Dump(ctx)
	if err != nil {
		return err
	}
	local, err := store.Counts(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Connecting to %s...\n", cfg.URI)
	graph, err := mirror.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer graph.Close(ctx)

	summary, err := graph.Push(ctx, dump, os.Stdout)
	if err != nil {
		return err
	}

	remote, err := graph.Verify(ctx, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("local snapshot: %d nodes, %d links, %d tag rows\n",
		local.Nodes, local.Links, local.Tags)
	if remote.Notes != int64(local.Nodes) || remote.Links != int64(local.Links) {
		fmt.Fprintln(os.Stderr, "warning: remote counts differ from the local snapshot")
	}

	printUsefulQueries(os.Stdout)

	if failed := summary.TotalFailed(); failed > 0 {
		return fmt.Errorf("%d remote write(s) failed", failed)
	}
	return nil
}

// printUsefulQueries prints copy-paste Cypher for exploring the mirrored
// graph.
func printUsefulQueries(w io.Writer) {
	fmt.Fprintln(w, "\nUseful Neo4j queries:")
	fmt.Fprintln(w, "  all notes:     MATCH (n:OrgNode) RETURN n.title")
	fmt.Fprintln(w, "  backlinks:     MATCH (n:OrgNode)-[:LINKS_TO]->(m:OrgNode {title: 'TITLE'}) RETURN n.title")
	fmt.Fprintln(w, "  notes by tag:  MATCH (n:OrgNode)-[:HAS_TAG]->(t:Tag {name: 'TAG'}) RETURN n.title")
	fmt.Fprintln(w, "  orphan notes:  MATCH (n:OrgNode) WHERE NOT (n)-[:LINKS_TO]-() RETURN n.title")
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
