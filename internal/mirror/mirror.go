// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mirror replicates a snapshot into a Neo4j graph database. The
// remote graph is a derived copy: every push clears it and rebuilds it from
// the snapshot, so Neo4j never holds state the snapshot does not.
package mirror

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pdiddy/roam-graph/internal/backoff"
	"github.com/pdiddy/roam-graph/pkg/types"
)

// Cypher statements for the push phases and the verification queries. Notes
// become OrgNode entities, link rows LINKS_TO relationships, tag values
// shared Tag entities, and tag rows HAS_TAG relationships.
const (
	cypherClear = `MATCH (n) DETACH DELETE n`

	cypherCreateNote = `CREATE (n:OrgNode {id: $id, file: $file, title: $title, level: $level})`

	cypherCreateLink = `MATCH (a:OrgNode {id: $source}), (b:OrgNode {id: $dest})
CREATE (a)-[:LINKS_TO {type: $type}]->(b)`

	cypherMergeTag = `MERGE (t:Tag {name: $name})`

	cypherCreateTagRel = `MATCH (n:OrgNode {id: $node_id}), (t:Tag {name: $tag})
CREATE (n)-[:HAS_TAG]->(t)`

	countNotes   = `MATCH (n:OrgNode) RETURN count(n) AS count`
	countLinks   = `MATCH ()-[r:LINKS_TO]->() RETURN count(r) AS count`
	countTags    = `MATCH (t:Tag) RETURN count(t) AS count`
	countTagRels = `MATCH ()-[r:HAS_TAG]->() RETURN count(r) AS count`

	topOutgoing = `MATCH (n:OrgNode)-[r:LINKS_TO]->()
RETURN n.title AS name, count(r) AS uses ORDER BY uses DESC LIMIT 5`

	topBacklinks = `MATCH (n:OrgNode)<-[r:LINKS_TO]-()
RETURN n.title AS name, count(r) AS uses ORDER BY uses DESC LIMIT 5`

	topTags = `MATCH (t:Tag)<-[r:HAS_TAG]-()
RETURN t.name AS name, count(r) AS uses ORDER BY uses DESC LIMIT 5`
)

// created reports what a single mutating statement wrote.
type created struct {
	nodes int64
	rels  int64
}

// rank is one row of a verification ranking query.
type rank struct {
	name string
	uses int64
}

// runner is the slice of the Neo4j session surface the synchronizer uses.
// Tests substitute a fake; the real implementation wraps driver sessions.
type runner interface {
	write(ctx context.Context, cypher string, params map[string]any) (created, error)
	readCount(ctx context.Context, cypher string) (int64, error)
	readRanks(ctx context.Context, cypher string) ([]rank, error)
	close(ctx context.Context) error
}

// Graph is a handle on the remote mirror.
type Graph struct {
	r runner
}

// Connect dials the remote graph store and verifies connectivity, retrying
// with exponential backoff. The caller must Close the returned Graph.
func Connect(ctx context.Context, cfg types.MirrorConfig) (*Graph, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating driver for %s: %w", cfg.URI, err)
	}
	if err := backoff.Retry(ctx, 0, func() error { return driver.VerifyConnectivity(ctx) }); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connecting to %s: %w", cfg.URI, err)
	}
	return &Graph{r: newDriverRunner(ctx, driver)}, nil
}

// Close releases the session and driver.
func (g *Graph) Close(ctx context.Context) error {
	return g.r.close(ctx)
}

// Push replaces the remote graph with the dump's contents. Phases run
// strictly in order: clear, notes, links, tag entities, tag relationships.
// A failed clear aborts the push; a failed individual write — including a
// relationship whose MATCH found no endpoint — is counted and skipped.
func (g *Graph) Push(ctx context.Context, dump types.GraphDump, w io.Writer) (types.ExportSummary, error) {
	var summary types.ExportSummary

	if _, err := g.r.write(ctx, cypherClear, nil); err != nil {
		return summary, fmt.Errorf("clearing remote graph: %w", err)
	}
	fmt.Fprintln(w, "cleared remote graph")

	for _, n := range dump.Nodes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Notes.Attempted++
		c, err := g.r.write(ctx, cypherCreateNote, map[string]any{
			"id":    n.ID,
			"file":  n.File,
			"title": n.Title,
			"level": n.Level,
		})
		if err != nil || c.nodes == 0 {
			summary.Notes.Failed++
			continue
		}
		summary.Notes.Succeeded++
	}
	fmt.Fprintf(w, "created %d/%d notes\n", summary.Notes.Succeeded, summary.Notes.Attempted)

	for _, l := range dump.Links {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Links.Attempted++
		c, err := g.r.write(ctx, cypherCreateLink, map[string]any{
			"source": l.Source,
			"dest":   l.Dest,
			"type":   l.Type,
		})
		if err != nil || c.rels == 0 {
			summary.Links.Failed++
			continue
		}
		summary.Links.Succeeded++
	}
	fmt.Fprintf(w, "created %d/%d links\n", summary.Links.Succeeded, summary.Links.Attempted)

	for _, name := range distinctTags(dump.Tags) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Tags.Attempted++
		// MERGE matching an existing entity creates nothing and still counts
		// as a success.
		if _, err := g.r.write(ctx, cypherMergeTag, map[string]any{"name": name}); err != nil {
			summary.Tags.Failed++
			continue
		}
		summary.Tags.Succeeded++
	}
	fmt.Fprintf(w, "merged %d/%d tags\n", summary.Tags.Succeeded, summary.Tags.Attempted)

	for _, tag := range dump.Tags {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.TagRels.Attempted++
		c, err := g.r.write(ctx, cypherCreateTagRel, map[string]any{
			"node_id": tag.NodeID,
			"tag":     tag.Name,
		})
		if err != nil || c.rels == 0 {
			summary.TagRels.Failed++
			continue
		}
		summary.TagRels.Succeeded++
	}
	fmt.Fprintf(w, "created %d/%d tag relationships\n", summary.TagRels.Succeeded, summary.TagRels.Attempted)

	return summary, nil
}

// Verify re-reads aggregate counts from the remote store and prints them to
// w together with top-five rankings. Comparing the counts against the
// snapshot is the caller's concern; a mismatch is surfaced, never repaired.
func (g *Graph) Verify(ctx context.Context, w io.Writer) (types.MirrorCounts, error) {
	var counts types.MirrorCounts
	var err error

	if counts.Notes, err = g.r.readCount(ctx, countNotes); err != nil {
		return counts, fmt.Errorf("counting notes: %w", err)
	}
	if counts.Links, err = g.r.readCount(ctx, countLinks); err != nil {
		return counts, fmt.Errorf("counting links: %w", err)
	}
	if counts.Tags, err = g.r.readCount(ctx, countTags); err != nil {
		return counts, fmt.Errorf("counting tags: %w", err)
	}
	if counts.TagRels, err = g.r.readCount(ctx, countTagRels); err != nil {
		return counts, fmt.Errorf("counting tag relationships: %w", err)
	}

	fmt.Fprintf(w, "remote graph: %d notes, %d links, %d tags, %d tag relationships\n",
		counts.Notes, counts.Links, counts.Tags, counts.TagRels)

	rankings := []struct {
		heading string
		cypher  string
	}{
		{"Top outgoing links", topOutgoing},
		{"Top backlinks", topBacklinks},
		{"Top tags", topTags},
	}
	for _, q := range rankings {
		ranks, err := g.r.readRanks(ctx, q.cypher)
		if err != nil {
			return counts, fmt.Errorf("%s query: %w", q.heading, err)
		}
		if len(ranks) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", q.heading)
		for _, r := range ranks {
			fmt.Fprintf(w, "  %4d  %s\n", r.uses, r.name)
		}
	}

	return counts, nil
}

// distinctTags returns the sorted set of tag values in rows.
func distinctTags(rows []types.Tag) []string {
	seen := make(map[string]bool, len(rows))
	var names []string
	for _, tag := range rows {
		if seen[tag.Name] {
			continue
		}
		seen[tag.Name] = true
		names = append(names, tag.Name)
	}
	sort.Strings(names)
	return names
}

// driverRunner executes statements on one long-lived write session.
type driverRunner struct {
	driver  neo4j.DriverWithContext
	session neo4j.SessionWithContext
}

func newDriverRunner(ctx context.Context, driver neo4j.DriverWithContext) *driverRunner {
	return &driverRunner{
		driver:  driver,
		session: driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite}),
	}
}

func (d *driverRunner) write(ctx context.Context, cypher string, params map[string]any) (created, error) {
	result, err := d.session.Run(ctx, cypher, params)
	if err != nil {
		return created{}, err
	}
	summary, err := result.Consume(ctx)
	if err != nil {
		return created{}, err
	}
	counters := summary.Counters()
	return created{
		nodes: int64(counters.NodesCreated()),
		rels:  int64(counters.RelationshipsCreated()),
	}, nil
}

func (d *driverRunner) readCount(ctx context.Context, cypher string) (int64, error) {
	result, err := d.session.Run(ctx, cypher, nil)
	if err != nil {
		return 0, err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, err
	}
	val, ok := record.Get("count")
	if !ok {
		return 0, fmt.Errorf("count query returned no count column")
	}
	n, ok := val.(int64)
	if !ok {
		return 0, fmt.Errorf("count query returned %T, want int64", val)
	}
	return n, nil
}

func (d *driverRunner) readRanks(ctx context.Context, cypher string) ([]rank, error) {
	result, err := d.session.Run(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	var ranks []rank
	for result.Next(ctx) {
		record := result.Record()
		var r rank
		if v, ok := record.Get("name"); ok {
			if s, ok := v.(string); ok {
				r.name = s
			}
		}
		if v, ok := record.Get("uses"); ok {
			if n, ok := v.(int64); ok {
				r.uses = n
			}
		}
		ranks = append(ranks, r)
	}
	return ranks, result.Err()
}

func (d *driverRunner) close(ctx context.Context) error {
	if err := d.session.Close(ctx); err != nil {
		d.driver.Close(ctx)
		return err
	}
	return d.driver.Close(ctx)
}
