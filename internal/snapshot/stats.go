// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pdiddy/roam-graph/pkg/types"
)

const rankLimit = 5

// Stats collects the statistics bundle: totals, a small node sample, and the
// top-five rankings for outgoing links, backlinks, and tag usage. Rankings
// break count ties by id or name so the output is stable.
func (s *Store) Stats(ctx context.Context) (types.GraphStats, error) {
	var st types.GraphStats

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&st.Nodes); err != nil {
		return st, fmt.Errorf("counting nodes: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links`).Scan(&st.Links); err != nil {
		return st, fmt.Errorf("counting links: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT tag) FROM tags`).Scan(&st.DistinctTags); err != nil {
		return st, fmt.Errorf("counting distinct tags: %w", err)
	}

	sample, err := s.sampleNodes(ctx)
	if err != nil {
		return st, err
	}
	st.Sample = sample

	st.TopOutgoing, err = s.nodeRanks(ctx, `
		SELECT n.id, n.title, COUNT(l.source) AS link_count
		FROM nodes n
		JOIN links l ON n.id = l.source
		GROUP BY n.id
		ORDER BY link_count DESC, n.id
		LIMIT ?`)
	if err != nil {
		return st, fmt.Errorf("ranking outgoing links: %w", err)
	}

	st.TopBacklinks, err = s.nodeRanks(ctx, `
		SELECT n.id, n.title, COUNT(l.dest) AS backlink_count
		FROM nodes n
		JOIN links l ON n.id = l.dest
		GROUP BY n.id
		ORDER BY backlink_count DESC, n.id
		LIMIT ?`)
	if err != nil {
		return st, fmt.Errorf("ranking backlinks: %w", err)
	}

	st.TopTags, err = s.tagRanks(ctx)
	if err != nil {
		return st, fmt.Errorf("ranking tags: %w", err)
	}

	return st, nil
}

func (s *Store) sampleNodes(ctx context.Context) ([]types.Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, title, level FROM nodes ORDER BY id LIMIT ?`, rankLimit)
	if err != nil {
		return nil, fmt.Errorf("sampling nodes: %w", err)
	}
	defer rows.Close()

	var sample []types.Node
	for rows.Next() {
		var n types.Node
		var title sql.NullString
		if err := rows.Scan(&n.ID, &n.File, &title, &n.Level); err != nil {
			return nil, fmt.Errorf("scanning sample node: %w", err)
		}
		n.Title = title.String
		sample = append(sample, n)
	}
	return sample, rows.Err()
}

func (s *Store) nodeRanks(ctx context.Context, query string) ([]types.NodeRank, error) {
	rows, err := s.db.QueryContext(ctx, query, rankLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranks []types.NodeRank
	for rows.Next() {
		var r types.NodeRank
		var title sql.NullString
		if err := rows.Scan(&r.ID, &title, &r.Count); err != nil {
			return nil, err
		}
		r.Title = title.String
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

func (s *Store) tagRanks(ctx context.Context) ([]types.TagRank, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag, COUNT(*) AS tag_count
		FROM tags
		GROUP BY tag
		ORDER BY tag_count DESC, tag
		LIMIT ?`, rankLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranks []types.TagRank
	for rows.Next() {
		var r types.TagRank
		if err := rows.Scan(&r.Name, &r.Count); err != nil {
			return nil, err
		}
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}
