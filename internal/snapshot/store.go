// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot owns the on-disk relational copy of the note graph for
// one run: schema lifecycle, row upserts, the lookups pass 2 resolves
// against, statistics queries, and dump/export of the full contents.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/roam-graph/pkg/types"
)

// Store manages the snapshot SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Create removes any existing snapshot at path and opens a fresh one with
// the full schema. Every build starts here; failure to remove or create the
// file is fatal to the build phase.
func Create(path string) (*Store, error) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing existing snapshot %s: %w", p, err)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	s, err := open(path)
	if err != nil {
		return nil, err
	}
	if err := s.createSchema(); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Open opens an existing snapshot for reading (the export and statistics
// entry points). A missing file is an error; builds go through Create.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("snapshot not found at %s: %w", path, err)
	}
	return open(path)
}

func open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE nodes (
			id TEXT PRIMARY KEY,
			file TEXT NOT NULL,
			title TEXT,
			level INTEGER DEFAULT 0
		)`,
		`CREATE TABLE links (
			source TEXT NOT NULL,
			dest TEXT NOT NULL,
			type TEXT DEFAULT 'id',
			PRIMARY KEY (source, dest)
		)`,
		`CREATE TABLE tags (
			node_id TEXT NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (node_id, tag)
		)`,
		`CREATE INDEX nodes_file_idx ON nodes(file)`,
		`CREATE INDEX links_dest_idx ON links(dest)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}

// UpsertNode writes one node row, replacing any prior row with the same id.
func (s *Store) UpsertNode(ctx context.Context, n types.Node) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO nodes (id, file, title, level) VALUES (?, ?, ?, ?)`,
		n.ID, n.File, n.Title, n.Level)
	if err != nil {
		return fmt.Errorf("upserting node %s: %w", n.ID, err)
	}
	return nil
}

// InsertPlaceholder writes a node row only when no node with the same id
// exists, reporting whether a row was inserted. A placeholder never
// overwrites a real note.
func (s *Store) InsertPlaceholder(ctx context.Context, n types.Node) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO nodes (id, file, title, level) VALUES (?, ?, ?, ?)`,
		n.ID, n.File, n.Title, n.Level)
	if err != nil {
		return false, fmt.Errorf("inserting placeholder %s: %w", n.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting placeholder %s: %w", n.ID, err)
	}
	return rows == 1, nil
}

// UpsertLink writes one edge, collapsing duplicates by (source, dest).
func (s *Store) UpsertLink(ctx context.Context, l types.Link) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO links (source, dest, type) VALUES (?, ?, ?)`,
		l.Source, l.Dest, l.Type)
	if err != nil {
		return fmt.Errorf("upserting link %s -> %s: %w", l.Source, l.Dest, err)
	}
	return nil
}

// UpsertTag writes one (node, tag) association, collapsing duplicates.
func (s *Store) UpsertTag(ctx context.Context, t types.Tag) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tags (node_id, tag) VALUES (?, ?)`,
		t.NodeID, t.Name)
	if err != nil {
		return fmt.Errorf("upserting tag %s on %s: %w", t.Name, t.NodeID, err)
	}
	return nil
}

// NodeIDExists reports whether a node with exactly this id exists.
func (s *Store) NodeIDExists(ctx context.Context, id string) (bool, error) {
	var found string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM nodes WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up node id %s: %w", id, err)
	}
	return true, nil
}

// FindByFileSuffix returns the id of some node whose file path ends with
// suffix, or "" when none matches.
func (s *Store) FindByFileSuffix(ctx context.Context, suffix string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM nodes WHERE file LIKE ? LIMIT 1`, "%"+suffix).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up node by file suffix %s: %w", suffix, err)
	}
	return id, nil
}

// Counts returns the row counts of all three tables.
func (s *Store) Counts(ctx context.Context) (types.GraphCounts, error) {
	var c types.GraphCounts
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&c.Nodes); err != nil {
		return c, fmt.Errorf("counting nodes: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links`).Scan(&c.Links); err != nil {
		return c, fmt.Errorf("counting links: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&c.Tags); err != nil {
		return c, fmt.Errorf("counting tags: %w", err)
	}
	return c, nil
}

// Dump returns the full snapshot contents in one bundle, ordered
// deterministically. It feeds the remote mirror and the dump files.
func (s *Store) Dump(ctx context.Context) (types.GraphDump, error) {
	var d types.GraphDump

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, title, level FROM nodes ORDER BY id`)
	if err != nil {
		return d, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n types.Node
		var title sql.NullString
		if err := rows.Scan(&n.ID, &n.File, &title, &n.Level); err != nil {
			return d, fmt.Errorf("scanning node: %w", err)
		}
		n.Title = title.String
		d.Nodes = append(d.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return d, fmt.Errorf("reading nodes: %w", err)
	}

	linkRows, err := s.db.QueryContext(ctx,
		`SELECT source, dest, type FROM links ORDER BY source, dest`)
	if err != nil {
		return d, fmt.Errorf("querying links: %w", err)
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var l types.Link
		if err := linkRows.Scan(&l.Source, &l.Dest, &l.Type); err != nil {
			return d, fmt.Errorf("scanning link: %w", err)
		}
		d.Links = append(d.Links, l)
	}
	if err := linkRows.Err(); err != nil {
		return d, fmt.Errorf("reading links: %w", err)
	}

	tagRows, err := s.db.QueryContext(ctx,
		`SELECT node_id, tag FROM tags ORDER BY node_id, tag`)
	if err != nil {
		return d, fmt.Errorf("querying tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var t types.Tag
		if err := tagRows.Scan(&t.NodeID, &t.Name); err != nil {
			return d, fmt.Errorf("scanning tag: %w", err)
		}
		d.Tags = append(d.Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return d, fmt.Errorf("reading tags: %w", err)
	}

	return d, nil
}
