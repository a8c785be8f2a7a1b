// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package builder turns a directory of notes into a populated snapshot.
// It runs two ordered passes: pass 1 writes every note's node and tags and
// retains the path→id mapping; pass 2 resolves each outbound link target
// against the full node set, synthesizing placeholder nodes for targets
// that match nothing, so every edge lands on an existing node.
package builder

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/roam-graph/internal/extract"
	"github.com/pdiddy/roam-graph/internal/ident"
	"github.com/pdiddy/roam-graph/internal/snapshot"
	"github.com/pdiddy/roam-graph/pkg/types"
)

const noteExt = ".org"

// Builder populates a snapshot from a note collection. Pass1 must complete
// before Pass2; Run executes discovery and both passes in order. A Builder
// is single-use and not safe for concurrent use.
type Builder struct {
	store    *snapshot.Store
	notesDir string

	// files holds collection-relative note paths in lexical order.
	files []string

	// pathIDs maps relative path to node id; filled by Pass1, read by Pass2.
	pathIDs map[string]string

	summary types.BuildSummary
}

// New returns a Builder that writes the notes under notesDir into store.
func New(store *snapshot.Store, notesDir string) *Builder {
	return &Builder{store: store, notesDir: notesDir}
}

// Run discovers note files and executes pass 1 then pass 2, writing
// progress lines to w. The returned report carries the final row counts,
// the placeholder count, and every skipped file with its reason.
func (b *Builder) Run(ctx context.Context, w io.Writer) (types.BuildSummary, error) {
	if err := b.discover(); err != nil {
		return b.summary, err
	}
	fmt.Fprintf(w, "Found %d note files in %s\n", len(b.files), b.notesDir)

	fmt.Fprintln(w, "Pass 1: creating nodes and tags...")
	if err := b.Pass1(ctx, w); err != nil {
		return b.summary, err
	}

	fmt.Fprintln(w, "Pass 2: resolving links...")
	if err := b.Pass2(ctx, w); err != nil {
		return b.summary, err
	}

	counts, err := b.store.Counts(ctx)
	if err != nil {
		return b.summary, err
	}
	b.summary.Nodes = counts.Nodes
	b.summary.Links = counts.Links
	b.summary.Tags = counts.Tags

	fmt.Fprintf(w, "\nnodes: %d, links: %d, tags: %d, placeholders: %d, skipped: %d\n",
		b.summary.Nodes, b.summary.Links, b.summary.Tags,
		b.summary.Placeholders, b.summary.Skipped())

	return b.summary, nil
}

func (b *Builder) discover() error {
	var files []string
	err := filepath.WalkDir(b.notesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), noteExt) {
			return nil
		}
		rel, err := filepath.Rel(b.notesDir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", b.notesDir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s note files found in %s", noteExt, b.notesDir)
	}

	b.files = files
	b.summary.Files = len(files)
	return nil
}

// Pass1 materializes one node per readable note plus its tags, and records
// the path→id mapping. Files are independent; order does not matter here.
func (b *Builder) Pass1(ctx context.Context, w io.Writer) error {
	if b.files == nil {
		if err := b.discover(); err != nil {
			return err
		}
	}
	b.pathIDs = make(map[string]string, len(b.files))

	for _, rel := range b.files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		content, ok := b.readNote(w, rel, "pass 1")
		if !ok {
			continue
		}

		id := ident.Resolve(rel, []byte(content))
		title, found := extract.Title(content)
		if !found {
			title = strings.TrimSuffix(filepath.Base(rel), noteExt)
		}

		if err := b.store.UpsertNode(ctx, types.Node{ID: id, File: rel, Title: title}); err != nil {
			return err
		}
		for _, tag := range extract.Tags(content) {
			if err := b.store.UpsertTag(ctx, types.Tag{NodeID: id, Name: tag}); err != nil {
				return err
			}
		}

		b.pathIDs[rel] = id
		fmt.Fprintf(w, "indexed %s (node %s)\n", rel, id)
	}

	return nil
}

// Pass2 resolves every outbound link target against the node set built by
// Pass1 and writes edges. Calling it before Pass1 is an error.
func (b *Builder) Pass2(ctx context.Context, w io.Writer) error {
	if b.pathIDs == nil {
		return fmt.Errorf("pass 2 requires pass 1 to have run")
	}

	for _, rel := range b.files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		sourceID, ok := b.pathIDs[rel]
		if !ok {
			continue
		}

		content, ok := b.readNote(w, rel, "pass 2")
		if !ok {
			continue
		}

		targets := extract.LinkTargets(content)
		for _, target := range targets {
			destID, err := b.resolveTarget(ctx, target)
			if err != nil {
				return err
			}
			link := types.Link{Source: sourceID, Dest: destID, Type: types.LinkTypeID}
			if err := b.store.UpsertLink(ctx, link); err != nil {
				return err
			}
		}
		if len(targets) > 0 {
			fmt.Fprintf(w, "linked %s (%d targets)\n", rel, len(targets))
		}
	}

	return nil
}

// resolveTarget maps a raw link target to a destination node id, in
// precedence order: exact id match, file-path suffix match, synthesized
// placeholder.
func (b *Builder) resolveTarget(ctx context.Context, target string) (string, error) {
	exists, err := b.store.NodeIDExists(ctx, target)
	if err != nil {
		return "", err
	}
	if exists {
		return target, nil
	}

	suffix := target
	if !strings.HasSuffix(suffix, noteExt) {
		suffix += noteExt
	}
	id, err := b.store.FindByFileSuffix(ctx, suffix)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	placeholder := types.Node{ID: ident.FromPath(target), File: target, Title: target}
	inserted, err := b.store.InsertPlaceholder(ctx, placeholder)
	if err != nil {
		return "", err
	}
	if inserted {
		b.summary.Placeholders++
	}
	return placeholder.ID, nil
}

func (b *Builder) readNote(w io.Writer, rel, pass string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(b.notesDir, rel))
	if err != nil {
		b.skip(w, rel, fmt.Sprintf("%s: %v", pass, err))
		return "", false
	}
	if !utf8.Valid(data) {
		b.skip(w, rel, pass+": not valid UTF-8")
		return "", false
	}
	return string(data), true
}

func (b *Builder) skip(w io.Writer, rel, reason string) {
	b.summary.Skips = append(b.summary.Skips, types.FileSkip{File: rel, Reason: reason})
	fmt.Fprintf(w, "skipped %s: %s\n", rel, reason)
}
