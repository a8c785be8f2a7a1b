package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/roam-graph/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.db")
	store, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustUpsertNode(t *testing.T, s *Store, id, file, title string) {
	t.Helper()
	if err := s.UpsertNode(context.Background(), types.Node{ID: id, File: file, Title: title}); err != nil {
		t.Fatal(err)
	}
}

func mustUpsertLink(t *testing.T, s *Store, source, dest string) {
	t.Helper()
	if err := s.UpsertLink(context.Background(), types.Link{Source: source, Dest: dest, Type: types.LinkTypeID}); err != nil {
		t.Fatal(err)
	}
}

func mustUpsertTag(t *testing.T, s *Store, nodeID, name string) {
	t.Helper()
	if err := s.UpsertTag(context.Background(), types.Tag{NodeID: nodeID, Name: name}); err != nil {
		t.Fatal(err)
	}
}

// --- lifecycle ---

func TestCreateReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")
	if err := os.WriteFile(path, []byte("not a database"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := Create(path)
	if err != nil {
		t.Fatalf("Create over garbage file: %v", err)
	}
	defer store.Close()

	counts, err := store.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.Nodes != 0 || counts.Links != 0 || counts.Tags != 0 {
		t.Errorf("fresh snapshot not empty: %+v", counts)
	}
}

func TestCreateDiscardsPriorContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")

	first, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	mustUpsertNode(t, first, "a", "a.org", "A")
	first.Close()

	second, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	counts, err := second.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.Nodes != 0 {
		t.Errorf("recreated snapshot has %d nodes, want 0", counts.Nodes)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.db")); err == nil {
		t.Error("Open of a missing snapshot should fail")
	}
}

func TestOpenExistingSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")
	created, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	mustUpsertNode(t, created, "a", "a.org", "A")
	created.Close()

	opened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer opened.Close()

	counts, err := opened.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.Nodes != 1 {
		t.Errorf("opened snapshot has %d nodes, want 1", counts.Nodes)
	}
}

// --- upserts ---

func TestUpsertNodeReplaces(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	mustUpsertNode(t, store, "a", "a.org", "old title")
	mustUpsertNode(t, store, "a", "a.org", "new title")

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Nodes != 1 {
		t.Fatalf("got %d nodes, want 1", counts.Nodes)
	}

	dump, err := store.Dump(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if dump.Nodes[0].Title != "new title" {
		t.Errorf("title = %q, want %q", dump.Nodes[0].Title, "new title")
	}
}

func TestInsertPlaceholderKeepsRealNode(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	mustUpsertNode(t, store, "a", "a.org", "real note")
	inserted, err := store.InsertPlaceholder(ctx, types.Node{ID: "a", File: "a", Title: "placeholder"})
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Error("placeholder reported inserted over an existing node")
	}

	dump, err := store.Dump(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(dump.Nodes) != 1 || dump.Nodes[0].Title != "real note" {
		t.Errorf("placeholder overwrote real node: %+v", dump.Nodes)
	}

	inserted, err = store.InsertPlaceholder(ctx, types.Node{ID: "ghost", File: "ghost", Title: "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Error("placeholder for a fresh id reported not inserted")
	}
}

func TestUpsertLinkCollapsesDuplicates(t *testing.T) {
	store := testStore(t)

	mustUpsertLink(t, store, "a", "b")
	mustUpsertLink(t, store, "a", "b")
	mustUpsertLink(t, store, "a", "c")

	counts, err := store.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.Links != 2 {
		t.Errorf("got %d links, want 2", counts.Links)
	}
}

func TestUpsertTagCollapsesDuplicates(t *testing.T) {
	store := testStore(t)

	mustUpsertTag(t, store, "a", "work")
	mustUpsertTag(t, store, "a", "work")
	mustUpsertTag(t, store, "a", "home")
	mustUpsertTag(t, store, "b", "work")

	counts, err := store.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.Tags != 3 {
		t.Errorf("got %d tags, want 3", counts.Tags)
	}
}

// --- lookups ---

func TestNodeIDExists(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	mustUpsertNode(t, store, "abc1234", "a.org", "A")

	exists, err := store.NodeIDExists(ctx, "abc1234")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("existing id not found")
	}

	exists, err = store.NodeIDExists(ctx, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("missing id reported as existing")
	}
}

func TestFindByFileSuffix(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	mustUpsertNode(t, store, "n1", "projects/alpha/notes.org", "Notes")

	tests := []struct {
		suffix string
		want   string
	}{
		{"notes.org", "n1"},
		{"alpha/notes.org", "n1"},
		{"projects/alpha/notes.org", "n1"},
		{"other.org", ""},
	}

	for _, tt := range tests {
		got, err := store.FindByFileSuffix(ctx, tt.suffix)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("FindByFileSuffix(%q) = %q, want %q", tt.suffix, got, tt.want)
		}
	}
}

// --- dump and stats ---

func populateSmallGraph(t *testing.T, store *Store) {
	t.Helper()
	mustUpsertNode(t, store, "a", "a.org", "Node A")
	mustUpsertNode(t, store, "b", "b.org", "Node B")
	mustUpsertNode(t, store, "c", "c.org", "Node C")
	mustUpsertLink(t, store, "a", "b")
	mustUpsertLink(t, store, "a", "c")
	mustUpsertLink(t, store, "b", "c")
	mustUpsertTag(t, store, "a", "shared")
	mustUpsertTag(t, store, "b", "shared")
	mustUpsertTag(t, store, "c", "rare")
}

func TestDumpOrderedContents(t *testing.T) {
	store := testStore(t)
	populateSmallGraph(t, store)

	dump, err := store.Dump(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(dump.Nodes) != 3 || len(dump.Links) != 3 || len(dump.Tags) != 3 {
		t.Fatalf("dump sizes = %d/%d/%d, want 3/3/3",
			len(dump.Nodes), len(dump.Links), len(dump.Tags))
	}
	if dump.Nodes[0].ID != "a" || dump.Nodes[2].ID != "c" {
		t.Errorf("nodes not ordered by id: %+v", dump.Nodes)
	}
	if dump.Links[0].Source != "a" || dump.Links[0].Dest != "b" {
		t.Errorf("links not ordered: %+v", dump.Links)
	}
	if dump.Links[0].Type != types.LinkTypeID {
		t.Errorf("link type = %q, want %q", dump.Links[0].Type, types.LinkTypeID)
	}
}

func TestStats(t *testing.T) {
	store := testStore(t)
	populateSmallGraph(t, store)

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if stats.Nodes != 3 || stats.Links != 3 {
		t.Errorf("totals = %d nodes/%d links, want 3/3", stats.Nodes, stats.Links)
	}
	if stats.DistinctTags != 2 {
		t.Errorf("distinct tags = %d, want 2", stats.DistinctTags)
	}
	if len(stats.Sample) != 3 {
		t.Errorf("sample size = %d, want 3", len(stats.Sample))
	}

	// a has two outgoing links, b has one.
	if len(stats.TopOutgoing) != 2 || stats.TopOutgoing[0].ID != "a" || stats.TopOutgoing[0].Count != 2 {
		t.Errorf("top outgoing = %+v", stats.TopOutgoing)
	}
	// c has two backlinks, b has one.
	if len(stats.TopBacklinks) != 2 || stats.TopBacklinks[0].ID != "c" || stats.TopBacklinks[0].Count != 2 {
		t.Errorf("top backlinks = %+v", stats.TopBacklinks)
	}
	if len(stats.TopTags) != 2 || stats.TopTags[0].Name != "shared" || stats.TopTags[0].Count != 2 {
		t.Errorf("top tags = %+v", stats.TopTags)
	}
}

func TestStatsEmptySnapshot(t *testing.T) {
	store := testStore(t)

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Nodes != 0 || len(stats.TopOutgoing) != 0 || len(stats.TopTags) != 0 {
		t.Errorf("empty snapshot stats = %+v", stats)
	}
}

// --- dump files ---

func TestExportYAML(t *testing.T) {
	store := testStore(t)
	populateSmallGraph(t, store)

	path, err := store.ExportYAML(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(path) != ".yaml" {
		t.Errorf("export path = %q, want .yaml extension", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var dump types.GraphDump
	if err := yaml.Unmarshal(data, &dump); err != nil {
		t.Fatal(err)
	}
	if len(dump.Nodes) != 3 || len(dump.Links) != 3 || len(dump.Tags) != 3 {
		t.Errorf("YAML dump sizes = %d/%d/%d, want 3/3/3",
			len(dump.Nodes), len(dump.Links), len(dump.Tags))
	}
}

func TestExportJSON(t *testing.T) {
	store := testStore(t)
	populateSmallGraph(t, store)

	path, err := store.ExportJSON(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var dump types.GraphDump
	if err := json.Unmarshal(data, &dump); err != nil {
		t.Fatal(err)
	}
	if len(dump.Nodes) != 3 {
		t.Errorf("JSON dump has %d nodes, want 3", len(dump.Nodes))
	}
	if dump.Nodes[0].ID != "a" {
		t.Errorf("first node id = %q, want %q", dump.Nodes[0].ID, "a")
	}
}
