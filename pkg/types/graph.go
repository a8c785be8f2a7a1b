// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LinkTypeID is the single edge classification stored on links. All three
// link syntax variants (file:, id:, bare bracket) normalize to it.
const LinkTypeID = "id"

// Node represents one note, or one placeholder synthesized for an
// unresolvable link target.
type Node struct {
	// ID is globally unique and stable across rebuilds: the note's declared
	// :ID: property when present, otherwise a short hash of its relative path.
	ID string `json:"id" yaml:"id"`

	// File is the note's path relative to the collection root. Placeholders
	// carry the raw, unresolved link text instead of a real path.
	File string `json:"file" yaml:"file"`

	// Title is the best-effort human title: explicit title line, first
	// heading, base filename, or the raw link text for placeholders.
	Title string `json:"title" yaml:"title"`

	// Level is reserved for outline depth; always 0 in this design.
	Level int `json:"level" yaml:"level"`
}

// Link is a directed edge between two node ids.
type Link struct {
	Source string `json:"source" yaml:"source"`
	Dest   string `json:"dest" yaml:"dest"`
	Type   string `json:"type" yaml:"type"`
}

// Tag associates a node id with a free-text label.
type Tag struct {
	NodeID string `json:"node_id" yaml:"node_id"`
	Name   string `json:"tag" yaml:"tag"`
}

// GraphDump is the full contents of a snapshot in one bundle. It feeds the
// remote mirror and the YAML/JSON dump files.
type GraphDump struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Links []Link `json:"links" yaml:"links"`
	Tags  []Tag  `json:"tags" yaml:"tags"`
}

// GraphCounts holds snapshot row counts.
type GraphCounts struct {
	Nodes int
	Links int
	Tags  int
}

// FileSkip records one note file left out of a build, with the reason.
type FileSkip struct {
	File   string
	Reason string
}

// BuildSummary holds counts from one snapshot build run.
type BuildSummary struct {
	// Files is the number of note files discovered.
	Files int

	// Nodes, Links, and Tags are the rows written during the run.
	Nodes int
	Links int
	Tags  int

	// Placeholders is the number of nodes synthesized for link targets that
	// matched no real note.
	Placeholders int

	// Skips lists the files that could not be read or decoded.
	Skips []FileSkip
}

// Skipped returns the number of files left out of the build.
func (s BuildSummary) Skipped() int {
	return len(s.Skips)
}

// Outcome counts attempts against a remote store for one category of writes.
type Outcome struct {
	Attempted int
	Succeeded int
	Failed    int
}

// ExportSummary holds per-category outcome counters from one mirror run.
type ExportSummary struct {
	Notes   Outcome
	Links   Outcome
	Tags    Outcome
	TagRels Outcome
}

// TotalFailed returns the number of failed writes across all categories.
func (s ExportSummary) TotalFailed() int {
	return s.Notes.Failed + s.Links.Failed + s.Tags.Failed + s.TagRels.Failed
}

// MirrorCounts holds aggregate counts read back from the remote store during
// verification.
type MirrorCounts struct {
	Notes   int64
	Links   int64
	Tags    int64
	TagRels int64
}

// NodeRank is one row of a statistics ranking keyed by node.
type NodeRank struct {
	ID    string
	Title string
	Count int
}

// TagRank is one row of a statistics ranking keyed by tag value.
type TagRank struct {
	Name  string
	Count int
}

// GraphStats is the statistics bundle reported after a build and by the
// stats command.
type GraphStats struct {
	Nodes        int
	Links        int
	DistinctTags int

	// Sample holds up to five nodes for a quick eyeball check.
	Sample []Node

	TopOutgoing  []NodeRank
	TopBacklinks []NodeRank
	TopTags      []TagRank
}
