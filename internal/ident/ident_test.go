package ident

import (
	"regexp"
	"strings"
	"testing"
)

func TestResolveExplicitID(t *testing.T) {
	tests := []struct {
		name string
		path string
		head string
		want string
	}{
		{
			name: "properties block id",
			path: "daily/2021-01-01.org",
			head: ":PROPERTIES:\n:ID: 20210101T123456\n:END:\n#+title: Day one\n",
			want: "20210101T123456",
		},
		{
			name: "id with hyphen and underscore",
			path: "a.org",
			head: ":ID: abc-def_123\n",
			want: "abc-def_123",
		},
		{
			name: "id anywhere in head",
			path: "a.org",
			head: "some text before\n:ID: deadbeef\nmore text",
			want: "deadbeef",
		},
		{
			name: "first id wins",
			path: "a.org",
			head: ":ID: first\n:ID: second\n",
			want: "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.path, []byte(tt.head))
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolveFallsBackToPathHash(t *testing.T) {
	tests := []struct {
		name string
		path string
		head string
	}{
		{name: "no id declared", path: "notes/inbox.org", head: "#+title: Inbox\n"},
		{name: "empty content", path: "notes/empty.org", head: ""},
		{name: "nil content", path: "notes/unreadable.org", head: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.path, []byte(tt.head))
			if got != FromPath(tt.path) {
				t.Errorf("Resolve(%q) = %q, want path hash %q", tt.path, got, FromPath(tt.path))
			}
		})
	}
}

func TestResolveIgnoresIDBeyondHeaderWindow(t *testing.T) {
	head := strings.Repeat("x", HeaderBytes) + "\n:ID: too-late\n"
	got := Resolve("late.org", []byte(head))
	if got != FromPath("late.org") {
		t.Errorf("Resolve with id beyond %d bytes = %q, want path hash %q",
			HeaderBytes, got, FromPath("late.org"))
	}
}

func TestFromPathShape(t *testing.T) {
	hexRe := regexp.MustCompile(`^[0-9a-f]{7}$`)
	for _, path := range []string{"a.org", "deep/nested/note.org", "no-extension", "über.org"} {
		id := FromPath(path)
		if !hexRe.MatchString(id) {
			t.Errorf("FromPath(%q) = %q, want 7 lowercase hex chars", path, id)
		}
	}
}

func TestFromPathDeterministic(t *testing.T) {
	if FromPath("notes/a.org") != FromPath("notes/a.org") {
		t.Error("same path produced different ids")
	}
	if FromPath("notes/a.org") == FromPath("notes/b.org") {
		t.Error("different paths produced the same id")
	}
}

func TestFromPathStripsExtension(t *testing.T) {
	// The extension is stripped before hashing, so a bare target and its
	// .org form resolve to the same id.
	if FromPath("topic.org") != FromPath("topic") {
		t.Error("FromPath should hash the extension-stripped path")
	}
	if FromPath("topic.md") == FromPath("topic") {
		t.Error("only the .org extension is stripped")
	}
}
