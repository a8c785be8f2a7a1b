// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract scans raw note text for titles, tags, and outbound link
// targets. Every function here is a pure pattern match over the text;
// nothing touches storage.
package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Metadata and link regex patterns.
var (
	// titleRe matches an explicit "#+title:" declaration.
	titleRe = regexp.MustCompile(`(?i)#\+title:\s*(.*)`)

	// headingRe matches an outline heading line.
	headingRe = regexp.MustCompile(`(?m)^\*\s*(.*)`)

	// filetagsRe matches a file-level "#+filetags:" declaration.
	filetagsRe = regexp.MustCompile(`(?i)#\+filetags:\s*(.*)`)

	// tagsPropRe matches a properties-block ":TAGS:" line.
	tagsPropRe = regexp.MustCompile(`:TAGS:\s*(.*)`)

	// inlineTagRe matches standalone colon-delimited tokens like ":project:"
	// anywhere in the text. Permissive; false positives are accepted.
	inlineTagRe = regexp.MustCompile(`:([\w-]+):`)

	// tagTokenRe validates a single token from a filetags line.
	tagTokenRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// fileLinkRe matches [[file:target]] and [[file:target][description]].
	fileLinkRe = regexp.MustCompile(`\[\[file:([^\]]+)(?:\]\[([^\]]+))?\]\]`)

	// idLinkRe matches [[id:target]] and [[id:target][description]].
	idLinkRe = regexp.MustCompile(`\[\[id:([^\]]+)(?:\]\[([^\]]+))?\]\]`)

	// wikiLinkRe matches bare [[target]] references: no prefix, and no
	// colon or path separator in the target.
	wikiLinkRe = regexp.MustCompile(`\[\[([^\]:/]+)(?:\]\[([^\]]+))?\]\]`)
)

// Title returns the note's title and whether one was found: the explicit
// #+title: declaration when present, otherwise the first heading line.
// Callers supply the filename fallback when neither exists.
func Title(content string) (string, bool) {
	if m := titleRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := headingRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// Tags returns the union of tags from three independent sources, sorted and
// deduplicated: #+filetags: lines (colon-delimited tokens, with or without
// wrapping colons), :TAGS: property lines (whitespace-delimited, colons
// stripped), and inline :token: occurrences anywhere in the text.
func Tags(content string) []string {
	seen := make(map[string]bool)

	for _, m := range filetagsRe.FindAllStringSubmatch(content, -1) {
		for _, tok := range strings.Split(m[1], ":") {
			tok = strings.TrimSpace(tok)
			if tagTokenRe.MatchString(tok) {
				seen[tok] = true
			}
		}
	}

	for _, m := range tagsPropRe.FindAllStringSubmatch(content, -1) {
		for _, tok := range strings.Fields(m[1]) {
			if tag := strings.Trim(tok, ":"); tag != "" {
				seen[tag] = true
			}
		}
	}

	for _, m := range inlineTagRe.FindAllStringSubmatch(content, -1) {
		seen[m[1]] = true
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// LinkTargets returns the raw outbound link targets from all three bracket
// variants: file: links (trailing .org stripped), id: links (verbatim), and
// bare wiki references (verbatim). Duplicates are kept; edge insertion
// dedupes downstream.
func LinkTargets(content string) []string {
	var targets []string

	for _, m := range fileLinkRe.FindAllStringSubmatch(content, -1) {
		targets = append(targets, strings.TrimSuffix(m[1], ".org"))
	}
	for _, m := range idLinkRe.FindAllStringSubmatch(content, -1) {
		targets = append(targets, m[1])
	}
	for _, m := range wikiLinkRe.FindAllStringSubmatch(content, -1) {
		targets = append(targets, m[1])
	}

	return targets
}
