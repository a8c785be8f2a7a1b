// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ident derives stable node identifiers for notes. A note keeps the
// id it declares in its properties block; everything else gets a short hash
// of its collection-relative path, so ids survive rebuilds unchanged.
package ident

import (
	"crypto/sha1"
	"fmt"
	"regexp"
	"strings"
)

// HeaderBytes is how much of a note's head is inspected for an explicit
// id declaration.
const HeaderBytes = 5000

// idPropertyRe matches a properties-block id declaration like
// ":ID: 20210101T123456".
var idPropertyRe = regexp.MustCompile(`:ID:\s*([a-zA-Z0-9_-]+)`)

// Resolve returns the stable id for a note: the explicit :ID: property when
// the content head declares one, otherwise the path hash from FromPath.
// Pure function of its inputs; callers with unreadable files pass nil head.
func Resolve(relPath string, head []byte) string {
	if len(head) > HeaderBytes {
		head = head[:HeaderBytes]
	}
	if m := idPropertyRe.FindSubmatch(head); m != nil {
		return strings.TrimSpace(string(m[1]))
	}
	return FromPath(relPath)
}

// FromPath derives a deterministic id from a collection-relative path: the
// first 7 hex characters (git-like short form) of the SHA-1 digest of the
// path with any trailing .org extension stripped.
func FromPath(relPath string) string {
	relPath = strings.TrimSuffix(relPath, ".org")
	sum := sha1.Sum([]byte(relPath))
	return fmt.Sprintf("%x", sum[:4])[:7]
}
