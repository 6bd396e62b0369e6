// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings
// and helpers for slash-separated page paths.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Join builds a child path from a parent path and a segment. An empty
// parent yields the segment unchanged; stray slashes at the seams are
// dropped.
func Join(parent, segment string) string {
	parent = strings.Trim(parent, "/")
	segment = strings.Trim(segment, "/")
	if parent == "" {
		return segment
	}
	if segment == "" {
		return parent
	}
	return parent + "/" + segment
}

// DescendantPrefix returns the prefix shared by every path below p.
// Anchoring on the separator keeps "blog" from matching "blog2".
func DescendantPrefix(p string) string {
	return p + "/"
}

// IsDescendant reports whether path lies strictly below ancestor.
func IsDescendant(path, ancestor string) bool {
	return strings.HasPrefix(path, DescendantPrefix(ancestor))
}

// ReplacePrefix swaps the leading oldPrefix of path for newPrefix, once.
// It reports false and leaves path alone if path does not start with
// oldPrefix.
func ReplacePrefix(path, oldPrefix, newPrefix string) (string, bool) {
	rest, ok := strings.CutPrefix(path, oldPrefix)
	if !ok {
		return path, false
	}
	return newPrefix + rest, true
}
