// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
// Word characters and CJK ideographs survive; everything else collapses
// into single hyphens.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// separators matches runs of characters that are neither ASCII word
	// characters nor CJK unified ideographs (U+4E00..U+9FA5).
	separators = regexp.MustCompile(`[^a-z0-9_\x{4e00}-\x{9fa5}]+`)

	// folder strips combining marks so "café" becomes "cafe" rather than "caf".
	folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "IP Basics: 第一章" → "ip-basics-第一章"
func Generate(s string) string {
	result := strings.ToLower(s)
	if folded, _, err := transform.String(folder, result); err == nil {
		result = folded
	}
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Valid reports whether s is non-empty and already in canonical slug form.
func Valid(s string) bool {
	return s != "" && Generate(s) == s
}
