// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL-safe post slugs from titles.
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
	// separators are runs of whitespace, hyphens and underscores.
	separators = regexp.MustCompile(`[\s\-_]+`)
	// disallowed is anything left that is not a lowercase letter, digit or hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9-]`)
)

// Generate creates a URL-safe slug from a title. Accents are folded to
// their base letter, separators become single hyphens, and every other
// character is dropped. The result is deterministic, so two titles that
// differ only in punctuation map to the same slug.
//
// Example: "Café Society, 2026!" → "cafe-society-2026"
func Generate(title string) string {
	s := strings.ToLower(strings.TrimSpace(fold(title)))
	s = separators.ReplaceAllString(s, "-")
	s = disallowed.ReplaceAllString(s, "")
	s = collapseHyphens(s)
	return strings.Trim(s, "-")
}

// Valid reports whether s is already in canonical slug form.
func Valid(s string) bool {
	return s != "" && Generate(s) == s
}

// fold strips combining marks after canonical decomposition.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func collapseHyphens(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}
