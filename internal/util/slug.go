// Package util provides common text helpers.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any run of characters that cannot appear in a slug.
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	// Valid post slugs.
	slugPattern = regexp.MustCompile(`^[a-z0-9-_]+$`)
)

// Slugify converts a title to a URL-safe slug.
// "Un día en Málaga" -> "un-dia-en-malaga".
// "¿Qué es esto?" -> "que-es-esto".
func Slugify(s string) string {
	// Decompose accented characters, then drop the combining marks and anything else non-ASCII.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsSlug reports whether s only holds lowercase ASCII letters, digits, hyphens and underscores.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}
