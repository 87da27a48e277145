// Package slug normalizes display names into URL-safe catalog slugs.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var validSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// stripMarks removes diacritics after canonical decomposition, so
// "Amstrad CPC é" folds to plain ascii before slugging.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts an arbitrary display name into a slug: diacritics folded,
// lowercased, every run of non-alphanumerics collapsed into a single dash.
// Returns an empty string when nothing slug-worthy remains.
func Make(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		// Transform failures leave the input as-is; the ascii filter
		// below still produces a usable slug.
		folded = name
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Valid reports whether s is a well-formed slug.
func Valid(s string) bool {
	return validSlug.MatchString(s)
}

// Validate returns a descriptive error for invalid slugs.
func Validate(s string) error {
	if s == "" {
		return fmt.Errorf("slug is empty")
	}
	if !Valid(s) {
		return fmt.Errorf("invalid slug %q: expected lowercase letters, digits, and single dashes", s)
	}
	return nil
}
