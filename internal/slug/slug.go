// Package slug builds URL-safe space identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest slug a space may carry.
const MaxLength = 255

// SuffixLength is the length of the random suffix appended by Generate.
const SuffixLength = 8

const (
	fallback       = "space"
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var (
	pattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	disallowed  = regexp.MustCompile(`[^A-Za-z0-9\s-]`)
	whitespace  = regexp.MustCompile(`\s+`)
	hyphenRuns  = regexp.MustCompile(`-+`)
	stripAccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Valid reports whether s is lowercase ASCII letters and digits joined by
// single hyphens, non-empty and at most MaxLength long.
func Valid(s string) bool {
	return len(s) <= MaxLength && pattern.MatchString(s)
}

// Slugify folds accents, drops anything that is not an ASCII letter, digit,
// whitespace or hyphen, joins words with single hyphens and lowercases.
// Names with nothing usable left become "space".
func Slugify(name string) string {
	folded, _, err := transform.String(stripAccent, name)
	if err != nil {
		folded = name
	}
	s := disallowed.ReplaceAllString(folded, "")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.ToLower(strings.Trim(s, "-"))
	if s == "" {
		return fallback
	}
	return s
}

// Generate returns Slugify(name) with a random suffix, truncated so the
// result stays within MaxLength.
func Generate(name string) (string, error) {
	suffix, err := gonanoid.Generate(suffixAlphabet, SuffixLength)
	if err != nil {
		return "", err
	}
	base := Slugify(name)
	if limit := MaxLength - SuffixLength - 1; len(base) > limit {
		base = strings.TrimRight(base[:limit], "-")
	}
	return base + "-" + suffix, nil
}
