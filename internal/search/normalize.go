package search

import (
	"regexp"
	"strings"
)

// Digits that commonly stand in for letters in file names are folded to their
// letter form to widen recall ("sp1der" matches "spider").
var leetFold = strings.NewReplacer(
	"0", "o",
	"1", "i",
	"3", "e",
	"4", "a",
	"5", "s",
	"7", "t",
)

var nonAlnumRE = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize canonicalizes a raw query: lowercase, leetspeak fold, runs of
// anything outside [a-z0-9] collapsed to a single space, trimmed. An empty
// result means "no query", not an error. Normalize is idempotent.
func Normalize(raw string) string {
	q := strings.ToLower(raw)
	q = leetFold.Replace(q)
	q = nonAlnumRE.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}

// PrefixQuery derives the fallback query from a normalized one: the first
// four characters of every word of length >= 3, space-joined. Shorter words
// are dropped. Used only when the full query finds nothing.
func PrefixQuery(normalized string) string {
	var parts []string
	for _, word := range strings.Fields(normalized) {
		if len(word) < 3 {
			continue
		}
		if len(word) > 4 {
			word = word[:4]
		}
		parts = append(parts, word)
	}
	return strings.Join(parts, " ")
}
