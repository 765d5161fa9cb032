package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "AVENGERS", "avengers"},
		{"folds leet digits", "Spider-Man 3", "spider man e"},
		{"collapses punctuation runs", "the...movie!!!", "the movie"},
		{"collapses whitespace", "  the   movie  ", "the movie"},
		{"strips unicode", "fête du cinéma", "f te du cin ma"},
		{"empty input", "", ""},
		{"only punctuation", "?!...", ""},
		{"mixed digits survive folding", "2023", "2o2e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Spider-Man 3",
		"The @john Avengers_2023!!",
		"HELLO   world",
		"ça va 1337",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestPrefixQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"truncates long words", "avengers endgame", "aven endg"},
		{"keeps short-enough words", "the cat", "the cat"},
		{"drops words under three chars", "it is avengers", "aven"},
		{"empty input", "", ""},
		{"all words too short", "a of to", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrefixQuery(tt.in))
		})
	}
}
