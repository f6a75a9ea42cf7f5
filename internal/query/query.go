// Package query derives filtered, sorted views of the note collection.
package query

import (
	"sort"
	"strings"

	"github.com/notekeep/notekeep/internal/models"
)

// View returns the notes matching term, pinned notes first, then newest
// first. The term is trimmed and lowercased; an empty term matches every
// note. A note matches when the term is a substring of its title, its
// content, or its tags joined by single spaces (any one suffices). The
// input slice is never mutated.
func View(notes []models.Note, term string) []models.Note {
	q := strings.ToLower(strings.TrimSpace(term))

	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if matches(n, q) {
			out = append(out, n)
		}
	}

	// Stable: equal-timestamp notes keep their insertion order.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out
}

func matches(n models.Note, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Content), q) ||
		strings.Contains(strings.ToLower(strings.Join(n.Tags, " ")), q)
}
