// Package models defines the domain types for NoteKeep.
package models

import (
	"strings"
	"time"
)

// UntitledTitle is substituted when a note is saved with a blank title.
const UntitledTitle = "Untitled Note"

// Note is the persisted unit of user content.
type Note struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Tags        []string     `json:"tags"`
	Pinned      bool         `json:"pinned"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Attachment is a file embedded inline into a note as a data URI.
type Attachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// Draft is the transient, uncommitted note being composed or edited.
// Tags are held as the raw comma-separated input string until commit.
type Draft struct {
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	TagsRaw     string       `json:"tags"`
	Pinned      bool         `json:"pinned"`
	Attachments []Attachment `json:"attachments"`
}

// Empty reports whether the draft has no title, no content, and no
// attachments. Empty drafts are never committed.
func (d Draft) Empty() bool {
	return strings.TrimSpace(d.Title) == "" &&
		strings.TrimSpace(d.Content) == "" &&
		len(d.Attachments) == 0
}

// NormalizeTags splits a comma-separated tag string, trims whitespace, and
// drops empty entries. Input order is preserved; duplicates are kept.
func NormalizeTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// JoinTags is the inverse of NormalizeTags for editing: tags are rejoined
// into a comma-separated string suitable for a draft's TagsRaw field.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// Clone returns a deep copy of the note. Consumers of the store receive
// clones so the backing collection is never shared.
func (n Note) Clone() Note {
	c := n
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	if n.Attachments != nil {
		c.Attachments = append([]Attachment(nil), n.Attachments...)
	}
	return c
}
