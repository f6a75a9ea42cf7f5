package api

import (
	"github.com/notekeep/notekeep/internal/models"
	"github.com/notekeep/notekeep/internal/theme"
)

// NoteView wraps a note with its derived presentation accent color.
type NoteView struct {
	models.Note
	Accent string `json:"accent"`
}

func noteView(n models.Note) NoteView {
	return NoteView{Note: n, Accent: theme.AccentForID(n.ID)}
}

func noteViews(notes []models.Note) []NoteView {
	out := make([]NoteView, len(notes))
	for i, n := range notes {
		out[i] = noteView(n)
	}
	return out
}

// NoteListResponse wraps a derived note listing.
type NoteListResponse struct {
	Notes []NoteView `json:"notes"`
	Total int        `json:"total"`
}

// CreateNoteRequest is the request body for the draft-less create path.
type CreateNoteRequest struct {
	Title       string              `json:"title"`
	Content     string              `json:"content"`
	Tags        string              `json:"tags"` // raw comma-separated input
	Pinned      bool                `json:"pinned"`
	Attachments []models.Attachment `json:"attachments"`
}

// OpenDraftRequest opens the editing surface.
type OpenDraftRequest struct {
	Mode string `json:"mode"` // "create" or "edit"
	Note int64  `json:"note"` // target id in edit mode
}

// ConfirmRequiredResponse is returned for the first phase of a delete.
type ConfirmRequiredResponse struct {
	Error           string `json:"error"`
	ConfirmRequired bool   `json:"confirmRequired"`
}

// DictationStatus describes the dictation capability for the client.
type DictationStatus struct {
	Supported bool   `json:"supported"`
	Active    bool   `json:"active"`
	Language  string `json:"language,omitempty"`
	Notice    string `json:"notice,omitempty"`
}

// SetThemeRequest selects the active theme.
type SetThemeRequest struct {
	ID string `json:"id"`
}
