package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Delete("/notes/{id}", h.DeleteNote)
	r.Post("/notes/{id}/pin", h.TogglePin)

	// Editor workflow.
	r.Post("/draft", h.OpenDraft)
	r.Get("/draft", h.GetDraft)
	r.Patch("/draft", h.PatchDraft)
	r.Post("/draft/commit", h.CommitDraft)
	r.Delete("/draft", h.CancelDraft)
	r.Post("/draft/attachments", h.UploadAttachments)
	r.Delete("/draft/attachments/{index}", h.RemoveAttachment)

	// Dictation.
	r.Get("/dictation", h.DictationStatusHandler)
	r.Post("/dictation/start", h.StartDictation)
	r.Post("/dictation/stop", h.StopDictation)

	// Themes.
	r.Get("/themes", h.ListThemes)
	r.Get("/theme", h.GetTheme)
	r.Put("/theme", h.SetTheme)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
