package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/notekeep/notekeep/internal/apperr"
	"github.com/notekeep/notekeep/internal/dictation"
	"github.com/notekeep/notekeep/internal/editor"
	"github.com/notekeep/notekeep/internal/models"
	"github.com/notekeep/notekeep/internal/notestore"
	"github.com/notekeep/notekeep/internal/query"
	"github.com/notekeep/notekeep/internal/sse"
	"github.com/notekeep/notekeep/internal/theme"
)

const maxBodyBytes = 50 << 20 // attachments travel inline as data URIs

// Handler holds API route handlers.
type Handler struct {
	store        *notestore.Store
	flow         *editor.Workflow
	dict         *dictation.Bridge
	themes       *theme.Manager
	events       *sse.Broker // may be nil
	dictLanguage string
}

// NewHandler creates a new Handler. events may be nil when no broker runs.
func NewHandler(store *notestore.Store, flow *editor.Workflow, dict *dictation.Bridge, themes *theme.Manager, events *sse.Broker, dictLanguage string) *Handler {
	return &Handler{store: store, flow: flow, dict: dict, themes: themes, events: events, dictLanguage: dictLanguage}
}

func (h *Handler) publish(kind string, id int64) {
	if h.events != nil {
		h.events.PublishNoteEvent(kind, id)
	}
}

func noteID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ListNotes handles GET /api/notes. The optional q parameter runs the
// search filter; results are always pinned-first, newest-first.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	view := query.View(h.store.All(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, NoteListResponse{
		Notes: noteViews(view),
		Total: len(view),
	})
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	note, err := h.store.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, noteView(note))
}

// CreateNote handles POST /api/notes: the draft-less create path used by
// API clients. The same empty-input guard applies as in the editor.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	note, err := h.store.Create(models.Draft{
		Title:       req.Title,
		Content:     req.Content,
		TagsRaw:     req.Tags,
		Pinned:      req.Pinned,
		Attachments: req.Attachments,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrEmptyDraft) {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("note is empty"))
			return
		}
		slog.Error("create note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publish(sse.NoteCreated, note.ID)
	writeJSON(w, http.StatusCreated, noteView(note))
}

// DeleteNote handles DELETE /api/notes/{id}. Deletion is two-phase: the
// first call without confirm=true does not touch the store and responds
// with a confirmation-required body; repeating the call with confirm=true
// performs the delete.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		writeJSON(w, http.StatusConflict, ConfirmRequiredResponse{
			Error:           apperr.ErrConfirmRequired.Error() + ": repeat with ?confirm=true",
			ConfirmRequired: true,
		})
		return
	}
	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("delete note failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publish(sse.NoteDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

// TogglePin handles POST /api/notes/{id}/pin.
func (h *Handler) TogglePin(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	note, err := h.store.TogglePin(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("toggle pin failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publish(sse.NotePinned, id)
	writeJSON(w, http.StatusOK, noteView(note))
}

// ListThemes handles GET /api/themes.
func (h *Handler) ListThemes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"themes": theme.List()})
}

// GetTheme handles GET /api/theme.
func (h *Handler) GetTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.themes.Current())
}

// SetTheme handles PUT /api/theme.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req SetThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	t, err := h.themes.Set(req.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrUnknownTheme) {
			writeJSON(w, http.StatusBadRequest, errorBody("unknown theme"))
			return
		}
		slog.Error("set theme failed", slog.String("id", req.ID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, t)
}
