package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/notekeep/notekeep/internal/apperr"
	"github.com/notekeep/notekeep/internal/attach"
	"github.com/notekeep/notekeep/internal/editor"
	"github.com/notekeep/notekeep/internal/sse"
)

// OpenDraft handles POST /api/draft: opens the editing surface in create
// mode or prefilled edit mode.
func (h *Handler) OpenDraft(w http.ResponseWriter, r *http.Request) {
	var req OpenDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	var err error
	switch req.Mode {
	case "create", "":
		err = h.flow.BeginCreate()
	case "edit":
		err = h.flow.BeginEdit(req.Note)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("mode must be create or edit"))
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrDraftOpen):
			writeJSON(w, http.StatusConflict, errorBody("a draft is already open"))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		default:
			slog.Error("open draft failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, h.flow.Snapshot())
}

// GetDraft handles GET /api/draft.
func (h *Handler) GetDraft(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.flow.Snapshot())
}

// PatchDraft handles PATCH /api/draft: direct field updates on the open
// draft.
func (h *Handler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	var patch editor.FieldPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.flow.Apply(patch); err != nil {
		writeJSON(w, http.StatusConflict, errorBody("no draft open"))
		return
	}
	writeJSON(w, http.StatusOK, h.flow.Snapshot())
}

// CommitDraft handles POST /api/draft/commit. An all-empty draft is a
// guard, not a failure: it leaves the draft open and reports 422.
func (h *Handler) CommitDraft(w http.ResponseWriter, _ *http.Request) {
	mode := h.flow.Snapshot().Mode
	note, err := h.flow.Commit()
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNoDraft):
			writeJSON(w, http.StatusConflict, errorBody("no draft open"))
		case errors.Is(err, apperr.ErrEmptyDraft):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("draft is empty"))
		default:
			slog.Error("commit draft failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	if mode == editor.ModeEdit {
		h.publish(sse.NoteUpdated, note.ID)
		writeJSON(w, http.StatusOK, noteView(note))
		return
	}
	h.publish(sse.NoteCreated, note.ID)
	writeJSON(w, http.StatusCreated, noteView(note))
}

// CancelDraft handles DELETE /api/draft: discards the draft
// unconditionally. Cancelling with no draft open is still a success.
func (h *Handler) CancelDraft(w http.ResponseWriter, _ *http.Request) {
	h.flow.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

// UploadAttachments handles POST /api/draft/attachments
// (multipart/form-data, repeated "files" field). Each file is encoded
// independently; a failed file is skipped without failing the batch.
func (h *Handler) UploadAttachments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("files too large or invalid multipart"))
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'files' field in multipart form"))
		return
	}

	var files []attach.File
	var opened []interface{ Close() error }
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			slog.Warn("attachment open failed",
				slog.String("file", header.Filename), slog.String("error", err.Error()))
			continue
		}
		opened = append(opened, f)
		files = append(files, attach.File{
			Name: header.Filename,
			Type: header.Header.Get("Content-Type"),
			Data: f,
		})
	}
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()

	if err := h.flow.AddAttachments(files); err != nil {
		writeJSON(w, http.StatusConflict, errorBody("no draft open"))
		return
	}
	writeJSON(w, http.StatusOK, h.flow.Snapshot())
}

// RemoveAttachment handles DELETE /api/draft/attachments/{index}.
func (h *Handler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid attachment index"))
		return
	}
	if err := h.flow.RemoveAttachment(idx); err != nil {
		if errors.Is(err, apperr.ErrNoDraft) {
			writeJSON(w, http.StatusConflict, errorBody("no draft open"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("attachment index out of range"))
		return
	}
	writeJSON(w, http.StatusOK, h.flow.Snapshot())
}

// DictationStatusHandler handles GET /api/dictation.
func (h *Handler) DictationStatusHandler(w http.ResponseWriter, _ *http.Request) {
	status := DictationStatus{
		Supported: h.dict != nil && h.dict.Supported(),
		Active:    h.dict != nil && h.dict.Active(),
		Language:  h.dictLanguage,
	}
	if !status.Supported {
		status.Notice = "Voice input is not supported in this environment."
	}
	writeJSON(w, http.StatusOK, status)
}

// StartDictation handles POST /api/dictation/start.
func (h *Handler) StartDictation(w http.ResponseWriter, r *http.Request) {
	err := h.flow.StartDictation(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNoDraft):
			writeJSON(w, http.StatusConflict, errorBody("no draft open"))
		case errors.Is(err, apperr.ErrUnsupported):
			writeJSON(w, http.StatusNotImplemented,
				errorBody("Voice input is not supported in this environment."))
		case errors.Is(err, apperr.ErrPermissionDenied):
			writeJSON(w, http.StatusForbidden,
				errorBody("Microphone access denied or not available. Please allow microphone permission."))
		default:
			slog.Error("start dictation failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StopDictation handles POST /api/dictation/stop.
func (h *Handler) StopDictation(w http.ResponseWriter, _ *http.Request) {
	h.flow.StopDictation()
	w.WriteHeader(http.StatusNoContent)
}
