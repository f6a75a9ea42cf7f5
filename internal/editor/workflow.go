// Package editor implements the create/edit workflow: a single transient
// draft moving between the idle and composing states, committed to the note
// store on confirmation.
package editor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/notekeep/notekeep/internal/apperr"
	"github.com/notekeep/notekeep/internal/attach"
	"github.com/notekeep/notekeep/internal/dictation"
	"github.com/notekeep/notekeep/internal/models"
	"github.com/notekeep/notekeep/internal/notestore"
)

// Mode distinguishes composing a new note from editing an existing one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// State is a read-only snapshot of the workflow for presentation.
type State struct {
	Composing bool         `json:"composing"`
	Mode      Mode         `json:"mode,omitempty"`
	TargetID  int64        `json:"targetId,omitempty"`
	Draft     models.Draft `json:"draft"`
}

// Workflow orchestrates the draft lifecycle. At most one draft is open at a
// time, matching the single editing surface of the product.
type Workflow struct {
	store  *notestore.Store
	dict   *dictation.Bridge
	logger *slog.Logger

	mu        sync.Mutex
	composing bool
	mode      Mode
	targetID  int64
	draft     models.Draft
}

// New creates a workflow over the store. dict may be nil when the platform
// has no dictation capability at all.
func New(store *notestore.Store, dict *dictation.Bridge, logger *slog.Logger) *Workflow {
	return &Workflow{store: store, dict: dict, logger: logger}
}

// BeginCreate opens an empty draft in create mode.
func (w *Workflow) BeginCreate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.composing {
		return apperr.ErrDraftOpen
	}
	w.composing = true
	w.mode = ModeCreate
	w.targetID = 0
	w.draft = models.Draft{}
	return nil
}

// BeginEdit opens a draft prefilled from the note matching id, with tags
// rejoined into a comma-separated string for editing.
func (w *Workflow) BeginEdit(id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.composing {
		return apperr.ErrDraftOpen
	}
	note, err := w.store.Get(id)
	if err != nil {
		return err
	}
	w.composing = true
	w.mode = ModeEdit
	w.targetID = id
	w.draft = models.Draft{
		Title:       note.Title,
		Content:     note.Content,
		TagsRaw:     models.JoinTags(note.Tags),
		Pinned:      note.Pinned,
		Attachments: append([]models.Attachment{}, note.Attachments...),
	}
	return nil
}

// Snapshot returns the current workflow state for presentation.
func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	d := w.draft
	d.Attachments = append([]models.Attachment{}, w.draft.Attachments...)
	return State{Composing: w.composing, Mode: w.mode, TargetID: w.targetID, Draft: d}
}

// FieldPatch carries direct field updates for the open draft.
type FieldPatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	TagsRaw *string `json:"tags"`
	Pinned  *bool   `json:"pinned"`
}

// Apply merges field updates into the open draft.
func (w *Workflow) Apply(p FieldPatch) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.composing {
		return apperr.ErrNoDraft
	}
	if p.Title != nil {
		w.draft.Title = *p.Title
	}
	if p.Content != nil {
		w.draft.Content = *p.Content
	}
	if p.TagsRaw != nil {
		w.draft.TagsRaw = *p.TagsRaw
	}
	if p.Pinned != nil {
		w.draft.Pinned = *p.Pinned
	}
	return nil
}

// AddAttachments encodes each file concurrently and appends every
// attachment to the draft as its encoding completes; completion order
// within a batch is not guaranteed. A failed file is logged and skipped
// without affecting its siblings. Returns once the whole batch settled.
func (w *Workflow) AddAttachments(files []attach.File) error {
	w.mu.Lock()
	if !w.composing {
		w.mu.Unlock()
		return apperr.ErrNoDraft
	}
	w.mu.Unlock()

	attach.EncodeBatch(files,
		func(a models.Attachment) {
			w.mu.Lock()
			if w.composing {
				w.draft.Attachments = append(w.draft.Attachments, a)
			}
			w.mu.Unlock()
		},
		func(name string, err error) {
			w.logger.Warn("editor: attachment encode failed",
				slog.String("file", name), slog.String("error", err.Error()))
		},
	)
	return nil
}

// RemoveAttachment removes exactly the draft attachment at index i,
// preserving the relative order of the rest.
func (w *Workflow) RemoveAttachment(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.composing {
		return apperr.ErrNoDraft
	}
	out, err := attach.RemoveAt(w.draft.Attachments, i)
	if err != nil {
		return err
	}
	w.draft.Attachments = out
	return nil
}

// Commit confirms the draft: create mode calls Store.Create, edit mode
// replaces the target's title/content/tags/pinned/attachments through
// Store.Update. An all-empty draft is rejected with no state change and no
// store call, in either mode. On success the workflow returns to idle and
// any active dictation session is terminated.
func (w *Workflow) Commit() (models.Note, error) {
	w.mu.Lock()

	if !w.composing {
		w.mu.Unlock()
		return models.Note{}, apperr.ErrNoDraft
	}
	if w.draft.Empty() {
		w.mu.Unlock()
		return models.Note{}, apperr.ErrEmptyDraft
	}

	draft := w.draft
	mode := w.mode
	target := w.targetID

	var note models.Note
	var err error
	switch mode {
	case ModeEdit:
		note, err = w.store.Update(target, notestore.Patch{
			Title:       &draft.Title,
			Content:     &draft.Content,
			TagsRaw:     &draft.TagsRaw,
			Pinned:      &draft.Pinned,
			Attachments: &draft.Attachments,
		})
	default:
		note, err = w.store.Create(draft)
	}
	if err != nil {
		w.mu.Unlock()
		return models.Note{}, err
	}

	w.resetLocked()
	w.mu.Unlock()
	w.stopDictation()
	return note, nil
}

// Cancel discards the draft unconditionally and returns to idle without
// touching the store. Canceling while idle is a no-op. Any active
// dictation session is terminated.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	w.resetLocked()
	w.mu.Unlock()
	w.stopDictation()
}

// StartDictation begins a dictation session whose transcript updates
// overwrite the draft's content field.
func (w *Workflow) StartDictation(ctx context.Context) error {
	w.mu.Lock()
	if !w.composing {
		w.mu.Unlock()
		return apperr.ErrNoDraft
	}
	w.mu.Unlock()

	if w.dict == nil {
		return apperr.ErrUnsupported
	}
	return w.dict.Start(ctx, func(text string) {
		w.mu.Lock()
		if w.composing {
			w.draft.Content = text
		}
		w.mu.Unlock()
	})
}

// StopDictation ends an active dictation session, leaving the last
// transcribed text in the draft.
func (w *Workflow) StopDictation() {
	w.stopDictation()
}

func (w *Workflow) stopDictation() {
	if w.dict != nil {
		w.dict.Stop()
	}
}

func (w *Workflow) resetLocked() {
	w.composing = false
	w.mode = ""
	w.targetID = 0
	w.draft = models.Draft{}
}
