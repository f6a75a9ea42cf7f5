// Package notestore owns the in-memory note collection and keeps it in sync
// with persistent storage on every mutation.
package notestore

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/notekeep/notekeep/internal/apperr"
	"github.com/notekeep/notekeep/internal/models"
	"github.com/notekeep/notekeep/internal/storage"
)

// Patch carries the fields an update may replace. Nil fields are left
// untouched; id and createdAt can never be patched.
type Patch struct {
	Title       *string
	Content     *string
	TagsRaw     *string
	Pinned      *bool
	Attachments *[]models.Attachment
}

// Store is the system of record for notes. All mutations complete their
// persistence write before returning.
type Store struct {
	mu        sync.Mutex
	notes     []models.Note
	lastID    int64
	lastSaved []byte // last payload written to storage, for self-write detection

	provider storage.Provider
	logger   *slog.Logger
	now      func() time.Time
}

// Open loads the persisted collection from the provider. Missing or
// malformed data degrades to an empty collection and is never an error.
func Open(p storage.Provider, logger *slog.Logger) *Store {
	s := &Store{
		provider: p,
		logger:   logger,
		now:      time.Now,
	}

	data, err := p.Read(storage.KeyNotes)
	if err != nil {
		logger.Debug("notestore: no persisted notes, starting empty")
		return s
	}
	notes, err := decodeNotes(data)
	if err != nil {
		logger.Warn("notestore: persisted notes malformed, starting empty",
			slog.String("error", err.Error()))
		return s
	}
	s.notes = notes
	s.lastID = maxID(notes)
	s.lastSaved = data
	return s
}

// SetClock overrides the id/timestamp clock. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Create commits a draft as a new note, prepending it to the collection.
// An all-empty draft is rejected with apperr.ErrEmptyDraft and the
// collection is left untouched.
func (s *Store) Create(d models.Draft) (models.Note, error) {
	if d.Empty() {
		return models.Note{}, apperr.ErrEmptyDraft
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	note := models.Note{
		ID:          id,
		Title:       titleOrDefault(d.Title),
		Content:     d.Content,
		Tags:        models.NormalizeTags(d.TagsRaw),
		Pinned:      d.Pinned,
		Attachments: append([]models.Attachment{}, d.Attachments...),
		CreatedAt:   now,
	}

	s.notes = append([]models.Note{note}, s.notes...)
	return note.Clone(), s.persistLocked()
}

// Update merges patch into the note matching id. The note's id and
// createdAt are never altered. Returns apperr.ErrNotFound for unknown ids.
func (s *Store) Update(id int64, p Patch) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Note{}, apperr.ErrNotFound
	}

	n := &s.notes[i]
	if p.Title != nil {
		n.Title = titleOrDefault(*p.Title)
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.TagsRaw != nil {
		n.Tags = models.NormalizeTags(*p.TagsRaw)
	}
	if p.Pinned != nil {
		n.Pinned = *p.Pinned
	}
	if p.Attachments != nil {
		n.Attachments = append([]models.Attachment{}, (*p.Attachments)...)
	}

	return n.Clone(), s.persistLocked()
}

// Delete removes the note matching id. Callers are responsible for having
// obtained user confirmation first. Returns apperr.ErrNotFound for unknown
// ids and leaves the collection unchanged.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return apperr.ErrNotFound
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	return s.persistLocked()
}

// TogglePin flips the pinned flag on the note matching id.
func (s *Store) TogglePin(id int64) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Note{}, apperr.ErrNotFound
	}
	s.notes[i].Pinned = !s.notes[i].Pinned
	return s.notes[i].Clone(), s.persistLocked()
}

// Get returns a copy of the note matching id.
func (s *Store) Get(id int64) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Note{}, apperr.ErrNotFound
	}
	return s.notes[i].Clone(), nil
}

// All returns a copy of the collection in insertion order (newest first).
func (s *Store) All() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

// ReloadExternal re-reads the persisted collection and replaces the
// in-memory state when the file was changed by another writer. It returns
// true when a reload happened. Writes made through this Store are
// recognized by payload comparison and skipped.
func (s *Store) ReloadExternal() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.provider.Read(storage.KeyNotes)
	if err != nil {
		return false, err
	}
	if bytes.Equal(data, s.lastSaved) {
		return false, nil
	}
	notes, err := decodeNotes(data)
	if err != nil {
		return false, err
	}
	s.notes = notes
	s.lastID = maxID(notes)
	s.lastSaved = data
	return true, nil
}

// persistLocked serializes the whole collection and writes it synchronously.
// The in-memory mutation stands even when the write fails; the error is
// surfaced to the caller.
func (s *Store) persistLocked() error {
	data, err := json.Marshal(notesOrEmpty(s.notes))
	if err != nil {
		return err
	}
	if err := s.provider.Write(storage.KeyNotes, data); err != nil {
		s.logger.Error("notestore: persist failed", slog.String("error", err.Error()))
		return err
	}
	s.lastSaved = data
	return nil
}

func (s *Store) indexLocked(id int64) int {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

func titleOrDefault(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return models.UntitledTitle
}

func decodeNotes(data []byte) ([]models.Note, error) {
	var notes []models.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func notesOrEmpty(notes []models.Note) []models.Note {
	if notes == nil {
		return []models.Note{}
	}
	return notes
}

func maxID(notes []models.Note) int64 {
	var max int64
	for _, n := range notes {
		if n.ID > max {
			max = n.ID
		}
	}
	return max
}
