package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/notekeep/notekeep/internal/dictation"
	"github.com/notekeep/notekeep/internal/editor"
	"github.com/notekeep/notekeep/internal/notestore"
	"github.com/notekeep/notekeep/internal/testutil"
	"github.com/notekeep/notekeep/internal/theme"
)

// testEnv sets up a temp data dir, store, editor workflow, and router.
// authToken == "" means auth disabled.
func testEnv(t *testing.T, authToken string) (*notestore.Store, http.Handler) {
	t.Helper()

	logger := testutil.Logger(t)
	_, provider := testutil.TestData(t)
	store := notestore.Open(provider, logger)
	themes := theme.NewManager(provider, logger, "")
	dict := dictation.NewBridge(nil, dictation.Config{}, logger)
	flow := editor.New(store, dict, logger)

	h := NewHandler(store, flow, dict, themes, nil, "en-IN")
	router := NewRouter(h, authToken != "", authToken, nil)
	return store, router
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createNote(t *testing.T, router http.Handler, title, content, tags string, pinned bool) NoteView {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/notes", CreateNoteRequest{
		Title: title, Content: content, Tags: tags, Pinned: pinned,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var note NoteView
	if err := json.Unmarshal(w.Body.Bytes(), &note); err != nil {
		t.Fatalf("unmarshal note: %v", err)
	}
	return note
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	created := createNote(t, router, "Groceries", "milk, eggs", "home, errands", false)
	if created.Title != "Groceries" {
		t.Errorf("title = %q", created.Title)
	}
	if len(created.Tags) != 2 || created.Tags[0] != "home" || created.Tags[1] != "errands" {
		t.Errorf("tags = %v", created.Tags)
	}
	if created.Accent == "" {
		t.Error("accent not derived")
	}

	w := doJSON(t, router, http.MethodGet, "/notes/"+strconv.FormatInt(created.ID, 10), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got NoteView
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.ID != created.ID || got.Content != "milk, eggs" {
		t.Errorf("got = %+v", got)
	}
}

func TestCreateEmptyNoteRejected(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: "   "})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty create = %d, want 422", w.Code)
	}
}

func TestCreateBlankTitleDefaults(t *testing.T) {
	_, router := testEnv(t, "")

	note := createNote(t, router, "  ", "some content", "", false)
	if note.Title != "Untitled Note" {
		t.Errorf("title = %q, want Untitled Note", note.Title)
	}
}

func TestListOrderingAndSearch(t *testing.T) {
	_, router := testEnv(t, "")

	createNote(t, router, "Summer trip", "pack sunscreen", "travel", false)
	createNote(t, router, "Work log", "quarterly summary", "work", false)
	pinned := createNote(t, router, "Reading list", "deep work", "books", true)

	w := doJSON(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 3 {
		t.Fatalf("total = %d, want 3", list.Total)
	}
	if list.Notes[0].ID != pinned.ID {
		t.Errorf("pinned note not first: got %q", list.Notes[0].Title)
	}
	// Unpinned notes follow, newest first.
	if list.Notes[1].Title != "Work log" || list.Notes[2].Title != "Summer trip" {
		t.Errorf("order = %q, %q", list.Notes[1].Title, list.Notes[2].Title)
	}

	// Case-insensitive substring over title, content, and tags.
	w = doJSON(t, router, http.MethodGet, "/notes?q=SUMMER", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || list.Notes[0].Title != "Summer trip" {
		t.Errorf("q=SUMMER matched %d notes", list.Total)
	}

	w = doJSON(t, router, http.MethodGet, "/notes?q=summary", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || list.Notes[0].Title != "Work log" {
		t.Errorf("q=summary matched %d notes", list.Total)
	}

	w = doJSON(t, router, http.MethodGet, "/notes?q=books", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || list.Notes[0].ID != pinned.ID {
		t.Errorf("q=books matched %d notes", list.Total)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	store, router := testEnv(t, "")

	note := createNote(t, router, "Doomed", "bye", "", false)
	path := "/notes/" + strconv.FormatInt(note.ID, 10)

	// First phase: no confirm, nothing deleted.
	w := doJSON(t, router, http.MethodDelete, path, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("unconfirmed delete = %d, want 409", w.Code)
	}
	var resp ConfirmRequiredResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.ConfirmRequired {
		t.Error("confirmRequired not set")
	}
	if store.Len() != 1 {
		t.Fatalf("note deleted without confirmation")
	}

	// Second phase.
	w = doJSON(t, router, http.MethodDelete, path+"?confirm=true", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("confirmed delete = %d, want 204", w.Code)
	}
	if store.Len() != 0 {
		t.Error("note still present after confirmed delete")
	}

	w = doJSON(t, router, http.MethodGet, path, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestTogglePin(t *testing.T) {
	_, router := testEnv(t, "")

	note := createNote(t, router, "Pin me", "x", "", false)
	path := "/notes/" + strconv.FormatInt(note.ID, 10) + "/pin"

	w := doJSON(t, router, http.MethodPost, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pin status = %d", w.Code)
	}
	var got NoteView
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if !got.Pinned {
		t.Error("note not pinned after toggle")
	}

	w = doJSON(t, router, http.MethodPost, path, nil)
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Pinned {
		t.Error("note still pinned after second toggle")
	}
}

func TestDraftCreateFlow(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/draft", OpenDraftRequest{Mode: "create"})
	if w.Code != http.StatusCreated {
		t.Fatalf("open draft = %d, body = %s", w.Code, w.Body.String())
	}

	// Second open while composing is rejected.
	w = doJSON(t, router, http.MethodPost, "/draft", OpenDraftRequest{Mode: "create"})
	if w.Code != http.StatusConflict {
		t.Errorf("second open = %d, want 409", w.Code)
	}

	// Committing an untouched draft is a guard, not a crash.
	w = doJSON(t, router, http.MethodPost, "/draft/commit", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty commit = %d, want 422", w.Code)
	}

	// Draft survives the rejected commit.
	w = doJSON(t, router, http.MethodGet, "/draft", nil)
	var state editor.State
	_ = json.Unmarshal(w.Body.Bytes(), &state)
	if !state.Composing {
		t.Fatal("draft discarded by rejected commit")
	}

	// Fill fields and commit.
	w = doJSON(t, router, http.MethodPatch, "/draft", map[string]any{
		"title": "Meeting notes", "content": "agenda", "tags": "work, q3",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch draft = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/draft/commit", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("commit = %d, body = %s", w.Code, w.Body.String())
	}
	var note NoteView
	_ = json.Unmarshal(w.Body.Bytes(), &note)
	if note.Title != "Meeting notes" || len(note.Tags) != 2 {
		t.Errorf("committed note = %+v", note)
	}

	// Workflow is idle again.
	w = doJSON(t, router, http.MethodPost, "/draft/commit", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("commit with no draft = %d, want 409", w.Code)
	}
}

func TestDraftEditFlow(t *testing.T) {
	_, router := testEnv(t, "")

	note := createNote(t, router, "Original", "v1", "a, b", false)

	w := doJSON(t, router, http.MethodPost, "/draft", OpenDraftRequest{Mode: "edit", Note: note.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("open edit draft = %d", w.Code)
	}
	var state editor.State
	_ = json.Unmarshal(w.Body.Bytes(), &state)
	if state.Draft.Title != "Original" || state.Draft.TagsRaw != "a, b" {
		t.Errorf("prefill = %+v", state.Draft)
	}

	w = doJSON(t, router, http.MethodPatch, "/draft", map[string]any{"content": "v2"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/draft/commit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("edit commit = %d, want 200", w.Code)
	}
	var updated NoteView
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.ID != note.ID {
		t.Errorf("id changed on edit: %d -> %d", note.ID, updated.ID)
	}
	if updated.Content != "v2" || updated.Title != "Original" {
		t.Errorf("updated = %+v", updated)
	}
}

func TestDraftEditUnknownNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/draft", OpenDraftRequest{Mode: "edit", Note: 12345})
	if w.Code != http.StatusNotFound {
		t.Errorf("edit unknown note = %d, want 404", w.Code)
	}
}

func TestDraftCancel(t *testing.T) {
	store, router := testEnv(t, "")

	doJSON(t, router, http.MethodPost, "/draft", OpenDraftRequest{Mode: "create"})
	doJSON(t, router, http.MethodPatch, "/draft", map[string]any{"title": "discarded"})

	w := doJSON(t, router, http.MethodDelete, "/draft", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("cancel = %d", w.Code)
	}
	if store.Len() != 0 {
		t.Error("cancel persisted a note")
	}

	// Cancel with nothing open is still fine.
	w = doJSON(t, router, http.MethodDelete, "/draft", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("idle cancel = %d", w.Code)
	}
}

func TestDraftAttachments(t *testing.T) {
	_, router := testEnv(t, "")

	doJSON(t, router, http.MethodPost, "/draft", OpenDraftRequest{Mode: "create"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "hello.txt")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.WriteString(part, "hello attachments")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/draft/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}

	var state editor.State
	_ = json.Unmarshal(w.Body.Bytes(), &state)
	if len(state.Draft.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(state.Draft.Attachments))
	}
	att := state.Draft.Attachments[0]
	if att.Name != "hello.txt" {
		t.Errorf("name = %q", att.Name)
	}
	if !strings.HasPrefix(att.Data, "data:") || !strings.Contains(att.Data, ";base64,") {
		t.Errorf("data URI = %q", att.Data)
	}

	// Remove it again.
	w2 := doJSON(t, router, http.MethodDelete, "/draft/attachments/0", nil)
	if w2.Code != http.StatusOK {
		t.Fatalf("remove = %d", w2.Code)
	}
	_ = json.Unmarshal(w2.Body.Bytes(), &state)
	if len(state.Draft.Attachments) != 0 {
		t.Errorf("attachments after remove = %d", len(state.Draft.Attachments))
	}

	w2 = doJSON(t, router, http.MethodDelete, "/draft/attachments/5", nil)
	if w2.Code != http.StatusBadRequest {
		t.Errorf("out-of-range remove = %d, want 400", w2.Code)
	}
}

func TestAttachmentsWithoutDraft(t *testing.T) {
	_, router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("files", "x.txt")
	_, _ = io.WriteString(part, "x")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/draft/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("upload without draft = %d, want 409", w.Code)
	}
}

func TestDictationUnsupported(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodGet, "/dictation", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st DictationStatus
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.Supported {
		t.Error("dictation reported supported with no recognizer")
	}
	if st.Notice == "" {
		t.Error("missing user notice")
	}
	if st.Language != "en-IN" {
		t.Errorf("language = %q", st.Language)
	}

	doJSON(t, router, http.MethodPost, "/draft", OpenDraftRequest{Mode: "create"})
	w = doJSON(t, router, http.MethodPost, "/dictation/start", nil)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("start = %d, want 501", w.Code)
	}
}

func TestDictationRequiresDraft(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/dictation/start", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("start without draft = %d, want 409", w.Code)
	}
}

func TestThemes(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodGet, "/theme", nil)
	var current theme.Theme
	_ = json.Unmarshal(w.Body.Bytes(), &current)
	if current.ID != theme.DefaultID {
		t.Errorf("default theme = %q", current.ID)
	}

	w = doJSON(t, router, http.MethodPut, "/theme", SetThemeRequest{ID: "green"})
	if w.Code != http.StatusOK {
		t.Fatalf("set theme = %d, body = %s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &current)
	if current.ID != "green" {
		t.Errorf("theme after set = %q", current.ID)
	}

	w = doJSON(t, router, http.MethodPut, "/theme", SetThemeRequest{ID: "nope"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown theme = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/themes", nil)
	var listing struct {
		Themes []theme.Theme `json:"themes"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &listing)
	if len(listing.Themes) != 9 {
		t.Errorf("themes = %d, want 9", len(listing.Themes))
	}
}

func TestAuthToken(t *testing.T) {
	_, router := testEnv(t, "sekrit")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestInvalidNoteID(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodGet, "/notes/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id = %d, want 400", w.Code)
	}
}
