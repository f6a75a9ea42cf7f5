package attach

import (
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/notekeep/notekeep/internal/models"
)

func TestEncodeProducesDataURI(t *testing.T) {
	att, err := Encode(File{
		Name: "hello.txt",
		Type: "text/plain",
		Data: strings.NewReader("hello world"),
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if att.Name != "hello.txt" || att.Type != "text/plain" {
		t.Errorf("attachment = %+v", att)
	}
	want := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello world"))
	if att.Data != want {
		t.Errorf("data = %q, want %q", att.Data, want)
	}
}

func TestEncodeDetectsMissingType(t *testing.T) {
	att, err := Encode(File{
		Name: "pic.png",
		Data: strings.NewReader("\x89PNG\r\n\x1a\n"),
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(att.Type, "image/png") {
		t.Errorf("type = %q, want image/png", att.Type)
	}
}

func TestEncodeSniffsUnknownExtension(t *testing.T) {
	att, err := Encode(File{
		Name: "noext",
		Data: strings.NewReader("plain text content here"),
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if att.Type == "" {
		t.Error("type should never be empty after encoding")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk error") }

func TestEncodeBatchFailureDoesNotBlockSiblings(t *testing.T) {
	files := []File{
		{Name: "ok1.txt", Type: "text/plain", Data: strings.NewReader("one")},
		{Name: "bad.txt", Type: "text/plain", Data: failingReader{}},
		{Name: "ok2.txt", Type: "text/plain", Data: strings.NewReader("two")},
	}

	var mu sync.Mutex
	var encoded []models.Attachment
	var failed []string

	EncodeBatch(files,
		func(a models.Attachment) {
			mu.Lock()
			encoded = append(encoded, a)
			mu.Unlock()
		},
		func(name string, err error) {
			mu.Lock()
			failed = append(failed, name)
			mu.Unlock()
		},
	)

	if len(encoded) != 2 {
		t.Errorf("encoded %d files, want 2", len(encoded))
	}
	if len(failed) != 1 || failed[0] != "bad.txt" {
		t.Errorf("failed = %v", failed)
	}
}

func TestRemoveAt(t *testing.T) {
	list := []models.Attachment{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	got, err := RemoveAt(list, 1)
	if err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("got = %v", got)
	}
	// Original slice untouched.
	if list[1].Name != "b" {
		t.Error("input slice was mutated")
	}

	for _, i := range []int{-1, 3} {
		if _, err := RemoveAt(list, i); err == nil {
			t.Errorf("index %d should be rejected", i)
		}
	}
}
