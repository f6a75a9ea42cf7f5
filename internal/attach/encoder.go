// Package attach converts user-selected files into inline, persistable
// attachments (name, MIME type, base64 data URI).
package attach

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/notekeep/notekeep/internal/models"
)

// File is a file-like input awaiting encoding.
type File struct {
	Name string
	Type string // declared MIME type; may be empty
	Data io.Reader
}

// Encode reads the file's full payload and produces an Attachment whose
// Data field is a self-contained base64 data URI. When the declared MIME
// type is empty it is resolved from the file extension, then sniffed from
// the content.
func Encode(f File) (models.Attachment, error) {
	payload, err := io.ReadAll(f.Data)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("attach: read %s: %w", f.Name, err)
	}

	mt := f.Type
	if mt == "" {
		mt = detectType(f.Name, payload)
	}

	return models.Attachment{
		Name: f.Name,
		Type: mt,
		Data: "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(payload),
	}, nil
}

// EncodeBatch encodes each file in its own goroutine and calls done for
// every completion as it lands, so attachments from one batch may append
// out of submission order. One file failing never blocks or fails its
// siblings; failures are reported through onErr. EncodeBatch returns once
// every file has completed.
func EncodeBatch(files []File, done func(models.Attachment), onErr func(name string, err error)) {
	var wg sync.WaitGroup
	for _, f := range files {
		wg.Add(1)
		go func(f File) {
			defer wg.Done()
			att, err := Encode(f)
			if err != nil {
				if onErr != nil {
					onErr(f.Name, err)
				}
				return
			}
			done(att)
		}(f)
	}
	wg.Wait()
}

// RemoveAt returns the list with exactly the entry at index i removed,
// leaving the relative order of the others intact.
func RemoveAt(list []models.Attachment, i int) ([]models.Attachment, error) {
	if i < 0 || i >= len(list) {
		return nil, fmt.Errorf("attach: index %d out of range [0,%d)", i, len(list))
	}
	out := make([]models.Attachment, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), nil
}

func detectType(name string, payload []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(payload)
}
