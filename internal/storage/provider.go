// Package storage defines the persistent key/value abstraction backing the
// note collection and sibling preference keys.
package storage

// Well-known storage keys.
const (
	KeyNotes = "notes.json"
	KeyTheme = "theme"
)

// Provider is the interface for persisted application state. Keys are plain
// file names inside the data directory.
type Provider interface {
	// Read returns the raw bytes stored under key.
	Read(key string) ([]byte, error)
	// Write atomically replaces the value stored under key.
	Write(key string, value []byte) error
	// Delete removes the value stored under key.
	Delete(key string) error
}
