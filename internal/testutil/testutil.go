// Package testutil provides shared test helpers for setting up data
// directories and quiet loggers.
package testutil

import (
	"log/slog"
	"os"
	"testing"

	"github.com/notekeep/notekeep/internal/storage"
)

// Logger returns a logger that only surfaces errors, keeping test output
// readable.
func Logger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestData creates a temporary data directory with a storage.Provider.
func TestData(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dataDir := t.TempDir()
	provider, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	return dataDir, provider
}
