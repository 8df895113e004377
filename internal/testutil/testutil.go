// Package testutil provides shared test helpers: a migrated temporary database,
// a quiet logger and an in-memory stand-in for the remote store.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"easydish/internal/database"
)

// TestDB creates a migrated SQLite database that is closed on cleanup.
func TestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "easydish-test.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
