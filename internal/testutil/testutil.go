// Package testutil provides shared test helpers for setting up library roots and mirrors.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/spicerack/internal/mirror"
	"github.com/starford/spicerack/internal/storage"
)

// TestDB creates a temporary SQLite mirror that is automatically cleaned up.
func TestDB(t *testing.T) *mirror.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "spicerack-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := mirror.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRoot creates a temporary library root with a storage.Provider.
func TestRoot(t *testing.T) (string, storage.Provider) {
	t.Helper()
	libDir := t.TempDir()
	store, err := storage.NewFS([]string{libDir}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return libDir, store
}

// WriteLib writes a library file into root and returns its path.
func WriteLib(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
