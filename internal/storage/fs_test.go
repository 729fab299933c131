package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestList_OrderAndFiltering(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeFile(t, dirA, "z.lib", "* a")
	writeFile(t, dirA, "sub/a.lib", "* b")
	writeFile(t, dirA, "notes.txt", "ignored")
	writeFile(t, dirB, "b.lib", "* c")

	fs, err := NewFS([]string{dirA, dirB}, nil)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	files, err := fs.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("len(files) = %d, want 3 (txt excluded)", len(files))
	}
	// Root A first (lexical within root), then root B.
	if filepath.Base(files[0].Path) != "a.lib" || filepath.Base(files[1].Path) != "z.lib" {
		t.Errorf("order within root A = %q, %q", files[0].Path, files[1].Path)
	}
	if filepath.Base(files[2].Path) != "b.lib" {
		t.Errorf("root B file = %q", files[2].Path)
	}
}

func TestReadRejectsOutsidePath(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFS([]string{dir}, nil)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if _, err := fs.Read("/etc/passwd"); err == nil {
		t.Error("expected error for path outside roots")
	}
}

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFS([]string{dir}, nil)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	abs, err := fs.Write("vendor/new.lib", []byte(".MODEL m D (IS=1e-14)\n"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := fs.Read(abs)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != ".MODEL m D (IS=1e-14)\n" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteRejectsEscape(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewFS([]string{dir}, nil)
	if _, err := fs.Write("../escape.lib", []byte("x")); err == nil {
		t.Error("expected error for escaping relative path")
	}
	if _, err := fs.Write("/abs.lib", []byte("x")); err == nil {
		t.Error("expected error for absolute path")
	}
}

func TestNewFS_MissingRoot(t *testing.T) {
	if _, err := NewFS([]string{"/does/not/exist"}, nil); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestChecksumChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.lib", "one")
	fs, _ := NewFS([]string{dir}, nil)
	before, _ := fs.List()
	writeFile(t, dir, "a.lib", "two")
	after, _ := fs.List()
	if before[0].Checksum == after[0].Checksum {
		t.Error("checksum should change when content changes")
	}
}
