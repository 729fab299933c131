package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the library file extensions scanned when the
// configuration does not override them.
var DefaultExtensions = []string{".lib", ".cir", ".sub", ".mod"}

// FS implements Provider over one or more local library directories.
// Root order is significant: it is the duplicate-resolution order.
type FS struct {
	roots []string // absolute paths, configured order
	exts  map[string]struct{}
}

// NewFS creates an FS provider over the given root directories. Every root
// must exist. An empty extension list falls back to DefaultExtensions.
func NewFS(roots []string, extensions []string) (*FS, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("storage: at least one library root is required")
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	abs := make([]string, 0, len(roots))
	for _, r := range roots {
		a, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("storage: resolve root: %w", err)
		}
		info, err := os.Stat(a)
		if err != nil {
			return nil, fmt.Errorf("storage: stat root: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("storage: root is not a directory: %s", a)
		}
		abs = append(abs, a)
	}

	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	return &FS{roots: abs, exts: exts}, nil
}

// Roots returns the configured roots in enumeration order.
func (f *FS) Roots() []string {
	out := make([]string, len(f.roots))
	copy(out, f.roots)
	return out
}

// List walks every root in order and returns matching files. WalkDir visits
// entries in lexical order, so the result is deterministic for a fixed tree.
func (f *FS) List() ([]FileInfo, error) {
	var out []FileInfo
	for _, root := range f.roots {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !f.matches(d.Name()) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			out = append(out, FileInfo{
				Path:      p,
				Checksum:  checksum(data),
				UpdatedAt: info.ModTime(),
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("storage: list %s: %w", root, err)
		}
	}
	return out, nil
}

// Read returns the raw bytes of a library file. The path must resolve to a
// location under one of the roots.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.insideRoots(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically stores content under the primary root: tmp file → fsync →
// rename. rel must not escape the root.
func (f *FS) Write(rel string, content []byte) (string, error) {
	cleaned := filepath.Clean(rel)
	if cleaned == "" || filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("storage: invalid relative path: %s", rel)
	}
	abs := filepath.Join(f.roots[0], cleaned)
	if _, err := f.insideRoots(abs); err != nil {
		return "", err
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".spicerack-tmp-*")
	if err != nil {
		return "", fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return "", fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return "", fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return abs, nil
}

// insideRoots resolves path and rejects anything that escapes every root.
func (f *FS) insideRoots(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	for _, root := range f.roots {
		if abs == root || strings.HasPrefix(abs, root+string(os.PathSeparator)) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("storage: path outside library roots: %s", path)
}

func (f *FS) matches(name string) bool {
	_, ok := f.exts[strings.ToLower(filepath.Ext(name))]
	return ok
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
