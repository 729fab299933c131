// Package storage defines the library file-system abstraction.
package storage

import "time"

// FileInfo describes one library file found under a configured root.
// Enumeration order (root order, then lexical path order within a root) is
// the order duplicate definitions are resolved in, so it must be stable.
type FileInfo struct {
	Path      string    `json:"path"` // absolute path
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for library file operations.
type Provider interface {
	// List returns every matching file under the configured roots, in
	// deterministic enumeration order.
	List() ([]FileInfo, error)
	// Read returns the raw bytes of a file previously returned by List.
	Read(path string) ([]byte, error)
	// Write atomically stores a new library file under the primary root
	// and returns its absolute path.
	Write(rel string, content []byte) (string, error)
	// Roots returns the configured root directories in enumeration order.
	Roots() []string
}
