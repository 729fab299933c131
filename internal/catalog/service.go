// Package catalog coordinates storage, the in-memory library index, and the
// SQLite mirror for API and MCP consumers.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/spicerack/internal/apperr"
	"github.com/starford/spicerack/internal/circuit"
	"github.com/starford/spicerack/internal/library"
	"github.com/starford/spicerack/internal/mirror"
	"github.com/starford/spicerack/internal/spice"
	"github.com/starford/spicerack/internal/storage"
)

// Service is the facade over the indexing core.
type Service struct {
	store storage.Provider
	ix    *library.Index
	db    *mirror.DB
	log   *slog.Logger

	onLibraryAdded func(filename string)
}

// NewService creates a catalog service.
func NewService(store storage.Provider, ix *library.Index, db *mirror.DB, log *slog.Logger) *Service {
	return &Service{store: store, ix: ix, db: db, log: log}
}

// OnLibraryAdded registers a callback invoked after a library file is
// stored and indexed. Used to fan out SSE notifications.
func (s *Service) OnLibraryAdded(fn func(filename string)) {
	s.onLibraryAdded = fn
}

// Reindex rebuilds the library index and syncs the mirror.
func (s *Service) Reindex(ctx context.Context) (library.Stats, error) {
	stats, err := s.ix.Reindex(ctx)
	if err != nil {
		return library.Stats{}, err
	}
	if s.db != nil {
		if err := mirror.Sync(s.db, s.ix, s.log); err != nil {
			return stats, fmt.Errorf("catalog: mirror sync: %w", err)
		}
	}
	return stats, nil
}

// SearchModels searches the in-memory index by name substring.
func (s *Service) SearchModels(_ context.Context, query, typeFilter string, limit int) []spice.ModelDefinition {
	return s.ix.SearchModels(query, typeFilter, limit)
}

// SearchSubcircuits searches the in-memory index by name and product metadata.
func (s *Service) SearchSubcircuits(_ context.Context, query, typeFilter string, limit int) []spice.SubcircuitDefinition {
	return s.ix.SearchSubcircuits(query, typeFilter, limit)
}

// FullTextSearch queries the SQLite mirror across names, metadata, and bodies.
func (s *Service) FullTextSearch(_ context.Context, query string, limit int) ([]mirror.SearchResult, error) {
	if s.db == nil {
		return nil, fmt.Errorf("catalog: mirror not configured")
	}
	return s.db.Search(query, limit)
}

// GetSubcircuit returns one indexed subcircuit definition.
func (s *Service) GetSubcircuit(_ context.Context, name string) (spice.SubcircuitDefinition, error) {
	def, ok := s.ix.Subcircuit(name)
	if !ok {
		return spice.SubcircuitDefinition{}, apperr.ErrNotFound
	}
	return def, nil
}

// GetModel returns one indexed model definition.
func (s *Service) GetModel(_ context.Context, name string) (spice.ModelDefinition, error) {
	def, ok := s.ix.Model(name)
	if !ok {
		return spice.ModelDefinition{}, apperr.ErrNotFound
	}
	return def, nil
}

// ParseNetlist parses a circuit description. The *spice.LineError it can
// return is the caller's cue for a 4xx rather than a 5xx.
func (s *Service) ParseNetlist(_ context.Context, content []byte) (*spice.Netlist, error) {
	return spice.ParseNetlist(content)
}

// ResolveNetlist parses a circuit description and binds every subcircuit
// instance against the library index.
func (s *Service) ResolveNetlist(_ context.Context, name string, content []byte) (*circuit.Circuit, error) {
	nl, err := spice.ParseNetlist(content)
	if err != nil {
		return nil, err
	}
	c := circuit.New(name)
	r := circuit.NewResolver(s.ix)
	if err := r.Resolve(c, nl); err != nil {
		return nil, err
	}
	return c, nil
}

// AddLibrary stores a new library file under the primary root and triggers
// a full reindex. The filename must carry a scanned extension.
func (s *Service) AddLibrary(ctx context.Context, filename string, content []byte) (library.Stats, error) {
	if filepath.Ext(filename) == "" {
		filename += ".lib"
	}
	abs := filepath.Join(s.store.Roots()[0], filepath.Clean(filename))
	if _, err := os.Stat(abs); err == nil {
		return library.Stats{}, apperr.ErrAlreadyExists
	}

	if _, err := s.store.Write(filename, content); err != nil {
		return library.Stats{}, err
	}
	s.log.Info("catalog: library added", slog.String("file", filename))
	stats, err := s.Reindex(ctx)
	if err != nil {
		return stats, err
	}
	if s.onLibraryAdded != nil {
		s.onLibraryAdded(filename)
	}
	return stats, nil
}
