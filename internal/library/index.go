// Package library maintains the in-memory registries of shared .MODEL and
// .SUBCKT definitions indexed from library directories.
package library

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/spicerack/internal/spice"
	"github.com/starford/spicerack/internal/storage"
)

const defaultSearchLimit = 20

// Metadata keys searched in addition to the subcircuit name.
var searchedMetadataKeys = []string{"PRODUCT_NAME", "PART_NUMBER", "MANUFACTURER"}

// Stats summarises one indexing pass.
type Stats struct {
	Files       int `json:"files"`
	Models      int `json:"models"`
	Subcircuits int `json:"subcircuits"`
	Duplicates  int `json:"duplicates"` // later occurrences discarded by first-wins
}

// Index holds the two name-keyed registries. Each Reindex call fully
// replaces the previous state; there is no partial or merged state.
type Index struct {
	store  storage.Provider
	parser *spice.LibraryParser
	log    *slog.Logger

	mu      sync.RWMutex
	models  *Registry[spice.ModelDefinition]
	subckts *Registry[spice.SubcircuitDefinition]
	cache   map[string]cacheEntry // parse results keyed by path, valid per checksum
}

// cacheEntry is one file's parse result pinned to its content checksum.
type cacheEntry struct {
	checksum string
	lib      *spice.Library
}

// NewIndex creates an empty index over the given storage provider.
func NewIndex(store storage.Provider, parser *spice.LibraryParser, log *slog.Logger) *Index {
	return &Index{
		store:   store,
		parser:  parser,
		log:     log,
		models:  NewRegistry[spice.ModelDefinition](),
		subckts: NewRegistry[spice.SubcircuitDefinition](),
	}
}

// Reindex enumerates every library file, parses them, and rebuilds both
// registries. Files whose checksum matches the previous pass reuse the
// cached parse; the rest parse in parallel. Results are inserted strictly
// in enumeration order, so first-wins dedup is deterministic regardless of
// which file finishes parsing first. A file that cannot be read is logged
// and skipped; the rest of the corpus still indexes.
func (ix *Index) Reindex(ctx context.Context) (Stats, error) {
	files, err := ix.store.List()
	if err != nil {
		return Stats{}, err
	}

	ix.mu.RLock()
	prev := ix.cache
	ix.mu.RUnlock()

	parsed := make([]*spice.Library, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, f := range files {
		if e, ok := prev[f.Path]; ok && e.checksum == f.Checksum {
			parsed[i] = e.lib
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := ix.store.Read(f.Path)
			if err != nil {
				ix.log.Warn("reindex: read failed",
					slog.String("path", f.Path), slog.String("error", err.Error()))
				return nil
			}
			parsed[i] = ix.parser.Parse(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	cache := make(map[string]cacheEntry, len(files))
	for i, f := range files {
		if parsed[i] != nil {
			cache[f.Path] = cacheEntry{checksum: f.Checksum, lib: parsed[i]}
		}
	}

	models := NewRegistry[spice.ModelDefinition]()
	subckts := NewRegistry[spice.SubcircuitDefinition]()
	stats := Stats{Files: len(files)}

	for i, lib := range parsed {
		if lib == nil {
			continue
		}
		for _, m := range lib.Models {
			m.Source = files[i].Path
			if models.InsertIfAbsent(m.Name, m) {
				stats.Models++
			} else {
				stats.Duplicates++
			}
		}
		for _, s := range lib.Subcircuits {
			s.Source = files[i].Path
			if subckts.InsertIfAbsent(s.Name, s) {
				stats.Subcircuits++
			} else {
				stats.Duplicates++
			}
		}
	}

	ix.mu.Lock()
	ix.models = models
	ix.subckts = subckts
	ix.cache = cache
	ix.mu.Unlock()

	ix.log.Info("reindex: complete",
		slog.Int("files", stats.Files),
		slog.Int("models", stats.Models),
		slog.Int("subcircuits", stats.Subcircuits),
		slog.Int("duplicates", stats.Duplicates))
	return stats, nil
}

// Model returns the indexed model definition for name.
func (ix *Index) Model(name string) (spice.ModelDefinition, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.models.Get(name)
}

// Subcircuit returns the indexed subcircuit definition for name.
func (ix *Index) Subcircuit(name string) (spice.SubcircuitDefinition, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.subckts.Get(name)
}

// Models returns every indexed model in insertion order.
func (ix *Index) Models() []spice.ModelDefinition {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]spice.ModelDefinition, 0, ix.models.Len())
	for _, name := range ix.models.Names() {
		m, _ := ix.models.Get(name)
		out = append(out, m)
	}
	return out
}

// Subcircuits returns every indexed subcircuit in insertion order.
func (ix *Index) Subcircuits() []spice.SubcircuitDefinition {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]spice.SubcircuitDefinition, 0, ix.subckts.Len())
	for _, name := range ix.subckts.Names() {
		s, _ := ix.subckts.Get(name)
		out = append(out, s)
	}
	return out
}

// SearchModels returns models whose name contains query, case-insensitively.
// typeFilter, when non-empty, must match the model type case-insensitively.
func (ix *Index) SearchModels(query, typeFilter string, limit int) []spice.ModelDefinition {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	q := strings.ToLower(query)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []spice.ModelDefinition
	for _, name := range ix.models.Names() {
		m, _ := ix.models.Get(name)
		if typeFilter != "" && !strings.EqualFold(typeFilter, string(m.Type)) {
			continue
		}
		if !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out
}

// SearchSubcircuits returns subcircuits whose name or product metadata
// contains query. typeFilter compares against the TYPE metadata key.
func (ix *Index) SearchSubcircuits(query, typeFilter string, limit int) []spice.SubcircuitDefinition {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	q := strings.ToLower(query)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []spice.SubcircuitDefinition
	for _, name := range ix.subckts.Names() {
		s, _ := ix.subckts.Get(name)
		if typeFilter != "" && !strings.EqualFold(typeFilter, s.Metadata["TYPE"]) {
			continue
		}
		if !subcircuitMatches(s, name, q) {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

func subcircuitMatches(s spice.SubcircuitDefinition, name, q string) bool {
	if strings.Contains(strings.ToLower(name), q) {
		return true
	}
	for _, key := range searchedMetadataKeys {
		if v, ok := s.Metadata[key]; ok && strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}
