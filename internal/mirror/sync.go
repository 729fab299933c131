package mirror

import (
	"log/slog"

	"github.com/starford/spicerack/internal/library"
)

// Sync replaces the mirror's contents with the current library index state.
// Called after every reindex; the index is the source of truth.
func Sync(db *DB, ix *library.Index, logger *slog.Logger) error {
	models := ix.Models()
	subckts := ix.Subcircuits()

	if err := db.ReplaceAll(models, subckts); err != nil {
		return err
	}
	logger.Debug("mirror: synced",
		slog.Int("models", len(models)),
		slog.Int("subcircuits", len(subckts)))
	return nil
}
