//go:build !sqlite_fts5

package mirror

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; search falls back to LIKE over the base tables.
	return nil
}

func ftsInsert(_ *sql.Tx, _, _, _, _, _ string) error { return nil }

func ftsClear(_ *sql.Tx) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT 'model' AS kind, name, source, model_type
		FROM models
		WHERE name LIKE ? OR model_type LIKE ?
		UNION ALL
		SELECT 'subcircuit' AS kind, name, source, substr(body, 1, 200)
		FROM subcircuits
		WHERE name LIKE ? OR metadata LIKE ? OR body LIKE ?
		ORDER BY name
		LIMIT ?
	`, like, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("mirror: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Kind, &r.Name, &r.Source, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
