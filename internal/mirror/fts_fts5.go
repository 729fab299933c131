//go:build sqlite_fts5

package mirror

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS defs_fts USING fts5(
			kind UNINDEXED,
			name,
			metadata,
			source UNINDEXED,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, kind, name, metadata, source, body string) error {
	_, err := tx.Exec(`INSERT INTO defs_fts (kind, name, metadata, source, body) VALUES (?, ?, ?, ?, ?)`,
		kind, name, metadata, source, body)
	if err != nil {
		return fmt.Errorf("mirror: insert fts: %w", err)
	}
	return nil
}

func ftsClear(tx *sql.Tx) {
	_, _ = tx.Exec(`DELETE FROM defs_fts`)
}

// Search performs an FTS5 full-text search over definition names, metadata,
// and bodies.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT kind,
		       name,
		       source,
		       snippet(defs_fts, 4, '<b>', '</b>', '...', 64)
		FROM defs_fts
		WHERE defs_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
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
