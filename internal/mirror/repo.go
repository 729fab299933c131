package mirror

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/spicerack/internal/spice"
)

// SearchResult is one full-text search hit. Kind is "model" or "subcircuit".
type SearchResult struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
}

// ReplaceAll swaps the mirror's contents for the given snapshot inside one
// transaction. The in-memory index is rebuilt wholesale on every reindex,
// so the mirror mirrors that: no incremental merge, no partial state.
func (db *DB) ReplaceAll(models []spice.ModelDefinition, subckts []spice.SubcircuitDefinition) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("mirror: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM models`); err != nil {
		return fmt.Errorf("mirror: clear models: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM subcircuits`); err != nil {
		return fmt.Errorf("mirror: clear subcircuits: %w", err)
	}
	ftsClear(tx)

	now := time.Now()

	mstmt, err := tx.Prepare(`INSERT INTO models (name, model_type, params, source, updated_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("mirror: prepare model insert: %w", err)
	}
	defer mstmt.Close()
	for _, m := range models {
		params, _ := json.Marshal(m.Params)
		if _, err := mstmt.Exec(m.Name, string(m.Type), string(params), m.Source, now); err != nil {
			return fmt.Errorf("mirror: insert model %s: %w", m.Name, err)
		}
		if err := ftsInsert(tx, "model", m.Name, string(m.Type), m.Source, ""); err != nil {
			return err
		}
	}

	sstmt, err := tx.Prepare(`INSERT INTO subcircuits (name, nodes, node_count, body, metadata, ts_params, source, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("mirror: prepare subcircuit insert: %w", err)
	}
	defer sstmt.Close()
	for _, s := range subckts {
		nodes, _ := json.Marshal(s.Nodes)
		meta, _ := json.Marshal(s.Metadata)
		ts, _ := json.Marshal(s.TSParams)
		if _, err := sstmt.Exec(s.Name, string(nodes), len(s.Nodes), s.Body, string(meta), string(ts), s.Source, now); err != nil {
			return fmt.Errorf("mirror: insert subcircuit %s: %w", s.Name, err)
		}
		if err := ftsInsert(tx, "subcircuit", s.Name, flattenMetadata(s.Metadata), s.Source, s.Body); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetModel returns one mirrored model row.
func (db *DB) GetModel(name string) (*spice.ModelDefinition, error) {
	var (
		m      spice.ModelDefinition
		typ    string
		params string
	)
	err := db.conn.QueryRow(`SELECT name, model_type, params, source FROM models WHERE name = ?`, name).
		Scan(&m.Name, &typ, &params, &m.Source)
	if err != nil {
		return nil, fmt.Errorf("mirror: get model %s: %w", name, err)
	}
	m.Type = spice.ModelType(typ)
	_ = json.Unmarshal([]byte(params), &m.Params)
	return &m, nil
}

// GetSubcircuit returns one mirrored subcircuit row.
func (db *DB) GetSubcircuit(name string) (*spice.SubcircuitDefinition, error) {
	var (
		s           spice.SubcircuitDefinition
		nodes, meta string
		ts          string
	)
	err := db.conn.QueryRow(`SELECT name, nodes, body, metadata, ts_params, source FROM subcircuits WHERE name = ?`, name).
		Scan(&s.Name, &nodes, &s.Body, &meta, &ts, &s.Source)
	if err != nil {
		return nil, fmt.Errorf("mirror: get subcircuit %s: %w", name, err)
	}
	_ = json.Unmarshal([]byte(nodes), &s.Nodes)
	_ = json.Unmarshal([]byte(meta), &s.Metadata)
	_ = json.Unmarshal([]byte(ts), &s.TSParams)
	return &s, nil
}

// Counts returns the number of mirrored models and subcircuits.
func (db *DB) Counts() (models int, subcircuits int, err error) {
	if err = db.conn.QueryRow(`SELECT count(*) FROM models`).Scan(&models); err != nil {
		return 0, 0, fmt.Errorf("mirror: count models: %w", err)
	}
	if err = db.conn.QueryRow(`SELECT count(*) FROM subcircuits`).Scan(&subcircuits); err != nil {
		return 0, 0, fmt.Errorf("mirror: count subcircuits: %w", err)
	}
	return models, subcircuits, nil
}

func flattenMetadata(meta map[string]string) string {
	out := ""
	for k, v := range meta {
		out += k + " " + v + " "
	}
	return out
}
