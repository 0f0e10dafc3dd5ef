package store

import (
	"database/sql"
	"fmt"
)

const createChunksTable = `
CREATE TABLE IF NOT EXISTS chunks (
	id          TEXT PRIMARY KEY,
	path        TEXT NOT NULL,
	start_line  INTEGER NOT NULL,
	end_line    INTEGER NOT NULL,
	text        TEXT NOT NULL,
	kind        TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
`

const createPathIndex = `CREATE INDEX IF NOT EXISTS idx_chunks_path ON chunks(path);`

// createSchema creates the chunks table, its path index, and the sqlite-vec
// vector table — mirroring the teacher's CreateSchema but scoped to one
// table family per store instance (one call for code, one for docs; see
// Open in db.go). The native FTS5 virtual table is created by
// nativeFTS.open, not here, since it requires the fts5 build tag and must
// not be touched when the in-process backend is selected (§4.5).
func createSchema(db *sql.DB, dimension int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := tx.Exec(createChunksTable); err != nil {
		return fmt.Errorf("create chunks table: %w", err)
	}
	if _, err := tx.Exec(createPathIndex); err != nil {
		return fmt.Errorf("create path index: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}

	// vec0 virtual table must be created outside a transaction.
	return createVectorTable(db, dimension)
}
