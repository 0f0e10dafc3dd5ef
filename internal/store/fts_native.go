package store

import (
	"context"
	"database/sql"
	"fmt"
)

// nativeFTS is the preferred FTS backend (§4.5): SQLite's built-in FTS5
// virtual table, present when mattn/go-sqlite3 is built with the fts5 (or
// sqlite_fts5) tag. bm25() defaults to k1=1.2, b=0.75, matching the
// in-process fallback's tuning exactly.
type nativeFTS struct {
	db *sql.DB
}

func newNativeFTS(db *sql.DB) *nativeFTS {
	return &nativeFTS{db: db}
}

func createNativeFTSTable(db *sql.DB) error {
	const ddl = `CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
		chunk_id UNINDEXED,
		text
	)`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create fts5 table (build with -tags fts5): %w", err)
	}
	return nil
}

func (f *nativeFTS) open(ctx context.Context) error { return createNativeFTSTable(f.db) }

func (f *nativeFTS) upsert(ctx context.Context, id, text string) error {
	if _, err := f.db.ExecContext(ctx, `DELETE FROM chunks_fts WHERE chunk_id = ?`, id); err != nil {
		return fmt.Errorf("delete existing fts row for %s: %w", id, err)
	}
	if _, err := f.db.ExecContext(ctx,
		`INSERT INTO chunks_fts (chunk_id, text) VALUES (?, ?)`, id, text); err != nil {
		return fmt.Errorf("insert fts row for %s: %w", id, err)
	}
	return nil
}

func (f *nativeFTS) delete(ctx context.Context, id string) error {
	if _, err := f.db.ExecContext(ctx, `DELETE FROM chunks_fts WHERE chunk_id = ?`, id); err != nil {
		return fmt.Errorf("delete fts row %s: %w", id, err)
	}
	return nil
}

func (f *nativeFTS) search(ctx context.Context, query string, k int) ([]FTSResult, error) {
	rows, err := f.db.QueryContext(ctx, `
		SELECT chunk_id, bm25(chunks_fts)
		FROM chunks_fts
		WHERE chunks_fts MATCH ?
		ORDER BY bm25(chunks_fts)
		LIMIT ?
	`, ftsQuerySyntax(query), k)
	if err != nil {
		return nil, fmt.Errorf("fts5 search: %w", err)
	}
	defer rows.Close()

	var results []FTSResult
	for rows.Next() {
		var id string
		var bm25 float64
		if err := rows.Scan(&id, &bm25); err != nil {
			return nil, fmt.Errorf("scan fts5 result: %w", err)
		}
		// fts5's bm25() returns a negative score where more negative is
		// better; flip the sign so that, as with the in-process backend's
		// raw BM25 sum, a higher score is better.
		results = append(results, FTSResult{ID: id, Score: -bm25})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fts5 results: %w", err)
	}
	for i := range results {
		results[i].Rank = i
	}
	return results, nil
}

func (f *nativeFTS) close() error { return nil }

// ftsQuerySyntax escapes a free-text query into FTS5's query syntax by
// quoting each token, avoiding surprising operator interpretation of
// identifiers like "foo-bar" or "a.b".
func ftsQuerySyntax(query string) string {
	tokens := tokenize(query)
	out := ""
	for i, t := range tokens {
		if i > 0 {
			out += " "
		}
		out += `"` + t + `"`
	}
	return out
}
