package store

import (
	"context"
	"database/sql"
)

// ftsBackend is satisfied by both the native (SQLite FTS5) and in-process
// BM25 backends (§4.5).
type ftsBackend interface {
	open(ctx context.Context) error
	upsert(ctx context.Context, id, text string) error
	delete(ctx context.Context, id string) error
	search(ctx context.Context, query string, k int) ([]FTSResult, error)
	close() error
}

// FTSResult is one lexical hit.
type FTSResult struct {
	ID    string
	Score float64
	Rank  int // 0-based rank within this result set
}

// nativeFTSThreshold is the corpus size at which the native backend is
// auto-selected over the in-process fallback (§4.5 auto-selection rule).
const nativeFTSThreshold = 10_000

// selectFTSBackend implements the auto-selection rule: native when the
// corpus reaches nativeFTSThreshold or when explicitly configured,
// otherwise the always-available in-process backend.
func selectFTSBackend(db *sql.DB, engine string, estimatedChunks int) ftsBackend {
	switch engine {
	case "native":
		return newNativeFTS(db)
	case "js":
		return newInProcessFTS()
	default: // "auto"
		if estimatedChunks >= nativeFTSThreshold {
			return newNativeFTS(db)
		}
		return newInProcessFTS()
	}
}

// UpsertFTS indexes or reindexes text under id in the FTS engine.
func (s *Store) UpsertFTS(ctx context.Context, id, text string) error {
	return s.fts.upsert(ctx, id, text)
}

// DeleteFTS removes id from the FTS engine.
func (s *Store) DeleteFTS(ctx context.Context, id string) error {
	return s.fts.delete(ctx, id)
}

// SearchFTS runs a BM25 lexical search for query, returning up to k hits.
func (s *Store) SearchFTS(ctx context.Context, query string, k int) ([]FTSResult, error) {
	return s.fts.search(ctx, query, k)
}
