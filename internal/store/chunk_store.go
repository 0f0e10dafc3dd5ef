package store

import (
	"context"
	"fmt"
	"os"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/localsearch/localsearch/internal/apperrors"
	"github.com/localsearch/localsearch/internal/chunk"
)

// UpsertChunks atomically replaces the given chunks by id across the
// chunks table, the vector table, and the FTS engine (§4.4 upsert_chunks,
// §4.7 atomic per-file replace). Vector and FTS writes are sequenced
// vector-then-FTS per §5's documented skew tolerance.
func (s *Store) UpsertChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, c := range chunks {
		if len(c.Vector) != s.dimension {
			return fmt.Errorf("chunk %s: vector has %d dims, store is %d-dim", c.ID, len(c.Vector), s.dimension)
		}
	}

	return s.withWriteLock(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin upsert transaction: %w", err)
		}
		defer tx.Rollback()

		now := time.Now().UTC().Format(time.RFC3339Nano)
		for _, c := range chunks {
			if _, err := sq.Insert("chunks").
				Columns("id", "path", "start_line", "end_line", "text", "kind", "fingerprint", "created_at", "updated_at").
				Values(c.ID, c.Path, c.StartLine, c.EndLine, c.Text, string(c.Kind), c.Fingerprint, now, now).
				Suffix(`ON CONFLICT(id) DO UPDATE SET
					path=excluded.path, start_line=excluded.start_line, end_line=excluded.end_line,
					text=excluded.text, kind=excluded.kind, fingerprint=excluded.fingerprint, updated_at=excluded.updated_at`).
				RunWith(tx).ExecContext(ctx); err != nil {
				return fmt.Errorf("upsert chunk row %s: %w", c.ID, err)
			}
		}

		if err := upsertVectors(tx, chunks, s.dimension); err != nil {
			return fmt.Errorf("upsert vectors: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit upsert transaction: %w", err)
		}

		for _, c := range chunks {
			if err := s.UpsertFTS(ctx, c.ID, c.Text); err != nil {
				return fmt.Errorf("upsert fts for chunk %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// DeleteByPath removes all chunks for path from the chunk table, the
// vector table, and the FTS engine (§4.4 delete_by_path).
func (s *Store) DeleteByPath(ctx context.Context, path string) error {
	return s.withWriteLock(ctx, func() error {
		ids, err := s.idsForPath(ctx, path)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin delete transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := sq.Delete("chunks").Where(sq.Eq{"path": path}).RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("delete chunk rows for %s: %w", path, err)
		}
		if err := deleteVectorsByIDs(tx, ids); err != nil {
			return fmt.Errorf("delete vectors for %s: %w", path, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit delete transaction: %w", err)
		}

		for _, id := range ids {
			if err := s.DeleteFTS(ctx, id); err != nil {
				return fmt.Errorf("delete fts for chunk %s: %w", id, err)
			}
		}
		return nil
	})
}

func (s *Store) idsForPath(ctx context.Context, path string) ([]string, error) {
	rows, err := sq.Select("id").From("chunks").Where(sq.Eq{"path": path}).RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("select ids for %s: %w", path, err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetByIDs fetches the chunk row (text and metadata, without the vector)
// for each id, skipping any id that no longer exists.
func (s *Store) GetByIDs(ctx context.Context, ids []string) (map[string]Chunk, error) {
	out := map[string]Chunk{}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := sq.Select("id", "path", "start_line", "end_line", "text", "kind", "fingerprint").
		From("chunks").Where(sq.Eq{"id": ids}).RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("select chunks by id: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c Chunk
		var kind string
		if err := rows.Scan(&c.ID, &c.Path, &c.StartLine, &c.EndLine, &c.Text, &kind, &c.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		c.Kind = chunk.Kind(kind)
		out[c.ID] = c
	}
	return out, rows.Err()
}

// Count counts all chunk rows, for status reporting and tests.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	row := sq.Select("COUNT(*)").From("chunks").RunWith(s.db).QueryRowContext(ctx)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// CountByPath reports how many chunk rows exist for path (used by tests
// asserting the delete-by-path invariant, §8 property 3).
func (s *Store) CountByPath(ctx context.Context, path string) (int, error) {
	var n int
	row := sq.Select("COUNT(*)").From("chunks").Where(sq.Eq{"path": path}).RunWith(s.db).QueryRowContext(ctx)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks for path: %w", err)
	}
	return n, nil
}

// StorageBytes reports the on-disk size of the backing database file.
func (s *Store) StorageBytes(dbPath string) (int64, error) {
	info, err := statSize(dbPath)
	if err != nil {
		if isNotExist(err) {
			return 0, nil
		}
		return 0, apperrors.New(apperrors.IndexCorrupt,
			"could not read index storage size", fmt.Sprintf("stat %s: %v", dbPath, err), err)
	}
	return info, nil
}

func statSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func isNotExist(err error) bool { return os.IsNotExist(err) }
