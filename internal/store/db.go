// Package store implements the persistent vector store (§4.4) and the
// pluggable FTS engine (§4.5) over a single SQLite database per index
// (one for code chunks, one for docs chunks), guarded by a cross-process
// flock matching the Index Manager's single-writer discipline (§5).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/gofrs/flock"
	_ "github.com/mattn/go-sqlite3"

	"github.com/localsearch/localsearch/internal/apperrors"
	"github.com/localsearch/localsearch/internal/chunk"
)

var vecInitOnce sync.Once

// initVectorExtension registers sqlite-vec globally; safe to call from
// multiple Store instances in the same process.
func initVectorExtension() {
	vecInitOnce.Do(func() {
		sqlite_vec.Auto()
	})
}

// Chunk is the on-disk row shape backing §3's Chunk, including the vector.
type Chunk struct {
	ID          string
	Path        string
	StartLine   int
	EndLine     int
	Text        string
	Kind        chunk.Kind
	Fingerprint string
	Vector      []float32
}

// Store is a columnar vector table plus FTS index over the same chunk
// corpus (§4.4, §4.5), fixed at a single dimension for its lifetime.
type Store struct {
	db        *sql.DB
	lock      *flock.Flock
	dimension int
	fts       ftsBackend
}

// Open creates or attaches the store at dbPath, validating/fixing the
// vector dimension at creation time (§4.4 open). ftsEngine selects the
// FTS backend policy ("auto" | "js" | "native"); estimatedChunks informs
// the auto-selection threshold (§4.5).
func Open(ctx context.Context, dbPath string, dimension int, ftsEngine string, estimatedChunks int) (*Store, error) {
	initVectorExtension()

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	lock := flock.New(dbPath + ".write.lock")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, apperrors.New(apperrors.IndexCorrupt,
			"the project index could not be opened",
			fmt.Sprintf("sql.Open(%s): %v", dbPath, err), err)
	}
	db.SetMaxOpenConns(1) // single writer, single connection keeps vec0/fts5 state coherent

	if err := createSchema(db, dimension); err != nil {
		db.Close()
		return nil, apperrors.New(apperrors.IndexCorrupt,
			"the project index could not be initialized",
			fmt.Sprintf("createSchema(%s): %v", dbPath, err), err)
	}

	s := &Store{db: db, lock: lock, dimension: dimension}
	s.fts = selectFTSBackend(db, ftsEngine, estimatedChunks)
	if err := s.fts.open(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open fts backend: %w", err)
	}
	return s, nil
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory %s: %w", dir, err)
	}
	return nil
}

// Dimension returns the fixed vector length for this store.
func (s *Store) Dimension() int { return s.dimension }

// withWriteLock runs fn while holding the cross-process write lock,
// matching the Index Manager's single-writer discipline (§5).
func (s *Store) withWriteLock(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	locked, err := s.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil || !locked {
		return fmt.Errorf("acquire index write lock: %w", err)
	}
	defer s.lock.Unlock()
	return fn()
}

// Close releases the FTS backend and the database handle. The write lock
// is held only inside withWriteLock, so Close does not touch it.
func (s *Store) Close() error {
	if err := s.fts.close(); err != nil {
		return err
	}
	return s.db.Close()
}
