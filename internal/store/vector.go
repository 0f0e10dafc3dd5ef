package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func createVectorTable(db *sql.DB, dimension int) error {
	ddl := fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS chunks_vec USING vec0(
		chunk_id TEXT PRIMARY KEY,
		embedding float[%d]
	)`, dimension)
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create vector table: %w", err)
	}
	return nil
}

// upsertVectors replaces the vec0 entries for the given chunks. vec0
// doesn't support INSERT OR REPLACE, so entries are deleted then
// re-inserted (mirrors the teacher's UpdateVectorIndex).
func upsertVectors(tx *sql.Tx, chunks []Chunk, dimension int) error {
	if len(chunks) == 0 {
		return nil
	}
	del, err := tx.Prepare("DELETE FROM chunks_vec WHERE chunk_id = ?")
	if err != nil {
		return fmt.Errorf("prepare vector delete: %w", err)
	}
	defer del.Close()

	ins, err := tx.Prepare("INSERT INTO chunks_vec (chunk_id, embedding) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare vector insert: %w", err)
	}
	defer ins.Close()

	for _, c := range chunks {
		if len(c.Vector) != dimension {
			return fmt.Errorf("chunk %s: vector has %d dims, store is %d-dim", c.ID, len(c.Vector), dimension)
		}
		if _, err := del.Exec(c.ID); err != nil {
			return fmt.Errorf("delete existing vector for %s: %w", c.ID, err)
		}
		blob, err := sqlite_vec.SerializeFloat32(c.Vector)
		if err != nil {
			return fmt.Errorf("serialize vector for %s: %w", c.ID, err)
		}
		if _, err := ins.Exec(c.ID, blob); err != nil {
			return fmt.Errorf("insert vector for %s: %w", c.ID, err)
		}
	}
	return nil
}

func deleteVectorsByIDs(tx *sql.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	del, err := tx.Prepare("DELETE FROM chunks_vec WHERE chunk_id = ?")
	if err != nil {
		return fmt.Errorf("prepare vector delete: %w", err)
	}
	defer del.Close()
	for _, id := range ids {
		if _, err := del.Exec(id); err != nil {
			return fmt.Errorf("delete vector %s: %w", id, err)
		}
	}
	return nil
}

// VectorResult is one nearest-neighbor hit.
type VectorResult struct {
	ID         string
	Similarity float64 // cosine similarity normalized to [0,1]
	Rank       int     // 0-based rank within this result set
}

// SearchVectors returns the top-k nearest neighbors to queryVec by cosine
// similarity, ties broken by id (§4.4 search).
func (s *Store) SearchVectors(ctx context.Context, queryVec []float32, k int) ([]VectorResult, error) {
	if len(queryVec) != s.dimension {
		return nil, fmt.Errorf("query vector has %d dims, store is %d-dim", len(queryVec), s.dimension)
	}
	blob, err := sqlite_vec.SerializeFloat32(queryVec)
	if err != nil {
		return nil, fmt.Errorf("serialize query vector: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, distance
		FROM chunks_vec
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance
	`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var results []VectorResult
	for rows.Next() {
		var id string
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, fmt.Errorf("scan vector result: %w", err)
		}
		// sqlite-vec returns L2 distance over normalized vectors; convert
		// to a cosine-similarity-like score in [0,1].
		sim := 1 - distance/2
		if sim < 0 {
			sim = 0
		}
		if sim > 1 {
			sim = 1
		}
		results = append(results, VectorResult{ID: id, Similarity: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vector results: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ID < results[j].ID
	})
	for i := range results {
		results[i].Rank = i
	}
	return results, nil
}
