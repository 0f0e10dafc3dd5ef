package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localsearch/localsearch/internal/chunk"
)

func openTestStore(t *testing.T, dimension int, ftsEngine string) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "chunks.db")
	s, err := Open(context.Background(), dbPath, dimension, ftsEngine, 0)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testChunk(id, path, text string, dim int) Chunk {
	vec := make([]float32, dim)
	vec[0] = 1
	return Chunk{
		ID:          id,
		Path:        path,
		StartLine:   1,
		EndLine:     1,
		Text:        text,
		Kind:        chunk.KindCode,
		Fingerprint: "fp-" + id,
		Vector:      vec,
	}
}

func TestOpen_CreatesDatabaseFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "chunks.db")
	s, err := Open(context.Background(), dbPath, 4, "js", 0)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 4, s.Dimension())
	assert.FileExists(t, dbPath)
}

func TestUpsertChunks_ThenCount(t *testing.T) {
	s := openTestStore(t, 4, "js")
	ctx := context.Background()

	err := s.UpsertChunks(ctx, []Chunk{
		testChunk("a", "a.go", "func A() {}", 4),
		testChunk("b", "a.go", "func B() {}", 4),
		testChunk("c", "b.go", "func C() {}", 4),
	})
	require.NoError(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.CountByPath(ctx, "a.go")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUpsertChunks_RejectsWrongDimension(t *testing.T) {
	s := openTestStore(t, 4, "js")
	err := s.UpsertChunks(context.Background(), []Chunk{testChunk("a", "a.go", "text", 8)})
	assert.Error(t, err)
}

func TestUpsertChunks_EmptyIsNoop(t *testing.T) {
	s := openTestStore(t, 4, "js")
	require.NoError(t, s.UpsertChunks(context.Background(), nil))
}

func TestUpsertChunks_UpdatesExistingRowOnSameID(t *testing.T) {
	s := openTestStore(t, 4, "js")
	ctx := context.Background()

	require.NoError(t, s.UpsertChunks(ctx, []Chunk{testChunk("a", "a.go", "v1", 4)}))
	require.NoError(t, s.UpsertChunks(ctx, []Chunk{testChunk("a", "a.go", "v2", 4)}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetByIDs(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "v2", got["a"].Text)
}

func TestDeleteByPath_RemovesAllChunksForThatPathOnly(t *testing.T) {
	s := openTestStore(t, 4, "js")
	ctx := context.Background()

	require.NoError(t, s.UpsertChunks(ctx, []Chunk{
		testChunk("a", "a.go", "func A() {}", 4),
		testChunk("b", "a.go", "func B() {}", 4),
		testChunk("c", "b.go", "func C() {}", 4),
	}))

	require.NoError(t, s.DeleteByPath(ctx, "a.go"))

	n, err := s.CountByPath(ctx, "a.go")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = s.CountByPath(ctx, "b.go")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteByPath_UnknownPathIsNoop(t *testing.T) {
	s := openTestStore(t, 4, "js")
	require.NoError(t, s.DeleteByPath(context.Background(), "never-indexed.go"))
}

func TestGetByIDs_SkipsMissingIDs(t *testing.T) {
	s := openTestStore(t, 4, "js")
	ctx := context.Background()
	require.NoError(t, s.UpsertChunks(ctx, []Chunk{testChunk("a", "a.go", "text", 4)}))

	got, err := s.GetByIDs(ctx, []string{"a", "nonexistent"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "a")
}

func TestGetByIDs_EmptyInputReturnsEmptyMap(t *testing.T) {
	s := openTestStore(t, 4, "js")
	got, err := s.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStorageBytes_MissingFileReturnsZero(t *testing.T) {
	s := openTestStore(t, 4, "js")
	n, err := s.StorageBytes(filepath.Join(t.TempDir(), "does-not-exist.db"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStorageBytes_ExistingFileReturnsNonZeroSize(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "chunks.db")
	s, err := Open(context.Background(), dbPath, 4, "js", 0)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.StorageBytes(dbPath)
	require.NoError(t, err)
	assert.Greater(t, n, int64(0))
}
