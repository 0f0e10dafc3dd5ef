package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_IsDeterministicAndContentSensitive(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	h3 := Hash([]byte("world"))
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestLoad_MissingFileReturnsEmptyMap(t *testing.T) {
	indexDir := t.TempDir()
	m, err := Load(indexDir, KindCode)
	require.NoError(t, err)
	assert.Empty(t, m.Paths())
}

func TestSetGetDelete(t *testing.T) {
	indexDir := t.TempDir()
	m, err := Load(indexDir, KindCode)
	require.NoError(t, err)

	m.Set("main.go", "abc123")
	got, ok := m.Get("main.go")
	assert.True(t, ok)
	assert.Equal(t, "abc123", got)

	m.Delete("main.go")
	_, ok = m.Get("main.go")
	assert.False(t, ok)
}

func TestUnchanged(t *testing.T) {
	indexDir := t.TempDir()
	m, err := Load(indexDir, KindCode)
	require.NoError(t, err)

	m.Set("a.go", "hash-a")
	assert.True(t, m.Unchanged("a.go", "hash-a"))
	assert.False(t, m.Unchanged("a.go", "hash-b"))
	assert.False(t, m.Unchanged("missing.go", "hash-a"))
}

func TestSaveLoad_RoundTrips(t *testing.T) {
	indexDir := t.TempDir()
	m, err := Load(indexDir, KindCode)
	require.NoError(t, err)
	m.Set("a.go", "hash-a")
	m.Set("b.go", "hash-b")
	require.NoError(t, m.Save())

	reloaded, err := Load(indexDir, KindCode)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "b.go"}, reloaded.Paths())
	hash, ok := reloaded.Get("a.go")
	assert.True(t, ok)
	assert.Equal(t, "hash-a", hash)
}

func TestCodeAndDocsMapsAreIndependent(t *testing.T) {
	indexDir := t.TempDir()
	code, err := Load(indexDir, KindCode)
	require.NoError(t, err)
	docs, err := Load(indexDir, KindDocs)
	require.NoError(t, err)

	code.Set("a.go", "h1")
	require.NoError(t, code.Save())
	require.NoError(t, docs.Save())

	reloadedDocs, err := Load(indexDir, KindDocs)
	require.NoError(t, err)
	assert.Empty(t, reloadedDocs.Paths())
}
