package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind_CreatesLogFile(t *testing.T) {
	t.Parallel()

	indexDir := t.TempDir()
	s := &Sink{}
	require.NoError(t, s.Bind(indexDir))
	defer s.Close()

	_, err := os.Stat(filepath.Join(indexDir, "logs", "search-mcp.log"))
	assert.NoError(t, err)
}

func TestBind_IsIdempotentForSamePath(t *testing.T) {
	t.Parallel()

	indexDir := t.TempDir()
	s := &Sink{}
	require.NoError(t, s.Bind(indexDir))
	f1 := s.file
	require.NoError(t, s.Bind(indexDir))
	assert.Same(t, f1, s.file)
	s.Close()
}

func TestWrite_BeforeBindGoesToStderr(t *testing.T) {
	t.Parallel()

	s := &Sink{}
	// No Bind call: write must not panic, and there is no file handle.
	s.Info("test", "hello", map[string]any{"k": "v"})
	assert.Nil(t, s.file)
}

func TestWrite_AppendsJSONLine(t *testing.T) {
	t.Parallel()

	indexDir := t.TempDir()
	s := &Sink{}
	require.NoError(t, s.Bind(indexDir))
	defer s.Close()

	s.Info("indexmgr", "reindex complete", map[string]any{"chunks": 42})

	data, err := os.ReadFile(filepath.Join(indexDir, "logs", "search-mcp.log"))
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, "[INFO]")
	assert.Contains(t, line, "[indexmgr]")
	assert.Contains(t, line, "reindex complete")
	assert.Contains(t, line, `"chunks":42`)
}

func TestRotate_RenamesOverflowingLogFile(t *testing.T) {
	t.Parallel()

	indexDir := t.TempDir()
	s := &Sink{}
	require.NoError(t, s.Bind(indexDir))
	defer s.Close()

	s.curBytes = maxFileBytes + 1
	s.write(LevelWarn, "test", "trigger rotation", nil)

	rotated := s.path + ".1"
	_, err := os.Stat(rotated)
	assert.NoError(t, err)

	data, err := os.ReadFile(s.path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "trigger rotation"))
}

func TestDefault_ReturnsSameSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
