package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave_WritesConfigFileAtomically(t *testing.T) {
	projectRoot := t.TempDir()
	cfg := Default()
	cfg.MaxFiles = 123

	require.NoError(t, Save(projectRoot, cfg))

	dest := filepath.Join(projectRoot, ".localsearch", "config.yml")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "maxFiles: 123")

	entries, err := os.ReadDir(filepath.Join(projectRoot, ".localsearch"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-config-")
	}
}

func TestSave_RoundTripsThroughLoader(t *testing.T) {
	projectRoot := t.TempDir()
	cfg := Default()
	cfg.ChunkingStrategy = "code-aware"
	require.NoError(t, Save(projectRoot, cfg))

	loaded, err := NewLoader(projectRoot).Load()
	require.NoError(t, err)
	assert.Equal(t, "code-aware", loaded.ChunkingStrategy)
}
