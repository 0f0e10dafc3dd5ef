package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_NoConfigFileUsesDefaults(t *testing.T) {
	projectRoot := t.TempDir()
	cfg, err := NewLoader(projectRoot).Load()
	require.NoError(t, err)
	assert.Equal(t, Default().ChunkingStrategy, cfg.ChunkingStrategy)
	assert.Equal(t, Default().MaxFiles, cfg.MaxFiles)
}

func TestLoader_ReadsProjectConfigFile(t *testing.T) {
	projectRoot := t.TempDir()
	dir := filepath.Join(projectRoot, ".localsearch")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(`
chunkingStrategy: code-aware
maxFiles: 10
`), 0o644))

	cfg, err := NewLoader(projectRoot).Load()
	require.NoError(t, err)
	assert.Equal(t, "code-aware", cfg.ChunkingStrategy)
	assert.Equal(t, 10, cfg.MaxFiles)
	// unset fields still fall back to defaults
	assert.Equal(t, Default().Include, cfg.Include)
}

func TestLoader_EnvOverridesConfigFile(t *testing.T) {
	projectRoot := t.TempDir()
	dir := filepath.Join(projectRoot, ".localsearch")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(`
maxFiles: 10
`), 0o644))

	t.Setenv("LOCALSEARCH_MAXFILES", "99")

	cfg, err := NewLoader(projectRoot).Load()
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.MaxFiles)
}

func TestLoader_InvalidConfigFails(t *testing.T) {
	projectRoot := t.TempDir()
	dir := filepath.Join(projectRoot, ".localsearch")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(`
chunkingStrategy: nonsense
`), 0o644))

	_, err := NewLoader(projectRoot).Load()
	assert.Error(t, err)
}

func TestLoader_PreservesUnrecognizedKeys(t *testing.T) {
	projectRoot := t.TempDir()
	dir := filepath.Join(projectRoot, ".localsearch")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(`
futureFeature: true
`), 0o644))

	cfg, err := NewLoader(projectRoot).Load()
	require.NoError(t, err)
	assert.Contains(t, cfg.Unknown, "futurefeature")
}
