package indexmgr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localsearch/localsearch/internal/config"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestDiscovery_EnumerateFindsCodeAndDocFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "README.md", "# hello\n")
	writeFile(t, root, "node_modules/pkg/index.js", "console.log(1)\n")

	cfg := config.Default()
	d, err := newDiscovery(root, cfg)
	require.NoError(t, err)

	files, _, err := d.enumerate()
	require.NoError(t, err)

	byRel := map[string]discoveredFile{}
	for _, f := range files {
		byRel[f.relPath] = f
	}
	assert.Contains(t, byRel, "main.go")
	assert.False(t, byRel["main.go"].isDoc)
	assert.Contains(t, byRel, "README.md")
	assert.True(t, byRel["README.md"].isDoc)
	assert.NotContains(t, byRel, "node_modules/pkg/index.js")
}

func TestDiscovery_RespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "vendor/\n*.log\n")
	writeFile(t, root, "vendor/dep.go", "package dep\n")
	writeFile(t, root, "debug.log", "log line\n")
	writeFile(t, root, "main.go", "package main\n")

	cfg := config.Default()
	d, err := newDiscovery(root, cfg)
	require.NoError(t, err)

	files, _, err := d.enumerate()
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.relPath)
	}
	assert.NotContains(t, rels, "vendor/dep.go")
	assert.NotContains(t, rels, "debug.log")
	assert.Contains(t, rels, "main.go")
}

func TestDiscovery_ExcludesLocalsearchDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".localsearch/code.db", "binary-ish")
	writeFile(t, root, "main.go", "package main\n")

	cfg := config.Default()
	d, err := newDiscovery(root, cfg)
	require.NoError(t, err)

	files, _, err := d.enumerate()
	require.NoError(t, err)
	for _, f := range files {
		assert.NotContains(t, f.relPath, ".localsearch")
	}
}

func TestDiscovery_SkipsFilesOverMaxSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.go", "package main\n// padding\n")

	cfg := config.Default()
	cfg.MaxFileSize = "1B"
	d, err := newDiscovery(root, cfg)
	require.NoError(t, err)

	files, warnings, err := d.enumerate()
	require.NoError(t, err)
	assert.Empty(t, files)
	require.NotEmpty(t, warnings)
	assert.Equal(t, "too_large", warnings[0].Kind)
}

func TestDiscovery_SkipsBinaryFiles(t *testing.T) {
	root := t.TempDir()
	full := filepath.Join(root, "data.go")
	require.NoError(t, os.WriteFile(full, []byte("package x\x00binary"), 0o644))

	cfg := config.Default()
	d, err := newDiscovery(root, cfg)
	require.NoError(t, err)

	files, warnings, err := d.enumerate()
	require.NoError(t, err)
	assert.Empty(t, files)
	require.NotEmpty(t, warnings)
	assert.Equal(t, "binary", warnings[0].Kind)
}

func TestDiscovery_DocsSkippedWhenIndexDocsDisabled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# hello\n")

	cfg := config.Default()
	cfg.IndexDocs = false
	d, err := newDiscovery(root, cfg)
	require.NoError(t, err)

	files, _, err := d.enumerate()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLoadGitignore_MissingFileReturnsNil(t *testing.T) {
	assert.Nil(t, loadGitignore(t.TempDir()))
}

func TestLoadGitignore_IgnoresCommentsAndNegations(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "# comment\n!keep.log\nbuild/\n")
	globs := loadGitignore(root)
	assert.True(t, matchesAny("build/output", globs))
	assert.False(t, matchesAny("keep.log", globs))
}
