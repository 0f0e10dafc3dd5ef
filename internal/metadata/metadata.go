// Package metadata persists the Metadata Document (§3): index version,
// timestamps, counts, and embedding-model identity, used to detect
// migrations that require a reindex.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/localsearch/localsearch/internal/embedx"
)

// CurrentIndexVersion is bumped whenever the on-disk schema changes in a
// way that is not forward-compatible.
const CurrentIndexVersion = 1

// ModelIdentity names the (name, dimension) pair for one embedding engine.
type ModelIdentity struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
}

// Metadata is the full per-index metadata document.
type Metadata struct {
	IndexVersion int `json:"indexVersion"`

	LastCodeIndex time.Time `json:"lastCodeIndex"`
	LastDocsIndex time.Time `json:"lastDocsIndex"`

	TotalChunks    int `json:"totalChunks"`
	TotalDocChunks int `json:"totalDocChunks"`
	StorageBytes   int64 `json:"storageBytes"`

	CodeModel ModelIdentity `json:"codeModel"`
	DocsModel ModelIdentity `json:"docsModel"`
}

// RuntimeCodeModel / RuntimeDocsModel are the identities the current
// process would write for a fresh index, used to detect a mismatch
// against what's stored (§3, §7).
func RuntimeCodeModel() ModelIdentity {
	return ModelIdentity{Name: embedx.CodeModelName, Dimension: embedx.CodeModelDimension}
}

func RuntimeDocsModel() ModelIdentity {
	return ModelIdentity{Name: embedx.DocsModelName, Dimension: embedx.DocsModelDimension}
}

// New returns a fresh Metadata document stamped with the current runtime
// model identities, as written by create_index.
func New() *Metadata {
	return &Metadata{
		IndexVersion: CurrentIndexVersion,
		CodeModel:    RuntimeCodeModel(),
		DocsModel:    RuntimeDocsModel(),
	}
}

func path(indexDir string) string { return filepath.Join(indexDir, "metadata.json") }

// Load reads metadata.json from the index directory. Returns
// os.ErrNotExist (wrapped) if absent.
func Load(indexDir string) (*Metadata, error) {
	data, err := os.ReadFile(path(indexDir))
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &m, nil
}

// Save writes metadata.json using a write-to-temp-then-rename discipline
// to avoid torn files under concurrent readers (§5).
func Save(indexDir string, m *Metadata) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	return atomicWrite(path(indexDir), data)
}

func atomicWrite(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// CompatibilityWarning returns a non-empty message if the stored model
// identities don't match the current runtime constants (§7). Used by
// get_index_status (non-blocking) and search (blocking, via the caller).
func (m *Metadata) CompatibilityWarning() string {
	code := RuntimeCodeModel()
	docs := RuntimeDocsModel()
	switch {
	case m.CodeModel != code && m.DocsModel != docs:
		return fmt.Sprintf(
			"index was built with code model %s(%d) and docs model %s(%d); runtime expects %s(%d) and %s(%d). Reindex the project.",
			m.CodeModel.Name, m.CodeModel.Dimension, m.DocsModel.Name, m.DocsModel.Dimension,
			code.Name, code.Dimension, docs.Name, docs.Dimension)
	case m.CodeModel != code:
		return fmt.Sprintf(
			"index was built with code model %s(%d); runtime expects %s(%d). Reindex the project.",
			m.CodeModel.Name, m.CodeModel.Dimension, code.Name, code.Dimension)
	case m.DocsModel != docs:
		return fmt.Sprintf(
			"index was built with docs model %s(%d); runtime expects %s(%d). Reindex the project.",
			m.DocsModel.Name, m.DocsModel.Dimension, docs.Name, docs.Dimension)
	default:
		return ""
	}
}
