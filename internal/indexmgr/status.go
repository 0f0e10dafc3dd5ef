package indexmgr

import (
	"context"
)

// Status is the response shape for get_index_status (§4.7, §6).
type Status struct {
	ProjectRoot    string `json:"projectRoot"`
	IndexDir       string `json:"indexDir"`
	IndexVersion   int    `json:"indexVersion"`
	TotalChunks    int    `json:"totalChunks"`
	TotalDocChunks int    `json:"totalDocChunks"`
	StorageBytes   int64  `json:"storageBytes"`
	LastCodeIndex  string `json:"lastCodeIndex,omitempty"`
	LastDocsIndex  string `json:"lastDocsIndex,omitempty"`
	CodeModel      string `json:"codeModel"`
	DocsModel      string `json:"docsModel"`
	// Warning carries a non-blocking embedding-model compatibility notice
	// (§7); unlike search, get_index_status never fails on a mismatch.
	Warning string `json:"warning,omitempty"`
}

// GetStatus reports the current index state, including a non-blocking
// warning if the index was built with a different embedding model than the
// one the running process would use (§4.7 get_index_status).
func (m *Manager) GetStatus(ctx context.Context) (Status, error) {
	if err := m.refreshCounts(ctx); err != nil {
		return Status{}, err
	}

	s := Status{
		ProjectRoot:    m.projectRoot,
		IndexDir:       m.indexDir,
		IndexVersion:   m.meta.IndexVersion,
		TotalChunks:    m.meta.TotalChunks,
		TotalDocChunks: m.meta.TotalDocChunks,
		StorageBytes:   m.meta.StorageBytes,
		CodeModel:      m.meta.CodeModel.Name,
		DocsModel:      m.meta.DocsModel.Name,
		Warning:        m.meta.CompatibilityWarning(),
	}
	if !m.meta.LastCodeIndex.IsZero() {
		s.LastCodeIndex = m.meta.LastCodeIndex.Format("2006-01-02T15:04:05Z07:00")
	}
	if !m.meta.LastDocsIndex.IsZero() {
		s.LastDocsIndex = m.meta.LastDocsIndex.Format("2006-01-02T15:04:05Z07:00")
	}
	return s, nil
}

// CompatibilityWarning exposes the stored metadata's warning without a
// status round-trip. SearchCode and SearchDocs run the same check on the
// metadata directly and refuse to search on a mismatch (§7 blocking
// behavior differs from status's non-blocking one).
func (m *Manager) CompatibilityWarning() string {
	return m.meta.CompatibilityWarning()
}
