// Package indexmgr implements the Index Manager (§4.7): one instance per
// project, wiring together discovery, chunking, embedding, storage,
// fingerprinting, and metadata into the six index lifecycle operations.
package indexmgr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/localsearch/localsearch/internal/apperrors"
	"github.com/localsearch/localsearch/internal/chunk"
	"github.com/localsearch/localsearch/internal/config"
	"github.com/localsearch/localsearch/internal/embedx"
	"github.com/localsearch/localsearch/internal/fingerprint"
	"github.com/localsearch/localsearch/internal/logging"
	"github.com/localsearch/localsearch/internal/metadata"
	"github.com/localsearch/localsearch/internal/pathutil"
	"github.com/localsearch/localsearch/internal/store"
)

// Manager owns one project's index directory: the code store, the docs
// store, both fingerprint maps, and the metadata document. Every mutating
// operation takes the index's single-writer lock via the underlying
// store.Store (§5).
type Manager struct {
	projectRoot string
	indexDir    string
	cfg         *config.Config

	codeStore *store.Store
	docsStore *store.Store

	codeFingerprints *fingerprint.Map
	docsFingerprints *fingerprint.Map

	codeChunker chunk.CodeChunker
	docChunker  *chunk.DocChunker

	meta *metadata.Metadata
}

// Open attaches to (or creates, on first use) the index for projectRoot
// under storageRoot, loading its config, metadata, fingerprint maps, and
// both SQLite-backed stores (§4.7 create_index covers the first-time path).
func Open(ctx context.Context, storageRoot, projectRoot string) (*Manager, error) {
	canon, err := pathutil.Canonical(projectRoot)
	if err != nil {
		return nil, apperrors.New(apperrors.ProjectNotDetected,
			"the project path could not be resolved", fmt.Sprintf("pathutil.Canonical(%s): %v", projectRoot, err), err)
	}
	indexDir, err := pathutil.IndexPath(storageRoot, canon)
	if err != nil {
		return nil, apperrors.New(apperrors.ProjectNotDetected,
			"the project index location could not be determined", err.Error(), err)
	}
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, apperrors.New(apperrors.PermissionDenied,
			"the index directory could not be created", fmt.Sprintf("mkdir %s: %v", indexDir, err), err)
	}

	if err := logging.Default().Bind(indexDir); err != nil {
		return nil, err
	}

	loader := config.NewLoader(canon)
	cfg, err := loader.Load()
	if err != nil {
		return nil, apperrors.New(apperrors.InvalidPattern,
			"the project configuration is invalid", err.Error(), err)
	}

	meta, err := metadata.Load(indexDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, apperrors.New(apperrors.IndexCorrupt,
				"the index metadata could not be read", err.Error(), err)
		}
		meta = metadata.New()
		if err := metadata.Save(indexDir, meta); err != nil {
			return nil, err
		}
	}

	codeFP, err := fingerprint.Load(indexDir, fingerprint.KindCode)
	if err != nil {
		return nil, apperrors.New(apperrors.IndexCorrupt, "the code fingerprint map could not be read", err.Error(), err)
	}
	docsFP, err := fingerprint.Load(indexDir, fingerprint.KindDocs)
	if err != nil {
		return nil, apperrors.New(apperrors.IndexCorrupt, "the docs fingerprint map could not be read", err.Error(), err)
	}

	codeStore, err := store.Open(ctx, filepath.Join(indexDir, "code.db"),
		embedx.CodeModelDimension, cfg.HybridSearch.FtsEngine, meta.TotalChunks)
	if err != nil {
		return nil, err
	}
	docsStore, err := store.Open(ctx, filepath.Join(indexDir, "docs.db"),
		embedx.DocsModelDimension, cfg.HybridSearch.FtsEngine, meta.TotalDocChunks)
	if err != nil {
		codeStore.Close()
		return nil, err
	}

	strategy := chunk.Strategy(cfg.ChunkingStrategy)

	return &Manager{
		projectRoot:      canon,
		indexDir:         indexDir,
		cfg:              cfg,
		codeStore:        codeStore,
		docsStore:        docsStore,
		codeFingerprints: codeFP,
		docsFingerprints: docsFP,
		codeChunker:      chunk.NewCodeChunker(strategy),
		docChunker:       chunk.NewDocChunker(800),
		meta:             meta,
	}, nil
}

// Close releases both underlying stores. It does not delete any data.
func (m *Manager) Close() error {
	err1 := m.codeStore.Close()
	err2 := m.docsStore.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// IndexDir returns the project's index directory on disk.
func (m *Manager) IndexDir() string { return m.indexDir }

// ProjectRoot returns the canonicalized project root this manager indexes.
func (m *Manager) ProjectRoot() string { return m.projectRoot }

// CreateIndex performs a full first-time index of the project: enumerate,
// chunk, embed, and store every matching file (§4.7 create_index).
func (m *Manager) CreateIndex(ctx context.Context, onProgress embedx.ProgressFunc) error {
	return m.reindex(ctx, onProgress)
}

// ReindexProject rebuilds the entire index from scratch, superseding any
// prior content (§4.7 reindex_project).
func (m *Manager) ReindexProject(ctx context.Context, onProgress embedx.ProgressFunc) error {
	return m.reindex(ctx, onProgress)
}

func (m *Manager) reindex(ctx context.Context, onProgress embedx.ProgressFunc) error {
	disc, err := newDiscovery(m.projectRoot, m.cfg)
	if err != nil {
		return apperrors.New(apperrors.InvalidPattern, "the project configuration is invalid", err.Error(), err)
	}
	files, warnings, err := disc.enumerate()
	if err != nil {
		return apperrors.New(apperrors.FileNotFound, "the project could not be scanned", err.Error(), err)
	}
	logDiscoveryWarnings(m.indexDir, warnings)

	fresh := make(map[string]struct{}, len(files))
	for _, f := range files {
		fresh[f.relPath] = struct{}{}
	}
	if err := m.pruneStalePaths(ctx, fresh); err != nil {
		return err
	}

	if err := embedx.Initialize(ctx, embedx.KindCode, onProgress); err != nil {
		return apperrors.New(apperrors.ModelDownloadFailed, "the code embedding model could not be loaded", err.Error(), err)
	}

	var codeFiles, docFiles int
	for _, f := range files {
		if f.isDoc {
			docFiles++
		} else {
			codeFiles++
		}
	}
	if docFiles > 0 {
		if err := embedx.Initialize(ctx, embedx.KindDocs, onProgress); err != nil {
			return apperrors.New(apperrors.ModelDownloadFailed, "the docs embedding model could not be loaded", err.Error(), err)
		}
	}

	for _, f := range files {
		if err := m.indexOneFile(ctx, f); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	m.meta.LastCodeIndex = now
	if docFiles > 0 {
		m.meta.LastDocsIndex = now
	}
	if err := m.refreshCounts(ctx); err != nil {
		return err
	}
	if err := m.codeFingerprints.Save(); err != nil {
		return err
	}
	if err := m.docsFingerprints.Save(); err != nil {
		return err
	}
	return metadata.Save(m.indexDir, m.meta)
}

// pruneStalePaths removes chunks and fingerprint entries for any
// previously indexed path absent from a fresh enumeration, giving
// reindex_project (and, harmlessly, create_index on a fresh manager)
// delete-then-create semantics (§4.7): files removed from the project
// since the last index no longer survive a full reindex.
func (m *Manager) pruneStalePaths(ctx context.Context, fresh map[string]struct{}) error {
	for _, p := range m.codeFingerprints.Paths() {
		if _, ok := fresh[p]; ok {
			continue
		}
		if err := m.codeStore.DeleteByPath(ctx, p); err != nil {
			return apperrors.New(apperrors.IndexCorrupt, "a removed file's chunks could not be pruned", err.Error(), err)
		}
		m.codeFingerprints.Delete(p)
	}
	for _, p := range m.docsFingerprints.Paths() {
		if _, ok := fresh[p]; ok {
			continue
		}
		if err := m.docsStore.DeleteByPath(ctx, p); err != nil {
			return apperrors.New(apperrors.IndexCorrupt, "a removed file's chunks could not be pruned", err.Error(), err)
		}
		m.docsFingerprints.Delete(p)
	}
	return nil
}

// DeleteIndex closes both stores and removes the project's entire index
// directory from disk (§4.7 delete_index / §6 delete_index tool).
func (m *Manager) DeleteIndex() error {
	if err := m.Close(); err != nil {
		return err
	}
	if err := os.RemoveAll(m.indexDir); err != nil {
		return apperrors.New(apperrors.PermissionDenied,
			"the index could not be deleted", fmt.Sprintf("remove %s: %v", m.indexDir, err), err)
	}
	return nil
}

// UpdateFile re-chunks and re-embeds a single file, replacing its existing
// chunks. A no-op if the file's content hash matches the fingerprint map
// (§4.7 update_file, §8 testable property 1).
func (m *Manager) UpdateFile(ctx context.Context, relPath string) error {
	abs, err := pathutil.SafeJoin(m.projectRoot, relPath)
	if err != nil {
		return apperrors.New(apperrors.InvalidPath, "the file path is not allowed", err.Error(), err)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return m.RemoveFile(ctx, relPath)
		}
		return apperrors.New(apperrors.FileNotFound, "the file could not be read", err.Error(), err)
	}

	isDoc := m.cfg.IndexDocs && matchesAnyPattern(relPath, m.cfg.DocPatterns)
	hash := fingerprint.Hash(content)
	fp := m.codeFingerprints
	if isDoc {
		fp = m.docsFingerprints
	}
	if fp.Unchanged(relPath, hash) {
		return nil
	}

	if err := m.indexOneFile(ctx, discoveredFile{relPath: relPath, absPath: abs, isDoc: isDoc}); err != nil {
		return err
	}
	if err := m.refreshCounts(ctx); err != nil {
		return err
	}
	if err := m.codeFingerprints.Save(); err != nil {
		return err
	}
	if err := m.docsFingerprints.Save(); err != nil {
		return err
	}
	return metadata.Save(m.indexDir, m.meta)
}

// RemoveFile deletes a file's chunks from the index and its fingerprint
// entry (§4.7 remove_file, §8 testable property 3).
func (m *Manager) RemoveFile(ctx context.Context, relPath string) error {
	if err := m.codeStore.DeleteByPath(ctx, relPath); err != nil {
		return apperrors.New(apperrors.IndexCorrupt, "the file could not be removed from the index", err.Error(), err)
	}
	if err := m.docsStore.DeleteByPath(ctx, relPath); err != nil {
		return apperrors.New(apperrors.IndexCorrupt, "the file could not be removed from the index", err.Error(), err)
	}
	m.codeFingerprints.Delete(relPath)
	m.docsFingerprints.Delete(relPath)

	if err := m.refreshCounts(ctx); err != nil {
		return err
	}
	if err := m.codeFingerprints.Save(); err != nil {
		return err
	}
	if err := m.docsFingerprints.Save(); err != nil {
		return err
	}
	return metadata.Save(m.indexDir, m.meta)
}

func (m *Manager) indexOneFile(ctx context.Context, f discoveredFile) error {
	content, err := os.ReadFile(f.absPath)
	if err != nil {
		return apperrors.New(apperrors.FileNotFound, "the file could not be read", fmt.Sprintf("read %s: %v", f.absPath, err), err)
	}
	hash := fingerprint.Hash(content)

	if f.isDoc {
		if m.docsFingerprints.Unchanged(f.relPath, hash) {
			return nil
		}
		chunks := m.docChunker.Chunk(f.relPath, string(content))
		if err := m.storeChunks(ctx, m.docsStore, embedx.DocsEngine(), f.relPath, chunk.KindDoc, chunks, hash); err != nil {
			return err
		}
		m.docsFingerprints.Set(f.relPath, hash)
		return nil
	}

	if m.codeFingerprints.Unchanged(f.relPath, hash) {
		return nil
	}
	chunks := m.codeChunker.Chunk(f.relPath, string(content), chunk.KindCode)
	if err := m.storeChunks(ctx, m.codeStore, embedx.CodeEngine(), f.relPath, chunk.KindCode, chunks, hash); err != nil {
		return err
	}
	m.codeFingerprints.Set(f.relPath, hash)
	return nil
}

func (m *Manager) storeChunks(ctx context.Context, s *store.Store, engine embedx.Engine, relPath string, kind chunk.Kind, chunks []chunk.Chunk, fileHash string) error {
	if err := s.DeleteByPath(ctx, relPath); err != nil {
		return apperrors.New(apperrors.IndexCorrupt, "stale chunks could not be removed", err.Error(), err)
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := engine.EmbedBatch(ctx, texts, embedx.ModePassage, nil)
	if err != nil {
		return apperrors.New(apperrors.ModelDownloadFailed, "the file could not be embedded", err.Error(), err)
	}

	rows := make([]store.Chunk, len(chunks))
	for i, c := range chunks {
		rows[i] = store.Chunk{
			ID:          uuid.NewString(),
			Path:        c.Path,
			StartLine:   c.StartLine,
			EndLine:     c.EndLine,
			Text:        c.Text,
			Kind:        kind,
			Fingerprint: fileHash,
			Vector:      vectors[i],
		}
	}
	if err := s.UpsertChunks(ctx, rows); err != nil {
		return apperrors.New(apperrors.IndexCorrupt, "the file's chunks could not be stored", err.Error(), err)
	}
	return nil
}

func (m *Manager) refreshCounts(ctx context.Context) error {
	codeCount, err := m.codeStore.Count(ctx)
	if err != nil {
		return err
	}
	docCount, err := m.docsStore.Count(ctx)
	if err != nil {
		return err
	}
	m.meta.TotalChunks = codeCount
	m.meta.TotalDocChunks = docCount

	codeBytes, _ := m.codeStore.StorageBytes(filepath.Join(m.indexDir, "code.db"))
	docsBytes, _ := m.docsStore.StorageBytes(filepath.Join(m.indexDir, "docs.db"))
	m.meta.StorageBytes = codeBytes + docsBytes
	return nil
}

func logDiscoveryWarnings(indexDir string, warnings []discoveryWarning) {
	if len(warnings) == 0 {
		return
	}
	log := logging.Default()
	for _, w := range warnings {
		log.Warn("indexmgr", "file skipped during discovery", map[string]any{"path": w.Path, "kind": w.Kind})
	}
}

// matchesAnyPattern reports whether rel matches any of the given glob
// patterns, used by UpdateFile where a fresh discovery pass isn't run.
func matchesAnyPattern(rel string, patterns []string) bool {
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			continue
		}
		if g.Match(rel) {
			return true
		}
	}
	return false
}
