package indexmgr

import (
	"context"
	"fmt"
	"sort"

	"github.com/gobwas/glob"

	"github.com/localsearch/localsearch/internal/apperrors"
	"github.com/localsearch/localsearch/internal/embedx"
	"github.com/localsearch/localsearch/internal/search"
	"github.com/localsearch/localsearch/internal/store"
)

// SearchOptions configures a single search_code/search_docs call (§4.6, §6).
type SearchOptions struct {
	Query string
	Mode  search.Mode // vector | fts | hybrid; empty defaults to hybrid
	Alpha float64     // used only when Mode == hybrid; <0 uses the config default
	Limit int
}

const defaultSearchLimit = 10

// SearchCode runs a hybrid vector+FTS search over the code store (§4.7
// search_code). Blocks with an INDEX_CORRUPT-family error if the index was
// built with a different embedding model than the one currently running
// (§7 S3, in contrast to get_index_status's non-blocking warning).
func (m *Manager) SearchCode(ctx context.Context, opts SearchOptions) ([]search.Result, error) {
	if w := m.meta.CompatibilityWarning(); w != "" {
		return nil, apperrors.New(apperrors.IndexCorrupt,
			"the index must be reindexed before searching: "+w, w, nil)
	}
	return m.search(ctx, m.codeStore, embedx.CodeEngine(), opts)
}

// SearchDocs runs a hybrid vector+FTS search over the docs store (§4.7
// search_docs).
func (m *Manager) SearchDocs(ctx context.Context, opts SearchOptions) ([]search.Result, error) {
	if w := m.meta.CompatibilityWarning(); w != "" {
		return nil, apperrors.New(apperrors.IndexCorrupt,
			"the index must be reindexed before searching: "+w, w, nil)
	}
	return m.search(ctx, m.docsStore, embedx.DocsEngine(), opts)
}

// SearchByPath lists indexed paths (code and docs) matching a glob pattern.
// Unlike search_code/search_docs this performs no embedding call at all
// (§6 search_by_path: "pattern: glob" → "matching paths (no embedding)").
func (m *Manager) SearchByPath(pattern string) ([]string, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, apperrors.New(apperrors.InvalidPattern,
			"the path pattern is invalid", fmt.Sprintf("glob.Compile(%s): %v", pattern, err), err)
	}

	seen := make(map[string]struct{})
	var matches []string
	for _, p := range m.codeFingerprints.Paths() {
		if _, ok := seen[p]; !ok && g.Match(p) {
			seen[p] = struct{}{}
			matches = append(matches, p)
		}
	}
	for _, p := range m.docsFingerprints.Paths() {
		if _, ok := seen[p]; !ok && g.Match(p) {
			seen[p] = struct{}{}
			matches = append(matches, p)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

func (m *Manager) search(ctx context.Context, s *store.Store, engine embedx.Engine, opts SearchOptions) ([]search.Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	mode := opts.Mode
	if mode == "" {
		mode = search.ModeHybrid
	}
	alpha := opts.Alpha
	if alpha < 0 {
		alpha = m.cfg.HybridSearch.DefaultAlpha
	}
	weight := search.AlphaForMode(mode, alpha)

	queryVec, err := engine.Embed(ctx, opts.Query, embedx.ModeQuery)
	if err != nil {
		return nil, apperrors.New(apperrors.ModelDownloadFailed, "the query could not be embedded", err.Error(), err)
	}

	// Over-fetch from each source so RRF has enough candidates to fuse
	// before truncating to the caller's limit.
	fanout := limit * 4
	if fanout < 50 {
		fanout = 50
	}

	vecResults, err := s.SearchVectors(ctx, queryVec, fanout)
	if err != nil {
		return nil, apperrors.New(apperrors.IndexCorrupt, "the vector search failed", err.Error(), err)
	}
	ftsResults, err := s.SearchFTS(ctx, opts.Query, fanout)
	if err != nil {
		return nil, apperrors.New(apperrors.IndexCorrupt, "the full-text search failed", err.Error(), err)
	}

	lookup := func(ids []string) (map[string]store.Chunk, error) {
		return s.GetByIDs(ctx, ids)
	}

	fused, err := search.Fuse(vecResults, ftsResults, lookup, weight, limit)
	if err != nil {
		return nil, fmt.Errorf("fuse search results: %w", err)
	}

	fused = search.MergeAdjacent(fused)
	fused = search.TrimWhitespace(fused)
	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused, nil
}
