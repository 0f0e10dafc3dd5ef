package search

import (
	"sort"

	"github.com/localsearch/localsearch/internal/store"
)

// rrfConstant is the c in RRF's 1/(c+rank) (§4.6).
const rrfConstant = 60

// ChunkLookup resolves a chunk id to its stored row, e.g. store.Store.GetByIDs.
type ChunkLookup func(ids []string) (map[string]store.Chunk, error)

// Fuse combines vector and FTS result sets via Reciprocal Rank Fusion and
// truncates to k (§4.6 steps 2-4). alpha=1 reduces to pure vector ranking,
// alpha=0 to pure FTS ranking (§8 property 4).
func Fuse(vecResults []store.VectorResult, ftsResults []store.FTSResult, lookup ChunkLookup, alpha float64, k int) ([]Result, error) {
	scores := map[string]*Result{}

	ids := make([]string, 0, len(vecResults)+len(ftsResults))
	seen := map[string]bool{}
	addID := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, v := range vecResults {
		addID(v.ID)
	}
	for _, f := range ftsResults {
		addID(f.ID)
	}

	rows, err := lookup(ids)
	if err != nil {
		return nil, err
	}

	get := func(id string) *Result {
		r, ok := scores[id]
		if !ok {
			row, exists := rows[id]
			if !exists {
				return nil
			}
			r = &Result{
				ChunkID:    id,
				Path:       row.Path,
				StartLine:  row.StartLine,
				EndLine:    row.EndLine,
				Text:       row.Text,
				VectorRank: -1,
				FTSRank:    -1,
			}
			scores[id] = r
		}
		return r
	}

	for _, v := range vecResults {
		r := get(v.ID)
		if r == nil {
			continue
		}
		r.FromVector = true
		r.VectorRank = v.Rank
		r.Score += alpha * (1.0 / float64(rrfConstant+v.Rank+1))
	}
	for _, f := range ftsResults {
		r := get(f.ID)
		if r == nil {
			continue
		}
		r.FromFTS = true
		r.FTSRank = f.Rank
		r.Score += (1 - alpha) * (1.0 / float64(rrfConstant+f.Rank+1))
	}

	out := make([]Result, 0, len(scores))
	for _, r := range scores {
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ChunkID < out[j].ChunkID
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}
