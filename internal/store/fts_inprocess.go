package store

import (
	"context"
	"math"
	"sort"
	"sync"
)

// BM25 tuning constants (§4.5).
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// inProcessFTS is an inverted index with BM25 scoring, always available
// regardless of SQLite build tags (§4.5).
type inProcessFTS struct {
	mu sync.RWMutex

	postings   map[string]map[string]int // token -> docID -> term frequency
	docLength  map[string]int            // docID -> token count
	totalDocs  int
	totalChars int // sum of docLength, for avg doc length
}

func newInProcessFTS() *inProcessFTS {
	return &inProcessFTS{
		postings:  map[string]map[string]int{},
		docLength: map[string]int{},
	}
}

func (f *inProcessFTS) open(ctx context.Context) error { return nil }
func (f *inProcessFTS) close() error                   { return nil }

func (f *inProcessFTS) upsert(ctx context.Context, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(id)

	tokens := tokenize(text)
	tf := map[string]int{}
	for _, t := range tokens {
		tf[t]++
	}
	for token, count := range tf {
		bucket, ok := f.postings[token]
		if !ok {
			bucket = map[string]int{}
			f.postings[token] = bucket
		}
		bucket[id] = count
	}
	f.docLength[id] = len(tokens)
	f.totalDocs++
	f.totalChars += len(tokens)
	return nil
}

func (f *inProcessFTS) delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(id)
	return nil
}

// removeLocked removes id's postings and length entry. Caller holds f.mu.
func (f *inProcessFTS) removeLocked(id string) {
	if length, ok := f.docLength[id]; ok {
		f.totalDocs--
		f.totalChars -= length
		delete(f.docLength, id)
	}
	for token, bucket := range f.postings {
		if _, ok := bucket[id]; ok {
			delete(bucket, id)
			if len(bucket) == 0 {
				delete(f.postings, token)
			}
		}
	}
}

func (f *inProcessFTS) search(ctx context.Context, query string, k int) ([]FTSResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.totalDocs == 0 {
		return nil, nil
	}
	avgDocLen := float64(f.totalChars) / float64(f.totalDocs)

	queryTokens := dedupe(tokenize(query))
	scores := map[string]float64{}
	for _, token := range queryTokens {
		bucket, ok := f.postings[token]
		if !ok {
			continue
		}
		idf := math.Log(1 + (float64(f.totalDocs)-float64(len(bucket))+0.5)/(float64(len(bucket))+0.5))
		for docID, tf := range bucket {
			docLen := float64(f.docLength[docID])
			denom := float64(tf) + bm25K1*(1-bm25B+bm25B*docLen/avgDocLen)
			scores[docID] += idf * (float64(tf) * (bm25K1 + 1) / denom)
		}
	}

	results := make([]FTSResult, 0, len(scores))
	for id, score := range scores {
		results = append(results, FTSResult{ID: id, Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	for i := range results {
		results[i].Rank = i
	}
	return results, nil
}
