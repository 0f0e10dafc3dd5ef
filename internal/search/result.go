// Package search implements hybrid vector+FTS fusion and result
// post-processing (§4.6): reciprocal rank fusion, same-file dedup/merge,
// whitespace trimming, and the default/compact output formats.
package search

// Result is the canonical fused record, carrying its provenance before
// any formatting view is derived from it (§9 "duck-typed result objects
// -> tagged records").
type Result struct {
	ChunkID    string
	Path       string
	StartLine  int
	EndLine    int
	Text       string
	Score      float64
	FromVector bool
	FromFTS    bool
	VectorRank int // -1 if not present in the vector result set
	FTSRank    int // -1 if not present in the FTS result set
}

// Mode selects the fusion weighting (§4.6).
type Mode string

const (
	ModeVector Mode = "vector"
	ModeFTS    Mode = "fts"
	ModeHybrid Mode = "hybrid"
)

// AlphaForMode resolves a Mode (and optional explicit alpha for "hybrid")
// into the RRF weight: vector=1, fts=0, hybrid=alpha.
func AlphaForMode(mode Mode, alpha float64) float64 {
	switch mode {
	case ModeVector:
		return 1
	case ModeFTS:
		return 0
	default:
		return alpha
	}
}
