package search

import (
	"fmt"
	"math"
)

// DefaultItem is one entry of the default output schema (§6).
type DefaultItem struct {
	Path      string  `json:"path"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	StartLine int     `json:"startLine"`
	EndLine   int     `json:"endLine"`
}

// DefaultResponse is the default tool response shape (§6).
type DefaultResponse struct {
	Results       []DefaultItem `json:"results"`
	TotalResults  int           `json:"totalResults"`
	SearchTimeMs  int64         `json:"searchTimeMs"`
	Warning       string        `json:"warning,omitempty"`
}

// CompactItem is one entry of the compact output schema (§6).
type CompactItem struct {
	Loc string  `json:"loc"` // "path:start-end"
	T   string  `json:"t"`
	S   float64 `json:"s"`
}

// CompactResponse is the compact tool response shape (§6).
type CompactResponse struct {
	R       []CompactItem `json:"r"`
	N       int           `json:"n"`
	Ms      int64         `json:"ms"`
	Warning string        `json:"w,omitempty"`
}

// ToDefault renders results in the default output schema.
func ToDefault(results []Result, searchTimeMs int64, warning string) DefaultResponse {
	items := make([]DefaultItem, len(results))
	for i, r := range results {
		items[i] = DefaultItem{
			Path:      r.Path,
			Text:      r.Text,
			Score:     round2(r.Score),
			StartLine: r.StartLine,
			EndLine:   r.EndLine,
		}
	}
	return DefaultResponse{Results: items, TotalResults: len(items), SearchTimeMs: searchTimeMs, Warning: warning}
}

// ToCompact renders results in the compact output schema (opt-in, §4.6).
func ToCompact(results []Result, searchTimeMs int64, warning string) CompactResponse {
	items := make([]CompactItem, len(results))
	for i, r := range results {
		items[i] = CompactItem{
			Loc: fmt.Sprintf("%s:%d-%d", r.Path, r.StartLine, r.EndLine),
			T:   r.Text,
			S:   round2(r.Score),
		}
	}
	return CompactResponse{R: items, N: len(items), Ms: searchTimeMs, Warning: warning}
}

// FromCompact recovers a DefaultResponse from a CompactResponse, the
// round-trip direction exercised by §8 property 5 (bijective formats,
// modulo the loc string's reversible "path:start-end" encoding and the
// already-applied 2-decimal score rounding).
func FromCompact(c CompactResponse) (DefaultResponse, error) {
	items := make([]DefaultItem, len(c.R))
	for i, it := range c.R {
		path, start, end, err := parseLoc(it.Loc)
		if err != nil {
			return DefaultResponse{}, err
		}
		items[i] = DefaultItem{Path: path, Text: it.T, Score: it.S, StartLine: start, EndLine: end}
	}
	return DefaultResponse{Results: items, TotalResults: c.N, SearchTimeMs: c.Ms, Warning: c.Warning}, nil
}

func parseLoc(loc string) (path string, start, end int, err error) {
	// loc is "path:start-end"; path itself may legitimately contain ':'
	// only on exotic filesystems, so split on the last ':' instead of the
	// first to stay correct for the common case.
	lastColon := -1
	for i := len(loc) - 1; i >= 0; i-- {
		if loc[i] == ':' {
			lastColon = i
			break
		}
	}
	if lastColon < 0 {
		return "", 0, 0, fmt.Errorf("malformed loc %q: missing ':'", loc)
	}
	path = loc[:lastColon]
	rangePart := loc[lastColon+1:]

	dash := -1
	for i := len(rangePart) - 1; i >= 0; i-- {
		if rangePart[i] == '-' {
			dash = i
			break
		}
	}
	if dash < 0 {
		return "", 0, 0, fmt.Errorf("malformed loc %q: missing '-' in range", loc)
	}
	if _, err := fmt.Sscanf(rangePart[:dash], "%d", &start); err != nil {
		return "", 0, 0, fmt.Errorf("parse start line in %q: %w", loc, err)
	}
	if _, err := fmt.Sscanf(rangePart[dash+1:], "%d", &end); err != nil {
		return "", 0, 0, fmt.Errorf("parse end line in %q: %w", loc, err)
	}
	return path, start, end, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
