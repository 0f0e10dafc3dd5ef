package search

import (
	"sort"
	"strings"
)

// MergeAdjacent groups results by path and merges overlapping or adjacent
// chunks (end_line+1 >= next start_line) into a single result whose text
// is concatenated without duplicated lines and whose score is the max of
// its members (§4.6, §8 property 6). Non-adjacent chunks from the same
// file remain separate results.
func MergeAdjacent(results []Result) []Result {
	byPath := map[string][]Result{}
	var order []string
	for _, r := range results {
		if _, ok := byPath[r.Path]; !ok {
			order = append(order, r.Path)
		}
		byPath[r.Path] = append(byPath[r.Path], r)
	}

	var merged []Result
	for _, path := range order {
		group := byPath[path]
		sort.SliceStable(group, func(i, j int) bool { return group[i].StartLine < group[j].StartLine })

		cur := group[0]
		for _, next := range group[1:] {
			if cur.EndLine+1 >= next.StartLine {
				cur = mergeTwo(cur, next)
			} else {
				merged = append(merged, cur)
				cur = next
			}
		}
		merged = append(merged, cur)
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	return merged
}

func mergeTwo(a, b Result) Result {
	text := concatWithoutDuplicateLines(a.Text, b.Text, a.EndLine, b.StartLine)
	score := a.Score
	if b.Score > score {
		score = b.Score
	}
	end := a.EndLine
	if b.EndLine > end {
		end = b.EndLine
	}
	return Result{
		ChunkID:    a.ChunkID,
		Path:       a.Path,
		StartLine:  a.StartLine,
		EndLine:    end,
		Text:       text,
		Score:      score,
		FromVector: a.FromVector || b.FromVector,
		FromFTS:    a.FromFTS || b.FromFTS,
		VectorRank: minRank(a.VectorRank, b.VectorRank),
		FTSRank:    minRank(a.FTSRank, b.FTSRank),
	}
}

func minRank(a, b int) int {
	if a < 0 {
		return b
	}
	if b < 0 {
		return a
	}
	if a < b {
		return a
	}
	return b
}

// concatWithoutDuplicateLines joins two chunk texts that overlap or are
// adjacent in the source file, dropping any lines from b's text that
// would duplicate a's trailing overlap region.
func concatWithoutDuplicateLines(aText, bText string, aEnd, bStart int) string {
	if bStart > aEnd {
		return strings.TrimRight(aText, "\n") + "\n" + bText
	}
	overlapLines := aEnd - bStart + 1
	bLines := strings.Split(bText, "\n")
	if overlapLines >= len(bLines) {
		return aText
	}
	if overlapLines < 0 {
		overlapLines = 0
	}
	return strings.TrimRight(aText, "\n") + "\n" + strings.Join(bLines[overlapLines:], "\n")
}

// TrimWhitespace removes leading/trailing blank lines from each result's
// text, matching the chunker's own trimming so results returned from
// in-memory merges stay consistent (§4.6).
func TrimWhitespace(results []Result) []Result {
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = r
		out[i].Text = strings.Trim(r.Text, "\n")
		lines := strings.Split(out[i].Text, "\n")
		start, end := 0, len(lines)
		for start < end && strings.TrimSpace(lines[start]) == "" {
			start++
		}
		for end > start && strings.TrimSpace(lines[end-1]) == "" {
			end--
		}
		out[i].Text = strings.Join(lines[start:end], "\n")
	}
	return out
}
