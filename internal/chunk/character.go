package chunk

import "strings"

const (
	// CharTargetSize / CharOverlap are the default sliding-window
	// parameters for the character chunker (§4.2).
	CharTargetSize = 4000
	CharOverlap    = 800
)

// CharacterChunker is a sliding window of ~4000 characters with ~800
// overlap, preferring to split on double newlines within the window.
type CharacterChunker struct {
	TargetSize int
	Overlap    int
}

// NewCharacterChunker returns a CharacterChunker with the spec defaults.
func NewCharacterChunker() *CharacterChunker {
	return &CharacterChunker{TargetSize: CharTargetSize, Overlap: CharOverlap}
}

// Chunk splits content into overlapping windows. path is carried through
// to the returned Chunk.Path; kind lets the same chunker serve both code
// (character strategy) and doc fallback use.
func (c *CharacterChunker) Chunk(path, content string, kind Kind) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	lines := splitLines(content)
	// Precompute cumulative byte offsets per line start, so we can window
	// by character count while still reporting line numbers.
	lineStartOffset := make([]int, len(lines)+1)
	offset := 0
	for i, l := range lines {
		lineStartOffset[i] = offset
		offset += len(l) + 1 // +1 for the newline
	}
	lineStartOffset[len(lines)] = offset
	totalLen := offset

	var chunks []Chunk
	pos := 0
	for pos < totalLen {
		end := pos + c.TargetSize
		if end >= totalLen {
			end = totalLen
		} else {
			// Prefer to end on a double-newline boundary within the window.
			window := content[pos:end]
			if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
				end = pos + idx + 1
			}
		}

		startLine := lineIndexForOffset(lineStartOffset, pos)
		endLine := lineIndexForOffset(lineStartOffset, end)
		if endLine > startLine && end <= lineStartOffset[endLine] {
			endLine--
		}

		text, ts, te := trimBlankLines(lines, startLine, endLine+1, 1)
		if text != "" {
			chunks = append(chunks, Chunk{Path: path, StartLine: ts, EndLine: te, Text: text, Kind: kind})
		}

		if end >= totalLen {
			break
		}
		next := end - c.Overlap
		if next <= pos {
			next = end
		}
		pos = next
	}
	return chunks
}

func lineIndexForOffset(lineStartOffset []int, offset int) int {
	lo, hi := 0, len(lineStartOffset)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lineStartOffset[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
