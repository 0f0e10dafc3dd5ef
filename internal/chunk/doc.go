package chunk

import (
	"regexp"
	"strings"
)

// DocChunker splits prose into semantic chunks, preferring paragraph and
// heading boundaries over arbitrary character windows (§4.2 doc-aware
// chunker). Code fences are never split.
type DocChunker struct {
	TargetSize int // approx tokens per chunk
	fallback   *CharacterChunker
}

// NewDocChunker returns a DocChunker with the given target size in estimated
// tokens; a non-positive size falls back to 800.
func NewDocChunker(targetSize int) *DocChunker {
	if targetSize <= 0 {
		targetSize = 800
	}
	return &DocChunker{TargetSize: targetSize, fallback: NewCharacterChunker()}
}

var h2Pattern = regexp.MustCompile(`^##\s+`)
var fencePattern = regexp.MustCompile("^```")

type docSection struct {
	startLine int // 1-based
	lines     []string
}

// Chunk splits a markdown/prose document by ## headers, then by paragraph
// if a section exceeds TargetSize.
func (c *DocChunker) Chunk(path, content string) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	lines := splitLines(content)
	sections := splitByHeaders(lines)

	var chunks []Chunk
	for _, sec := range sections {
		chunks = append(chunks, c.processSection(path, sec)...)
	}
	return chunks
}

func splitByHeaders(lines []string) []docSection {
	var sections []docSection
	cur := docSection{startLine: 1}
	for i, line := range lines {
		if h2Pattern.MatchString(line) && i > 0 {
			if len(cur.lines) > 0 {
				sections = append(sections, cur)
			}
			cur = docSection{startLine: i + 1, lines: []string{line}}
		} else {
			cur.lines = append(cur.lines, line)
		}
	}
	if len(cur.lines) > 0 {
		sections = append(sections, cur)
	}
	return sections
}

func (c *DocChunker) processSection(path string, sec docSection) []Chunk {
	text := strings.Join(sec.lines, "\n")
	if estimateTokens(text) <= c.TargetSize {
		trimmed, ts, te := trimBlankLines(sec.lines, 0, len(sec.lines), sec.startLine)
		if trimmed == "" {
			return nil
		}
		return []Chunk{{Path: path, StartLine: ts, EndLine: te, Text: trimmed, Kind: KindDoc}}
	}
	return c.splitByParagraphs(path, sec)
}

type paragraph struct {
	lines     []string
	startLine int // 1-based
	isCode    bool
}

func (c *DocChunker) splitByParagraphs(path string, sec docSection) []Chunk {
	paragraphs := extractParagraphs(sec.lines, sec.startLine)

	var chunks []Chunk
	var cur []paragraph
	curSize := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		if ch, ok := buildChunk(path, cur); ok {
			chunks = append(chunks, ch)
		}
		cur = nil
		curSize = 0
	}

	for _, p := range paragraphs {
		text := strings.Join(p.lines, "\n")
		size := estimateTokens(text)

		if curSize > 0 && curSize+size > c.TargetSize {
			flush()
		}
		if size > c.TargetSize && !p.isCode {
			flush()
			chunks = append(chunks, splitLargeParagraph(path, p, c.TargetSize)...)
			continue
		}
		cur = append(cur, p)
		curSize += size
	}
	flush()
	return chunks
}

func extractParagraphs(lines []string, startLine int) []paragraph {
	var paragraphs []paragraph
	var curLines []string
	curStart := startLine
	inCode := false

	flush := func(endLineExclusive int) {
		if len(curLines) == 0 {
			return
		}
		text := strings.Join(curLines, "\n")
		if strings.TrimSpace(text) != "" {
			paragraphs = append(paragraphs, paragraph{lines: append([]string(nil), curLines...), startLine: curStart})
		}
		curLines = nil
	}

	for i, line := range lines {
		lineNum := startLine + i
		if fencePattern.MatchString(line) {
			if !inCode {
				flush(lineNum)
				inCode = true
				curStart = lineNum
				curLines = append(curLines, line)
			} else {
				curLines = append(curLines, line)
				paragraphs = append(paragraphs, paragraph{lines: append([]string(nil), curLines...), startLine: curStart, isCode: true})
				curLines = nil
				inCode = false
				curStart = lineNum + 1
			}
			continue
		}
		if !inCode && strings.TrimSpace(line) == "" {
			flush(lineNum)
			curStart = lineNum + 1
			continue
		}
		curLines = append(curLines, line)
	}
	flush(startLine + len(lines))
	return paragraphs
}

func buildChunk(path string, paragraphs []paragraph) (Chunk, bool) {
	if len(paragraphs) == 0 {
		return Chunk{}, false
	}
	var allLines []string
	start := paragraphs[0].startLine
	for _, p := range paragraphs {
		allLines = append(allLines, p.lines...)
	}
	text, ts, te := trimBlankLines(allLines, 0, len(allLines), start)
	if text == "" {
		return Chunk{}, false
	}
	return Chunk{Path: path, StartLine: ts, EndLine: te, Text: text, Kind: KindDoc}, true
}

func splitLargeParagraph(path string, p paragraph, targetSize int) []Chunk {
	text := strings.Join(p.lines, "\n")
	sentences := strings.Split(text, ". ")

	var chunks []Chunk
	var cur []string
	curSize := 0
	lineNum := p.startLine

	flush := func() {
		if len(cur) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(cur, ". "))
		if joined != "" {
			n := strings.Count(joined, "\n") + 1
			chunks = append(chunks, Chunk{Path: path, StartLine: lineNum, EndLine: lineNum + n - 1, Text: joined, Kind: KindDoc})
			lineNum += n
		}
		cur = nil
		curSize = 0
	}

	for _, s := range sentences {
		size := estimateTokens(s)
		if curSize > 0 && curSize+size > targetSize {
			flush()
		}
		cur = append(cur, s)
		curSize += size
	}
	flush()
	return chunks
}

// estimateTokens approximates a token count from character length, the
// same ~4 chars-per-token heuristic used throughout the chunkers.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}
