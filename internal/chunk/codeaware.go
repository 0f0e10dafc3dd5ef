package chunk

import (
	"regexp"
	"strings"
)

// CodeAwareChunker is a heuristic, regex-driven chunker that respects
// function/class/decorator boundaries for a fixed set of languages (§4.2).
// It falls back to the CharacterChunker when no boundary is found or the
// language is unrecognized.
type CodeAwareChunker struct {
	TargetSize int // approx characters per merged chunk
	UpperBound int // split oversized declarations past this size
	fallback   *CharacterChunker
}

// codeAwareOverlapRatio makes the overlap ~5% of TargetSize, reduced relative to the character
// chunker because boundaries here are semantic, not arbitrary (§4.2).
const codeAwareOverlapRatio = 0.05

// NewCodeAwareChunker returns a CodeAwareChunker with spec-aligned defaults.
func NewCodeAwareChunker() *CodeAwareChunker {
	return &CodeAwareChunker{
		TargetSize: 2000,
		UpperBound: 6000,
		fallback:   NewCharacterChunker(),
	}
}

// boundaryPattern pairs a language's file extensions with the regex used
// to detect top-level declaration starts, plus whether decorators/
// annotations precede declarations in that language.
type boundaryPattern struct {
	exts           []string
	declaration    *regexp.Regexp
	decorator      *regexp.Regexp // lines immediately above a declaration that must stay attached
	paragraphStyle bool           // prose: split on blank-line / heading boundaries instead
}

var bracePattern = regexp.MustCompile(
	`^\s*(export\s+)?(default\s+)?(async\s+)?(public\s+|private\s+|protected\s+|static\s+)*` +
		`(function|class|interface|type|enum|struct|impl|trait|fn|func)\b`)

var pythonDeclPattern = regexp.MustCompile(`^(async\s+def|def|class)\s+\w`)
var pythonDecoratorPattern = regexp.MustCompile(`^\s*@\w`)
var headingPattern = regexp.MustCompile(`^#{1,6}\s+\S`)

var languagePatterns = map[string]boundaryPattern{
	".go":    {exts: []string{".go"}, declaration: bracePattern},
	".ts":    {exts: []string{".ts", ".tsx"}, declaration: bracePattern},
	".tsx":   {exts: []string{".tsx"}, declaration: bracePattern},
	".js":    {exts: []string{".js", ".jsx"}, declaration: bracePattern},
	".jsx":   {exts: []string{".jsx"}, declaration: bracePattern},
	".java":  {exts: []string{".java"}, declaration: bracePattern},
	".rs":    {exts: []string{".rs"}, declaration: bracePattern},
	".c":     {exts: []string{".c", ".h"}, declaration: bracePattern},
	".cpp":   {exts: []string{".cpp", ".cc", ".hpp"}, declaration: bracePattern},
	".py":    {exts: []string{".py"}, declaration: pythonDeclPattern, decorator: pythonDecoratorPattern},
	".md":    {exts: []string{".md"}, declaration: headingPattern, paragraphStyle: true},
	".rst":   {exts: []string{".rst"}, declaration: headingPattern, paragraphStyle: true},
	".txt":   {exts: []string{".txt"}, declaration: headingPattern, paragraphStyle: true},
}

func patternFor(path string) (boundaryPattern, bool) {
	ext := extOf(path)
	for _, p := range languagePatterns {
		for _, e := range p.exts {
			if e == ext {
				return p, true
			}
		}
	}
	return boundaryPattern{}, false
}

func extOf(path string) string {
	if idx := strings.LastIndexByte(path, '.'); idx >= 0 {
		return strings.ToLower(path[idx:])
	}
	return ""
}

// declSpan is a single top-level declaration span detected in the source
// (0-based line indices, end exclusive).
type declSpan struct {
	start, end int // end exclusive
}

// Chunk splits content according to its language's structural boundaries.
// Falls back to the character chunker when the language is unrecognized or
// no boundary is found in the file.
func (c *CodeAwareChunker) Chunk(path, content string, kind Kind) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	pattern, ok := patternFor(path)
	if !ok {
		return c.fallback.Chunk(path, content, kind)
	}

	lines := splitLines(content)
	spans := detectDeclarations(lines, pattern)
	if len(spans) == 0 {
		return c.fallback.Chunk(path, content, kind)
	}

	spans = mergeSmallAndSplitLarge(lines, spans, c.TargetSize, c.UpperBound)

	var chunks []Chunk
	overlapChars := int(float64(c.TargetSize) * codeAwareOverlapRatio)
	for i, sp := range spans {
		start, end := sp.start, sp.end
		if i > 0 && overlapChars > 0 {
			start = extendBackByChars(lines, spans[i-1].start, start, overlapChars)
		}
		text, ts, te := trimBlankLines(lines, start, end, 1)
		if text == "" {
			continue
		}
		chunks = append(chunks, Chunk{Path: path, StartLine: ts, EndLine: te, Text: text, Kind: kind})
	}
	return chunks
}

// detectDeclarations finds top-level declaration start lines and expands
// each into a span running up to (but not including) the next declaration,
// never splitting a decorator off from the definition it decorates.
func detectDeclarations(lines []string, pattern boundaryPattern) []declSpan {
	var starts []int
	for i, line := range lines {
		if pattern.declaration.MatchString(line) {
			s := i
			if pattern.decorator != nil {
				for s > 0 && pattern.decorator.MatchString(lines[s-1]) {
					s--
				}
			}
			starts = append(starts, s)
		}
	}
	if len(starts) == 0 {
		return nil
	}

	var spans []declSpan
	if starts[0] > 0 {
		spans = append(spans, declSpan{start: 0, end: starts[0]})
	}
	for i, s := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		spans = append(spans, declSpan{start: s, end: end})
	}
	return spans
}

// mergeSmallAndSplitLarge merges adjacent small declarations until a chunk
// reaches targetSize, and splits declarations exceeding upperBound on a
// secondary (blank-line) boundary.
func mergeSmallAndSplitLarge(lines []string, spans []declSpan, targetSize, upperBound int) []declSpan {
	var result []declSpan
	var pending *declSpan

	flush := func() {
		if pending != nil {
			result = append(result, *pending)
			pending = nil
		}
	}

	for _, sp := range spans {
		size := spanCharSize(lines, sp)
		if size > upperBound {
			flush()
			result = append(result, splitOversized(lines, sp, upperBound)...)
			continue
		}
		if pending == nil {
			merged := sp
			pending = &merged
			continue
		}
		if spanCharSize(lines, *pending)+size <= targetSize {
			pending.end = sp.end
		} else {
			flush()
			merged := sp
			pending = &merged
		}
	}
	flush()
	return result
}

func spanCharSize(lines []string, sp declSpan) int {
	size := 0
	for i := sp.start; i < sp.end && i < len(lines); i++ {
		size += len(lines[i]) + 1
	}
	return size
}

// splitOversized splits a declaration exceeding upperBound at blank-line
// boundaries, falling back to a hard line-count cut if none exist.
func splitOversized(lines []string, sp declSpan, upperBound int) []declSpan {
	var out []declSpan
	cur := sp.start
	size := 0
	lastBreak := -1
	for i := sp.start; i < sp.end; i++ {
		size += len(lines[i]) + 1
		if strings.TrimSpace(lines[i]) == "" {
			lastBreak = i + 1
		}
		if size > upperBound {
			cut := lastBreak
			if cut <= cur {
				cut = i + 1
			}
			out = append(out, declSpan{start: cur, end: cut})
			cur = cut
			size = spanCharSize(lines, declSpan{start: cur, end: i + 1})
			lastBreak = -1
		}
	}
	if cur < sp.end {
		out = append(out, declSpan{start: cur, end: sp.end})
	}
	return out
}

// extendBackByChars walks start backward (but never before prevStart) to add
// up to overlapChars of trailing context from the previous declaration.
func extendBackByChars(lines []string, prevStart, start, overlapChars int) int {
	size := 0
	i := start
	for i > prevStart && size < overlapChars {
		i--
		size += len(lines[i]) + 1
	}
	return i
}
