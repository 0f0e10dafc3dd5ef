package chunk

// Strategy selects which code chunker an index uses (§3 Config Document
// chunkingStrategy, §9 Open Question).
type Strategy string

const (
	StrategyCharacter Strategy = "character"
	StrategyCodeAware Strategy = "code-aware"
)

// CodeChunker is the interface both code chunking strategies satisfy.
type CodeChunker interface {
	Chunk(path, content string, kind Kind) []Chunk
}

// NewCodeChunker returns the chunker for the configured strategy.
// "character" is the default for back-compat with existing indexes;
// new indexes should prefer "code-aware" per the spec's open question,
// which callers select explicitly via Strategy.
func NewCodeChunker(strategy Strategy) CodeChunker {
	switch strategy {
	case StrategyCodeAware:
		return NewCodeAwareChunker()
	default:
		return NewCharacterChunker()
	}
}
