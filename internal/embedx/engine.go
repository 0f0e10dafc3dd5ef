// Package embedx provides the two singleton embedding engines (code and
// docs) used by the index managers and search tools. Each engine wraps a
// locally embedded Python sentence-transformers process reached over a
// loopback HTTP server, following the sidecar pattern the rest of the
// ecosystem uses for heavy native inference runtimes.
package embedx

import (
	"context"
)

// Mode selects whether text is embedded as a search query or as an
// indexable passage. Some sentence-transformer checkpoints use distinct
// instruction prefixes for the two.
type Mode string

const (
	ModeQuery   Mode = "query"
	ModePassage Mode = "passage"
)

// Kind distinguishes the two engines carried by the system.
type Kind string

const (
	KindCode Kind = "code"
	KindDocs Kind = "docs"
)

// Runtime model constants. These are compared against metadata's recorded
// model identity to detect embedding-model migrations (spec §3 Metadata
// Document).
const (
	CodeModelName      = "BAAI/bge-small-en-v1.5"
	CodeModelDimension = 384
	DocsModelName      = "BAAI/bge-base-en-v1.5"
	DocsModelDimension = 768
)

// ProgressFunc reports (done, total) during a first-run model download.
type ProgressFunc func(done, total int64)

// Engine is the shape shared by both embedding singletons (§4.3).
type Engine interface {
	// Name returns the pretrained model identifier.
	Name() string
	// Dimension returns the fixed output vector length.
	Dimension() int
	// Embed embeds a single text and returns its L2-normalized vector.
	Embed(ctx context.Context, text string, mode Mode) ([]float32, error)
	// EmbedBatch embeds texts in batches, returning one vector per input in
	// the same order. onProgress may be nil.
	EmbedBatch(ctx context.Context, texts []string, mode Mode, onProgress ProgressFunc) ([][]float32, error)
	// Close releases the underlying process and HTTP client.
	Close() error
}
