package domain

import "context"

// Document represents a single input file loaded by the caller.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a contiguous window of a document's words used as the unit of retrieval.
type Chunk struct {
	Index int
	// Start is the offset of the first word of the chunk in the source word sequence.
	Start int
	Text  string
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Completer generates a text completion for a fully rendered prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// BatchEmbedder is implemented by embedders that can vectorize many texts per round-trip.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// CorpusEmbedder is implemented by embedders that must be fitted on a corpus first.
// Prepare returns a new fitted embedder and leaves the receiver untouched, so a
// single instance can serve concurrent, unrelated documents.
type CorpusEmbedder interface {
	Embedder
	Prepare(ctx context.Context, corpus []string) (Embedder, error)
}

// Chunker splits text into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(text string) ([]Chunk, error)
}

// Summarizer produces a condensed version of the provided text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}
