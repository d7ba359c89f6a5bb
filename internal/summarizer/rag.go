package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docsum/internal/chunker"
	"docsum/internal/domain"
	"docsum/internal/logger"
	"docsum/internal/prompt"
	"docsum/internal/vectorstore"
	"docsum/internal/vectorstore/memory"
)

const (
	DefaultTopK      = 3
	DefaultSeparator = "\n\n"
)

// QueryMode selects what the RAG strategy retrieves with.
type QueryMode string

const (
	// QueryDocument uses the whole input text as the similarity query.
	QueryDocument QueryMode = "document"
	// QueryKeyTopics first asks the model for the document's key topics and
	// retrieves with those. It costs one extra completion.
	QueryKeyTopics QueryMode = "key_topics"
)

// ParseQueryMode accepts "" as QueryDocument.
func ParseQueryMode(s string) (QueryMode, error) {
	switch QueryMode(s) {
	case "", QueryDocument:
		return QueryDocument, nil
	case QueryKeyTopics:
		return QueryKeyTopics, nil
	}
	return "", fmt.Errorf("unknown rag query mode %q", s)
}

// RAG summarizes the chunks most similar to the document.
// Each call builds its own index and discards it afterwards.
type RAG struct {
	completer domain.Completer
	prompts   prompt.Resolver
	embedder  domain.Embedder
	chunker   domain.Chunker
	build     vectorstore.Builder
	topK      int
	separator string
	query     QueryMode
}

var _ domain.Summarizer = (*RAG)(nil)

type RAGOption func(*RAG)

// WithChunker replaces the default 500/50 word chunker.
func WithChunker(c domain.Chunker) RAGOption {
	return func(r *RAG) {
		if c != nil {
			r.chunker = c
		}
	}
}

// WithTopK sets how many chunks are retrieved.
func WithTopK(k int) RAGOption {
	return func(r *RAG) { r.topK = k }
}

// WithSeparator sets the string placed between retrieved chunks.
func WithSeparator(sep string) RAGOption {
	return func(r *RAG) { r.separator = sep }
}

// WithIndexBuilder replaces the in-memory index.
func WithIndexBuilder(b vectorstore.Builder) RAGOption {
	return func(r *RAG) {
		if b != nil {
			r.build = b
		}
	}
}

func WithQueryMode(m QueryMode) RAGOption {
	return func(r *RAG) { r.query = m }
}

func NewRAG(c domain.Completer, r prompt.Resolver, emb domain.Embedder, opts ...RAGOption) (*RAG, error) {
	if emb == nil {
		return nil, errors.New("rag: embedder is required")
	}
	def, err := chunker.NewWordChunker(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	if err != nil {
		return nil, err
	}
	s := &RAG{
		completer: c,
		prompts:   r,
		embedder:  emb,
		chunker:   def,
		build:     memory.Builder(),
		topK:      DefaultTopK,
		separator: DefaultSeparator,
		query:     QueryDocument,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.topK <= 0 {
		return nil, fmt.Errorf("rag: top-k must be positive, got %d", s.topK)
	}
	modes := []string{prompt.ModeRAG}
	switch s.query {
	case QueryDocument:
	case QueryKeyTopics:
		modes = append(modes, prompt.ModeKeyTopics)
	default:
		return nil, fmt.Errorf("unknown rag query mode %q", s.query)
	}
	if err := prompt.RequireModes(r, modes...); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RAG) Summarize(ctx context.Context, text string) (string, error) {
	if err := checkInput(text); err != nil {
		return "", err
	}
	log := logger.FromContext(ctx)
	chunks, err := s.chunker.Chunk(text)
	if err != nil {
		return "", err
	}
	idx, err := s.build(ctx, s.embedder, chunks)
	if err != nil {
		return "", err
	}
	query, err := s.retrievalQuery(ctx, text)
	if err != nil {
		return "", err
	}
	hits, err := idx.Query(ctx, query, s.topK)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Chunk.Text
	}
	log.Debug("rag retrieval", "chunks", idx.Len(), "retrieved", len(hits), "query", s.query)
	return generateText(ctx, s.completer, s.prompts, prompt.ModeRAG, strings.Join(parts, s.separator))
}

func (s *RAG) retrievalQuery(ctx context.Context, text string) (string, error) {
	if s.query != QueryKeyTopics {
		return text, nil
	}
	topics, err := generateText(ctx, s.completer, s.prompts, prompt.ModeKeyTopics, text)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(topics) == "" {
		return text, nil
	}
	return topics, nil
}
