package vectorstore

import (
	"context"

	"docsum/internal/domain"
)

// Index answers nearest-neighbour queries over the chunks it was built from.
type Index interface {
	Query(ctx context.Context, text string, k int) ([]domain.SearchResult, error)
	Len() int
}

// Builder constructs an Index over chunks using an embedding capability.
type Builder func(ctx context.Context, embedder domain.Embedder, chunks []domain.Chunk) (Index, error)
