package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"docsum/internal/domain"
	"docsum/internal/logger"
	"docsum/internal/vectorstore"
)

const DefaultConcurrency = 4

// Index is an immutable in-memory vector index using brute-force cosine similarity.
// It is built per document and holds the only references to its vectors.
type Index struct {
	embedder domain.Embedder
	chunks   []domain.Chunk
	vectors  [][]float64
	norms    []float64
}

var _ vectorstore.Index = (*Index)(nil)

type buildOptions struct {
	concurrency int
}

type Option func(*buildOptions)

// WithConcurrency bounds parallel per-chunk embedding calls for embedders without batch support.
func WithConcurrency(n int) Option {
	return func(o *buildOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// Builder adapts Build to vectorstore.Builder.
func Builder(opts ...Option) vectorstore.Builder {
	return func(ctx context.Context, emb domain.Embedder, chunks []domain.Chunk) (vectorstore.Index, error) {
		return Build(ctx, emb, chunks, opts...)
	}
}

// Build embeds every chunk and returns the index. Embedders that must be fitted
// are prepared on the chunk texts first. Any failure or malformed vector is
// reported as a *domain.EmbeddingError.
func Build(ctx context.Context, emb domain.Embedder, chunks []domain.Chunk, opts ...Option) (*Index, error) {
	o := buildOptions{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&o)
	}
	if len(chunks) == 0 {
		return nil, &domain.EmbeddingError{Provider: emb.Name(), Err: errors.New("no chunks to index")}
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	if ce, ok := emb.(domain.CorpusEmbedder); ok {
		fitted, err := ce.Prepare(ctx, texts)
		if err != nil {
			return nil, domain.AsEmbeddingError(emb.Name(), err)
		}
		emb = fitted
	}
	vectors, err := embedChunks(ctx, emb, texts, o.concurrency)
	if err != nil {
		return nil, domain.AsEmbeddingError(emb.Name(), err)
	}
	idx := &Index{
		embedder: emb,
		chunks:   append([]domain.Chunk(nil), chunks...),
		vectors:  vectors,
		norms:    make([]float64, len(vectors)),
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if err := validate(v, dim); err != nil {
			return nil, &domain.EmbeddingError{Provider: emb.Name(), Err: fmt.Errorf("chunk %d: %w", i, err)}
		}
		idx.norms[i] = norm(v)
	}
	logger.FromContext(ctx).Debug("similarity index built", "chunks", len(chunks), "dimension", dim, "embedder", emb.Name())
	return idx, nil
}

func embedChunks(ctx context.Context, emb domain.Embedder, texts []string, concurrency int) ([][]float64, error) {
	if b, ok := emb.(domain.BatchEmbedder); ok {
		vecs, err := b.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("got %d vectors for %d chunks", len(vecs), len(texts))
		}
		return vecs, nil
	}
	vecs := make([][]float64, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, text := range texts {
		g.Go(func() error {
			v, err := emb.Embed(gctx, text)
			if err != nil {
				return err
			}
			vecs[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vecs, nil
}

func validate(v []float64, dim int) error {
	if len(v) == 0 {
		return errors.New("empty vector")
	}
	if len(v) != dim {
		return fmt.Errorf("vector dimension %d, want %d", len(v), dim)
	}
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return errors.New("vector has non-finite component")
		}
	}
	return nil
}

// Len returns the number of indexed chunks.
func (s *Index) Len() int { return len(s.chunks) }

// Query embeds text with the index's embedder and returns the k most similar
// chunks by descending cosine similarity. Equal scores keep chunk order.
// k larger than the chunk count returns every chunk.
func (s *Index) Query(ctx context.Context, text string, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("query: k must be positive, got %d", k)
	}
	q, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, domain.AsEmbeddingError(s.embedder.Name(), err)
	}
	if err := validate(q, len(s.vectors[0])); err != nil {
		return nil, &domain.EmbeddingError{Provider: s.embedder.Name(), Err: fmt.Errorf("query: %w", err)}
	}
	return s.Search(q, k), nil
}

// Search ranks the indexed chunks against an already embedded query.
func (s *Index) Search(vector []float64, k int) []domain.SearchResult {
	qn := norm(vector)
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = cosine(s.vectors[i], s.norms[i], vector, qn)
	}
	idxs := argsortDesc(scores)
	k = min(k, len(idxs))
	results := make([]domain.SearchResult, 0, k)
	for _, j := range idxs[:k] {
		results = append(results, domain.SearchResult{Chunk: s.chunks[j], Score: scores[j]})
	}
	return results
}

// cosine is zero when either vector is zero.
func cosine(a []float64, an float64, b []float64, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	return dot(a, b) / (an * bn)
}

func norm(v []float64) float64 { return math.Sqrt(dot(v, v)) }

func dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool { return vals[idxs[i]] > vals[idxs[j]] })
	return idxs
}
