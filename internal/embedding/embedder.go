package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"docsum/internal/domain"
	"docsum/internal/resilience"
)

const DefaultCacheSize = 4096

// Cached memoizes vectors of a stateless embedder by exact text.
// Embedders that must be fitted per corpus are not safe to cache this way.
type Cached struct {
	inner domain.Embedder
	cache *lru.Cache[string, []float64]
}

var _ domain.BatchEmbedder = (*Cached)(nil)

func NewCached(inner domain.Embedder, size int) (*Cached, error) {
	if _, ok := inner.(domain.CorpusEmbedder); ok {
		return nil, fmt.Errorf("embedder %s depends on its corpus and cannot be cached", inner.Name())
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: c}, nil
}

func (c *Cached) Name() string { return c.inner.Name() }

func (c *Cached) Embed(ctx context.Context, text string) ([]float64, error) {
	key := cacheKey(text)
	if v, ok := c.cache.Get(key); ok {
		return clone(v), nil
	}
	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, clone(v))
	return v, nil
}

// EmbedBatch serves hits from the cache and sends only the misses downstream.
func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	var missIdx []int
	var missTexts []string
	for i, t := range texts {
		if v, ok := c.cache.Get(cacheKey(t)); ok {
			out[i] = clone(v)
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	if len(missTexts) == 0 {
		return out, nil
	}
	vecs, err := embedAll(ctx, c.inner, missTexts)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		c.cache.Add(cacheKey(missTexts[j]), clone(vecs[j]))
	}
	return out, nil
}

// Len reports the number of cached vectors.
func (c *Cached) Len() int { return c.cache.Len() }

// Guarded applies a resilience policy to every embedding round-trip.
type Guarded struct {
	inner  domain.Embedder
	policy resilience.Policy
}

var _ domain.BatchEmbedder = (*Guarded)(nil)

func NewGuarded(inner domain.Embedder, policy resilience.Policy) *Guarded {
	return &Guarded{inner: inner, policy: policy}
}

func (g *Guarded) Name() string { return g.inner.Name() }

func (g *Guarded) Embed(ctx context.Context, text string) ([]float64, error) {
	var out []float64
	err := resilience.Do(ctx, g.policy, func(ctx context.Context) error {
		v, err := g.inner.Embed(ctx, text)
		if err != nil {
			return domain.AsEmbeddingError(g.inner.Name(), err)
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, domain.AsEmbeddingError(g.inner.Name(), err)
	}
	return out, nil
}

func (g *Guarded) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	var out [][]float64
	err := resilience.Do(ctx, g.policy, func(ctx context.Context) error {
		v, err := embedAll(ctx, g.inner, texts)
		if err != nil {
			return domain.AsEmbeddingError(g.inner.Name(), err)
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, domain.AsEmbeddingError(g.inner.Name(), err)
	}
	return out, nil
}

func embedAll(ctx context.Context, e domain.Embedder, texts []string) ([][]float64, error) {
	if b, ok := e.(domain.BatchEmbedder); ok {
		return b.EmbedBatch(ctx, texts)
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
