package memory

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsum/internal/domain"
	"docsum/internal/embedding/tfidf"
	"docsum/internal/testutil"
)

func chunksOf(texts ...string) []domain.Chunk {
	out := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		out[i] = domain.Chunk{Index: i, Text: t}
	}
	return out
}

func TestBuild(t *testing.T) {
	t.Run("Should embed every chunk once", func(t *testing.T) {
		emb := testutil.NewEmbedder(16)
		idx, err := Build(t.Context(), emb, chunksOf("a b", "c d", "e f"))
		require.NoError(t, err)
		assert.Equal(t, 3, idx.Len())
		assert.ElementsMatch(t, []string{"a b", "c d", "e f"}, emb.Texts())
	})

	t.Run("Should use a single batch round-trip when supported", func(t *testing.T) {
		emb := testutil.BatchEmbedder{Embedder: testutil.NewEmbedder(16)}
		_, err := Build(t.Context(), emb, chunksOf("a", "b", "c"))
		require.NoError(t, err)
		assert.Equal(t, 1, emb.BatchCalls())
	})

	t.Run("Should fit corpus embedders without mutating them", func(t *testing.T) {
		base := tfidf.NewEmbedder()
		idx, err := Build(t.Context(), base, chunksOf("solar power plants", "wind farms offshore"))
		require.NoError(t, err)
		res, err := idx.Query(t.Context(), "offshore wind", 1)
		require.NoError(t, err)
		assert.Equal(t, "wind farms offshore", res[0].Chunk.Text)

		_, err = base.Embed(t.Context(), "x")
		assert.Error(t, err)
	})

	t.Run("Should surface embedder failures as EmbeddingError", func(t *testing.T) {
		emb := testutil.NewEmbedder(4)
		emb.Err = errors.New("unreachable")
		_, err := Build(t.Context(), emb, chunksOf("a", "b"))
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})

	t.Run("Should reject malformed vectors", func(t *testing.T) {
		cases := map[string]func(string) []float64{
			"ragged": func(s string) []float64 {
				if s == "b" {
					return []float64{1}
				}
				return []float64{1, 2}
			},
			"nan":   func(string) []float64 { return []float64{math.NaN(), 1} },
			"empty": func(string) []float64 { return []float64{} },
		}
		for name, fn := range cases {
			t.Run(name, func(t *testing.T) {
				emb := testutil.NewEmbedder(2)
				emb.Override = fn
				_, err := Build(t.Context(), emb, chunksOf("a", "b"))
				assert.ErrorIs(t, err, domain.ErrEmbedding)
			})
		}
	})

	t.Run("Should reject an empty chunk list", func(t *testing.T) {
		_, err := Build(t.Context(), testutil.NewEmbedder(2), nil)
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})

	t.Run("Should bound concurrent embedding calls", func(t *testing.T) {
		var inFlight, peak atomic.Int32
		emb := &slowEmbedder{inFlight: &inFlight, peak: &peak}
		_, err := Build(t.Context(), emb, chunksOf("a", "b", "c", "d", "e", "f"), WithConcurrency(2))
		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})
}

type slowEmbedder struct {
	inFlight, peak *atomic.Int32
}

func (s *slowEmbedder) Name() string { return "slow" }

func (s *slowEmbedder) Embed(context.Context, string) ([]float64, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return []float64{1, 0}, nil
}

func TestIndex_Query(t *testing.T) {
	vectors := map[string][]float64{
		"alpha": {1, 0},
		"beta":  {0.9, 0.1},
		"gamma": {0, 1},
		"delta": {1, 0},
		"q":     {1, 0},
	}
	emb := testutil.NewEmbedder(2)
	emb.Override = func(s string) []float64 { return vectors[s] }
	idx, err := Build(t.Context(), emb, chunksOf("alpha", "beta", "gamma", "delta"))
	require.NoError(t, err)

	t.Run("Should rank by descending similarity with ties in chunk order", func(t *testing.T) {
		res, err := idx.Query(t.Context(), "q", 3)
		require.NoError(t, err)
		require.Len(t, res, 3)
		assert.Equal(t, "alpha", res[0].Chunk.Text)
		assert.Equal(t, "delta", res[1].Chunk.Text)
		assert.Equal(t, "beta", res[2].Chunk.Text)
		assert.InDelta(t, 1.0, res[0].Score, 1e-9)
	})

	t.Run("Should return all chunks when k exceeds the count", func(t *testing.T) {
		a, err := idx.Query(t.Context(), "q", 10)
		require.NoError(t, err)
		b, err := idx.Query(t.Context(), "q", 4)
		require.NoError(t, err)
		assert.Len(t, a, 4)
		assert.Equal(t, b, a)
	})

	t.Run("Should reject non-positive k", func(t *testing.T) {
		_, err := idx.Query(t.Context(), "q", 0)
		assert.Error(t, err)
	})

	t.Run("Should keep chunk order for a zero query vector", func(t *testing.T) {
		vectors["zero"] = []float64{0, 0}
		res, err := idx.Query(t.Context(), "zero", 4)
		require.NoError(t, err)
		for i, r := range res {
			assert.Equal(t, i, r.Chunk.Index)
		}
	})
}
