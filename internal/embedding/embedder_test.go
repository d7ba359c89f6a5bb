package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsum/internal/domain"
	"docsum/internal/embedding/tfidf"
	"docsum/internal/resilience"
	"docsum/internal/testutil"
)

func TestCached(t *testing.T) {
	t.Run("Should hit the underlying embedder once per text", func(t *testing.T) {
		fake := testutil.NewEmbedder(8)
		c, err := NewCached(fake, 16)
		require.NoError(t, err)

		a, err := c.Embed(t.Context(), "hello world")
		require.NoError(t, err)
		b, err := c.Embed(t.Context(), "hello world")
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.Equal(t, 1, fake.Calls())
		assert.Equal(t, 1, c.Len())
	})

	t.Run("Should not let callers mutate cached vectors", func(t *testing.T) {
		c, err := NewCached(testutil.NewEmbedder(4), 16)
		require.NoError(t, err)
		v, _ := c.Embed(t.Context(), "x")
		v[0] = 99
		w, _ := c.Embed(t.Context(), "x")
		assert.NotEqual(t, 99.0, w[0])
	})

	t.Run("Should send only misses in a batch", func(t *testing.T) {
		fake := testutil.BatchEmbedder{Embedder: testutil.NewEmbedder(4)}
		c, err := NewCached(fake, 16)
		require.NoError(t, err)
		_, err = c.Embed(t.Context(), "a")
		require.NoError(t, err)

		vecs, err := c.EmbedBatch(t.Context(), []string{"a", "b", "c"})
		require.NoError(t, err)
		assert.Len(t, vecs, 3)
		assert.Equal(t, []string{"a", "b", "c"}, fake.Texts())
		assert.Equal(t, 1, fake.BatchCalls())
	})

	t.Run("Should refuse corpus-fitted embedders", func(t *testing.T) {
		_, err := NewCached(tfidf.NewEmbedder(), 16)
		assert.Error(t, err)
	})
}

func TestGuarded(t *testing.T) {
	policy := resilience.Policy{Timeout: time.Second, Retries: 1, Backoff: time.Millisecond}

	t.Run("Should wrap failures as EmbeddingError", func(t *testing.T) {
		fake := testutil.NewEmbedder(4)
		fake.Err = errors.New("connection refused")
		g := NewGuarded(fake, policy)

		_, err := g.Embed(t.Context(), "x")
		var ee *domain.EmbeddingError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, "fake", ee.Provider)
		assert.Equal(t, 1, fake.Calls())
	})

	t.Run("Should retry a transient failure once", func(t *testing.T) {
		fake := testutil.NewEmbedder(4)
		fake.Err = &domain.EmbeddingError{Retryable: true, Err: errors.New("429")}
		g := NewGuarded(fake, policy)

		_, err := g.EmbedBatch(t.Context(), []string{"x"})
		require.ErrorIs(t, err, domain.ErrEmbedding)
		assert.Equal(t, 2, fake.Calls())
	})

	t.Run("Should surface caller cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := NewGuarded(testutil.NewEmbedder(4), policy).Embed(ctx, "x")
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})
}
