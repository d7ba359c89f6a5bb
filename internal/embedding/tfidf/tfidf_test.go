package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsum/internal/domain"
)

func TestEmbedder_Prepare(t *testing.T) {
	base := NewEmbedder()

	t.Run("Should return a fitted copy and leave the receiver unprepared", func(t *testing.T) {
		fitted, err := base.Prepare(t.Context(), []string{"cats purr softly", "dogs bark loudly"})
		require.NoError(t, err)
		assert.Equal(t, 6, fitted.(*Embedder).Dimension())

		_, err = base.Embed(t.Context(), "cats")
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})

	t.Run("Should reject an empty corpus", func(t *testing.T) {
		_, err := base.Prepare(t.Context(), nil)
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})

	t.Run("Should reject a corpus of stopwords", func(t *testing.T) {
		_, err := base.Prepare(t.Context(), []string{"the and of", "is it"})
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})
}

func TestEmbedder_Embed(t *testing.T) {
	fitted, err := NewEmbedder().Prepare(t.Context(), []string{
		"the solar panel converts sunlight",
		"wind turbines convert wind",
		"sunlight and wind are renewable",
	})
	require.NoError(t, err)

	t.Run("Should produce unit vectors", func(t *testing.T) {
		v, err := fitted.Embed(t.Context(), "solar sunlight")
		require.NoError(t, err)
		norm := 0.0
		for _, x := range v {
			norm += x * x
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
	})

	t.Run("Should map unknown text to the zero vector", func(t *testing.T) {
		v, err := fitted.Embed(t.Context(), "quantum chromodynamics")
		require.NoError(t, err)
		for _, x := range v {
			assert.Zero(t, x)
		}
	})

	t.Run("Should be case insensitive", func(t *testing.T) {
		a, _ := fitted.Embed(t.Context(), "Wind TURBINES")
		b, _ := fitted.Embed(t.Context(), "wind turbines")
		assert.Equal(t, a, b)
	})
}
