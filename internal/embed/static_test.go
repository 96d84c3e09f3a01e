package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticEmbedder_Dimensions_DefaultsWhenNonPositive(t *testing.T) {
	e := NewStaticEmbedder(0)
	assert.Equal(t, DefaultStaticDimensions, e.Dimensions())

	e2 := NewStaticEmbedder(128)
	assert.Equal(t, 128, e2.Dimensions())
}

func TestStaticEmbedder_EncodeBatch_ProducesUnitVectors(t *testing.T) {
	e := NewStaticEmbedder(64)

	vecs, err := e.EncodeBatch(context.Background(), []string{"invoice payment due", "unrelated weather report"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	for _, v := range vecs {
		require.Len(t, v, 64)
		var sumSq float64
		for _, x := range v {
			sumSq += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sumSq), 1e-5)
	}
}

func TestStaticEmbedder_EncodeBatch_EmptyInput(t *testing.T) {
	e := NewStaticEmbedder(32)

	vecs, err := e.EncodeBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestStaticEmbedder_SimilarTextsAreCloserThanUnrelatedTexts(t *testing.T) {
	e := NewStaticEmbedder(256)

	vecs, err := e.EncodeBatch(context.Background(), []string{
		"quarterly invoice payment report",
		"invoice payment report for the quarter",
		"recipe for baking sourdough bread",
	})
	require.NoError(t, err)

	simRelated := dot(vecs[0], vecs[1])
	simUnrelated := dot(vecs[0], vecs[2])
	assert.Greater(t, simRelated, simUnrelated)
}

func TestStaticEmbedder_Available_AlwaysTrue(t *testing.T) {
	e := NewStaticEmbedder(0)
	assert.True(t, e.Available(context.Background()))
}

func TestTokenizeWords_SplitsOnNonAlphanumeric(t *testing.T) {
	got := tokenizeWords("Invoice-2024_Q3.docx")
	assert.Equal(t, []string{"invoice", "2024", "q3", "docx"}, got)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
