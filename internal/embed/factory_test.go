package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StaticProvider_ReturnsStaticEmbedder(t *testing.T) {
	e, err := New(context.Background(), Config{Provider: ProviderStatic, StaticDimensions: 128})
	require.NoError(t, err)
	require.NotNil(t, e)

	_, ok := e.(*StaticEmbedder)
	assert.True(t, ok)
	assert.Equal(t, 128, e.Dimensions())
}

func TestNew_UnknownProvider_ReturnsError(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "nonexistent"})
	assert.Error(t, err)
}

func TestNew_NoProviderFallsBackToStatic_WhenOllamaUnreachable(t *testing.T) {
	e, err := New(context.Background(), Config{OllamaBaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	require.NotNil(t, e)

	assert.True(t, Degraded(e))
}

func TestDegraded_TrueOnlyForStaticEmbedder(t *testing.T) {
	assert.True(t, Degraded(NewStaticEmbedder(0)))
	assert.False(t, Degraded(&OllamaEmbedder{}))
}
