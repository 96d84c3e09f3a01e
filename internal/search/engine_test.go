package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesearch/engine/internal/embed"
	"github.com/filesearch/engine/internal/index"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openTestEngine(t *testing.T, dims int, embedder *embed.StaticEmbedder) *Engine {
	t.Helper()
	dataDir := t.TempDir()
	var e embed.Embedder
	if embedder != nil {
		e = embedder
	}
	eng, err := Open(dataDir, Config{Dimensions: dims, Embedder: e})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestEngine_OpenTwiceInSameDirFails(t *testing.T) {
	dataDir := t.TempDir()
	e1, err := Open(dataDir, Config{Dimensions: 8})
	require.NoError(t, err)
	defer e1.Close()

	_, err = Open(dataDir, Config{Dimensions: 8})
	assert.Error(t, err)
}

func TestEngine_HybridSearchRanksContentAboveLexicalOnly(t *testing.T) {
	eng := openTestEngine(t, 16, embed.NewStaticEmbedder(16))
	corpusDir := t.TempDir()
	writeTestFile(t, corpusDir, "a.txt", "quarterly budget forecast for the finance org")
	writeTestFile(t, corpusDir, "b.txt", "marketing strategy and brand positioning")
	writeTestFile(t, corpusDir, "project_budget_2025.zip", "opaque archive bytes")

	_, err := eng.Index(context.Background(), []string{corpusDir}, index.Options{}, nil)
	require.NoError(t, err)

	resp, err := eng.Search(context.Background(), "budget forecast", Options{})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Results)
	assert.False(t, resp.Degraded)
	top := resp.Results[0]
	assert.Equal(t, "a.txt", filepath.Base(top.Path))
	assert.NotEmpty(t, top.Evidences)
}

func TestEngine_MetadataOnlyFileScoresBelowDecayCeiling(t *testing.T) {
	eng := openTestEngine(t, 16, embed.NewStaticEmbedder(16))
	corpusDir := t.TempDir()
	writeTestFile(t, corpusDir, "project_budget_2025.zip", "opaque")

	_, err := eng.Index(context.Background(), []string{corpusDir}, index.Options{}, nil)
	require.NoError(t, err)

	resp, err := eng.Search(context.Background(), "budget 2025", Options{})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	r := resp.Results[0]
	assert.Equal(t, MatchLexical, r.MatchType)
	assert.False(t, r.ContentAvailable)
	assert.Empty(t, r.Evidences)
	undecayedCeiling := 1.0 / 61.0
	assert.LessOrEqual(t, r.Score, undecayedCeiling*0.4+1e-9)
}

func TestEngine_DegradedModeWithoutEmbedder(t *testing.T) {
	eng := openTestEngine(t, 16, nil)
	corpusDir := t.TempDir()
	writeTestFile(t, corpusDir, "a.txt", "quarterly budget forecast")

	_, err := eng.Index(context.Background(), []string{corpusDir}, index.Options{}, nil)
	require.NoError(t, err)

	resp, err := eng.Search(context.Background(), "budget", Options{})
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	require.NotEmpty(t, resp.Results)
	for _, r := range resp.Results {
		assert.Equal(t, MatchLexical, r.MatchType)
	}
}

func TestEngine_EmptyQueryReturnsEmptyResponseNoError(t *testing.T) {
	eng := openTestEngine(t, 16, embed.NewStaticEmbedder(16))
	resp, err := eng.Search(context.Background(), "   ", Options{})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestEngine_ClearWipesAllStores(t *testing.T) {
	eng := openTestEngine(t, 16, embed.NewStaticEmbedder(16))
	corpusDir := t.TempDir()
	writeTestFile(t, corpusDir, "a.txt", "quarterly budget forecast")

	_, err := eng.Index(context.Background(), []string{corpusDir}, index.Options{}, nil)
	require.NoError(t, err)

	require.NoError(t, eng.Clear())

	resp, err := eng.Search(context.Background(), "budget", Options{})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, eng.manifest.Count())
}

func TestEngine_DeletedFileDisappearsFromSearch(t *testing.T) {
	eng := openTestEngine(t, 16, embed.NewStaticEmbedder(16))
	corpusDir := t.TempDir()
	path := writeTestFile(t, corpusDir, "old.txt", "legacy report notes")

	_, err := eng.Index(context.Background(), []string{corpusDir}, index.Options{}, nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	_, err = eng.Index(context.Background(), []string{corpusDir}, index.Options{}, nil)
	require.NoError(t, err)

	resp, err := eng.Search(context.Background(), "legacy report", Options{})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}
