package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLexicalStore(t *testing.T) *BleveLexicalStore {
	t.Helper()
	s, err := NewBleveLexicalStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBleveLexicalStore_SearchFindsChunkLevelDocument(t *testing.T) {
	s := newTestLexicalStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddDocument(ctx, LexicalDocument{
		DocID:  "c1",
		FileID: "f1",
		Tokens: []string{"quarterly", "budget", "plan"},
	}))

	results, err := s.Search(ctx, []string{"budget"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].DocID)
	assert.Equal(t, "f1", results[0].FileID)
	assert.False(t, results[0].IsFileLevel)
}

func TestBleveLexicalStore_SearchNormalizesScoresToUnitMax(t *testing.T) {
	s := newTestLexicalStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddDocuments(ctx, []LexicalDocument{
		{DocID: "c1", FileID: "f1", Tokens: []string{"budget", "budget", "plan"}},
		{DocID: "c2", FileID: "f2", Tokens: []string{"budget"}},
	}))

	results, err := s.Search(ctx, []string{"budget"}, 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	var maxScore float64
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	assert.InDelta(t, 1.0, maxScore, 0.0001)
}

func TestBleveLexicalStore_RemoveByFile_DropsAllItsDocuments(t *testing.T) {
	s := newTestLexicalStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddDocuments(ctx, []LexicalDocument{
		{DocID: "c1", FileID: "f1", Tokens: []string{"alpha"}},
		{DocID: "c2", FileID: "f1", Tokens: []string{"beta"}},
		{DocID: "c3", FileID: "f2", Tokens: []string{"alpha"}},
	}))
	require.NoError(t, s.RemoveByFile(ctx, "f1"))

	results, err := s.Search(ctx, []string{"alpha"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f2", results[0].FileID)
}

func TestBleveLexicalStore_FileLevelDocumentFlagPreserved(t *testing.T) {
	s := newTestLexicalStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddDocument(ctx, LexicalDocument{
		DocID:       "f1",
		FileID:      "f1",
		Tokens:      []string{"invoice", "2026", "pdf"},
		IsFileLevel: true,
	}))

	results, err := s.Search(ctx, []string{"invoice"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsFileLevel)
}

func TestBleveLexicalStore_EmptyQueryReturnsNoResults(t *testing.T) {
	s := newTestLexicalStore(t)
	results, err := s.Search(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBleveLexicalStore_Compact_ClearsTombstones(t *testing.T) {
	s := newTestLexicalStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddDocument(ctx, LexicalDocument{DocID: "c1", FileID: "f1", Tokens: []string{"alpha"}}))
	require.NoError(t, s.RemoveByFile(ctx, "f1"))
	require.NoError(t, s.Compact(ctx))
	assert.Empty(t, s.tombstone)
}
