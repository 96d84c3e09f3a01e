package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageChunker_CarriesPageNumber(t *testing.T) {
	sections := []Section{
		{Type: SectionPage, Page: 1, Text: "first page text"},
		{Type: SectionPage, Page: 2, Text: "second page text"},
	}
	c := &PageChunker{ChunkSize: 1000, ChunkOverlap: 100}
	chunks := c.Chunk(sections, "")

	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].Location.Page)
	assert.Equal(t, 2, chunks[1].Location.Page)
}

func TestSlideChunker_OneChunkPerShortSlide(t *testing.T) {
	sections := []Section{
		{Type: SectionSlide, Slide: 1, SlideTitle: "Intro", Text: "welcome"},
		{Type: SectionSlide, Slide: 2, SlideTitle: "Agenda", Text: "today's agenda"},
	}
	c := &SlideChunker{ChunkSize: 1000, ChunkOverlap: 100}
	chunks := c.Chunk(sections, "")

	require.Len(t, chunks, 2)
	assert.Equal(t, "Intro", chunks[0].Location.SlideTitle)
	assert.Equal(t, 2, chunks[1].Location.Slide)
}

func TestSlideChunker_SplitsOverlongSlide(t *testing.T) {
	sections := []Section{
		{Type: SectionSlide, Slide: 1, SlideTitle: "Huge", Text: strings.Repeat("word ", 100)},
	}
	c := &SlideChunker{ChunkSize: 50, ChunkOverlap: 5}
	chunks := c.Chunk(sections, "")
	assert.True(t, len(chunks) > 1)
	for _, ch := range chunks {
		assert.Equal(t, "Huge", ch.Location.SlideTitle)
	}
}

func TestSheetChunker_CarriesSheetName(t *testing.T) {
	sections := []Section{
		{Type: SectionSheet, Sheet: "Revenue", Text: "| a | b |\n| 1 | 2 |"},
	}
	c := &SheetChunker{ChunkSize: 1000, ChunkOverlap: 100}
	chunks := c.Chunk(sections, "")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Revenue", chunks[0].Location.Sheet)
}
