package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadingChunker_TracksHeaderPathStack(t *testing.T) {
	sections := []Section{
		{Type: SectionHeading, Level: 1, Title: "Budget"},
		{Type: SectionParagraph, Text: "overview of the annual budget"},
		{Type: SectionHeading, Level: 2, Title: "Q4"},
		{Type: SectionParagraph, Text: "fourth quarter figures"},
		{Type: SectionHeading, Level: 1, Title: "Appendix"},
		{Type: SectionParagraph, Text: "supporting tables"},
	}

	c := &HeadingChunker{ChunkSize: 1000, ChunkOverlap: 100}
	chunks := c.Chunk(sections, "")

	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"Budget"}, chunks[0].Location.HeaderPath)
	assert.Equal(t, []string{"Budget", "Q4"}, chunks[1].Location.HeaderPath)
	assert.Equal(t, []string{"Appendix"}, chunks[2].Location.HeaderPath)
}

func TestHeadingChunker_ChunkIndexIsDenseAndOrdered(t *testing.T) {
	sections := []Section{
		{Type: SectionHeading, Level: 1, Title: "A"},
		{Type: SectionParagraph, Text: "first"},
		{Type: SectionHeading, Level: 1, Title: "B"},
		{Type: SectionParagraph, Text: "second"},
	}
	c := &HeadingChunker{ChunkSize: 1000, ChunkOverlap: 100}
	chunks := c.Chunk(sections, "")

	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex)
	}
}

func TestHeadingChunker_SkipsEmptySections(t *testing.T) {
	sections := []Section{
		{Type: SectionHeading, Level: 1, Title: "Empty section"},
		{Type: SectionHeading, Level: 1, Title: "Has content"},
		{Type: SectionParagraph, Text: "actual text"},
	}
	c := &HeadingChunker{ChunkSize: 1000, ChunkOverlap: 100}
	chunks := c.Chunk(sections, "")

	require.Len(t, chunks, 1)
	assert.Equal(t, []string{"Has content"}, chunks[0].Location.HeaderPath)
}

func TestGenericChunker_SplitsWholeText(t *testing.T) {
	c := &GenericChunker{ChunkSize: 50, ChunkOverlap: 5}
	chunks := c.Chunk(nil, "this is a medium length piece of unstructured plain text content")
	require.NotEmpty(t, chunks)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex)
	}
}
