package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown_ProducesHeadingAndParagraphSections(t *testing.T) {
	src := "# Title\n\nIntro paragraph.\n\n## Sub\n\nMore text.\n"
	res := Markdown("notes.md", []byte(src))

	require.NoError(t, res.Err)
	require.Len(t, res.Sections, 4)
	assert.Equal(t, "Title", res.Sections[0].Title)
	assert.Equal(t, 1, res.Sections[0].Level)
	assert.Equal(t, "Intro paragraph.", res.Sections[1].Text)
	assert.Equal(t, "Sub", res.Sections[2].Title)
	assert.Equal(t, 2, res.Sections[2].Level)
}

func TestText_SingleBlobSection(t *testing.T) {
	res := Text("notes.txt", []byte("just some plain text"))
	require.NoError(t, res.Err)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, "just some plain text", res.Sections[0].Text)
}

func TestText_EmptyFileProducesNoSections(t *testing.T) {
	res := Text("empty.txt", []byte("   \n  "))
	require.NoError(t, res.Err)
	assert.Empty(t, res.Sections)
	assert.Empty(t, res.Text)
}
