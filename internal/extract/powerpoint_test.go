package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPptx(t *testing.T, slides map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range slides {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const slideWithTitleAndBody = `<p:sld><p:cSld><p:spTree>
	<p:sp><p:nvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr><p:txBody><a:p><a:r><a:t>Quarterly Results</a:t></a:r></a:p></p:txBody></p:sp>
	<p:sp><p:nvSpPr><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr><p:txBody><a:p><a:r><a:t>Revenue is up 10%.</a:t></a:r></a:p></p:txBody></p:sp>
</p:spTree></p:cSld></p:sld>`

func TestPowerPoint_ExtractsTitleAndBody(t *testing.T) {
	content := buildPptx(t, map[string]string{
		"ppt/slides/slide1.xml": slideWithTitleAndBody,
	})

	res := PowerPoint("deck.pptx", content)
	require.NoError(t, res.Err)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, 1, res.Sections[0].Slide)
	assert.Equal(t, "Quarterly Results", res.Sections[0].SlideTitle)
	assert.Contains(t, res.Sections[0].Text, "Quarterly Results")
	assert.Contains(t, res.Sections[0].Text, "Revenue is up 10%.")
	assert.Equal(t, "1", res.Metadata["slide_count"])
}

func TestPowerPoint_OrdersSlidesNumerically(t *testing.T) {
	slide := func(text string) string {
		return `<p:sld><p:cSld><p:spTree><p:sp><p:nvSpPr><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
	}
	content := buildPptx(t, map[string]string{
		"ppt/slides/slide2.xml": slide("second"),
		"ppt/slides/slide10.xml": slide("tenth"),
		"ppt/slides/slide1.xml": slide("first"),
	})

	res := PowerPoint("ordered.pptx", content)
	require.NoError(t, res.Err)
	require.Len(t, res.Sections, 3)
	assert.Equal(t, 1, res.Sections[0].Slide)
	assert.Contains(t, res.Sections[0].Text, "first")
	assert.Equal(t, 2, res.Sections[1].Slide)
	assert.Contains(t, res.Sections[1].Text, "second")
	assert.Equal(t, 3, res.Sections[2].Slide)
	assert.Contains(t, res.Sections[2].Text, "tenth")
}

func TestPowerPoint_SkipsEmptySlides(t *testing.T) {
	empty := `<p:sld><p:cSld><p:spTree></p:spTree></p:cSld></p:sld>`
	content := buildPptx(t, map[string]string{
		"ppt/slides/slide1.xml": empty,
		"ppt/slides/slide2.xml": slideWithTitleAndBody,
	})

	res := PowerPoint("mixed.pptx", content)
	require.NoError(t, res.Err)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, 2, res.Sections[0].Slide)
}

func TestPowerPoint_IgnoresRelsFiles(t *testing.T) {
	content := buildPptx(t, map[string]string{
		"ppt/slides/slide1.xml":             slideWithTitleAndBody,
		"ppt/slides/_rels/slide1.xml.rels": "<Relationships/>",
	})

	res := PowerPoint("rels.pptx", content)
	require.NoError(t, res.Err)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, "1", res.Metadata["slide_count"])
}

func TestPowerPoint_InvalidZipReturnsError(t *testing.T) {
	res := PowerPoint("bad.pptx", []byte("not a zip"))
	assert.Error(t, res.Err)
}

func TestPowerPoint_NoSlidesReturnsEmptyResult(t *testing.T) {
	content := buildPptx(t, map[string]string{
		"ppt/presentation.xml": "<presentation/>",
	})

	res := PowerPoint("empty.pptx", content)
	require.NoError(t, res.Err)
	assert.Empty(t, res.Sections)
	assert.Equal(t, "0", res.Metadata["slide_count"])
}
