package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/filesearch/engine/internal/chunk"
)

var markdownHeadingPattern = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+?)[ \t]*$`)

// Markdown parses heading hierarchy out of a Markdown file into Heading
// and Paragraph sections, leaving the header-path-stack bookkeeping to
// the HeadingChunker.
func Markdown(path string, content []byte) Result {
	text, err := decodeText(content)
	if err != nil {
		return Result{Err: err}
	}

	lines := strings.Split(text, "\n")
	var sections []chunk.Section
	var para strings.Builder

	flush := func() {
		if t := strings.TrimSpace(para.String()); t != "" {
			sections = append(sections, chunk.Section{Type: chunk.SectionParagraph, Text: t})
		}
		para.Reset()
	}

	for _, line := range lines {
		if m := markdownHeadingPattern.FindStringSubmatch(line); m != nil {
			flush()
			sections = append(sections, chunk.Section{
				Type:  chunk.SectionHeading,
				Level: len(m[1]),
				Title: strings.TrimSpace(m[2]),
			})
			continue
		}
		para.WriteString(line)
		para.WriteString("\n")
	}
	flush()

	return Result{Text: text, Sections: sections}
}

// Text wraps the whole file as a single unstructured paragraph section,
// per the generic fallback chunking strategy.
func Text(path string, content []byte) Result {
	text, err := decodeText(content)
	if err != nil {
		return Result{Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return Result{Text: ""}
	}
	return Result{
		Text:     text,
		Sections: []chunk.Section{{Type: chunk.SectionParagraph, Text: text}},
	}
}

// decodeText tries UTF-8 first; if the bytes are not valid UTF-8 it
// falls back to Windows-1252, the most common legacy encoding for
// Western-language office documents and plain-text exports.
func decodeText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
