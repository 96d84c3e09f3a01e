package chunk

import "strings"

// HeadingChunker implements the heading-based strategy used for Word and
// Markdown documents: a mutable header-path stack is maintained while
// walking sections; a heading at level L pops the stack to depth L-1 and
// pushes its own title, and content sections attach the current stack as
// HeaderPath. It is grounded on the teacher's parseSections header-stack
// bookkeeping, generalized from a single regex pass over raw Markdown
// text to a walk over the Extractor's typed Section list so the same
// chunker serves Word and Markdown alike.
type HeadingChunker struct {
	ChunkSize    int
	ChunkOverlap int
}

func (h *HeadingChunker) Chunk(sections []Section, _ string) []Chunk {
	size, overlap := h.ChunkSize, h.ChunkOverlap
	if size <= 0 {
		size = DefaultChunkSize
	}

	stack := make([]string, 0, 6)
	var chunks []Chunk
	var buf strings.Builder

	flush := func(headerPath []string) {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text == "" {
			return
		}
		path := append([]string(nil), headerPath...)
		for _, w := range splitWindow(text, size, overlap) {
			chunks = append(chunks, Chunk{
				Text:     w,
				Location: Location{HeaderPath: path},
			})
		}
	}

	currentPath := func() []string { return append([]string(nil), stack...) }

	for _, sec := range sections {
		switch sec.Type {
		case SectionHeading:
			flush(currentPath())
			level := sec.Level
			if level < 1 {
				level = 1
			}
			if level > len(stack) {
				for len(stack) < level-1 {
					stack = append(stack, "")
				}
				stack = append(stack, sec.Title)
			} else {
				stack = stack[:level-1]
				stack = append(stack, sec.Title)
			}
		case SectionTable:
			flush(currentPath())
			path := currentPath()
			for _, w := range splitWindow(sec.Text, size, overlap) {
				chunks = append(chunks, Chunk{Text: w, Location: Location{HeaderPath: path}})
			}
		default:
			if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
			buf.WriteString(sec.Text)
		}
	}
	flush(currentPath())

	for i := range chunks {
		chunks[i].ChunkIndex = i
	}
	return chunks
}

// GenericChunker is the fallback strategy for TEXT and OTHER file types:
// plain character-window splitting over the whole extracted text with no
// location metadata beyond chunk order.
type GenericChunker struct {
	ChunkSize    int
	ChunkOverlap int
}

func (g *GenericChunker) Chunk(_ []Section, text string) []Chunk {
	size, overlap := g.ChunkSize, g.ChunkOverlap
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks []Chunk
	for i, w := range splitWindow(text, size, overlap) {
		chunks = append(chunks, Chunk{ChunkIndex: i, Text: w})
	}
	return chunks
}
