package chunk

// PageChunker implements the page-based strategy for PDF documents: one
// virtual text stream per page section, split within the page using the
// generic window splitter, with every resulting chunk carrying that
// page's number.
type PageChunker struct {
	ChunkSize    int
	ChunkOverlap int
}

func (p *PageChunker) Chunk(sections []Section, _ string) []Chunk {
	size, overlap := p.ChunkSize, p.ChunkOverlap
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks []Chunk
	for _, sec := range sections {
		if sec.Type != SectionPage {
			continue
		}
		for _, w := range splitWindow(sec.Text, size, overlap) {
			chunks = append(chunks, Chunk{Text: w, Location: Location{Page: sec.Page}})
		}
	}
	for i := range chunks {
		chunks[i].ChunkIndex = i
	}
	return chunks
}

// SlideChunker implements the slide-based strategy for PowerPoint
// documents: one chunk per slide since slides are short, carrying Slide
// and SlideTitle. A slide whose text still exceeds chunk_size is split
// further, each fragment keeping the same slide identity.
type SlideChunker struct {
	ChunkSize    int
	ChunkOverlap int
}

func (s *SlideChunker) Chunk(sections []Section, _ string) []Chunk {
	size, overlap := s.ChunkSize, s.ChunkOverlap
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks []Chunk
	for _, sec := range sections {
		if sec.Type != SectionSlide {
			continue
		}
		loc := Location{Slide: sec.Slide, SlideTitle: sec.SlideTitle}
		if len([]rune(sec.Text)) <= size {
			chunks = append(chunks, Chunk{Text: sec.Text, Location: loc})
			continue
		}
		for _, w := range splitWindow(sec.Text, size, overlap) {
			chunks = append(chunks, Chunk{Text: w, Location: loc})
		}
	}
	for i := range chunks {
		chunks[i].ChunkIndex = i
	}
	return chunks
}

// SheetChunker implements the sheet-based strategy for Excel workbooks:
// one chunk per worksheet when it fits chunk_size, otherwise the sheet's
// rendered text is split further, every fragment carrying the sheet name.
type SheetChunker struct {
	ChunkSize    int
	ChunkOverlap int
}

func (s *SheetChunker) Chunk(sections []Section, _ string) []Chunk {
	size, overlap := s.ChunkSize, s.ChunkOverlap
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks []Chunk
	for _, sec := range sections {
		if sec.Type != SectionSheet {
			continue
		}
		loc := Location{Sheet: sec.Sheet, RowStart: sec.RowStart, RowEnd: sec.RowEnd}
		if len([]rune(sec.Text)) <= size {
			chunks = append(chunks, Chunk{Text: sec.Text, Location: loc})
			continue
		}
		for _, w := range splitWindow(sec.Text, size, overlap) {
			chunks = append(chunks, Chunk{Text: w, Location: loc})
		}
	}
	for i := range chunks {
		chunks[i].ChunkIndex = i
	}
	return chunks
}
