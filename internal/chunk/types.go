// Package chunk turns an extracted document into an ordered list of
// retrievable text spans carrying enough location metadata to explain a
// search hit back to the user.
package chunk

// Chunking defaults. The generic character-window splitter targets
// chunk_size characters of overlap chunk_overlap; both are configurable
// per engine instance.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100

	DefaultExcelMaxRows = 1000
	DefaultExcelMaxCols = 50
)

// Location pinpoints where a chunk's text came from within its source
// document. Every field is optional; only the fields relevant to the
// source FileType are populated.
type Location struct {
	Page       int      `json:"page,omitempty"`
	Slide      int      `json:"slide,omitempty"`
	SlideTitle string   `json:"slide_title,omitempty"`
	Sheet      string   `json:"sheet,omitempty"`
	RowStart   int      `json:"row_start,omitempty"`
	RowEnd     int      `json:"row_end,omitempty"`
	HeaderPath []string `json:"header_path,omitempty"`
}

// Chunk is one ordered, contiguous span of text produced by a Chunker,
// carrying the location metadata needed to build an Evidence at search
// time. ChunkID and embeddings are assigned by the caller (the indexer),
// not by the chunker itself.
type Chunk struct {
	ChunkIndex int
	Text       string
	Location   Location
}

// SectionType names the kind of structural element an Extractor emits.
type SectionType string

const (
	SectionPage      SectionType = "page"
	SectionSlide     SectionType = "slide"
	SectionSheet     SectionType = "sheet"
	SectionHeading   SectionType = "heading"
	SectionParagraph SectionType = "paragraph"
	SectionTable     SectionType = "table"
)

// Section is one typed element of an extracted document, as produced by
// an Extractor and consumed by a Chunker. Not every field applies to
// every SectionType; see the per-type extractor for which fields it
// populates.
type Section struct {
	Type SectionType
	Text string

	// Heading-specific.
	Level int
	Title string

	// Page/slide/sheet-specific.
	Page       int
	Slide      int
	SlideTitle string
	Sheet      string
	RowStart   int
	RowEnd     int
}

// Chunker splits an extracted document's sections into ordered chunks.
// Implementations are pure and stateless; the dispatch between chunking
// strategies happens in NewForFileType.
type Chunker interface {
	Chunk(sections []Section, text string) []Chunk
}
