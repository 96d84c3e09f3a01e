package chunk

import "github.com/filesearch/engine/internal/classify"

// Options configures the dispatched Chunker's character-window behavior;
// it applies uniformly across strategies, since only the generic
// splitter's size/overlap are user-tunable per §6 of the specification.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewForFileType returns the Chunker strategy for ft, matching the
// per-type dispatch table: page-based for PDF, slide-based for
// PowerPoint, sheet-based for Excel, heading-based for Word and
// Markdown, and generic character-window splitting for everything else.
func NewForFileType(ft classify.FileType, opts Options) Chunker {
	size, overlap := opts.ChunkSize, opts.ChunkOverlap
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap <= 0 {
		overlap = DefaultChunkOverlap
	}

	switch ft {
	case classify.PDF:
		return &PageChunker{ChunkSize: size, ChunkOverlap: overlap}
	case classify.PowerPoint:
		return &SlideChunker{ChunkSize: size, ChunkOverlap: overlap}
	case classify.Excel:
		return &SheetChunker{ChunkSize: size, ChunkOverlap: overlap}
	case classify.Word, classify.Markdown:
		return &HeadingChunker{ChunkSize: size, ChunkOverlap: overlap}
	default:
		return &GenericChunker{ChunkSize: size, ChunkOverlap: overlap}
	}
}
