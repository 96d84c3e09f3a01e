// Package classify maps a filesystem path to the category and file type
// the rest of the pipeline dispatches on. It is a pure, side-effect-free
// lookup that never fails — an unrecognized extension degrades to
// METADATA_ONLY/OTHER rather than erroring.
package classify

import (
	"path/filepath"
	"strings"
)

// Category partitions files into those whose content is indexed versus
// those searchable only by filename/path metadata.
type Category string

const (
	ContentIndexed Category = "CONTENT_INDEXED"
	MetadataOnly   Category = "METADATA_ONLY"
)

// FileType names the concrete extractor/chunker strategy a file uses.
type FileType string

const (
	Word       FileType = "WORD"
	Excel      FileType = "EXCEL"
	PowerPoint FileType = "POWERPOINT"
	PDF        FileType = "PDF"
	Markdown   FileType = "MARKDOWN"
	Text       FileType = "TEXT"
	Email      FileType = "EMAIL"
	Other      FileType = "OTHER"
)

var extensionToType = map[string]FileType{
	".docx":     Word,
	".xlsx":     Excel,
	".pptx":     PowerPoint,
	".pdf":      PDF,
	".md":       Markdown,
	".markdown": Markdown,
	".txt":      Text,
	".eml":      Email,
	".msg":      Email,
}

// Classify maps path to (Category, FileType) by lowercase extension
// only. Extensions outside the content-indexable set — including known
// but unsupported types like legacy ".doc" — are METADATA_ONLY/OTHER.
func Classify(path string) (Category, FileType) {
	ext := strings.ToLower(filepath.Ext(path))
	ft, ok := extensionToType[ext]
	if !ok {
		return MetadataOnly, Other
	}
	return ContentIndexed, ft
}
