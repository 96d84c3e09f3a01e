package extract

import (
	"github.com/filesearch/engine/internal/chunk"
	"github.com/filesearch/engine/internal/classify"
)

// Options configures extraction behavior that varies by deployment
// (Excel's row/column caps).
type Options struct {
	ExcelMaxRows int
	ExcelMaxCols int
}

// For dispatches to the Extractor registered for ft. Callers should only
// invoke this for classify.ContentIndexed files; METADATA_ONLY files
// never reach the Extractor Registry per the File Classifier's contract.
func For(ft classify.FileType, opts Options) Extractor {
	maxRows, maxCols := opts.ExcelMaxRows, opts.ExcelMaxCols
	if maxRows <= 0 {
		maxRows = chunk.DefaultExcelMaxRows
	}
	if maxCols <= 0 {
		maxCols = chunk.DefaultExcelMaxCols
	}

	switch ft {
	case classify.Word:
		return Word
	case classify.Excel:
		return func(path string, content []byte) Result { return Excel(path, content, maxRows, maxCols) }
	case classify.PowerPoint:
		return PowerPoint
	case classify.PDF:
		return PDF
	case classify.Markdown:
		return Markdown
	case classify.Text:
		return Text
	case classify.Email:
		return Email
	default:
		return Text
	}
}
