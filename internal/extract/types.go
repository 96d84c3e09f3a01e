// Package extract turns a classified file's bytes into text and a typed
// section list the chunker can walk. Extractors never panic or return a
// hard error from the pipeline's point of view: a failure is reported on
// Result.Err with Text left empty, and the indexer skips the file while
// recording the error.
package extract

import "github.com/filesearch/engine/internal/chunk"

// Result is the Extractor Registry's output contract.
type Result struct {
	Text     string
	Sections []chunk.Section
	Metadata map[string]string
	Err      error
}

// Extractor produces a Result from a file's raw bytes. path is passed
// alongside content for error messages and format sniffing that looks at
// the extension (PDF/Office parsers are picky about trusting content
// alone).
type Extractor func(path string, content []byte) Result
