package extract

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/filesearch/engine/internal/chunk"
)

// pdfTextOperator matches literal-string text-showing operators (Tj and
// the array form TJ) inside a BT...ET text object, which covers the text
// produced by the overwhelming majority of non-scanned PDFs without
// needing a full content-stream interpreter.
var pdfTextOperator = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*Tj`)
var pdfTextArrayOperator = regexp.MustCompile(`\[((?:[^\[\]]|\\.)*)\]\s*TJ`)
var pdfArrayStringPart = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)

// PDF performs best-effort, per-page text extraction without depending
// on a PDF library (none exists anywhere in the reference corpus): pages
// are approximated by splitting on "/Type /Page" object boundaries, and
// text is pulled out of BT/ET text-showing operators. A page that yields
// no extractable text is skipped silently and counted, matching the
// specification's "failed pages are skipped silently but counted" rule;
// this never surfaces as Result.Err since a PDF with partially-failed
// pages is still a successful extraction.
func PDF(path string, content []byte) Result {
	pages := splitPDFPages(content)

	var sections []chunk.Section
	var textParts []string
	skipped := 0

	for i, page := range pages {
		text := extractPDFPageText(page)
		if strings.TrimSpace(text) == "" {
			skipped++
			continue
		}
		sections = append(sections, chunk.Section{Type: chunk.SectionPage, Page: i + 1, Text: text})
		textParts = append(textParts, text)
	}

	return Result{
		Text:     strings.Join(textParts, "\n\n"),
		Sections: sections,
		Metadata: map[string]string{
			"page_count":         strconv.Itoa(len(pages)),
			"pages_skipped_meta": strconv.Itoa(skipped),
		},
	}
}

func splitPDFPages(content []byte) [][]byte {
	marker := []byte("/Type /Page")
	altMarker := []byte("/Type/Page")

	var offsets []int
	for _, m := range [][]byte{marker, altMarker} {
		start := 0
		for {
			idx := bytes.Index(content[start:], m)
			if idx < 0 {
				break
			}
			offsets = append(offsets, start+idx)
			start += idx + len(m)
		}
	}
	if len(offsets) == 0 {
		return [][]byte{content}
	}

	sortInts(offsets)

	var pages [][]byte
	for i, off := range offsets {
		end := len(content)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		pages = append(pages, content[off:end])
	}
	return pages
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func extractPDFPageText(page []byte) string {
	var parts []string
	for _, m := range pdfTextOperator.FindAllSubmatch(page, -1) {
		parts = append(parts, unescapePDFString(string(m[1])))
	}
	for _, m := range pdfTextArrayOperator.FindAllSubmatch(page, -1) {
		for _, s := range pdfArrayStringPart.FindAllSubmatch(m[1], -1) {
			parts = append(parts, unescapePDFString(string(s[1])))
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func unescapePDFString(s string) string {
	replacer := strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`, `\n`, "\n", `\r`, "\r", `\t`, "\t")
	return replacer.Replace(s)
}
