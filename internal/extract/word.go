package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/filesearch/engine/internal/chunk"
)

// wordDocument mirrors the subset of OOXML WordprocessingML this
// extractor cares about: paragraphs, their style (for heading level
// detection), runs of text, and tables.
type wordDocument struct {
	Body wordBody `xml:"body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"p"`
	Tables     []wordTable     `xml:"tbl"`
}

type wordParagraph struct {
	Properties struct {
		Style struct {
			Val string `xml:"val,attr"`
		} `xml:"pStyle"`
	} `xml:"pPr"`
	Runs []wordRun `xml:"r"`
}

func (p wordParagraph) style() string {
	return p.Properties.Style.Val
}

type wordRun struct {
	Text []string `xml:"t"`
}

type wordTable struct {
	Rows []wordTableRow `xml:"tr"`
}

type wordTableRow struct {
	Cells []wordTableCell `xml:"tc"`
}

type wordTableCell struct {
	Paragraphs []wordParagraph `xml:"p"`
}

func (p wordParagraph) text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			sb.WriteString(t)
		}
	}
	return sb.String()
}

func (c wordTableCell) text() string {
	var parts []string
	for _, p := range c.Paragraphs {
		if t := strings.TrimSpace(p.text()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func (t wordTable) render() string {
	var lines []string
	for _, row := range t.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c.text()
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}

// headingLevel maps a WordprocessingML paragraph style id like "Heading2"
// or "heading 2" to a 1-6 level, or 0 if the paragraph is not a heading.
func headingLevel(style string) int {
	lower := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(lower, "heading") && lower != "title" {
		return 0
	}
	if lower == "title" {
		return 1
	}
	digits := strings.TrimPrefix(lower, "heading")
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

// Word extracts text and structure from a .docx file, which is a ZIP
// archive carrying word/document.xml as WordprocessingML. Headings open
// new sections carrying their level and title; tables render as
// pipe-delimited text sections.
func Word(path string, content []byte) Result {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{Err: fmt.Errorf("open docx as zip: %w", err)}
	}

	raw, err := readZipEntry(r, "word/document.xml")
	if err != nil {
		return Result{Err: err}
	}

	var doc wordDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return Result{Err: fmt.Errorf("parse document.xml: %w", err)}
	}

	var sections []chunk.Section
	var textParts []string

	tableIdx := 0
	for _, p := range doc.Body.Paragraphs {
		text := strings.TrimSpace(p.text())
		if level := headingLevel(p.style()); level > 0 {
			sections = append(sections, chunk.Section{Type: chunk.SectionHeading, Level: level, Title: text})
			if text != "" {
				textParts = append(textParts, text)
			}
			continue
		}
		if text == "" {
			continue
		}
		sections = append(sections, chunk.Section{Type: chunk.SectionParagraph, Text: text})
		textParts = append(textParts, text)
	}
	for _, tbl := range doc.Body.Tables {
		rendered := tbl.render()
		if rendered == "" {
			continue
		}
		sections = append(sections, chunk.Section{Type: chunk.SectionTable, Text: rendered})
		textParts = append(textParts, rendered)
		tableIdx++
	}

	return Result{
		Text:     strings.Join(textParts, "\n\n"),
		Sections: sections,
		Metadata: map[string]string{"paragraph_count": strconv.Itoa(len(doc.Body.Paragraphs))},
	}
}

func readZipEntry(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			defer rc.Close()
			var buf bytes.Buffer
			if _, err := buf.ReadFrom(rc); err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			return buf.Bytes(), nil
		}
	}
	return nil, fmt.Errorf("entry %s not found in archive", name)
}
