package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/filesearch/engine/internal/chunk"
)

type slideXML struct {
	Shapes []slideShape `xml:"cSld>spTree>sp"`
}

type slideShape struct {
	NvSpPr struct {
		NvPr struct {
			PlaceHolder struct {
				Type string `xml:"type,attr"`
			} `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	TxBody struct {
		Paragraphs []struct {
			Runs []struct {
				Text string `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"txBody"`
}

func (s slideShape) text() string {
	var parts []string
	for _, p := range s.TxBody.Paragraphs {
		var sb strings.Builder
		for _, r := range p.Runs {
			sb.WriteString(r.Text)
		}
		if t := strings.TrimSpace(sb.String()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

func (s slideShape) isTitle() bool {
	t := s.NvSpPr.NvPr.PlaceHolder.Type
	return t == "title" || t == "ctrTitle"
}

// PowerPoint extracts one slide Section per slide from a .pptx deck.
// Title = the first title placeholder's text; every other text frame is
// concatenated into the slide's body.
func PowerPoint(path string, content []byte) Result {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{Err: fmt.Errorf("open pptx as zip: %w", err)}
	}

	slideFiles := slideFileNames(r)

	var sections []chunk.Section
	var textParts []string

	for i, name := range slideFiles {
		raw, err := readZipEntry(r, name)
		if err != nil {
			continue
		}
		var slide slideXML
		if err := xml.Unmarshal(raw, &slide); err != nil {
			continue
		}

		var title string
		var bodyParts []string
		for _, sh := range slide.Shapes {
			text := sh.text()
			if text == "" {
				continue
			}
			if sh.isTitle() && title == "" {
				title = text
				continue
			}
			bodyParts = append(bodyParts, text)
		}

		body := strings.Join(bodyParts, "\n")
		if title == "" && body == "" {
			continue
		}

		full := body
		if title != "" {
			full = title + "\n" + body
		}
		sections = append(sections, chunk.Section{
			Type:       chunk.SectionSlide,
			Slide:      i + 1,
			SlideTitle: title,
			Text:       strings.TrimSpace(full),
		})
		textParts = append(textParts, strings.TrimSpace(full))
	}

	return Result{
		Text:     strings.Join(textParts, "\n\n"),
		Sections: sections,
		Metadata: map[string]string{"slide_count": strconv.Itoa(len(slideFiles))},
	}
}

// slideFileNames returns ppt/slides/slideN.xml paths sorted by N, since
// zip directory order does not guarantee presentation order.
func slideFileNames(r *zip.Reader) []string {
	type indexed struct {
		n    int
		name string
	}
	var found []indexed
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") && !strings.Contains(f.Name, "rels") {
			numPart := strings.TrimSuffix(strings.TrimPrefix(f.Name, "ppt/slides/slide"), ".xml")
			n, err := strconv.Atoi(numPart)
			if err != nil {
				continue
			}
			found = append(found, indexed{n: n, name: f.Name})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })
	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names
}
