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

type sheetXML struct {
	SheetData struct {
		Rows []sheetRow `xml:"row"`
	} `xml:"sheetData"`
}

type sheetRow struct {
	Cells []sheetCell `xml:"c"`
}

type sheetCell struct {
	Type  string `xml:"t,attr"`
	Value string `xml:"v"`
	Inline struct {
		Text string `xml:"t"`
	} `xml:"is"`
}

type workbookXML struct {
	Sheets []workbookSheet `xml:"sheets>sheet"`
}

type workbookSheet struct {
	Name    string `xml:"name,attr"`
	SheetID string `xml:"sheetId,attr"`
	State   string `xml:"state,attr"`
	RID     string `xml:"id,attr"`
}

type sharedStringsXML struct {
	Items []sharedStringItem `xml:"si"`
}

type sharedStringItem struct {
	Text  string       `xml:"t"`
	Runs  []sharedRun  `xml:"r"`
}

type sharedRun struct {
	Text string `xml:"t"`
}

func (i sharedStringItem) value() string {
	if i.Text != "" {
		return i.Text
	}
	var sb strings.Builder
	for _, r := range i.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// rawLikeSheetName reports whether a worksheet name is literally (case
// insensitively) one of the staging-sheet names operational spreadsheets
// commonly carry, grounded on the "skip Raw/Log/History/_hidden sheets"
// rule from the reference implementation's Excel indexer.
func rawLikeSheetName(name string) bool {
	switch strings.ToLower(name) {
	case "raw", "log", "history", "_hidden":
		return true
	default:
		return false
	}
}

// Excel extracts one sheet Section per worksheet from a .xlsx workbook,
// rendering rows as a Markdown table and capping rows/cols per maxRows
// and maxCols. Sheets named (case-insensitively) Raw, Log, History, or
// _hidden, and sheets marked hidden in the workbook itself, are skipped.
func Excel(path string, content []byte, maxRows, maxCols int) Result {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{Err: fmt.Errorf("open xlsx as zip: %w", err)}
	}

	wbRaw, err := readZipEntry(r, "xl/workbook.xml")
	if err != nil {
		return Result{Err: err}
	}
	var wb workbookXML
	if err := xml.Unmarshal(wbRaw, &wb); err != nil {
		return Result{Err: fmt.Errorf("parse workbook.xml: %w", err)}
	}

	shared := loadSharedStrings(r)

	sheetFiles := sheetFileNames(r)

	var sections []chunk.Section
	var textParts []string
	skipped := 0

	for i, sh := range wb.Sheets {
		if sh.State == "hidden" || sh.State == "veryHidden" || rawLikeSheetName(sh.Name) {
			skipped++
			continue
		}
		sheetPath := ""
		if i < len(sheetFiles) {
			sheetPath = sheetFiles[i]
		}
		if sheetPath == "" {
			continue
		}
		raw, err := readZipEntry(r, sheetPath)
		if err != nil {
			continue
		}
		var sxml sheetXML
		if err := xml.Unmarshal(raw, &sxml); err != nil {
			continue
		}
		rendered, rowCount := renderSheet(sxml, shared, maxRows, maxCols)
		if rendered == "" {
			continue
		}
		sections = append(sections, chunk.Section{
			Type:     chunk.SectionSheet,
			Sheet:    sh.Name,
			Text:     rendered,
			RowStart: 0,
			RowEnd:   rowCount - 1,
		})
		textParts = append(textParts, "## Sheet: "+sh.Name+"\n"+rendered)
	}

	return Result{
		Text:     strings.Join(textParts, "\n\n"),
		Sections: sections,
		Metadata: map[string]string{
			"sheet_count":         strconv.Itoa(len(wb.Sheets)),
			"sheets_skipped_meta": strconv.Itoa(skipped),
		},
	}
}

// sheetFileNames returns xl/worksheets/sheetN.xml paths in workbook sheet
// order, approximating the rels-based mapping by positional numbering,
// which holds for the vast majority of xlsx files produced by mainstream
// spreadsheet applications.
func sheetFileNames(r *zip.Reader) []string {
	var names []string
	count := 0
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			count++
		}
	}
	for i := 1; i <= count; i++ {
		names = append(names, fmt.Sprintf("xl/worksheets/sheet%d.xml", i))
	}
	return names
}

func loadSharedStrings(r *zip.Reader) []string {
	raw, err := readZipEntry(r, "xl/sharedStrings.xml")
	if err != nil {
		return nil
	}
	var shared sharedStringsXML
	if err := xml.Unmarshal(raw, &shared); err != nil {
		return nil
	}
	out := make([]string, len(shared.Items))
	for i, item := range shared.Items {
		out[i] = item.value()
	}
	return out
}

func renderSheet(s sheetXML, shared []string, maxRows, maxCols int) (string, int) {
	var rowsData [][]string
	for _, row := range s.SheetData.Rows {
		if len(rowsData) >= maxRows {
			break
		}
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			if len(cells) >= maxCols {
				break
			}
			cells = append(cells, cellValue(c, shared))
		}
		if anyNonEmpty(cells) {
			rowsData = append(rowsData, cells)
		}
	}
	if len(rowsData) == 0 {
		return "", 0
	}

	header := rowsData[0]
	var lines []string
	lines = append(lines, "| "+strings.Join(header, " | ")+" |")
	lines = append(lines, "| "+strings.Join(repeat("---", len(header)), " | ")+" |")
	for _, row := range rowsData[1:] {
		for len(row) < len(header) {
			row = append(row, "")
		}
		lines = append(lines, "| "+strings.Join(row[:len(header)], " | ")+" |")
	}
	return strings.Join(lines, "\n"), len(rowsData)
}

func cellValue(c sheetCell, shared []string) string {
	if c.Type == "inlineStr" {
		return strings.TrimSpace(c.Inline.Text)
	}
	if c.Type == "s" {
		idx, err := strconv.Atoi(c.Value)
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return strings.TrimSpace(shared[idx])
	}
	return strings.TrimSpace(c.Value)
}

func anyNonEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return true
		}
	}
	return false
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
