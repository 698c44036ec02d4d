// =============================================================================
// Fiscal Normalizer - XLSX Parser
// =============================================================================
//
// Reads spreadsheet exports as a tabular source. The first row of a sheet is
// the header; every following non-empty row is data.
//
//   | emitente | cfop | valor  |
//   |----------|------|--------|
//   | Loja A   | 5102 | 100,00 |
//
// Cells are read as displayed text (GetRows), so a value formatted as
// "1.234,56" in the workbook arrives exactly like that.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned when a workbook has no worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// AllSheets selects every sheet of the workbook.
const AllSheets = "*"

// SheetData holds the raw content of one worksheet.
type SheetData struct {
	// Sheet is the worksheet name.
	Sheet string

	// Headers are the raw header names, one per column.
	Headers []string

	// Rows are the data rows padded to the header width.
	Rows [][]string

	// SourceFile is the workbook path.
	SourceFile string
}

// Parse reads one sheet of the workbook at path. An empty sheet name selects
// the first sheet.
func Parse(path, sheet string) (*SheetData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	data, err := parseSheet(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	data.SourceFile = path
	return data, nil
}

// ParseReader reads one sheet of a workbook from r.
func ParseReader(r io.Reader, sheet string) (*SheetData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseSheet(f, sheet)
}

// ParseAllSheets reads every sheet of the workbook at path, in workbook
// order. Sheets without a header row are skipped.
func ParseAllSheets(path string) ([]*SheetData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}

	var out []*SheetData
	for _, name := range names {
		data, err := parseSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(data.Headers) == 0 {
			continue
		}
		data.SourceFile = path
		out = append(out, data)
	}
	return out, nil
}

func parseSheet(f *excelize.File, sheet string) (*SheetData, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, ErrNoSheets
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}

	data := &SheetData{Sheet: sheet}

	// Skip leading blank rows; the first non-empty row is the header.
	start := 0
	for start < len(rows) && isRowEmpty(rows[start]) {
		start++
	}
	if start == len(rows) {
		return data, nil
	}

	data.Headers = rows[start]
	for _, row := range rows[start+1:] {
		if isRowEmpty(row) {
			continue
		}
		cells := make([]string, len(data.Headers))
		copy(cells, row)
		data.Rows = append(data.Rows, cells)
	}

	return data, nil
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
