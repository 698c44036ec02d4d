package export

import (
	"fmt"

	"github.com/ginjaninja78/fiscal-normalizer/internal/aggregator"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names used in XLSX output.
const (
	DataSheet   = "Notas"
	TotalsSheet = "Totais"
)

var totalsHeaders = []string{"Coluna", "Soma", "Média", "Mínimo", "Máximo", "Quantidade"}

// WriteXLSX saves t as a workbook at path. When totals is not nil a second
// sheet lists the per-column summaries and the grand total.
func WriteXLSX(path string, t *types.Table, totals *aggregator.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	cols := t.Columns()
	if err := writeHeader(f, DataSheet, cols, headerStyle); err != nil {
		return err
	}

	for i := 0; i < t.Len(); i++ {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := t.RowValues(i)
		row := make([]any, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := f.SetSheetRow(DataSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if totals != nil {
		if err := writeTotals(f, totals, headerStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, 18); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func writeTotals(f *excelize.File, totals *aggregator.Result, headerStyle int) error {
	if _, err := f.NewSheet(TotalsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeHeader(f, TotalsSheet, totalsHeaders, headerStyle); err != nil {
		return err
	}

	row := 2
	for _, g := range totals.Groups {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			g.Column,
			g.Sum.Round(2).InexactFloat64(),
			g.Mean.Round(2).InexactFloat64(),
			g.Min.InexactFloat64(),
			g.Max.InexactFloat64(),
			g.Count,
		}
		if err := f.SetSheetRow(TotalsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write totals: %w", err)
		}
		row++
	}

	cell, _ := excelize.CoordinatesToCellName(1, row)
	grand := []any{"Total Geral", totals.GrandTotal.Round(2).InexactFloat64(), nil, nil, nil, totals.SelectedRows}
	if err := f.SetSheetRow(TotalsSheet, cell, &grand); err != nil {
		return fmt.Errorf("failed to write totals: %w", err)
	}
	return nil
}
