// =============================================================================
// Fiscal Normalizer - Export
// =============================================================================
//
// Writes a normalized table in one of the supported output formats:
//
//   csv   UTF-8 with BOM so Excel on Windows detects the encoding
//   json  array of objects in column order; null cells are omitted
//   xlsx  "Notas" sheet with a styled header, optional "Totais" sheet
//   xml   <documentos><registro> layout (see xmlwriter)
//
// =============================================================================

package export

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ginjaninja78/fiscal-normalizer/internal/aggregator"
	"github.com/ginjaninja78/fiscal-normalizer/internal/config"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
	"github.com/ginjaninja78/fiscal-normalizer/internal/xmlwriter"
)

// Options tunes the output.
type Options struct {
	// Delimiter is the CSV field separator; zero means ';'.
	Delimiter rune

	// Totals, when set, adds a "Totais" sheet to XLSX output.
	Totals *aggregator.Result
}

// Extension returns the file extension for a format, with the dot.
func Extension(format string) string {
	return "." + format
}

// Write renders t as format into the file at path.
func Write(format string, t *types.Table, path string, opts Options) error {
	switch format {
	case config.FormatXLSX:
		return WriteXLSX(path, t, opts.Totals)
	case config.FormatXML:
		return xmlwriter.WriteFile(path, t)
	case config.FormatCSV, config.FormatJSON:
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if format == config.FormatCSV {
		err = WriteCSV(w, t, opts.Delimiter)
	} else {
		err = WriteJSON(w, t)
	}
	if err != nil {
		return err
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return file.Close()
}
