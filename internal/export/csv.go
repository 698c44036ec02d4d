package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
)

// BOM is the UTF-8 byte order mark written before CSV output.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a header row and one line per table row. Null cells are
// written as empty fields.
func WriteCSV(w io.Writer, t *types.Table, delimiter rune) error {
	if delimiter == 0 {
		delimiter = ';'
	}

	if _, err := w.Write(BOM); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := 0; i < t.Len(); i++ {
		if err := cw.Write(t.RowValues(i)); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
