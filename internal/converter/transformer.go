// =============================================================================
// Fiscal Normalizer - Tabular Transformer
// =============================================================================
//
// Turns raw tabular rows (CSV, XLSX) into a normalized table.
//
// HEADER CLEANUP:
//   - Unicode NFKC, trimmed, control characters removed
//   - blank header        -> Column_N (1-based position)
//   - repeated header     -> name.1, name.2, ...
//
// VALUE CLEANUP:
//   - same text cleanup as headers; blank cells become nulls
//
// =============================================================================

package converter

import (
	"fmt"

	"github.com/ginjaninja78/fiscal-normalizer/internal/merger"
	"github.com/ginjaninja78/fiscal-normalizer/internal/textutil"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
)

// CleanHeaders returns cleaned, unique header names.
func CleanHeaders(headers []string) []string {
	out := make([]string, len(headers))
	used := make(map[string]bool, len(headers))
	suffix := make(map[string]int)

	for i, h := range headers {
		name := textutil.CleanText(h)
		if name == "" {
			name = fmt.Sprintf("Column_%d", i+1)
		}

		if used[name] {
			base := name
			for used[name] {
				suffix[base]++
				name = fmt.Sprintf("%s.%d", base, suffix[base])
			}
		}
		used[name] = true
		out[i] = name
	}

	return out
}

// CleanValue normalizes one cell.
func CleanValue(v string) string {
	return textutil.CleanText(v)
}

// BuildTable creates a normalized table from a header and data rows. Null
// columns are pruned and duplicate rows removed.
func BuildTable(headers []string, rows [][]string) *types.Table {
	cols := CleanHeaders(headers)

	records := make([]*types.FlatRecord, 0, len(rows))
	for _, row := range rows {
		rec := types.NewFlatRecord()
		for i, col := range cols {
			if i < len(row) {
				rec.InsertIfAbsent(col, CleanValue(row[i]))
			}
		}
		records = append(records, rec)
	}

	return merger.Merge(types.NewTable(cols, records))
}
