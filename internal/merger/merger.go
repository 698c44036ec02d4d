// =============================================================================
// Fiscal Normalizer - Multi-Document Merger
// =============================================================================
//
// Combines per-document tables into one normalized table:
//   - rows are concatenated in input order
//   - columns keep first-seen order across inputs
//   - a column null in every row of the combined table is dropped
//   - exact duplicate rows are removed, keeping the first occurrence
//
// Pruning looks at the combined table only. A column kept alive by a single
// document survives even though every other document leaves it null, which is
// what mixed NF-e + NFS-e batches need.
//
// =============================================================================

package merger

import (
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
)

// Merge concatenates tables and returns a new pruned, de-duplicated table.
// Inputs are never modified.
func Merge(tables ...*types.Table) *types.Table {
	var (
		columns []string
		seenCol = make(map[string]struct{})
		rows    []*types.FlatRecord
	)

	for _, t := range tables {
		if t == nil {
			continue
		}
		cols := t.Columns()
		for _, c := range cols {
			if _, ok := seenCol[c]; !ok {
				seenCol[c] = struct{}{}
				columns = append(columns, c)
			}
		}
		for i := 0; i < t.Len(); i++ {
			rows = append(rows, project(t.Row(i), cols))
		}
	}

	columns = pruneNullColumns(columns, rows)
	combined := types.NewTable(columns, rows)
	return dedupe(combined)
}

// Append rebuilds base with more tables added after it.
func Append(base *types.Table, more ...*types.Table) *types.Table {
	return Merge(append([]*types.Table{base}, more...)...)
}

// project copies the visible cells of rec, so keys hidden by a table's
// column list do not leak into the merge.
func project(rec *types.FlatRecord, cols []string) *types.FlatRecord {
	out := types.NewFlatRecord()
	for _, c := range cols {
		if v, ok := rec.Get(c); ok {
			out.InsertIfAbsent(c, v)
		}
	}
	return out
}

func pruneNullColumns(columns []string, rows []*types.FlatRecord) []string {
	kept := columns[:0:0]
	for _, c := range columns {
		for _, r := range rows {
			if _, ok := r.Get(c); ok {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}

func dedupe(t *types.Table) *types.Table {
	seen := make(map[string]struct{}, t.Len())
	rows := make([]*types.FlatRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		key := t.RowKey(i)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, t.Row(i))
	}
	return types.NewTable(t.Columns(), rows)
}
