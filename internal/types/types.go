// =============================================================================
// Fiscal Normalizer - Shared Types
// =============================================================================
//
// This package contains the row and table types shared by every stage of the
// pipeline. Keeping them here avoids import cycles between:
//   - xmlparser / csvparser / xlsxparser (producers)
//   - merger (combines tables)
//   - aggregator / doctype / quality / validation (consumers)
//   - export / xmlwriter (serialisers)
//
// NULL HANDLING:
//   A key that is absent from a FlatRecord is null. Empty strings are never
//   stored, so "absent" and "empty" mean the same thing everywhere.
//
// =============================================================================

package types

import (
	"strconv"
	"strings"
)

// =============================================================================
// FLAT RECORD
// =============================================================================

// FlatRecord is one flattened row: an ordered mapping from a `_`-joined key path
// to its string value. Keys keep their insertion order.
type FlatRecord struct {
	keys   []string
	values map[string]string
}

// NewFlatRecord returns an empty record.
func NewFlatRecord() *FlatRecord {
	return &FlatRecord{values: make(map[string]string)}
}

// InsertIfAbsent stores value under key unless the key is already populated.
// Blank values are ignored. It reports whether the value was stored.
func (r *FlatRecord) InsertIfAbsent(key, value string) bool {
	if key == "" || strings.TrimSpace(value) == "" {
		return false
	}
	if _, ok := r.values[key]; ok {
		return false
	}
	r.keys = append(r.keys, key)
	r.values[key] = value
	return true
}

// Get returns the value stored under key.
func (r *FlatRecord) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the populated keys in insertion order.
func (r *FlatRecord) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of populated keys.
func (r *FlatRecord) Len() int {
	return len(r.keys)
}

// Clone returns an independent copy of the record.
func (r *FlatRecord) Clone() *FlatRecord {
	c := &FlatRecord{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]string, len(r.values)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Merge copies every key of other into r using InsertIfAbsent, so values
// already present in r win.
func (r *FlatRecord) Merge(other *FlatRecord) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		r.InsertIfAbsent(k, other.values[k])
	}
}

// =============================================================================
// TABLE
// =============================================================================

// Table is the normalized tabular view of one or more documents. Once built it
// is treated as read-only: operations that change it return a new Table.
type Table struct {
	columns []string
	rows    []*FlatRecord
}

// NewTable builds a Table from explicit columns and rows. Keys of a row that
// are not listed in columns are not visible through the table.
func NewTable(columns []string, rows []*FlatRecord) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	rs := make([]*FlatRecord, len(rows))
	copy(rs, rows)
	return &Table{columns: cols, rows: rs}
}

// Columns returns a copy of the column names in table order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the record at index i.
func (t *Table) Row(i int) *FlatRecord {
	return t.rows[i]
}

// Value returns the cell at row i and column col. A missing cell is null.
func (t *Table) Value(i int, col string) (string, bool) {
	return t.rows[i].Get(col)
}

// HasColumn reports whether col is part of the table.
func (t *Table) HasColumn(col string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.columns {
		if c == col {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the table has no rows or no columns.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.rows) == 0 || len(t.columns) == 0
}

// RowValues returns the cells of row i aligned with Columns. Null cells are
// empty strings.
func (t *Table) RowValues(i int) []string {
	out := make([]string, len(t.columns))
	for j, c := range t.columns {
		out[j], _ = t.rows[i].Get(c)
	}
	return out
}

// RowKey returns a string that is equal for two rows exactly when every
// column holds the same value (null included). Each cell is written as "-"
// when null or as <len>:<value>, so no value can spill into the next cell.
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for _, c := range t.columns {
		v, ok := t.rows[i].Get(c)
		if !ok {
			b.WriteByte('-')
			continue
		}
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}
