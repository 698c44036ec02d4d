// =============================================================================
// Fiscal Normalizer - Value Selector & Aggregator
// =============================================================================
//
// Computes a monetary total over a normalized table without counting any
// amount twice:
//
//   1. Pick the value candidate columns (policy.go)
//   2. For every row choose at most ONE (column, value) pair:
//        - highest priority rank wins
//        - equal rank: larger value wins
//        - unparsable, null and zero cells are skipped; negative
//          amounts (credits, returns) are candidates like any other
//   3. Group the chosen values by column: sum, mean, min, max, count
//   4. Sort groups by descending sum; grand total = sum of group sums
//
// Row selection has no cross-row state and runs in parallel chunks.
//
// =============================================================================

package aggregator

import (
	"errors"
	"sort"
	"sync"

	"github.com/ginjaninja78/fiscal-normalizer/internal/logging"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoAggregableData is returned when no row yields a value. It is distinct
// from a zero total.
var ErrNoAggregableData = errors.New("no aggregable monetary data")

// minChunk keeps small tables on a single goroutine.
const minChunk = 512

// Candidate is the value selected for one row.
type Candidate struct {
	Row    int
	Column string
	Value  decimal.Decimal
	Rank   int
}

// ColumnSummary aggregates the values selected from one column.
type ColumnSummary struct {
	Column string
	Sum    decimal.Decimal
	Mean   decimal.Decimal
	Min    decimal.Decimal
	Max    decimal.Decimal
	Count  int
}

// Result is the outcome of one aggregation.
type Result struct {
	// GrandTotal is the sum of every group's Sum.
	GrandTotal decimal.Decimal

	// Groups are ordered by descending Sum, then column name.
	Groups []ColumnSummary

	// SelectedRows is the number of rows that contributed a value.
	SelectedRows int

	// TotalRows is the number of rows in the table.
	TotalRows int
}

// Aggregator applies a Policy to tables.
type Aggregator struct {
	policy  compiledPolicy
	log     *zap.Logger
	workers int
}

// New creates an Aggregator. workers below 1 means sequential.
func New(policy Policy, log *zap.Logger, workers int) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		policy:  compile(policy),
		log:     logging.OrNop(log),
		workers: workers,
	}
}

// CandidateColumns returns the eligible columns of t in table order.
func (a *Aggregator) CandidateColumns(t *types.Table) []Column {
	return a.policy.candidateColumns(t.Columns())
}

// Select returns the single value chosen for row i, if any.
func (a *Aggregator) Select(t *types.Table, i int, cols []Column) (Candidate, bool) {
	var (
		best  Candidate
		found bool
	)
	for _, col := range cols {
		raw, ok := t.Value(i, col.Name)
		if !ok {
			continue
		}
		v, err := ParseAmount(raw)
		if err != nil {
			a.log.Debug("Skipping unparsable value",
				zap.Int("row", i), zap.String("column", col.Name), zap.String("value", raw))
			continue
		}
		if v.IsZero() {
			continue
		}
		if !found || col.Rank < best.Rank || (col.Rank == best.Rank && v.GreaterThan(best.Value)) {
			best = Candidate{Row: i, Column: col.Name, Value: v, Rank: col.Rank}
			found = true
		}
	}
	return best, found
}

// Selections runs Select over every row. The result is in row order and
// holds only rows that produced a value.
func (a *Aggregator) Selections(t *types.Table) []Candidate {
	n := t.Len()
	cols := a.CandidateColumns(t)
	if n == 0 || len(cols) == 0 {
		return nil
	}

	picked := make([]Candidate, n)
	ok := make([]bool, n)

	chunk := (n + a.workers - 1) / a.workers
	if chunk < minChunk {
		chunk = minChunk
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				picked[i], ok[i] = a.Select(t, i, cols)
			}
		}(start, end)
	}
	wg.Wait()

	out := make([]Candidate, 0, n)
	for i := range picked {
		if ok[i] {
			out = append(out, picked[i])
		}
	}
	return out
}

// Aggregate computes the per-column summaries and grand total of t. It
// returns ErrNoAggregableData when no row yields a value.
func (a *Aggregator) Aggregate(t *types.Table) (*Result, error) {
	selected := a.Selections(t)
	if len(selected) == 0 {
		return nil, ErrNoAggregableData
	}

	index := make(map[string]int)
	var groups []ColumnSummary
	for _, c := range selected {
		gi, ok := index[c.Column]
		if !ok {
			gi = len(groups)
			index[c.Column] = gi
			groups = append(groups, ColumnSummary{Column: c.Column, Min: c.Value, Max: c.Value, Sum: decimal.Zero})
		}
		g := &groups[gi]
		g.Sum = g.Sum.Add(c.Value)
		g.Count++
		if c.Value.LessThan(g.Min) {
			g.Min = c.Value
		}
		if c.Value.GreaterThan(g.Max) {
			g.Max = c.Value
		}
	}

	total := decimal.Zero
	for i := range groups {
		groups[i].Mean = groups[i].Sum.Div(decimal.NewFromInt(int64(groups[i].Count)))
		total = total.Add(groups[i].Sum)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if c := groups[i].Sum.Cmp(groups[j].Sum); c != 0 {
			return c > 0
		}
		return groups[i].Column < groups[j].Column
	})

	a.log.Debug("Aggregated table",
		zap.Int("rows", t.Len()),
		zap.Int("selected", len(selected)),
		zap.Int("groups", len(groups)),
		zap.String("total", total.StringFixed(2)))

	return &Result{
		GrandTotal:   total,
		Groups:       groups,
		SelectedRows: len(selected),
		TotalRows:    t.Len(),
	}, nil
}
