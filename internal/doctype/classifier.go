// =============================================================================
// Fiscal Normalizer - Document-Type Classifier
// =============================================================================
//
// Labels a normalized table as NF-e, NFS-e or a mix of both from its column
// names. For mixed tables each family's rows are counted separately: a row
// belongs to a family when any of that family's row fingerprint columns is
// non-null. A row can belong to both, so Invoice + Service may exceed Total;
// Overlap reports how many rows were counted twice.
//
// =============================================================================

package doctype

import (
	"github.com/ginjaninja78/fiscal-normalizer/internal/textutil"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
)

// Category is the label assigned to a table.
type Category string

const (
	CategoryNone    Category = "Nenhum"
	CategoryInvoice Category = "NFe"
	CategoryService Category = "NFSe"
	CategoryMixed   Category = "MISTO"
	CategoryUnknown Category = "Desconhecido"
)

// FamilyFingerprint describes how a family shows up in column names.
type FamilyFingerprint struct {
	// ColumnPrefixes and ColumnTokens detect the family at table level.
	ColumnPrefixes []string `yaml:"column_prefixes,omitempty"`
	ColumnTokens   []string `yaml:"column_tokens,omitempty"`

	// RowTokens and RowColumns select the columns checked per row when
	// counting a mixed table. RowColumns must match the whole name.
	RowTokens  []string `yaml:"row_tokens,omitempty"`
	RowColumns []string `yaml:"row_columns,omitempty"`
}

// Fingerprints holds one fingerprint per family.
type Fingerprints struct {
	Invoice FamilyFingerprint `yaml:"invoice"`
	Service FamilyFingerprint `yaml:"service"`
}

// DefaultFingerprints returns the built-in fingerprints.
func DefaultFingerprints() Fingerprints {
	return Fingerprints{
		Invoice: FamilyFingerprint{
			ColumnPrefixes: []string{"emit_", "dest_", "ide_"},
			ColumnTokens:   []string{"cfop"},
			RowTokens:      []string{"emit_"},
			RowColumns:     []string{"cfop"},
		},
		Service: FamilyFingerprint{
			ColumnPrefixes: []string{"prestador_", "tomador_", "nfse_"},
			ColumnTokens:   []string{"iss"},
			RowTokens:      []string{"prestador_", "nfse_"},
		},
	}
}

// WithDefaults fills a family left completely empty from the defaults.
func (f Fingerprints) WithDefaults() Fingerprints {
	def := DefaultFingerprints()
	if f.Invoice.isZero() {
		f.Invoice = def.Invoice
	}
	if f.Service.isZero() {
		f.Service = def.Service
	}
	return f
}

func (f FamilyFingerprint) isZero() bool {
	return len(f.ColumnPrefixes) == 0 && len(f.ColumnTokens) == 0 &&
		len(f.RowTokens) == 0 && len(f.RowColumns) == 0
}

// Result is the classification of one table.
type Result struct {
	Total    int
	Invoice  int
	Service  int
	Overlap  int
	Category Category
}

// Classifier applies Fingerprints to tables. It holds no mutable state.
type Classifier struct {
	invoice compiled
	service compiled
}

type compiled struct {
	prefixes, tokens, rowTokens, rowColumns []string
}

func compile(f FamilyFingerprint) compiled {
	return compiled{
		prefixes:   textutil.FoldAll(f.ColumnPrefixes),
		tokens:     textutil.FoldAll(f.ColumnTokens),
		rowTokens:  textutil.FoldAll(f.RowTokens),
		rowColumns: textutil.FoldAll(f.RowColumns),
	}
}

// New creates a Classifier.
func New(f Fingerprints) *Classifier {
	f = f.WithDefaults()
	return &Classifier{invoice: compile(f.Invoice), service: compile(f.Service)}
}

// Classify labels t.
func (c *Classifier) Classify(t *types.Table) Result {
	if t.IsEmpty() {
		return Result{Category: CategoryNone}
	}

	total := t.Len()
	cols := t.Columns()
	folded := make([]string, len(cols))
	for i, col := range cols {
		folded[i] = textutil.Fold(col)
	}

	hasInvoice, hasService := false, false
	for _, name := range folded {
		hasInvoice = hasInvoice || c.invoice.matchesColumn(name)
		hasService = hasService || c.service.matchesColumn(name)
	}

	switch {
	case hasInvoice && hasService:
		res := Result{Total: total, Category: CategoryMixed}
		invCols := c.invoice.rowColumnsOf(cols, folded)
		svcCols := c.service.rowColumnsOf(cols, folded)
		for i := 0; i < total; i++ {
			inv := anyPresent(t, i, invCols)
			svc := anyPresent(t, i, svcCols)
			if inv {
				res.Invoice++
			}
			if svc {
				res.Service++
			}
			if inv && svc {
				res.Overlap++
			}
		}
		return res
	case hasInvoice:
		return Result{Total: total, Invoice: total, Category: CategoryInvoice}
	case hasService:
		return Result{Total: total, Service: total, Category: CategoryService}
	default:
		return Result{Total: total, Category: CategoryUnknown}
	}
}

// Classify labels t with the default fingerprints.
func Classify(t *types.Table) Result {
	return New(DefaultFingerprints()).Classify(t)
}

func (c compiled) matchesColumn(name string) bool {
	return textutil.HasAnyPrefix(name, c.prefixes) || textutil.ContainsAny(name, c.tokens)
}

func (c compiled) rowColumnsOf(cols, folded []string) []string {
	var out []string
	for i, name := range folded {
		if textutil.ContainsAny(name, c.rowTokens) || contains(c.rowColumns, name) {
			out = append(out, cols[i])
		}
	}
	return out
}

func anyPresent(t *types.Table, row int, cols []string) bool {
	for _, c := range cols {
		if _, ok := t.Value(row, c); ok {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
