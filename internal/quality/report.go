// =============================================================================
// Fiscal Normalizer - Data Quality Report
// =============================================================================
//
// Summarises a normalized table for a human reviewer:
//
//   - shape: rows, columns, duplicate rows, fully empty rows
//   - null cells per column, with an explanation when the document family
//     accounts for them (an NF-e never fills "prestador_*", and so on)
//   - fiscal hints: interstate CFOP (6xxx), untaxed CST (40/41), withheld
//     ISS (issretido = 2), the 2026 IBS/CBS/IS notice for NF-e data
//   - CFOP frequency and CFOP values that are not 4 digits
//   - alerts: fully empty columns, fewer than MinRepresentativeRows rows
//
// Messages are in Portuguese, the language of the documents.
//
// =============================================================================

package quality

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/fiscal-normalizer/internal/doctype"
	"github.com/ginjaninja78/fiscal-normalizer/internal/textutil"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
)

// MinRepresentativeRows is the row count below which a table is flagged as
// possibly not covering a whole period.
const MinRepresentativeRows = 10

// maxExplained caps the null columns that receive an explanation.
const maxExplained = 20

// NullColumn counts the null cells of one column.
type NullColumn struct {
	Column      string
	Nulls       int
	Percent     float64
	Explanation string
}

// CFOPCount is one entry of the CFOP frequency metric.
type CFOPCount struct {
	CFOP  string
	Count int
}

// Report is the quality analysis of one table.
type Report struct {
	Rows       int
	Columns    int
	Duplicates int
	EmptyRows  []int

	// NullColumns lists columns with at least one null, in table order.
	NullColumns []NullColumn
	TotalNulls  int

	Category doctype.Category

	Problems    []string
	Warnings    []string
	FiscalHints []string
	Alerts      []string

	// CFOPColumn is the first column whose name contains "cfop".
	CFOPColumn    string
	CFOPFrequency []CFOPCount
	InvalidCFOPs  []string
}

type explanation struct {
	pattern string
	text    string
}

// nullExplanations are tried in order; the first pattern found in the
// folded column name wins.
var nullExplanations = map[doctype.Category][]explanation{
	doctype.CategoryMixed: {
		{"prestador_", `"prestador_*" vazio: pertence só a NFSe`},
		{"ide_", `"ide_*" vazio: pertence só a NFe`},
		{"emit_", `"emit_*" vazio: pertence só a NFe`},
		{"dest_", `"dest_*" vazio: pertence só a NFe`},
		{"tomador_", `"tomador_*" vazio: pertence só a NFSe`},
		{"nfse_", `"nfse_*" vazio: pertence só a NFSe`},
		{"icms", "ICMS vazio em NFSe: serviço não paga ICMS"},
		{"cfop", "CFOP vazio em NFSe: só para mercadorias"},
		{"cst", "CST vazio em NFSe: específico de ICMS"},
		{"total_", `"total_*" vazio em NFSe: estrutura de NFe`},
	},
	doctype.CategoryService: {
		{"ide_", `"ide_*" vazio: estrutura exclusiva de NFe`},
		{"emit_", `"emit_*" vazio: NFSe usa "prestador_*"`},
		{"dest_", `"dest_*" vazio: NFSe usa "tomador_*"`},
		{"icms", "ICMS vazio: serviços não pagam ICMS"},
		{"cfop", "CFOP vazio: só para circulação de mercadorias"},
	},
	doctype.CategoryInvoice: {
		{"nfse_", `"nfse_*" vazio: estrutura exclusiva de NFSe`},
		{"prestador_", `"prestador_*" vazio: NFe usa "emit_*"`},
		{"tomador_", `"tomador_*" vazio: NFe usa "dest_*"`},
		{"iss", "ISS vazio: produtos pagam ICMS, não ISS"},
	},
}

const (
	hintInterstate = "CFOP 6xxx: operação interestadual detectada"
	hintUntaxed    = "CST 40/41: operação não tributada"
	hintWithheld   = "ISS retido: retenção na fonte detectada"
	hintReform     = "Reforma Tributária 2026: campos IBS, CBS e IS serão obrigatórios a partir de janeiro/2026"
)

// Analyze builds the quality report of t. dt is the document-type
// classification of the same table.
func Analyze(t *types.Table, dt doctype.Result) *Report {
	r := &Report{
		Rows:     t.Len(),
		Columns:  len(t.Columns()),
		Category: dt.Category,
	}

	if r.Rows == 0 {
		r.Problems = append(r.Problems, "Nenhuma linha de dados")
		return r
	}

	r.analyzeShape(t)
	r.analyzeNulls(t)
	r.analyzeFiscal(t)
	r.analyzeCFOP(t)

	if r.Rows < MinRepresentativeRows {
		r.Alerts = append(r.Alerts, "O arquivo possui poucos registros. Pode não representar o período completo.")
	}

	return r
}

func (r *Report) analyzeShape(t *types.Table) {
	seen := make(map[string]struct{}, r.Rows)
	for i := 0; i < r.Rows; i++ {
		key := t.RowKey(i)
		if _, dup := seen[key]; dup {
			r.Duplicates++
		}
		seen[key] = struct{}{}

		if isEmptyRow(t, i) {
			r.EmptyRows = append(r.EmptyRows, i)
		}
	}

	if r.Duplicates > 0 {
		pct := float64(r.Duplicates) / float64(r.Rows) * 100
		r.Problems = append(r.Problems, fmt.Sprintf("%d linhas duplicadas (%.1f%%)", r.Duplicates, pct))
	}
}

func isEmptyRow(t *types.Table, i int) bool {
	for _, v := range t.RowValues(i) {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r *Report) analyzeNulls(t *types.Table) {
	explanations := nullExplanations[r.Category]

	var emptyCols []string
	for _, col := range t.Columns() {
		nulls := 0
		for i := 0; i < r.Rows; i++ {
			if _, ok := t.Value(i, col); !ok {
				nulls++
			}
		}
		if nulls == 0 {
			continue
		}
		if nulls == r.Rows {
			emptyCols = append(emptyCols, col)
		}

		nc := NullColumn{Column: col, Nulls: nulls, Percent: float64(nulls) / float64(r.Rows) * 100}
		if len(r.NullColumns) < maxExplained {
			nc.Explanation = explain(col, explanations)
		}
		r.NullColumns = append(r.NullColumns, nc)
		r.TotalNulls += nulls
	}

	if r.TotalNulls > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Total: %d campos vazios", r.TotalNulls))
	}
	if len(emptyCols) > 0 {
		r.Alerts = append(r.Alerts, fmt.Sprintf("Colunas totalmente vazias: %s", strings.Join(emptyCols, ", ")))
	}
}

func explain(col string, explanations []explanation) string {
	name := textutil.Fold(col)
	for _, e := range explanations {
		if strings.Contains(name, e.pattern) {
			return e.text
		}
	}
	return ""
}

func (r *Report) analyzeFiscal(t *types.Table) {
	hints := make(map[string]bool)
	add := func(h string) {
		if !hints[h] {
			hints[h] = true
			r.FiscalHints = append(r.FiscalHints, h)
		}
	}

	for _, col := range t.Columns() {
		name := textutil.Fold(col)
		for i := 0; i < r.Rows; i++ {
			v, ok := t.Value(i, col)
			if !ok {
				continue
			}
			v = strings.TrimSpace(v)
			switch {
			case strings.Contains(name, "cfop"):
				if strings.HasPrefix(v, "6") && textutil.Digits(v) == v {
					add(hintInterstate)
				}
			case strings.Contains(name, "issretido"):
				if v == "2" {
					add(hintWithheld)
				}
			case strings.Contains(name, "cst"):
				if v == "40" || v == "41" {
					add(hintUntaxed)
				}
			}
		}
	}

	if r.Category == doctype.CategoryInvoice || r.Category == doctype.CategoryMixed {
		add(hintReform)
	}
}

func (r *Report) analyzeCFOP(t *types.Table) {
	for _, col := range t.Columns() {
		if strings.Contains(textutil.Fold(col), "cfop") {
			r.CFOPColumn = col
			break
		}
	}
	if r.CFOPColumn == "" {
		return
	}

	counts := make(map[string]int)
	for i := 0; i < r.Rows; i++ {
		if v, ok := t.Value(i, r.CFOPColumn); ok {
			counts[strings.TrimSpace(v)]++
		}
	}

	for code, n := range counts {
		r.CFOPFrequency = append(r.CFOPFrequency, CFOPCount{CFOP: code, Count: n})
		if len(code) != 4 || textutil.Digits(code) != code {
			r.InvalidCFOPs = append(r.InvalidCFOPs, code)
		}
	}
	sort.Slice(r.CFOPFrequency, func(i, j int) bool {
		if r.CFOPFrequency[i].Count != r.CFOPFrequency[j].Count {
			return r.CFOPFrequency[i].Count > r.CFOPFrequency[j].Count
		}
		return r.CFOPFrequency[i].CFOP < r.CFOPFrequency[j].CFOP
	})
	sort.Strings(r.InvalidCFOPs)
}

// Format renders the report as plain text.
func (r *Report) Format() string {
	var sb strings.Builder

	sb.WriteString("ANÁLISE DE QUALIDADE DOS DADOS\n")
	sb.WriteString("──────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("Total: %d linhas | %d colunas\n", r.Rows, r.Columns))
	sb.WriteString(fmt.Sprintf("Tipo de documento: %s\n", r.Category))
	sb.WriteString(fmt.Sprintf("Duplicatas: %d linhas\n", r.Duplicates))
	sb.WriteString(fmt.Sprintf("Linhas vazias: %d\n", len(r.EmptyRows)))
	sb.WriteString(fmt.Sprintf("Campos vazios: %d colunas afetadas\n", len(r.NullColumns)))

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString("\n" + title + ":\n")
		for _, it := range items {
			sb.WriteString("  - " + it + "\n")
		}
	}

	section("PROBLEMAS", r.Problems)
	section("AVISOS", r.Warnings)

	var explained []string
	for _, nc := range r.NullColumns {
		if nc.Explanation != "" {
			explained = append(explained, fmt.Sprintf("%s (%d, %.0f%%): %s", nc.Column, nc.Nulls, nc.Percent, nc.Explanation))
		}
	}
	if len(explained) > 0 {
		section(fmt.Sprintf("EXPLICAÇÃO CAMPOS VAZIOS (%s)", r.Category), explained)
	}

	section("DICAS FISCAIS", r.FiscalHints)

	if len(r.CFOPFrequency) > 0 {
		var lines []string
		for _, c := range r.CFOPFrequency {
			lines = append(lines, fmt.Sprintf("%s: %d", c.CFOP, c.Count))
		}
		section(fmt.Sprintf("CFOPs MAIS UTILIZADOS (%s)", r.CFOPColumn), lines)
	}
	if len(r.InvalidCFOPs) > 0 {
		section("CFOPs COM ESTRUTURA INVÁLIDA", []string{strings.Join(r.InvalidCFOPs, ", ")})
	}

	section("ALERTAS", r.Alerts)

	return sb.String()
}
