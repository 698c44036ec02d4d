package quality

import (
	"testing"

	"github.com/ginjaninja78/fiscal-normalizer/internal/doctype"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tbl(cols []string, rows ...[]string) *types.Table {
	var recs []*types.FlatRecord
	for _, r := range rows {
		rec := types.NewFlatRecord()
		for i, v := range r {
			rec.InsertIfAbsent(cols[i], v)
		}
		recs = append(recs, rec)
	}
	return types.NewTable(cols, recs)
}

func mixedTable() *types.Table {
	return tbl(
		[]string{"emit_CNPJ", "item_CFOP", "item_CST", "prestador_Cnpj", "servico_IssRetido", "obs"},
		[]string{"12345678000190", "6102", "40", "", "", ""},
		[]string{"12345678000190", "6102", "40", "", "", ""},
		[]string{"12345678000190", "510", "00", "", "", ""},
		[]string{"", "", "", "98765432000110", "2", ""},
		[]string{"", "", "", "", "", ""},
	)
}

func TestAnalyze_Mixed(t *testing.T) {
	table := mixedTable()
	r := Analyze(table, doctype.Classify(table))

	assert.Equal(t, doctype.CategoryMixed, r.Category)
	assert.Equal(t, 5, r.Rows)
	assert.Equal(t, 6, r.Columns)
	assert.Equal(t, 1, r.Duplicates)
	assert.Equal(t, []int{4}, r.EmptyRows)

	require.NotEmpty(t, r.NullColumns)
	assert.Equal(t, "emit_CNPJ", r.NullColumns[0].Column)
	assert.Equal(t, 2, r.NullColumns[0].Nulls)
	assert.InDelta(t, 40.0, r.NullColumns[0].Percent, 0.001)
	assert.Equal(t, `"emit_*" vazio: pertence só a NFe`, r.NullColumns[0].Explanation)

	assert.Equal(t, []string{hintInterstate, hintUntaxed, hintWithheld, hintReform}, r.FiscalHints)

	assert.Equal(t, "item_CFOP", r.CFOPColumn)
	assert.Equal(t, []CFOPCount{{"6102", 2}, {"510", 1}}, r.CFOPFrequency)
	assert.Equal(t, []string{"510"}, r.InvalidCFOPs)

	assert.Contains(t, r.Alerts, "Colunas totalmente vazias: obs")
	assert.Len(t, r.Alerts, 2)
	assert.Len(t, r.Problems, 1)
}

func TestAnalyze_ServiceOnlyHasNoReformHint(t *testing.T) {
	table := tbl([]string{"prestador_Cnpj", "nfse_Numero"}, []string{"98765432000110", "1"})
	r := Analyze(table, doctype.Classify(table))

	assert.Equal(t, doctype.CategoryService, r.Category)
	assert.NotContains(t, r.FiscalHints, hintReform)
	assert.Empty(t, r.NullColumns)
	assert.Empty(t, r.CFOPColumn)
}

func TestAnalyze_EmptyTable(t *testing.T) {
	r := Analyze(types.NewTable(nil, nil), doctype.Result{Category: doctype.CategoryNone})

	assert.Equal(t, 0, r.Rows)
	assert.Equal(t, []string{"Nenhuma linha de dados"}, r.Problems)
}

func TestReport_Format(t *testing.T) {
	table := mixedTable()
	out := Analyze(table, doctype.Classify(table)).Format()

	assert.Contains(t, out, "Total: 5 linhas | 6 colunas")
	assert.Contains(t, out, "Tipo de documento: MISTO")
	assert.Contains(t, out, "EXPLICAÇÃO CAMPOS VAZIOS (MISTO)")
	assert.Contains(t, out, "6102: 2")
	assert.Contains(t, out, "CFOPs COM ESTRUTURA INVÁLIDA")
	assert.Contains(t, out, hintReform)
}
