package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/fiscal-normalizer/internal/aggregator"
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

func newValidator(opts ValidationOptions) *Validator {
	return NewValidator(aggregator.DefaultPolicy(), opts)
}

func TestValidate_Rules(t *testing.T) {
	table := tbl(
		[]string{"item_CFOP", "emit_CNPJ", "prestador_CpfCnpj", "dest_CPF", "total_vNF", "ide_dhEmi", "emit_xNome"},
		[]string{"5102", "12.345.678/0001-90", "123.456.789-01", "12345678901", "175,50", "2025-03-10T10:00:00-03:00", "Loja"},
		[]string{"510", "123", "", "1", "abc", "10/03/2025", ""},
	)

	res := newValidator(ValidationOptions{}).Validate(table)

	assert.False(t, res.IsValid)
	assert.Equal(t, 2, res.RowsValidated)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, 3, res.WarningCount)

	rules := map[string]int{}
	for _, e := range res.Errors {
		assert.Equal(t, 2, e.Row)
		rules[e.Rule]++
	}
	assert.Equal(t, map[string]int{"cfop": 1, "cnpj": 1, "cpf": 1, "amount": 1}, rules)
}

func TestValidate_CleanTableIsValid(t *testing.T) {
	table := tbl([]string{"cfop", "valor"}, []string{"6102", "10,00"})

	res := newValidator(ValidationOptions{}).Validate(table)

	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 2, res.CellsValidated)
}

func TestValidate_Options(t *testing.T) {
	table := tbl([]string{"cfop", "valor"},
		[]string{"1", "x"},
		[]string{"2", "y"},
	)

	res := newValidator(ValidationOptions{StopOnFirstError: true}).Validate(table)
	assert.Len(t, res.Errors, 1)

	res = newValidator(ValidationOptions{TreatWarningsAsErrors: true}).Validate(
		tbl([]string{"valor"}, []string{"x"}))
	assert.False(t, res.IsValid)
	assert.Equal(t, 0, res.ErrorCount)
}

func TestFormatErrors(t *testing.T) {
	assert.Equal(t, "No validation errors", FormatErrors(nil))

	out := FormatErrors([]*ValidationError{{Severity: SeverityError, Column: "cfop", Value: "1", Message: "bad", Row: 3}})
	assert.Contains(t, out, "1 finding(s)")
	assert.Contains(t, out, "[ERROR] Row 3, Column 'cfop': bad (value: '1')")
}

func TestWriteErrorLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	errs := []*ValidationError{{Severity: SeverityWarning, Column: "valor", Value: "x", Message: "bad", Row: 1}}

	require.NoError(t, WriteErrorLog(path, "notas.xml", errs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Source File: notas.xml")
	assert.Contains(t, string(data), "[WARNING] Row 1, Column 'valor'")
}
