package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/fiscal-normalizer/internal/aggregator"
	"github.com/ginjaninja78/fiscal-normalizer/internal/config"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() *types.Table {
	cols := []string{"emit_xNome", "total_vNF"}
	a := types.NewFlatRecord()
	a.InsertIfAbsent("emit_xNome", "Loja; \"A\"")
	a.InsertIfAbsent("total_vNF", "10.00")
	b := types.NewFlatRecord()
	b.InsertIfAbsent("total_vNF", "20.00")
	return types.NewTable(cols, []*types.FlatRecord{a, b})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable(), 0))

	require.True(t, bytes.HasPrefix(buf.Bytes(), BOM))

	r := csv.NewReader(bytes.NewReader(buf.Bytes()[len(BOM):]))
	r.Comma = ';'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"emit_xNome", "total_vNF"},
		{"Loja; \"A\"", "10.00"},
		{"", "20.00"},
	}, rows)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTable()))

	var records []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	assert.Equal(t, []map[string]string{
		{"emit_xNome": "Loja; \"A\"", "total_vNF": "10.00"},
		{"total_vNF": "20.00"},
	}, records)

	out := buf.String()
	assert.Less(t, strings.Index(out, "emit_xNome"), strings.Index(out, "total_vNF"), "keys follow column order")
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, types.NewTable(nil, nil)))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, types.NewTable(nil, []*types.FlatRecord{types.NewFlatRecord()})))
	var records []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	assert.Equal(t, []map[string]string{{}}, records)
}

func TestWriteXLSX_WithTotals(t *testing.T) {
	table := sampleTable()
	totals, err := aggregator.New(aggregator.DefaultPolicy(), nil, 1).Aggregate(table)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "notas.xlsx")
	require.NoError(t, Write(config.FormatXLSX, table, path, Options{Totals: totals}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DataSheet, TotalsSheet}, f.GetSheetList())

	rows, err := f.GetRows(DataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"emit_xNome", "total_vNF"}, rows[0])
	assert.Equal(t, []string{"", "20.00"}, rows[2])

	sums, err := f.GetRows(TotalsSheet)
	require.NoError(t, err)
	require.Len(t, sums, 3)
	assert.Equal(t, totalsHeaders, sums[0])
	assert.Equal(t, "total_vNF", sums[1][0])
	assert.Equal(t, "Total Geral", sums[2][0])
	assert.Equal(t, "30", sums[2][1])
}

func TestWrite_Formats(t *testing.T) {
	dir := t.TempDir()
	table := sampleTable()

	for _, format := range []string{config.FormatCSV, config.FormatJSON, config.FormatXML, config.FormatXLSX} {
		path := filepath.Join(dir, "out"+Extension(format))
		require.NoError(t, Write(format, table, path, Options{}), format)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), format)
	}

	err := Write("pdf", table, filepath.Join(dir, "out.pdf"), Options{})
	assert.Error(t, err)
}
