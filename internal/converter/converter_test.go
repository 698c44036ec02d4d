package converter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/fiscal-normalizer/internal/config"
	"github.com/ginjaninja78/fiscal-normalizer/internal/xmlparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const invoiceXML = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe">
  <NFe>
    <infNFe Id="NFe35250312345678000190550010000000101000000101">
      <ide><nNF>10</nNF><dhEmi>2025-03-10T10:00:00-03:00</dhEmi></ide>
      <emit><CNPJ>12345678000190</CNPJ><xNome>Loja Exemplo</xNome></emit>
      <det nItem="1"><prod><CFOP>5102</CFOP><vProd>10.00</vProd></prod></det>
      <det nItem="2"><prod><CFOP>5102</CFOP><vProd>20.00</vProd></prod></det>
      <total><ICMSTot><vNF>30.00</vNF></ICMSTot></total>
    </infNFe>
  </NFe>
</nfeProc>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig() *config.MainConfig {
	return &config.MainConfig{
		SourceEncoding:  config.EncodingUTF8,
		ContinueOnError: true,
	}
}

func TestProcessFile_Invoice(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nota.xml", invoiceXML)

	res := New(testConfig(), nil, nil).ProcessFile(path)

	require.NoError(t, res.Error)
	assert.True(t, res.Success)
	assert.Equal(t, SourceXML, res.Kind)
	assert.Equal(t, "nfe", res.Family)
	assert.Equal(t, 2, res.Table.Len())
	assert.True(t, res.Table.HasColumn("total_vNF"))
	assert.Equal(t, 2, res.Stats.RowsProduced)
	assert.Zero(t, res.Stats.ValidationErrors)
}

func TestProcessFile_CSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notas.csv", " Emitente ;;cfop;cfop\nLoja A;x;5102;6102\nLoja A;x;5102;6102\nLoja B;;6102;\n")

	res := New(testConfig(), nil, nil).ProcessFile(path)

	require.NoError(t, res.Error)
	assert.Equal(t, SourceCSV, res.Kind)
	assert.Empty(t, res.Family)
	assert.Equal(t, []string{"Emitente", "Column_2", "cfop", "cfop.1"}, res.Table.Columns())
	assert.Equal(t, 2, res.Table.Len(), "duplicate rows are removed")
}

func TestProcessFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"emitente", "valor"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Loja A", "100,00"}))
	path := filepath.Join(t.TempDir(), "notas.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res := New(testConfig(), nil, nil).ProcessFile(path)

	require.NoError(t, res.Error)
	assert.Equal(t, SourceXLSX, res.Kind)
	v, ok := res.Table.Value(0, "valor")
	assert.True(t, ok)
	assert.Equal(t, "100,00", v)
}

func TestProcessFile_Failures(t *testing.T) {
	dir := t.TempDir()
	conv := New(testConfig(), nil, nil)

	res := conv.ProcessFile(writeFile(t, dir, "notas.pdf", "%PDF"))
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Error, ErrUnsupportedSource)

	res = conv.ProcessFile(writeFile(t, dir, "broken.xml", "<nfeProc><NFe>"))
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Error, xmlparser.ErrMalformedInput)
	assert.Nil(t, res.Table)
}

func TestProcessFile_ValidationStopsWhenNotContinuing(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notas.csv", "cfop,valor\n51,10\n")

	res := New(testConfig(), nil, nil).ProcessFile(path)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Stats.ValidationErrors)

	cfg := testConfig()
	cfg.ContinueOnError = false
	res = New(cfg, nil, nil).ProcessFile(path)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Error, ErrValidationFailed)
}

func TestRun_MergesInInputOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.xml", invoiceXML),
		writeFile(t, dir, "b.xml", "<broken"),
		writeFile(t, dir, "c.csv", "emitente;valor\nLoja C;5,00\n"),
	}

	batch, err := New(testConfig(), nil, nil).Run(context.Background(), paths)
	require.NoError(t, err)

	assert.NotEmpty(t, batch.RunID)
	assert.Equal(t, BatchStats{FilesProcessed: 3, FilesSucceeded: 2, FilesFailed: 1, TotalRows: 3}, batch.Stats)
	require.Len(t, batch.Failed(), 1)
	assert.Equal(t, paths[1], batch.Failed()[0].FilePath)

	v, ok := batch.Table.Value(2, "emitente")
	assert.True(t, ok)
	assert.Equal(t, "Loja C", v)
	_, ok = batch.Table.Value(0, "emitente")
	assert.False(t, ok)
}

func TestRun_StopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.xml", "<broken"),
		writeFile(t, dir, "b.xml", invoiceXML),
	}
	cfg := testConfig()
	cfg.ContinueOnError = false

	batch, err := New(cfg, nil, nil).Run(context.Background(), paths)
	assert.ErrorIs(t, err, xmlparser.ErrMalformedInput)
	assert.Len(t, batch.Results, 1)
	assert.Equal(t, 0, batch.Table.Len())
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := New(testConfig(), nil, nil).Run(ctx, []string{"a.xml"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, batch.Results)
}

func TestCleanHeaders(t *testing.T) {
	got := CleanHeaders([]string{" Valor ", "", "valor", "Valor", "Valor", "Valor.1\x00"})
	assert.Equal(t, []string{"Valor", "Column_2", "valor", "Valor.1", "Valor.2", "Valor.1.1"}, got)
}
