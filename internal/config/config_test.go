package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/fiscal-normalizer/internal/aggregator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, FormatCSV, cfg.OutputFormat)
	assert.Equal(t, EncodingUTF8, cfg.SourceEncoding)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.True(t, cfg.ContinueOnError)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", `
input_dir: ./xmls
output_format: XLSX
source_encoding: ISO-8859-1
max_concurrency: 0
csv_delimiter: ";"
`)
	t.Setenv("FISCALNORM_INPUT_DIR", "/data/in")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.InputDir)
	assert.Equal(t, FormatXLSX, cfg.OutputFormat)
	assert.Equal(t, EncodingLatin1, cfg.SourceEncoding)
	assert.Equal(t, 1, cfg.MaxConcurrency)
	assert.Equal(t, ";", cfg.CSVDelimiter)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeFile(t, "config.yaml", "output_format: pdf\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "config.yaml", "csv_delimiter: ';;'\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := &MainConfig{
		OutputDir:        filepath.Join(root, "out"),
		LogDir:           filepath.Join(root, "logs"),
		ArchiveDir:       filepath.Join(root, "archive"),
		ArchiveOnSuccess: true,
	}

	require.NoError(t, cfg.EnsureDirectories())

	for _, d := range []string{cfg.OutputDir, cfg.LogDir, cfg.ArchiveDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestLoadPolicy_DefaultsWhenEmpty(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, aggregator.DefaultPolicy(), p.Value)
}

func TestLoadPolicy_PartialOverride(t *testing.T) {
	path := writeFile(t, "policy.yaml", `
value:
  priority_tokens: [total_vnf, valor]
document_types:
  service:
    column_prefixes: [prestador_]
`)

	p, err := LoadPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"total_vnf", "valor"}, p.Value.PriorityTokens)
	assert.Equal(t, aggregator.DefaultPolicy().MonetaryTokens, p.Value.MonetaryTokens)
	assert.Equal(t, []string{"prestador_"}, p.DocumentTypes.Service.ColumnPrefixes)
	assert.Empty(t, p.DocumentTypes.Service.RowTokens)
	assert.Equal(t, []string{"emit_", "dest_", "ide_"}, p.DocumentTypes.Invoice.ColumnPrefixes)
}

func TestLoadPolicy_InvalidYAML(t *testing.T) {
	_, err := LoadPolicy(writeFile(t, "policy.yaml", "value: [unclosed"))
	assert.Error(t, err)
}

func TestPolicy_MarshalRoundTrip(t *testing.T) {
	data, err := DefaultPolicy().Marshal()
	require.NoError(t, err)

	path := writeFile(t, "policy.yaml", string(data))
	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), p)
}
