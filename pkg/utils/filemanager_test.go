package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.xml"))
	touch(t, filepath.Join(dir, "a.CSV"))
	touch(t, filepath.Join(dir, "notes.pdf"))
	touch(t, filepath.Join(dir, "sub", "c.xlsx"))

	fm := NewFileManager(dir, "", "", "")

	files, err := fm.DiscoverInputFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.xml")}, files)

	fm.Recursive = true
	files, err = fm.DiscoverInputFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.CSV"),
		filepath.Join(dir, "b.xml"),
		filepath.Join(dir, "sub", "c.xlsx"),
	}, files)

	_, err = NewFileManager(filepath.Join(dir, "missing"), "", "", "").DiscoverInputFiles()
	assert.Error(t, err)
}

func TestResolveInputs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "in", "a.xml"))
	touch(t, filepath.Join(dir, "in", "b.xml"))
	single := filepath.Join(dir, "z.xml")
	touch(t, single)

	fm := NewFileManager("", "", "", "")
	files, err := fm.ResolveInputs([]string{single, filepath.Join(dir, "in"), single})
	require.NoError(t, err)
	assert.Equal(t, []string{single, filepath.Join(dir, "in", "a.xml"), filepath.Join(dir, "in", "b.xml")}, files)

	_, err = fm.ResolveInputs([]string{filepath.Join(dir, "nope.xml")})
	assert.Error(t, err)
}

func TestArchiveInputFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "a.xml")
	touch(t, src)

	fm := NewFileManager(filepath.Join(dir, "in"), "", filepath.Join(dir, "archive"), "")
	dst, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "archive", "a.xml"), dst)
	assert.FileExists(t, dst)
	assert.NoFileExists(t, src)
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("notas_{date}_{uuid}_{run}", ".csv", map[string]string{"run": "x"})
	assert.Regexp(t, regexp.MustCompile(`^notas_\d{8}_[0-9a-f-]{36}_x\.csv$`), name)

	assert.Equal(t, "saida.JSON", GenerateOutputFileName("saida.JSON", ".json", nil))
	assert.Equal(t, "saida", GenerateOutputFileName("saida", "", nil))
}

func TestWriteLogs(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp: time.Now(), FileName: "a.xml", ErrorType: "parse", ErrorMessage: "malformed", RowNumber: 2, Column: "cfop",
	}}, dir)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total Errors: 1")
	assert.Contains(t, string(data), "Column:     cfop")

	start := time.Now()
	path, err = WriteSummaryLog(ProcessingSummary{
		RunID:           "run-1",
		StartTime:       start,
		EndTime:         start.Add(time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "b.xml", Kind: "xml", Family: "nfe", Rows: 3}},
		FailedFilesList: []FailedFileInfo{{InputFile: "a.xml", ErrorMessage: "malformed"}},
	}, dir)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Run ID:         run-1")
	assert.Contains(t, string(data), "Kind:         xml nfe")
	assert.Contains(t, string(data), "Error: malformed")
}
