// =============================================================================
// Fiscal Normalizer - CSV Parser
// =============================================================================
//
// Reads CSV exports (spreadsheets saved by accounting systems, previous
// runs of this tool) as a tabular source. The converter turns the result into
// a normalized table alongside the XML documents.
//
// FEATURES:
//   - Delimiter sniffing (, ; TAB |) when none is configured
//   - Latin-1 / Windows-1252 decoding for legacy exports
//   - UTF-8 byte order mark removal
//   - Multi-line headers joined with a space
//   - Empty rows skipped
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrEmptyFile is returned when a CSV source has no rows at all.
var ErrEmptyFile = errors.New("CSV file is empty")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sniffCandidates are the delimiters considered when sniffing.
var sniffCandidates = []rune{',', ';', '\t', '|'}

// =============================================================================
// DATA STRUCTURES
// =============================================================================

// Settings controls how a CSV source is read.
type Settings struct {
	// Delimiter is a single character, or "tab"/"pipe"/"semicolon". Empty
	// means sniff from the first non-empty line.
	Delimiter string

	// Encoding is utf-8 (default), latin1 or windows-1252.
	Encoding string

	// HeaderRows is the number of header lines; defaults to 1.
	HeaderRows int
}

// CSVData holds the raw content of a CSV source.
type CSVData struct {
	// Headers are the raw header names, one per column.
	Headers []string

	// Rows are the data rows, excluding empty ones. Short rows are padded.
	Rows [][]string

	// SourceFile is the path the data was read from.
	SourceFile string

	// Delimiter is the delimiter used (configured or sniffed).
	Delimiter rune
}

// RowCount returns the number of data rows.
func (d *CSVData) RowCount() int { return len(d.Rows) }

// ColumnCount returns the number of columns.
func (d *CSVData) ColumnCount() int { return len(d.Headers) }

// =============================================================================
// PARSING
// =============================================================================

// Parse reads the CSV file at filePath.
func Parse(filePath string, settings Settings) (*CSVData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := ParseReader(file, settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	data.SourceFile = filePath
	return data, nil
}

// ParseReader reads CSV content from r.
func ParseReader(r io.Reader, settings Settings) (*CSVData, error) {
	decoded, err := decode(r, settings.Encoding)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	delim, err := resolveDelimiter(settings.Delimiter, raw)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(bytes.NewReader(raw))
	configureReader(csvReader, delim)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(allRows) == 0 {
		return nil, ErrEmptyFile
	}

	headerRows := settings.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}

	headers, err := extractHeaders(allRows, headerRows)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	return &CSVData{
		Headers:   headers,
		Rows:      extractDataRows(allRows[headerRows:], len(headers)),
		Delimiter: delim,
	}, nil
}

func decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "latin-1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// resolveDelimiter maps the configured delimiter to a rune, sniffing when
// none is configured.
func resolveDelimiter(configured string, raw []byte) (rune, error) {
	switch strings.ToLower(configured) {
	case "":
		return sniffDelimiter(raw), nil
	case "\\t", "tab":
		return '\t', nil
	case "pipe":
		return '|', nil
	case "semicolon":
		return ';', nil
	case "comma":
		return ',', nil
	}

	runes := []rune(configured)
	if len(runes) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q", configured)
	}
	return runes[0], nil
}

// sniffDelimiter picks the candidate occurring most often, outside quotes, on
// the first non-empty line. Ties go to the earlier candidate; no match means
// comma.
func sniffDelimiter(raw []byte) rune {
	var line string
	for _, l := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}

	counts := make(map[rune]int)
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best, bestCount := ',', 0
	for _, c := range sniffCandidates {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

func configureReader(reader *csv.Reader, delim rune) {
	reader.Comma = delim

	// Allow variable number of fields per record.
	// Legacy exports often have ragged rows.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// extractHeaders returns the header names. With several header lines, the
// non-empty parts of each column are joined with a space.
func extractHeaders(allRows [][]string, headerRows int) ([]string, error) {
	if len(allRows) < headerRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	if headerRows == 1 {
		return allRows[0], nil
	}

	maxCols := 0
	for i := 0; i < headerRows; i++ {
		if len(allRows[i]) > maxCols {
			maxCols = len(allRows[i])
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < headerRows; row++ {
			if col < len(allRows[row]) {
				if value := strings.TrimSpace(allRows[row][col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}

	return headers, nil
}

// extractDataRows drops empty rows and pads or truncates the rest to width.
func extractDataRows(rows [][]string, width int) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isRowEmpty(row) {
			continue
		}
		cells := make([]string, width)
		copy(cells, row)
		out = append(out, cells)
	}
	return out
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
