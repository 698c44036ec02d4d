// =============================================================================
// Fiscal Normalizer - Converter Module
// =============================================================================
//
// Orchestrates the pipeline for one source file and for a batch of files.
//
// PER-FILE PIPELINE (ProcessFile):
//   1. Dispatch by extension
//        .xml              -> xmlparser (classify, dialect parse, merge)
//        .csv / .txt       -> csvparser + header/value cleanup
//        .xlsx / .xlsm     -> xlsxparser + header/value cleanup
//   2. Validate the resulting table
//   3. Record statistics
//
// BATCH (Run):
//   Files are processed one after another in input order. A failed file is
//   recorded and skipped; with continue_on_error=false the batch stops at the
//   first failure. Successful tables are merged in input order.
//
// ERROR CONTAINMENT:
//   A panic while processing one file becomes that file's error.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/fiscal-normalizer/internal/config"
	"github.com/ginjaninja78/fiscal-normalizer/internal/csvparser"
	"github.com/ginjaninja78/fiscal-normalizer/internal/logging"
	"github.com/ginjaninja78/fiscal-normalizer/internal/merger"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
	"github.com/ginjaninja78/fiscal-normalizer/internal/validation"
	"github.com/ginjaninja78/fiscal-normalizer/internal/xlsxparser"
	"github.com/ginjaninja78/fiscal-normalizer/internal/xmlparser"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedSource is returned for files with an unknown extension.
	ErrUnsupportedSource = errors.New("unsupported source file")

	// ErrValidationFailed is returned when validation finds errors and
	// continue_on_error is disabled.
	ErrValidationFailed = errors.New("validation failed")

	// ErrPanic wraps a recovered panic.
	ErrPanic = errors.New("panic while processing file")
)

// SourceKind identifies how a file was read.
type SourceKind string

const (
	SourceXML  SourceKind = "xml"
	SourceCSV  SourceKind = "csv"
	SourceXLSX SourceKind = "xlsx"
)

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Kind is the source kind the file was read as.
	Kind SourceKind

	// Family is the XML dialect ("nfe", "nfse", "generic"); empty for
	// tabular sources.
	Family string

	// Table is the normalized table of the file. Nil on failure.
	Table *types.Table

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Validation holds the findings for the table, when it was produced.
	Validation *validation.ValidationResult

	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing of one file.
type ProcessingStats struct {
	RowsProduced       int
	ColumnsProduced    int
	ValidationErrors   int
	ValidationWarnings int
	ProcessingTime     time.Duration
}

// Batch is the outcome of Run.
type Batch struct {
	// RunID identifies the run in logs and output names.
	RunID string

	StartTime time.Time
	EndTime   time.Time

	// Table is the merge of every successful file, in input order.
	Table *types.Table

	// Results has one entry per processed file, in input order.
	Results []Result

	Stats BatchStats
}

// BatchStats summarises a batch.
type BatchStats struct {
	FilesProcessed int
	FilesSucceeded int
	FilesFailed    int
	TotalRows      int
}

// Failed returns the results of files that failed.
func (b *Batch) Failed() []Result {
	var out []Result
	for _, r := range b.Results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// CONVERTER
// =============================================================================

// Converter runs the pipeline. It holds no per-file state and is safe for
// concurrent use.
type Converter struct {
	cfg       *config.MainConfig
	policy    *config.Policy
	validator *validation.Validator
	log       *zap.Logger
}

// New creates a Converter. A nil policy selects the built-in defaults.
func New(cfg *config.MainConfig, policy *config.Policy, log *zap.Logger) *Converter {
	if cfg == nil {
		cfg = &config.MainConfig{ContinueOnError: true, SourceEncoding: config.EncodingUTF8}
	}
	if policy == nil {
		policy = config.DefaultPolicy()
	}
	return &Converter{
		cfg:       cfg,
		policy:    policy,
		validator: validation.NewValidator(policy.Value, validation.ValidationOptions{}),
		log:       logging.OrNop(log),
	}
}

// ProcessFile runs the pipeline for one file. It never panics; failures are
// reported in the Result.
func (c *Converter) ProcessFile(path string) (result Result) {
	startTime := time.Now()
	result = Result{FilePath: path}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Table = nil
			result.Error = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	c.log.Debug("Processing file", zap.String("file", path))

	// =========================================================================
	// STEP 1: READ AND NORMALIZE
	// =========================================================================

	table, err := c.readSource(path, &result)
	if err != nil {
		result.Error = err
		return result
	}

	result.Stats.RowsProduced = table.Len()
	result.Stats.ColumnsProduced = len(table.Columns())

	// =========================================================================
	// STEP 2: VALIDATE
	// =========================================================================

	vr := c.validator.Validate(table)
	result.Validation = vr
	result.Stats.ValidationErrors = vr.ErrorCount
	result.Stats.ValidationWarnings = vr.WarningCount

	for _, ve := range vr.Errors {
		c.log.Debug("Validation finding", zap.String("file", path), zap.String("finding", ve.Error()))
	}

	if vr.ErrorCount > 0 && !c.cfg.ContinueOnError {
		result.Error = fmt.Errorf("%w with %d errors", ErrValidationFailed, vr.ErrorCount)
		return result
	}

	// =========================================================================
	// STEP 3: DONE
	// =========================================================================

	result.Table = table
	result.Success = true

	c.log.Debug("Processed file",
		zap.String("file", path),
		zap.String("kind", string(result.Kind)),
		zap.Int("rows", result.Stats.RowsProduced),
		zap.Int("columns", result.Stats.ColumnsProduced))

	return result
}

func (c *Converter) readSource(path string, result *Result) (*types.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		result.Kind = SourceXML
		parsed, err := xmlparser.ParseFile(path, c.log)
		if err != nil {
			return nil, err
		}
		result.Family = parsed.Family.String()
		return parsed.Table, nil

	case ".csv", ".txt":
		result.Kind = SourceCSV
		data, err := csvparser.Parse(path, csvparser.Settings{
			Delimiter: c.cfg.CSVDelimiter,
			Encoding:  c.cfg.SourceEncoding,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		return BuildTable(data.Headers, data.Rows), nil

	case ".xlsx", ".xlsm":
		result.Kind = SourceXLSX
		return c.readWorkbook(path)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, filepath.Base(path))
	}
}

func (c *Converter) readWorkbook(path string) (*types.Table, error) {
	if c.cfg.XLSXSheet != xlsxparser.AllSheets {
		data, err := xlsxparser.Parse(path, c.cfg.XLSXSheet)
		if err != nil {
			return nil, fmt.Errorf("failed to parse XLSX: %w", err)
		}
		return BuildTable(data.Headers, data.Rows), nil
	}

	sheets, err := xlsxparser.ParseAllSheets(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XLSX: %w", err)
	}
	tables := make([]*types.Table, 0, len(sheets))
	for _, s := range sheets {
		tables = append(tables, BuildTable(s.Headers, s.Rows))
	}
	return merger.Merge(tables...), nil
}

// =============================================================================
// BATCH PROCESSING
// =============================================================================

// Run processes paths in order and merges the successful tables. It returns
// the partial batch together with an error when ctx is cancelled or, with
// continue_on_error disabled, when a file fails.
func (c *Converter) Run(ctx context.Context, paths []string) (*Batch, error) {
	batch := &Batch{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
		Results:   make([]Result, 0, len(paths)),
	}

	log := c.log.With(zap.String("run_id", batch.RunID))
	log.Info("Starting batch", zap.Int("files", len(paths)))

	var tables []*types.Table
	var runErr error

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("batch interrupted: %w", err)
			break
		}

		res := c.ProcessFile(path)
		batch.Results = append(batch.Results, res)
		batch.Stats.FilesProcessed++

		if res.Success {
			batch.Stats.FilesSucceeded++
			tables = append(tables, res.Table)
			continue
		}

		batch.Stats.FilesFailed++
		log.Warn("Failed to process file", zap.String("file", path), zap.Error(res.Error))

		if !c.cfg.ContinueOnError {
			runErr = fmt.Errorf("processing %s: %w", path, res.Error)
			break
		}
	}

	batch.Table = merger.Merge(tables...)
	batch.Stats.TotalRows = batch.Table.Len()
	batch.EndTime = time.Now()

	log.Info("Batch complete",
		zap.Int("succeeded", batch.Stats.FilesSucceeded),
		zap.Int("failed", batch.Stats.FilesFailed),
		zap.Int("rows", batch.Stats.TotalRows),
		zap.Duration("duration", batch.EndTime.Sub(batch.StartTime)))

	return batch, runErr
}
