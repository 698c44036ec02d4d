// =============================================================================
// Fiscal Normalizer - Ingest Command
// =============================================================================
//
// COMMAND USAGE:
//   fiscalnorm ingest [files or directories...] [flags]
//
// FLAGS:
//   --format, -f  : Output format (csv, json, xlsx, xml)
//   --output, -o  : Output file path (default: output_dir + output_name_format)
//   --totals      : Add a "Totais" sheet to XLSX output
//   --dry-run     : Process without writing any file
//
// PROCESSING PIPELINE:
//   1. Discover input files (args, or input_dir)
//   2. Normalize every file and merge the tables
//   3. Export the merged table
//   4. Archive processed inputs (archive_on_success)
//   5. Write summary and error logs
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/fiscal-normalizer/internal/aggregator"
	"github.com/ginjaninja78/fiscal-normalizer/internal/config"
	"github.com/ginjaninja78/fiscal-normalizer/internal/converter"
	"github.com/ginjaninja78/fiscal-normalizer/internal/export"
	"github.com/ginjaninja78/fiscal-normalizer/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	ingestFormat string
	ingestOutput string
	ingestTotals bool
	dryRun       bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files or directories...]",
	Short: "Normalize fiscal documents into a single table",
	Long: `The ingest command reads every XML, CSV and XLSX input, normalizes each
document into rows, merges them into one table and writes it in the
configured output format.

A file that cannot be processed is reported and skipped; the remaining files
are still merged. Set continue_on_error: false to stop at the first failure.

On completion:
  - The merged table is written to the output directory
  - A processing summary is written to the log directory
  - Failures and validation findings are written to an error log
  - Inputs are archived when archive_on_success is enabled`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVarP(&ingestFormat, "format", "f", "", "Output format: csv, json, xlsx or xml")
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", "", "Output file path")
	ingestCmd.Flags().BoolVar(&ingestTotals, "totals", false, "Add a totals sheet to XLSX output")
	ingestCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Process without writing any file")
}

func runIngest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if ingestFormat != "" {
		appConfig.OutputFormat = strings.ToLower(ingestFormat)
		if err := appConfig.Validate(); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "=== Fiscal Normalizer ===")

	// =========================================================================
	// STEP 1-2: DISCOVER AND NORMALIZE
	// =========================================================================

	batch, runErr := runBatch(cmd, args)
	if batch == nil {
		return runErr
	}

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", batch.Stats.FilesProcessed)
	fmt.Fprintf(out, "Successful:      %d\n", batch.Stats.FilesSucceeded)
	fmt.Fprintf(out, "Errors:          %d\n", batch.Stats.FilesFailed)
	fmt.Fprintf(out, "Rows:            %d\n", batch.Stats.TotalRows)
	fmt.Fprintf(out, "Columns:         %d\n", len(batch.Table.Columns()))
	fmt.Fprintf(out, "Time elapsed:    %s\n", batch.EndTime.Sub(batch.StartTime))

	if dryRun {
		fmt.Fprintln(out, "\nDry run: no files written.")
		return runErr
	}

	if err := appConfig.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: EXPORT
	// =========================================================================

	outputPath := ""
	if batch.Stats.FilesSucceeded > 0 {
		var err error
		outputPath, err = writeOutput(batch)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Output:          %s\n", outputPath)
	}

	// =========================================================================
	// STEP 4: ARCHIVE
	// =========================================================================

	archived := make(map[string]string)
	if appConfig.ArchiveOnSuccess && outputPath != "" {
		fm := newFileManager()
		for _, r := range batch.Results {
			if !r.Success {
				continue
			}
			dst, err := fm.ArchiveInputFile(r.FilePath)
			if err != nil {
				logger.Warn("Failed to archive input", zap.String("file", r.FilePath), zap.Error(err))
				continue
			}
			archived[r.FilePath] = dst
		}
	}

	// =========================================================================
	// STEP 5: LOGS
	// =========================================================================

	if err := writeRunLogs(batch, outputPath, archived); err != nil {
		logger.Warn("Failed to write run logs", zap.Error(err))
	}

	return runErr
}

func writeOutput(batch *converter.Batch) (string, error) {
	format := appConfig.OutputFormat

	path := ingestOutput
	if path == "" {
		name := utils.GenerateOutputFileName(appConfig.OutputNameFormat, export.Extension(format),
			map[string]string{"run": batch.RunID})
		path = filepath.Join(appConfig.OutputDir, name)
	}

	opts := export.Options{}
	if format == config.FormatCSV && appConfig.CSVDelimiter != "" {
		opts.Delimiter = []rune(appConfig.CSVDelimiter)[0]
	}
	if ingestTotals && format == config.FormatXLSX {
		agg := aggregator.New(appPolicy.Value, logger, appConfig.MaxConcurrency)
		totals, err := agg.Aggregate(batch.Table)
		switch {
		case err == nil:
			opts.Totals = totals
		case errors.Is(err, aggregator.ErrNoAggregableData):
			logger.Info("No monetary values found, totals sheet skipped")
		default:
			return "", err
		}
	}

	if err := export.Write(format, batch.Table, path, opts); err != nil {
		return "", fmt.Errorf("failed to write output: %w", err)
	}
	return path, nil
}

func writeRunLogs(batch *converter.Batch, outputPath string, archived map[string]string) error {
	summary := utils.ProcessingSummary{
		RunID:           batch.RunID,
		StartTime:       batch.StartTime,
		EndTime:         batch.EndTime,
		OutputFile:      outputPath,
		TotalFiles:      batch.Stats.FilesProcessed,
		SuccessfulFiles: batch.Stats.FilesSucceeded,
		FailedFiles:     batch.Stats.FilesFailed,
		TotalRows:       batch.Stats.TotalRows,
	}

	var entries []utils.ErrorLogEntry
	now := time.Now()

	for _, r := range batch.Results {
		summary.ValidationErrors += r.Stats.ValidationErrors
		summary.ValidationWarnings += r.Stats.ValidationWarnings

		if !r.Success {
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.FilePath,
				ErrorMessage: r.Error.Error(),
			})
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp:    now,
				FileName:     r.FilePath,
				ErrorType:    "processing",
				ErrorMessage: r.Error.Error(),
			})
		} else {
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   r.FilePath,
				Kind:        string(r.Kind),
				Family:      r.Family,
				ArchivePath: archived[r.FilePath],
				Rows:        r.Stats.RowsProduced,
				Columns:     r.Stats.ColumnsProduced,
				ProcessTime: r.Stats.ProcessingTime,
			})
		}

		if r.Validation == nil {
			continue
		}
		for _, ve := range r.Validation.Errors {
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp:    now,
				FileName:     r.FilePath,
				ErrorType:    "validation/" + ve.Severity,
				ErrorMessage: ve.Message,
				RowNumber:    ve.Row,
				Column:       ve.Column,
				Value:        ve.Value,
			})
		}
	}

	summaryPath, err := utils.WriteSummaryLog(summary, appConfig.LogDir)
	if err != nil {
		return err
	}
	logger.Info("Summary written", zap.String("path", summaryPath))

	errorPath, err := utils.WriteErrorLog(entries, appConfig.LogDir)
	if err != nil {
		return err
	}
	if errorPath != "" {
		logger.Info("Error log written", zap.String("path", errorPath), zap.Int("entries", len(entries)))
	}
	return nil
}
