// =============================================================================
// Fiscal Normalizer - File Management Utilities
// =============================================================================
//
// Handles the file system side of a run:
//   - discovering input documents (.xml, .csv, .txt, .xlsx, .xlsm)
//   - generating output file names
//   - archiving processed inputs
//   - writing the run summary and error logs
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SupportedExtensions lists the input extensions picked up by discovery.
var SupportedExtensions = []string{".xml", ".csv", ".txt", ".xlsx", ".xlsm"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles discovery and archiving for one run.
type FileManager struct {
	InputDir   string
	OutputDir  string
	ArchiveDir string
	LogDir     string

	// Recursive makes discovery descend into subdirectories.
	Recursive bool

	// UseDateSubdirs archives into ArchiveDir/YYYY/MM/DD.
	UseDateSubdirs bool
}

// NewFileManager creates a FileManager.
func NewFileManager(inputDir, outputDir, archiveDir, logDir string) *FileManager {
	return &FileManager{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
		LogDir:     logDir,
	}
}

// EnsureDirectories creates the output, archive and log directories.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.ArchiveDir, fm.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles returns the supported files of InputDir in sorted order.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	info, err := os.Stat(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", fm.InputDir)
	}

	var files []string
	err = filepath.WalkDir(fm.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != fm.InputDir && !fm.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSupported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// ResolveInputs expands args (files or directories) into supported input
// files. Directories are scanned like DiscoverInputFiles; files are taken as
// given. Duplicates are dropped and input order is kept.
func (fm *FileManager) ResolveInputs(args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		sub := *fm
		sub.InputDir = arg
		files, err := sub.DiscoverInputFiles()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}

// IsSupported reports whether path has a supported input extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// =============================================================================
// ARCHIVING
// =============================================================================

// ArchiveInputFile moves filePath into the archive directory and returns the
// new path. Moves across devices fall back to copy and delete.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.getArchivePath(filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

func (fm *FileManager) getArchivePath(filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseDateSubdirs {
		now := time.Now()
		return filepath.Join(
			fm.ArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(fm.ArchiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands the placeholders of format and appends ext
// when the name does not already end with it.
//
// PLACEHOLDERS:
//   - {uuid}:      random UUID
//   - {timestamp}: YYYYMMDD_HHMMSS
//   - {date}:      YYYYMMDD
//   - {time}:      HHMMSS
//   - {key}:       any key of params
func GenerateOutputFileName(format, ext string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}

	return result
}

// =============================================================================
// ERROR LOG
// =============================================================================

// ErrorLogEntry is one line of the run error log.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
	RowNumber    int
	Column       string
	Value        string
}

// WriteErrorLog writes entries to a timestamped file in logDir and returns its
// path. Nothing is written when entries is empty.
func WriteErrorLog(entries []ErrorLogEntry, logDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("error_log_%s.txt", time.Now().Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Fiscal Normalizer - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:  %s\n"+
			"  File:       %s\n"+
			"  Error Type: %s\n"+
			"  Message:    %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)

		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number: %d\n", entry.RowNumber)
		}
		if entry.Column != "" {
			fmt.Fprintf(writer, "  Column:     %s\n", entry.Column)
		}
		if entry.Value != "" {
			fmt.Fprintf(writer, "  Value:      %s\n", entry.Value)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// SUMMARY LOG
// =============================================================================

// ProcessingSummary describes one run.
type ProcessingSummary struct {
	RunID      string
	StartTime  time.Time
	EndTime    time.Time
	OutputFile string

	TotalFiles         int
	SuccessfulFiles    int
	FailedFiles        int
	TotalRows          int
	ValidationErrors   int
	ValidationWarnings int

	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo describes one successful input.
type ProcessedFileInfo struct {
	InputFile   string
	Kind        string
	Family      string
	ArchivePath string
	Rows        int
	Columns     int
	ProcessTime time.Duration
}

// FailedFileInfo describes one failed input.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes the summary to a timestamped file in logDir and
// returns its path.
func WriteSummaryLog(summary ProcessingSummary, logDir string) (string, error) {
	summaryPath := filepath.Join(logDir, fmt.Sprintf("processing_summary_%s.txt", time.Now().Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Fiscal Normalizer - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Output:         %s\n\n"+
		"Statistics:\n"+
		"  Total Files:          %d\n"+
		"  Successful:           %d\n"+
		"  Failed:               %d\n"+
		"  Total Rows:           %d\n"+
		"  Validation Errors:    %d\n"+
		"  Validation Warnings:  %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.OutputFile,
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalRows,
		summary.ValidationErrors,
		summary.ValidationWarnings)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Kind:         %s %s\n", pf.Kind, pf.Family)
			fmt.Fprintf(writer, "  Rows:         %d\n", pf.Rows)
			fmt.Fprintf(writer, "  Columns:      %d\n", pf.Columns)
			if pf.ArchivePath != "" {
				fmt.Fprintf(writer, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
