package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ginjaninja78/fiscal-normalizer/internal/converter"
	"github.com/ginjaninja78/fiscal-normalizer/pkg/utils"
	"github.com/spf13/cobra"
)

// newFileManager builds a FileManager from the loaded configuration.
func newFileManager() *utils.FileManager {
	fm := utils.NewFileManager(appConfig.InputDir, appConfig.OutputDir, appConfig.ArchiveDir, appConfig.LogDir)
	fm.Recursive = appConfig.Recursive
	return fm
}

// resolveInputs returns the files named by args, or the files of input_dir
// when args is empty.
func resolveInputs(fm *utils.FileManager, args []string) ([]string, error) {
	if len(args) == 0 {
		return fm.DiscoverInputFiles()
	}
	return fm.ResolveInputs(args)
}

// runBatch normalizes the inputs named by args and prints one line per file.
// It returns a nil batch when there is nothing to process.
func runBatch(cmd *cobra.Command, args []string) (*converter.Batch, error) {
	out := cmd.OutOrStdout()
	fm := newFileManager()

	inputs, err := resolveInputs(fm, args)
	if err != nil {
		return nil, fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(inputs) == 0 {
		fmt.Fprintln(out, "No input files found.")
		return nil, nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(inputs))

	conv := converter.New(appConfig, appPolicy, logger)
	batch, runErr := conv.Run(cmd.Context(), inputs)
	printResults(out, batch)

	return batch, runErr
}

func printResults(out io.Writer, batch *converter.Batch) {
	if batch == nil {
		return
	}
	for _, r := range batch.Results {
		name := filepath.Base(r.FilePath)
		if r.Success {
			family := r.Family
			if family == "" {
				family = string(r.Kind)
			}
			fmt.Fprintf(out, "  ✓ %s [%s] %d row(s)\n", name, family, r.Stats.RowsProduced)
		} else {
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, r.Error)
		}
	}
}
