// =============================================================================
// Fiscal Normalizer - Quality Command
// =============================================================================
//
// COMMAND USAGE:
//   fiscalnorm quality [files or directories...] [flags]
//
// FLAGS:
//   --findings : Write the validation findings of the merged table to a file
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/fiscal-normalizer/internal/doctype"
	"github.com/ginjaninja78/fiscal-normalizer/internal/quality"
	"github.com/ginjaninja78/fiscal-normalizer/internal/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var findingsFile string

var qualityCmd = &cobra.Command{
	Use:   "quality [files or directories...]",
	Short: "Report data quality of the normalized table",
	Long: `The quality command normalizes the inputs and prints a data quality report
for the merged table: duplicates, empty rows, null columns with an explanation
of why the document type leaves them empty, fiscal hints (interstate CFOP,
untaxed CST, withheld ISS) and CFOP statistics.

Validation findings (CFOP, CNPJ/CPF, amounts, dates) are listed after the
report.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		batch, runErr := runBatch(cmd, args)
		if batch == nil || runErr != nil {
			return runErr
		}

		dt := doctype.New(appPolicy.DocumentTypes).Classify(batch.Table)
		report := quality.Analyze(batch.Table, dt)

		fmt.Fprintln(out)
		fmt.Fprint(out, report.Format())

		v := validation.NewValidator(appPolicy.Value, validation.ValidationOptions{})
		vr := v.Validate(batch.Table)

		fmt.Fprintln(out)
		fmt.Fprint(out, validation.FormatErrors(vr.Errors))
		fmt.Fprintln(out)

		if findingsFile != "" {
			if err := validation.WriteErrorLog(findingsFile, fmt.Sprintf("run %s", batch.RunID), vr.Errors); err != nil {
				return err
			}
			logger.Info("Findings written", zap.String("path", findingsFile), zap.Int("findings", len(vr.Errors)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(qualityCmd)

	qualityCmd.Flags().StringVar(&findingsFile, "findings", "", "Write validation findings to this file")
}
