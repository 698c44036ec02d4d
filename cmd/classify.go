// =============================================================================
// Fiscal Normalizer - Classify Command
// =============================================================================
//
// COMMAND USAGE:
//   fiscalnorm classify [files or directories...]
//
// Prints the document type of the merged table: NFe, NFSe, MISTO,
// Desconhecido or Nenhum, with per-family row counts for mixed tables.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/fiscal-normalizer/internal/doctype"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [files or directories...]",
	Short: "Classify the normalized table as NFe, NFSe or mixed",
	Long: `The classify command normalizes the inputs and labels the merged table by
document type, using the column fingerprints of the policy file.

For mixed tables the rows of each family are counted. A row that carries
fingerprints of both families is counted in both and reported as overlap.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		batch, runErr := runBatch(cmd, args)
		if batch == nil || runErr != nil {
			return runErr
		}

		res := doctype.New(appPolicy.DocumentTypes).Classify(batch.Table)

		fmt.Fprintln(out, "\n=== Document Type ===")
		fmt.Fprintf(out, "Category: %s\n", res.Category)
		fmt.Fprintf(out, "Rows:     %d\n", res.Total)
		if res.Category == doctype.CategoryMixed {
			fmt.Fprintf(out, "NFe:      %d\n", res.Invoice)
			fmt.Fprintf(out, "NFSe:     %d\n", res.Service)
			fmt.Fprintf(out, "Overlap:  %d\n", res.Overlap)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
