// =============================================================================
// Fiscal Normalizer - Aggregate Command
// =============================================================================
//
// COMMAND USAGE:
//   fiscalnorm aggregate [files or directories...] [flags]
//
// Normalizes the inputs and prints the monetary total. Each row contributes
// at most one value, chosen by the value policy.
//
// FLAGS:
//   --rows : Also print the value chosen for every row
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/ginjaninja78/fiscal-normalizer/internal/aggregator"
	"github.com/spf13/cobra"
)

var aggregateRows bool

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [files or directories...]",
	Short: "Compute monetary totals without double counting",
	Long: `The aggregate command normalizes the inputs and sums one monetary value per
row. Candidate columns, exclusions and priorities come from the value policy
(see 'fiscalnorm policy').

Totals are grouped by the column the value was taken from and sorted by
descending sum.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runAggregate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)

	aggregateCmd.Flags().BoolVar(&aggregateRows, "rows", false, "Print the value chosen for every row")
}

func runAggregate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	batch, runErr := runBatch(cmd, args)
	if batch == nil || runErr != nil {
		return runErr
	}

	agg := aggregator.New(appPolicy.Value, logger, appConfig.MaxConcurrency)

	result, err := agg.Aggregate(batch.Table)
	if errors.Is(err, aggregator.ErrNoAggregableData) {
		fmt.Fprintln(out, "\nNo aggregable monetary data found.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\n=== Monetary Totals ===")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Column\tSum\tMean\tMin\tMax\tCount\t")
	for _, g := range result.Groups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t\n",
			g.Column,
			g.Sum.StringFixed(2),
			g.Mean.StringFixed(2),
			g.Min.StringFixed(2),
			g.Max.StringFixed(2),
			g.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nGrand total:   %s\n", result.GrandTotal.StringFixed(2))
	fmt.Fprintf(out, "Rows selected: %d of %d\n", result.SelectedRows, result.TotalRows)

	if aggregateRows {
		fmt.Fprintln(out, "\n=== Selected Values ===")
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Row\tColumn\tValue")
		for _, c := range agg.Selections(batch.Table) {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", c.Row+1, c.Column, c.Value.StringFixed(2))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return nil
}
