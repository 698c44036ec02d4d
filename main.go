// =============================================================================
// Fiscal Normalizer - Main Entry Point
// =============================================================================
//
// USAGE:
//   fiscalnorm ingest      - Normalize fiscal documents into one table
//   fiscalnorm aggregate   - Monetary totals without double counting
//   fiscalnorm classify    - Document type of the normalized table
//   fiscalnorm quality     - Data quality report
//   fiscalnorm policy      - Print the effective policy
//   fiscalnorm version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : parsing, merging, aggregation, classification, export
//   - pkg/       : file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/fiscal-normalizer/cmd"
)

func main() {
	cmd.Execute()
}
