// =============================================================================
// Fiscal Normalizer - Root Command
// =============================================================================
//
// Defines the root command of the CLI and the state shared by every
// subcommand: configuration, policy and logger.
//
// COBRA CLI STRUCTURE:
//   rootCmd (fiscalnorm)
//   ├── ingestCmd    (fiscalnorm ingest)     normalize + export
//   ├── aggregateCmd (fiscalnorm aggregate)  monetary totals
//   ├── classifyCmd  (fiscalnorm classify)   NFe / NFSe / MISTO
//   ├── qualityCmd   (fiscalnorm quality)    data quality report
//   ├── policyCmd    (fiscalnorm policy)     effective policy as YAML
//   └── versionCmd   (fiscalnorm version)
//
// CONFIGURATION:
//   1. --config file (config.yaml; ignored when the default is missing)
//   2. FISCALNORM_* environment overrides
//   3. --policy file, or policy_file from the configuration
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ginjaninja78/fiscal-normalizer/internal/config"
	"github.com/ginjaninja78/fiscal-normalizer/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

const defaultConfigFile = "config.yaml"

var (
	// cfgFile holds the path to the main configuration file.
	cfgFile string

	// policyFile overrides policy_file from the configuration.
	policyFile string

	// verbose forces debug logging.
	verbose bool

	// logFormat overrides log_format from the configuration.
	logFormat string
)

// Loaded by loadEnvironment before any subcommand runs.
var (
	appConfig *config.MainConfig
	appPolicy *config.Policy
	logger    = zap.NewNop()
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "fiscalnorm",
	Short: "Fiscal Normalizer - Normalize Brazilian fiscal XML into one table",
	Long: `Fiscal Normalizer reads Brazilian electronic fiscal documents (NF-e, NFC-e,
CT-e, MDF-e and municipal NFS-e layouts) plus CSV/XLSX exports, and turns
them into a single normalized table with one row per line item.

Key Features:
  - Dialect-aware XML flattening with stable column names
  - Multi-document merge with empty-column pruning and de-duplication
  - Monetary totals that never count the same amount twice
  - Document-type classification (NFe, NFSe, MISTO)
  - CSV, JSON, XLSX and XML output

Example Usage:
  fiscalnorm ingest                       # Normalize every file in input_dir
  fiscalnorm ingest notas/ -f xlsx        # Normalize a directory into XLSX
  fiscalnorm aggregate notas/             # Print monetary totals
  fiscalnorm quality notas/nfe.xml        # Data quality report`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvironment(cmd)
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
// Interrupting the process cancels the batch between files.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().StringVar(
		&policyFile,
		"policy",
		"",
		"Path to a policy file (overrides policy_file)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		"",
		"Log encoding: console or json (overrides log_format)",
	)
}

// loadEnvironment loads configuration, policy and logger.
func loadEnvironment(cmd *cobra.Command) error {
	path := cfgFile
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logging.New(level, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	if policyFile != "" {
		cfg.PolicyFile = policyFile
	}
	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}

	appConfig = cfg
	appPolicy = policy
	logger = log

	logger.Debug("Configuration loaded",
		zap.String("config", path),
		zap.String("policy", cfg.PolicyFile),
		zap.String("output_format", cfg.OutputFormat))

	return nil
}
