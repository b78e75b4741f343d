// =============================================================================
// Sales Aggregator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesagg)
//   ├── processCmd  (salesagg process)
//   ├── validateCmd (salesagg validate)
//   └── versionCmd  (salesagg version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration file, falling back to defaults
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-aggregator/internal/config"
	"github.com/ginjaninja78/sales-aggregator/internal/logging"
	"github.com/ginjaninja78/sales-aggregator/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging when set.
var verbose bool

// Input overrides shared by process and validate.
var (
	inputFiles      []string
	outputFile      string
	criticalColumns []string
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesagg",
	Short: "Sales Aggregator - Clean branch sales exports and total them per branch",
	Long: `Sales Aggregator combines the transaction exports of several branches,
cleans the combined data and writes the total sales of every branch.

Cleaning steps, in order:
  - Drop rows missing a critical field (transaction_id, date, customer_id)
  - Normalize dates, dropping rows whose date cannot be parsed
  - Drop duplicate transactions, keeping the most recent one

Example Usage:
  salesagg process                                  # Use config.yaml or defaults
  salesagg process -i north.csv -i south.xlsx -o totals.csv
  salesagg process -i 'exports/*.csv'               # Glob patterns are expanded
  salesagg validate                                 # Check inputs without writing`,

	// Errors are printed once, by Execute.
	SilenceErrors: true,
	SilenceUsage:  true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
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
		"config.yaml",
		"Path to the configuration file; defaults are used when it does not exist",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// addInputFlags registers the input override flags on a command.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(
		&inputFiles,
		"input",
		"i",
		nil,
		"Input file or glob pattern (repeatable, order is preserved)",
	)

	cmd.Flags().StringVarP(
		&outputFile,
		"output",
		"o",
		"",
		"Output file (.csv or .xlsx); supports {date}, {timestamp} and {run_id}",
	)

	cmd.Flags().StringSliceVar(
		&criticalColumns,
		"critical",
		nil,
		"Comma-separated columns a row must have to be kept",
	)
}

// =============================================================================
// SETUP HELPERS
// =============================================================================

// setup loads the configuration, applies flag overrides, expands input
// patterns and builds the logger.
func setup() (*config.MainConfig, *zap.Logger, error) {
	cfg, found, err := config.LoadMainConfigOrDefault(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if len(inputFiles) > 0 {
		cfg.InputFiles = append([]string(nil), inputFiles...)
	}
	if outputFile != "" {
		cfg.OutputFile = outputFile
	}
	if len(criticalColumns) > 0 {
		cfg.CriticalColumns = append([]string(nil), criticalColumns...)
		cfg.RequireColumns(cfg.CriticalColumns...)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	cfg.InputFiles, err = utils.ExpandInputPatterns(cfg.InputFiles)
	if err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}

	if found {
		logger.Debug("Using config file", zap.String("path", cfgFile))
	} else {
		logger.Debug("Config file not found, using defaults", zap.String("path", cfgFile))
	}

	return cfg, logger, nil
}
