// =============================================================================
// Sales Aggregator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and the inputs without cleaning or writing anything.
//
// COMMAND USAGE:
//   salesagg validate [flags]
//
// CHECKS PERFORMED:
//   1. The configuration loads and passes validation
//   2. Every input file exists and can be parsed
//   3. Each file's header is compared with the required columns
//   4. The combined data has every required column
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-aggregator/internal/cleaning"
	"github.com/ginjaninja78/sales-aggregator/internal/config"
	"github.com/ginjaninja78/sales-aggregator/internal/processor"
	"github.com/ginjaninja78/sales-aggregator/internal/repository"
	"github.com/ginjaninja78/sales-aggregator/internal/validation"
	"github.com/ginjaninja78/sales-aggregator/pkg/utils"
)

// errValidationFailed is returned once the problems have been printed.
var errValidationFailed = errors.New("validation failed")

// =============================================================================
// VALIDATE COMMAND DEFINITION
// =============================================================================

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and input files without processing",
	Long: `The validate command loads the configuration, opens every input file and
checks the headers against the required columns. Nothing is written.

A file that lacks a required column is reported as a warning when another
input supplies it, since the inputs are combined before the schema check.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(validateCmd)
	addInputFlags(validateCmd)
}

// =============================================================================
// VALIDATION FUNCTION
// =============================================================================

func runValidate(out io.Writer) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Fprintln(out, "=== Configuration ===")
	fmt.Fprintf(out, "Output file:      %s\n", cfg.OutputFile)
	fmt.Fprintf(out, "Required columns: %s\n", strings.Join(cfg.RequiredColumns, ", "))
	fmt.Fprintf(out, "Cleaning steps:   %s\n",
		strings.Join(cleaning.DefaultPipeline(cfg, logger).Steps(), " -> "))

	fmt.Fprintln(out, "\n=== Input Files ===")
	warnings := checkInputs(out, cfg, logger)

	var problems []error
	rows, err := processor.NewDefault(cfg, logger).Preflight()
	if err != nil {
		problems = append(problems, err)
	}

	if len(warnings) > 0 {
		fmt.Fprintln(out, "\n=== Warnings ===")
		for _, w := range warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	fmt.Fprintln(out, "\n=== Result ===")
	if len(problems) > 0 {
		fmt.Fprint(out, validation.FormatErrors(problems))
		return errValidationFailed
	}
	fmt.Fprintf(out, "All checks passed: %d row(s) ready for cleaning.\n", rows)
	return nil
}

// checkInputs prints one line per input and returns the per-file schema
// warnings.
func checkInputs(out io.Writer, cfg *config.MainConfig, logger *zap.Logger) []error {
	repo := repository.NewFileRepository(cfg.CSVSettings, logger)
	validator := validation.NewValidator(zap.NewNop())

	var warnings []error
	for _, path := range cfg.InputFiles {
		size, err := utils.GetFileSize(path)
		if err != nil {
			fmt.Fprintf(out, "  [MISSING] %s\n", path)
			continue
		}

		rs, err := repo.ReadTable(path)
		if err != nil {
			fmt.Fprintf(out, "  [ERROR]   %s: %v\n", path, err)
			continue
		}

		status := "OK"
		if err := validator.ValidateColumns(rs, cfg.RequiredColumns, path); err != nil {
			status = "WARN"
			warnings = append(warnings, err)
		}
		fmt.Fprintf(out, "  [%-4s]    %s (%d bytes, %d rows, %d columns)\n",
			status, path, size, rs.Len(), len(rs.Columns))
	}
	return warnings
}
