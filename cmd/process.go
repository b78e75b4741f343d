// =============================================================================
// Sales Aggregator - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the full aggregation
// over all configured branch files.
//
// COMMAND USAGE:
//   salesagg process [flags]
//
// FLAGS:
//   --input, -i   : Input file or glob (repeatable; overrides input_files)
//   --output, -o  : Output file (overrides output_file)
//   --critical    : Critical columns (overrides critical_columns)
//
// PROCESSING PIPELINE:
//   1. Load configuration and apply flag overrides
//   2. Validate that every input exists
//   3. Load and combine the inputs
//   4. Clean, derive amounts and aggregate per branch
//   5. Write the summary and print it
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-aggregator/internal/processor"
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Clean the branch exports and write total sales per branch",
	Long: `The process command loads every input file, combines the rows in input
order, cleans them and writes one total per branch.

On success:
  - The summary file is written (CSV, or XLSX for a .xlsx output path)
  - The totals are printed with per-step cleaning statistics

On error:
  - Nothing is written and an existing output file is left untouched
  - The command exits with status 1`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.OutOrStdout())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)
	addInputFlags(processCmd)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess loads the configuration, runs the processor and prints the
// summary to out.
func runProcess(out io.Writer) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Fprintln(out, "=== Sales Aggregator ===")
	fmt.Fprintf(out, "Processing %d input file(s)...\n", len(cfg.InputFiles))

	result, err := processor.NewDefault(cfg, logger).Process()
	if err != nil {
		return err
	}

	printResult(out, result)
	return nil
}

// printResult writes the run report.
func printResult(out io.Writer, result *processor.Result) {
	fmt.Fprintln(out, "\n=== Cleaning ===")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tROWS IN\tROWS OUT\tREMOVED")
	for _, s := range result.Stats.Steps {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", s.Step, s.RowsIn, s.RowsOut, s.Removed)
	}
	tw.Flush()

	fmt.Fprintln(out, "\n=== Total Sales per Branch ===")
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "BRANCH\tTOTAL\tTRANSACTIONS\t")
	for _, s := range result.Summary {
		fmt.Fprintf(tw, "%s\t%s\t%d\t\n", s.Branch, s.Total.StringFixed(2), s.Transactions)
	}
	tw.Flush()

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Run ID:          %s\n", result.RunID)
	fmt.Fprintf(out, "Rows loaded:     %d\n", result.Stats.RowsLoaded)
	fmt.Fprintf(out, "Rows kept:       %d\n", result.Stats.RowsCleaned)
	fmt.Fprintf(out, "Branches:        %d\n", result.Stats.Branches)
	fmt.Fprintf(out, "Grand total:     %s\n", result.Stats.GrandTotal.StringFixed(2))
	fmt.Fprintf(out, "Output file:     %s\n", result.OutputFile)
	fmt.Fprintf(out, "Time elapsed:    %s\n", result.Stats.ProcessingTime)
}
