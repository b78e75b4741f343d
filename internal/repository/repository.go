// =============================================================================
// Sales Aggregator - File Repository
// =============================================================================
//
// This module is the file-system boundary of the pipeline. It loads branch
// exports and persists the branch summary.
//
// SUPPORTED FORMATS (chosen by file extension):
//   Input:  .xlsx / .xlsm -> xlsxparser, anything else -> csvparser
//   Output: .xlsx         -> workbook with a "Summary" sheet
//           anything else -> CSV
//
// OUTPUT LAYOUT:
//   | branch | total |
//   |--------|-------|
//   | A      | 30.00 |
//   | B      | 5.00  |
//
// Output is written atomically: a failed write never leaves a partial file
// and never modifies an existing one.
//
// =============================================================================

package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-aggregator/internal/config"
	"github.com/ginjaninja78/sales-aggregator/internal/csvparser"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
	"github.com/ginjaninja78/sales-aggregator/internal/xlsxparser"
	"github.com/ginjaninja78/sales-aggregator/pkg/utils"
)

// Output column headers.
const (
	BranchHeader = "branch"
	TotalHeader  = "total"
)

// SummarySheet is the worksheet name used for XLSX output.
const SummarySheet = "Summary"

// FileRepository reads and writes tabular files on the local file system.
type FileRepository struct {
	settings config.CSVSettings
	logger   *zap.Logger
}

// NewFileRepository creates a repository. A nil logger disables logging.
func NewFileRepository(settings config.CSVSettings, logger *zap.Logger) *FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileRepository{
		settings: settings,
		logger:   logger.With(zap.String("component", "repository")),
	}
}

// =============================================================================
// READING
// =============================================================================

// ReadTable loads one file into a record set.
func (r *FileRepository) ReadTable(path string) (*types.RecordSet, error) {
	var (
		rs  *types.RecordSet
		err error
	)
	if isWorkbook(path) {
		rs, err = xlsxparser.Parse(path, r.settings.Sheet)
	} else {
		rs, err = csvparser.Parse(path, r.settings)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("Loaded file",
		zap.String("file", path),
		zap.Int("rows", rs.Len()),
		zap.Int("columns", len(rs.Columns)))
	return rs, nil
}

// ReadMultiple loads every path and concatenates the results in argument
// order. Within a file, rows keep their file order.
func (r *FileRepository) ReadMultiple(paths []string) (*types.RecordSet, error) {
	combined := types.NewRecordSet()
	for _, path := range paths {
		rs, err := r.ReadTable(path)
		if err != nil {
			return nil, err
		}
		combined = combined.Concat(rs)
	}

	r.logger.Info("Combined input files",
		zap.Int("files", len(paths)),
		zap.Int("rows", combined.Len()))
	return combined, nil
}

// =============================================================================
// WRITING
// =============================================================================

// WriteSummary persists the branch summary to path, creating missing
// directories. Totals are written with two decimal places.
func (r *FileRepository) WriteSummary(path string, summaries []types.BranchSummary) error {
	write := writeSummaryCSV
	if isWorkbook(path) {
		write = writeSummaryXLSX
	}

	err := utils.WriteFileAtomic(path, func(w io.Writer) error {
		return write(w, summaries)
	})
	if err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}

	r.logger.Info("Wrote summary",
		zap.String("file", path),
		zap.Int("branches", len(summaries)))
	return nil
}

// writeSummaryCSV writes the summary as CSV.
func writeSummaryCSV(w io.Writer, summaries []types.BranchSummary) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{BranchHeader, TotalHeader}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, s := range summaries {
		if err := writer.Write([]string{s.Branch, s.Total.StringFixed(2)}); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeSummaryXLSX writes the summary as a single-sheet workbook. Totals are
// numeric cells formatted with two decimals.
func writeSummaryXLSX(w io.Writer, summaries []types.BranchSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{BranchHeader, TotalHeader}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	twoDecimals, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	for i, s := range summaries {
		rowNum := i + 2
		branchCell, _ := excelize.CoordinatesToCellName(1, rowNum)
		totalCell, _ := excelize.CoordinatesToCellName(2, rowNum)

		if err := f.SetCellStr(SummarySheet, branchCell, s.Branch); err != nil {
			return fmt.Errorf("failed to write branch %s: %w", s.Branch, err)
		}
		if err := f.SetCellFloat(SummarySheet, totalCell, s.Total.Round(2).InexactFloat64(), 2, 64); err != nil {
			return fmt.Errorf("failed to write total for %s: %w", s.Branch, err)
		}
		if err := f.SetCellStyle(SummarySheet, totalCell, totalCell, twoDecimals); err != nil {
			return fmt.Errorf("failed to style total for %s: %w", s.Branch, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	return nil
}

// isWorkbook reports whether path names an Excel workbook.
func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	default:
		return false
	}
}
