// =============================================================================
// Sales Aggregator - XLSX Parser
// =============================================================================
//
// This module reads branch transaction exports saved as Excel workbooks.
// The expected sheet layout mirrors the CSV exports:
//
//   | Column A       | Column B   | Column C    | Column D | Column E | Column F |
//   |----------------|------------|-------------|----------|----------|----------|
//   | transaction_id | date       | customer_id | branch   | quantity | price    |
//   | T1             | 2024-01-01 | C1          | A        | 2        | 10.0     |
//
// The first non-empty row is the header. Cells are read as stored, not as
// displayed: a price formatted "#,##0.00" yields "1234.5", not "1,234.50".
// Cells carrying a date number format hold a serial day number; those are
// converted to "2006-01-02 15:04:05" text so they parse like CSV dates.
//
// CUSTOMIZATION:
//   - Pick a sheet other than the first with CSVSettings.Sheet
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-aggregator/internal/config"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
)

// ErrNoSheets is returned for a workbook without worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// ErrEmptySheet is returned when the selected sheet has no header row.
var ErrEmptySheet = errors.New("sheet is empty")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads one sheet of an XLSX file into a record set. An empty sheet
// name selects the first sheet.
func Parse(filePath, sheet string) (*types.RecordSet, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", filePath, err)
	}
	defer f.Close()

	rs, err := parseSheet(f, sheet, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	return rs, nil
}

// ParseReader reads one sheet of a workbook from r.
func ParseReader(r io.Reader, source, sheet string) (*types.RecordSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseSheet(f, sheet, source)
}

// SheetNames lists the worksheets of a workbook in tab order.
func SheetNames(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", filePath, err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// parseSheet converts the rows of a sheet from an open workbook.
func parseSheet(f *excelize.File, sheetName, source string) (*types.RecordSet, error) {
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, ErrNoSheets
		}
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheetName)
	}

	// GetRows pads missing rows, so rows[i] is worksheet row i+1.
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	start := 0
	for start < len(rows) && isRowEmpty(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, ErrEmptySheet
	}

	cells := newCellReader(f, sheetName)
	headers := headerNames(rows[start])
	rs := types.NewRecordSet(headers...)

	line := 0
	for i := start + 1; i < len(rows); i++ {
		row := rows[i]
		// Trailing empty cells are trimmed, so rows may be short.
		if isRowEmpty(row) {
			continue
		}
		line++

		fields := make(map[string]string, len(headers))
		for col, header := range headers {
			value := ""
			if col < len(row) {
				value = cells.value(col+1, i+1, strings.TrimSpace(row[col]))
			}
			fields[header] = value
		}

		r := types.NewRow(fields)
		r.Source = source
		r.Line = line
		rs.Rows = append(rs.Rows, r)
	}

	return rs, nil
}

// headerNames trims header cells, names blank ones after their column
// letter ("Column_C") and suffixes repeats ("price.1").
func headerNames(row []string) []string {
	headers := make([]string, len(row))
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				name = fmt.Sprint(i + 1)
			}
			cell = "Column_" + name
		}
		headers[i] = cell
	}
	return types.UniqueColumns(headers)
}

// =============================================================================
// DATE CELLS
// =============================================================================

// dateNumFmts are the built-in number format IDs that display a date,
// including the East Asian locale date formats.
var dateNumFmts = map[int]struct{}{
	14: {}, 15: {}, 16: {}, 17: {}, 22: {},
	27: {}, 28: {}, 29: {}, 30: {}, 31: {}, 32: {}, 33: {}, 34: {}, 35: {}, 36: {},
	50: {}, 51: {}, 52: {}, 53: {}, 54: {}, 55: {}, 56: {}, 57: {}, 58: {},
}

// cellReader turns raw cell values into record values, converting date
// serials. Style lookups are cached per style ID.
type cellReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newCellReader(f *excelize.File, sheet string) *cellReader {
	r := &cellReader{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	return r
}

// value returns raw unchanged unless the cell at (col, row) has a date
// format and raw is a serial day number.
func (r *cellReader) value(col, row int, raw string) string {
	if raw == "" {
		return raw
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || !r.isDateCell(col, row) {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, r.date1904)
	if err != nil {
		return raw
	}
	return t.Format(config.DefaultCanonicalDateLayout)
}

func (r *cellReader) isDateCell(col, row int) bool {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	styleID, err := r.f.GetCellStyle(r.sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := r.dateStyles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := r.f.GetStyle(styleID); err == nil {
		isDate = isDateStyle(style)
	}
	r.dateStyles[styleID] = isDate
	return isDate
}

// isDateStyle reports whether a cell style displays its number as a date.
func isDateStyle(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	_, ok := dateNumFmts[style.NumFmt]
	return ok
}

// isDateFormatCode reports whether a custom format code has a day or year
// token outside quoted literals, escapes and bracketed sections.
func isDateFormatCode(code string) bool {
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			inBracket = c != ']'
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\':
			i++
		case c == 'd', c == 'D', c == 'y', c == 'Y':
			return true
		}
	}
	return false
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
