// =============================================================================
// Sales Aggregator - CSV Parser Module
// =============================================================================
//
// This module reads branch transaction exports in CSV form into a
// types.RecordSet. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - A UTF-8 byte order mark on the header row
//   - Ragged rows (missing trailing cells become empty values)
//   - Blank lines, which are skipped
//
// Values are trimmed but otherwise kept verbatim. Missing-value tokens such
// as "NA" or "null" are interpreted later by the cleaning steps.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/sales-aggregator/internal/config"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
)

// ErrEmptyFile is returned when a file has no header row.
var ErrEmptyFile = errors.New("CSV file is empty")

// utf8BOM is stripped from the first header cell.
const utf8BOM = "\ufeff"

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns its rows as a record set. The first
// non-empty line is the header.
//
// Open and read failures are returned wrapped, so errors.Is still matches
// the underlying fs error.
func Parse(filePath string, settings config.CSVSettings) (*types.RecordSet, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	rs, err := ParseReader(bufio.NewReader(file), filePath, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	return rs, nil
}

// ParseReader parses CSV data from r. The source name is recorded on every
// row for error reporting.
func ParseReader(r io.Reader, source string, settings config.CSVSettings) (*types.RecordSet, error) {
	csvReader := csv.NewReader(r)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	// Skip leading blank lines before the header.
	start := 0
	for start < len(allRows) && isRowEmpty(allRows[start]) {
		start++
	}
	if start == len(allRows) {
		return nil, ErrEmptyFile
	}

	headers := cleanHeaders(allRows[start])
	rs := types.NewRecordSet(headers...)
	rs.Rows = extractDataRows(allRows[start+1:], headers, source)

	return rs, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Exports are not always rectangular.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// cleanHeaders trims header names and fills in blank ones.
//
// Blank headers become "Column_N" (1-based), matching the column a
// spreadsheet would show. Duplicate headers get a numeric suffix so each
// column keeps its own key: "price", "price.1", "price.2".
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, utf8BOM)
		}
		header = strings.TrimSpace(header)

		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return types.UniqueColumns(cleaned)
}

// extractDataRows converts raw records into rows keyed by header. Line
// numbers count data rows only, starting at 1.
func extractDataRows(records [][]string, headers []string, source string) []types.Row {
	rows := make([]types.Row, 0, len(records))
	line := 0

	for _, record := range records {
		if isRowEmpty(record) {
			continue
		}
		line++

		fields := make(map[string]string, len(headers))
		for colIndex, header := range headers {
			if colIndex < len(record) {
				fields[header] = strings.TrimSpace(record[colIndex])
			} else {
				fields[header] = ""
			}
		}

		row := types.NewRow(fields)
		row.Source = source
		row.Line = line
		rows = append(rows, row)
	}

	return rows
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
