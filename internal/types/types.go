// =============================================================================
// Sales Aggregator - Shared Types
// =============================================================================
//
// This package contains the tabular types shared by every stage of the
// pipeline. Keeping them in a leaf package avoids import cycles between:
//   - csvparser / xlsxparser (producers)
//   - cleaning / calculator (transformers)
//   - repository / processor (consumers)
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// NULL HANDLING
// =============================================================================

// naTokens are the cell values treated as missing. They follow the tokens
// common spreadsheet and dataframe tools read as NA, and are matched exactly
// after trimming, so "NA" is missing but "Na" and "-" are ordinary values.
var naTokens = map[string]struct{}{
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNull reports whether a raw cell value represents a missing value. An
// empty or blank cell is always missing.
func IsNull(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	_, ok := naTokens[value]
	return ok
}

// UniqueColumns returns names with repeats suffixed by their occurrence
// count, so "price", "price" becomes "price", "price.1". A suffixed name
// that collides with a later literal header is bumped again.
func UniqueColumns(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]struct{}, len(names))
	counts := make(map[string]int, len(names))

	for i, name := range names {
		candidate := name
		for {
			if _, taken := used[candidate]; !taken {
				break
			}
			counts[name]++
			candidate = fmt.Sprintf("%s.%d", name, counts[name])
		}
		used[candidate] = struct{}{}
		out[i] = candidate
	}
	return out
}

// =============================================================================
// ROW
// =============================================================================

// Row is a single transaction record.
type Row struct {
	// Fields holds the cell values keyed by column name.
	Fields map[string]string

	// Date is the parsed transaction date. It stays zero until the date
	// normalization step has run.
	Date time.Time

	// Amount is quantity × price. It stays zero until amounts are derived.
	Amount decimal.Decimal

	// Source is the path of the file the row was loaded from.
	Source string

	// Line is the 1-based data row number within Source.
	Line int
}

// NewRow builds a row from a field map.
func NewRow(fields map[string]string) Row {
	if fields == nil {
		fields = make(map[string]string)
	}
	return Row{Fields: fields}
}

// Get returns the raw value of a field, or "" when absent.
func (r Row) Get(column string) string {
	return r.Fields[column]
}

// IsNull reports whether the field is absent or holds a missing value.
func (r Row) IsNull(column string) bool {
	value, ok := r.Fields[column]
	if !ok {
		return true
	}
	return IsNull(value)
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	r.Fields = fields
	return r
}

// =============================================================================
// RECORD SET
// =============================================================================

// RecordSet is an ordered sequence of rows sharing one column schema.
// Every row carries a value (possibly empty) for every column.
type RecordSet struct {
	Columns []string
	Rows    []Row
}

// NewRecordSet creates an empty set with the given columns.
func NewRecordSet(columns ...string) *RecordSet {
	cols := make([]string, 0, len(columns))
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}
	return &RecordSet{Columns: cols}
}

// Len returns the number of rows.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// HasColumn reports whether the schema contains the column.
func (rs *RecordSet) HasColumn(name string) bool {
	for _, c := range rs.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column to the schema and gives every existing row an
// empty value for it. It is a no-op when the column already exists.
func (rs *RecordSet) AddColumn(name string) {
	if rs.HasColumn(name) {
		return
	}
	rs.Columns = append(rs.Columns, name)
	for i := range rs.Rows {
		if _, ok := rs.Rows[i].Fields[name]; !ok {
			rs.Rows[i].Fields[name] = ""
		}
	}
}

// Append adds a row. Fields the schema lacks become new columns; columns the
// row lacks are filled with empty values.
func (rs *RecordSet) Append(row Row) {
	if row.Fields == nil {
		row.Fields = make(map[string]string, len(rs.Columns))
	}
	for name := range row.Fields {
		if !rs.HasColumn(name) {
			rs.AddColumn(name)
		}
	}
	for _, c := range rs.Columns {
		if _, ok := row.Fields[c]; !ok {
			row.Fields[c] = ""
		}
	}
	rs.Rows = append(rs.Rows, row)
}

// Concat returns a new set holding the rows of rs followed by the rows of
// other. The schema is the union of both, in first-seen order.
func (rs *RecordSet) Concat(other *RecordSet) *RecordSet {
	out := rs.Clone()
	if other == nil {
		return out
	}
	for _, c := range other.Columns {
		out.AddColumn(c)
	}
	for _, row := range other.Rows {
		out.Append(row.Clone())
	}
	return out
}

// Clone returns a deep copy that shares no state with rs.
func (rs *RecordSet) Clone() *RecordSet {
	if rs == nil {
		return NewRecordSet()
	}
	out := &RecordSet{
		Columns: append([]string(nil), rs.Columns...),
		Rows:    make([]Row, len(rs.Rows)),
	}
	for i, row := range rs.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}

// Filter returns a new set with copies of the rows for which keep is true.
func (rs *RecordSet) Filter(keep func(Row) bool) *RecordSet {
	out := &RecordSet{Columns: append([]string(nil), rs.Columns...)}
	for _, row := range rs.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row.Clone())
		}
	}
	return out
}

// Values returns the column's values in row order.
func (rs *RecordSet) Values(column string) []string {
	values := make([]string, len(rs.Rows))
	for i, row := range rs.Rows {
		values[i] = row.Get(column)
	}
	return values
}

// =============================================================================
// SUMMARY TYPES
// =============================================================================

// BranchSummary is one line of the aggregated output.
type BranchSummary struct {
	Branch string
	Total  decimal.Decimal

	// Transactions counts the rows that contributed to Total. It is reported
	// but not persisted.
	Transactions int
}
