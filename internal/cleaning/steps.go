// =============================================================================
// Sales Aggregator - Cleaning Steps
// =============================================================================
//
// This module provides the row-level cleaning transformations applied to the
// combined branch data before aggregation.
//
// STEP TYPES:
//   - NullRemoval:       drop rows missing any critical field
//   - DateNormalization: parse dates into one canonical layout, drop the rest
//   - DuplicateRemoval:  keep one row per key, most recent date first
//
// CONTRACT:
//   Every step returns a new RecordSet and never modifies its input.
//   Malformed rows are filtered, never reported as errors.
//
// =============================================================================

package cleaning

import (
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-aggregator/internal/config"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
)

// Step is a single cleaning transformation.
type Step interface {
	// Name identifies the step in logs and reports.
	Name() string

	// Clean returns a cleaned copy of rs.
	Clean(rs *types.RecordSet) *types.RecordSet
}

// =============================================================================
// STEP FUNC ADAPTER
// =============================================================================

// stepFunc adapts a plain function to the Step interface.
type stepFunc struct {
	name string
	fn   func(*types.RecordSet) *types.RecordSet
}

// NewStepFunc wraps fn as a named Step. fn must not modify its argument.
func NewStepFunc(name string, fn func(*types.RecordSet) *types.RecordSet) Step {
	return &stepFunc{name: name, fn: fn}
}

func (s *stepFunc) Name() string { return s.name }

func (s *stepFunc) Clean(rs *types.RecordSet) *types.RecordSet { return s.fn(rs) }

// =============================================================================
// NULL REMOVAL
// =============================================================================

// NullRemoval drops every row where any of Columns is null or absent.
type NullRemoval struct {
	Columns []string
}

// NewNullRemoval creates a null-removal step over the given columns.
func NewNullRemoval(columns ...string) *NullRemoval {
	return &NullRemoval{Columns: append([]string(nil), columns...)}
}

// Name implements Step.
func (s *NullRemoval) Name() string { return "null_removal" }

// Clean implements Step.
func (s *NullRemoval) Clean(rs *types.RecordSet) *types.RecordSet {
	return rs.Filter(func(row types.Row) bool {
		for _, column := range s.Columns {
			if row.IsNull(column) {
				return false
			}
		}
		return true
	})
}

// =============================================================================
// DATE NORMALIZATION
// =============================================================================

// DefaultDateLayouts are tried in order when no layouts are configured.
// The canonical layout comes first so normalized values parse immediately.
var DefaultDateLayouts = []string{
	config.DefaultCanonicalDateLayout,
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

// DateNormalization parses Column with the first matching layout, stores
// the result on Row.Date and rewrites the field in the Canonical layout.
// Rows whose value is null or matches no layout are dropped.
//
// Values with a zone offset are converted to UTC, so rows compare by the
// instant they describe and a normalized row re-parses to the same value.
type DateNormalization struct {
	Column    string
	Layouts   []string
	Canonical string
}

// NewDateNormalization creates a date step for column. Without layouts the
// DefaultDateLayouts are used.
func NewDateNormalization(column string, layouts ...string) *DateNormalization {
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	return &DateNormalization{
		Column:    column,
		Layouts:   append([]string(nil), layouts...),
		Canonical: config.DefaultCanonicalDateLayout,
	}
}

// Name implements Step.
func (s *DateNormalization) Name() string { return "date_normalization" }

// Clean implements Step.
func (s *DateNormalization) Clean(rs *types.RecordSet) *types.RecordSet {
	out := &types.RecordSet{Columns: append([]string(nil), rs.Columns...)}

	for _, row := range rs.Rows {
		if row.IsNull(s.Column) {
			continue
		}
		t, ok := s.Parse(row.Get(s.Column))
		if !ok {
			continue
		}

		clean := row.Clone()
		clean.Date = t
		clean.Fields[s.Column] = t.Format(s.Canonical)
		out.Rows = append(out.Rows, clean)
	}

	return out
}

// Parse converts value using the configured layouts, the canonical layout
// first.
func (s *DateNormalization) Parse(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)

	if t, err := time.Parse(s.Canonical, value); err == nil {
		return t.UTC(), true
	}
	for _, layout := range s.Layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// =============================================================================
// DUPLICATE REMOVAL
// =============================================================================

// Keep policies for DuplicateRemoval.
const (
	KeepFirst = "first"
	KeepLast  = "last"
)

// DuplicateRemoval orders rows by date descending and keeps one row per
// distinct combination of Keys. With KeepFirst the most recent row of each
// group survives; with KeepLast the oldest does.
//
// The sort is stable, so rows with equal dates keep their load order. The
// output stays in date-descending order.
type DuplicateRemoval struct {
	Keys       []string
	DateColumn string
	Keep       string
}

// NewDuplicateRemoval creates a duplicate step over keys that keeps the
// most recent row of each group.
func NewDuplicateRemoval(keys ...string) *DuplicateRemoval {
	return &DuplicateRemoval{
		Keys:       append([]string(nil), keys...),
		DateColumn: config.DefaultDateColumn,
		Keep:       KeepFirst,
	}
}

// Name implements Step.
func (s *DuplicateRemoval) Name() string { return "duplicate_removal" }

// Clean implements Step.
func (s *DuplicateRemoval) Clean(rs *types.RecordSet) *types.RecordSet {
	sorted := rs.Clone()
	sort.SliceStable(sorted.Rows, func(i, j int) bool {
		return s.newer(sorted.Rows[i], sorted.Rows[j])
	})

	keep := make([]bool, len(sorted.Rows))
	seen := make(map[string]int, len(sorted.Rows))
	for i, row := range sorted.Rows {
		key := s.key(row)
		prev, dup := seen[key]
		switch {
		case !dup:
			keep[i] = true
		case s.Keep == KeepLast:
			keep[prev] = false
			keep[i] = true
		}
		seen[key] = i
	}

	out := &types.RecordSet{Columns: sorted.Columns}
	for i, row := range sorted.Rows {
		if keep[i] {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// newer reports whether a sorts before b in date-descending order. Parsed
// dates are compared when both rows have one. Otherwise rows with a parsed
// date come first and the rest compare by their raw text.
func (s *DuplicateRemoval) newer(a, b types.Row) bool {
	aParsed, bParsed := !a.Date.IsZero(), !b.Date.IsZero()
	switch {
	case aParsed && bParsed:
		return a.Date.After(b.Date)
	case aParsed != bParsed:
		return aParsed
	default:
		return a.Get(s.DateColumn) > b.Get(s.DateColumn)
	}
}

// key joins the key fields of row. Null values compare equal to each other.
func (s *DuplicateRemoval) key(row types.Row) string {
	parts := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		if row.IsNull(k) {
			parts[i] = "\x00"
			continue
		}
		parts[i] = row.Get(k)
	}
	return strings.Join(parts, "\x1f")
}
