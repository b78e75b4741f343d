// =============================================================================
// Sales Aggregator - Sales Calculator
// =============================================================================
//
// This module turns cleaned transaction rows into per-branch totals.
//
// STEPS:
//   1. DeriveAmount:      total_amount = quantity × price for every row
//   2. AggregateByBranch: sum total_amount per branch, sorted by branch
//
// All arithmetic uses shopspring/decimal, so totals are exact and do not
// depend on row order.
//
// =============================================================================

package calculator

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-aggregator/internal/config"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
	"github.com/ginjaninja78/sales-aggregator/internal/validation"
)

// AmountColumn is the derived column added by DeriveAmount.
const AmountColumn = "total_amount"

// Calculator computes amounts and branch totals.
type Calculator struct {
	BranchColumn   string
	QuantityColumn string
	PriceColumn    string
}

// New creates a calculator using the default column names.
func New() *Calculator {
	return &Calculator{
		BranchColumn:   config.DefaultBranchColumn,
		QuantityColumn: config.DefaultQuantityColumn,
		PriceColumn:    config.DefaultPriceColumn,
	}
}

// NewFromConfig creates a calculator using the configured column names.
func NewFromConfig(cfg *config.MainConfig) *Calculator {
	return &Calculator{
		BranchColumn:   cfg.BranchColumn,
		QuantityColumn: cfg.QuantityColumn,
		PriceColumn:    cfg.PriceColumn,
	}
}

// DeriveAmount returns a copy of rs where every row carries quantity × price,
// both in Row.Amount and as the total_amount column.
//
// A quantity or price that is missing, not a number, or negative stops the
// derivation with a *validation.AmountError naming the first bad row.
func (c *Calculator) DeriveAmount(rs *types.RecordSet) (*types.RecordSet, error) {
	out := rs.Clone()
	out.AddColumn(AmountColumn)

	for i := range out.Rows {
		row := &out.Rows[i]

		quantity, err := parseNonNegative(*row, c.QuantityColumn)
		if err != nil {
			return nil, err
		}
		price, err := parseNonNegative(*row, c.PriceColumn)
		if err != nil {
			return nil, err
		}

		row.Amount = quantity.Mul(price)
		row.Fields[AmountColumn] = row.Amount.String()
	}

	return out, nil
}

// AggregateByBranch sums Row.Amount per branch. The result has one entry per
// distinct branch value, sorted ascending by branch. Rows without a branch
// belong to no group and are left out.
func (c *Calculator) AggregateByBranch(rs *types.RecordSet) []types.BranchSummary {
	totals := make(map[string]*types.BranchSummary)

	for _, row := range rs.Rows {
		if row.IsNull(c.BranchColumn) {
			continue
		}
		branch := row.Get(c.BranchColumn)
		summary, ok := totals[branch]
		if !ok {
			summary = &types.BranchSummary{Branch: branch, Total: decimal.Zero}
			totals[branch] = summary
		}
		summary.Total = summary.Total.Add(row.Amount)
		summary.Transactions++
	}

	branches := make([]string, 0, len(totals))
	for branch := range totals {
		branches = append(branches, branch)
	}
	sort.Strings(branches)

	result := make([]types.BranchSummary, 0, len(branches))
	for _, branch := range branches {
		result = append(result, *totals[branch])
	}
	return result
}

// GrandTotal sums the totals of a summary.
func GrandTotal(summaries []types.BranchSummary) decimal.Decimal {
	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.Total)
	}
	return total
}

// parseNonNegative reads a numeric field of row.
func parseNonNegative(row types.Row, column string) (decimal.Decimal, error) {
	raw := row.Get(column)
	fail := func(reason string) error {
		return &validation.AmountError{
			Source: row.Source,
			Line:   row.Line,
			Field:  column,
			Value:  raw,
			Reason: reason,
		}
	}

	if row.IsNull(column) {
		return decimal.Zero, fail("is missing")
	}
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fail("is not a number")
	}
	if value.IsNegative() {
		return decimal.Zero, fail("is negative")
	}
	return value, nil
}
