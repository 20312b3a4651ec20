/*
analytics.go - Aggregate revenue and quantity analytics

PURPOSE:
  Computes the derived analytics views over the ledger. Pure functions
  of the filter and current store contents; no state between calls.

TWO-PHASE MONEY CONTRACT:
  Phase 1: the ledger aggregates COUNT / SUM / AVG with its native
           arithmetic, which may be floating point (SQLite computes
           SUM(quantity * unit_price) as REAL).
  Phase 2: this engine quantizes the result to an exact decimal with
           2 fractional digits, rounding halves away from zero
           (0.125 -> 0.13).

  The externally visible value is always the quantized decimal,
  regardless of the precision used to reach it. Do not replace phase 1
  with client-side exact summation: the quantization of an
  engine-computed float is the contract.

SEE ALSO:
  - store.go: AggregateSummary / QuantityByCategory contracts
  - types.go: Summary, CategoryQuantity
*/
package sales

import (
	"context"

	"github.com/shopspring/decimal"
)

// Analytics computes aggregate summaries from the ledger.
type Analytics struct {
	ledger LedgerStore
}

// NewAnalytics creates an analytics engine over the given ledger.
func NewAnalytics(ledger LedgerStore) *Analytics {
	return &Analytics{ledger: ledger}
}

// Summarize computes count, total revenue and average ticket over the
// sales matching the filter. Revenue figures are quantized to exactly
// 2 fractional digits. An empty match yields {0, 0.00, 0.00}, not an
// error. Store failures propagate unchanged.
func (a *Analytics) Summarize(ctx context.Context, f Filter) (Summary, error) {
	raw, err := a.ledger.AggregateSummary(ctx, f)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		TotalSales:    raw.Count,
		TotalRevenue:  Quantize(raw.RevenueSum),
		AverageTicket: Quantize(raw.RevenueAvg),
	}, nil
}

// QuantityByCategory returns per-category quantity totals for sales in
// the filter's date range, ordered by total descending then category
// name ascending. The filter's category field is not applied. An empty
// match yields an empty slice.
func (a *Analytics) QuantityByCategory(ctx context.Context, f Filter) ([]CategoryQuantity, error) {
	rows, err := a.ledger.QuantityByCategory(ctx, f)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []CategoryQuantity{}
	}
	return rows, nil
}

// Quantize converts an engine-native aggregate to an exact decimal
// with 2 fractional digits. decimal.Round rounds halves away from
// zero, which is the required round-half-up behavior for money.
func Quantize(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(MaxPriceFractionDigits)
}
