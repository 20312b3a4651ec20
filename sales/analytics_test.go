package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/sales-ledger/sales"
	"github.com/warp/sales-ledger/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func date(s string) time.Time {
	t, err := time.Parse(sales.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustCreate(t *testing.T, ledger *memory.Ledger, product, category string, qty int64, unitPrice, saleDate string) sales.Sale {
	t.Helper()
	sale, err := ledger.CreateSale(context.Background(), sales.SaleInput{
		ProductName: product,
		Category:    category,
		Quantity:    qty,
		UnitPrice:   price(unitPrice),
		SaleDate:    date(saleDate),
	})
	require.NoError(t, err)
	return *sale
}

// =============================================================================
// SUMMARIZE
// =============================================================================

func TestSummarize_EmptyLedger(t *testing.T) {
	// GIVEN: no sales at all
	// WHEN: summarizing with no filter
	// THEN: zero count and exact 0.00 money values, no error
	engine := sales.NewAnalytics(memory.NewLedger())

	summary, err := engine.Summarize(context.Background(), sales.Filter{})
	require.NoError(t, err)

	assert.Equal(t, int64(0), summary.TotalSales)
	assert.Equal(t, "0.00", summary.TotalRevenue.StringFixed(2))
	assert.Equal(t, "0.00", summary.AverageTicket.StringFixed(2))
}

func TestSummarize_TotalsAndAverage(t *testing.T) {
	ledger := memory.NewLedger()
	mustCreate(t, ledger, "Widget", "tools", 3, "19.25", "2024-01-05")
	mustCreate(t, ledger, "Gadget", "tools", 1, "5.50", "2024-01-06")

	engine := sales.NewAnalytics(ledger)
	summary, err := engine.Summarize(context.Background(), sales.Filter{})
	require.NoError(t, err)

	// 3*19.25 + 1*5.50 = 63.25; average 31.625 -> 31.63 (half up)
	assert.Equal(t, int64(2), summary.TotalSales)
	assert.Equal(t, "63.25", summary.TotalRevenue.StringFixed(2))
	assert.Equal(t, "31.63", summary.AverageTicket.StringFixed(2))
}

func TestSummarize_MidpointRoundsAwayFromZero(t *testing.T) {
	// GIVEN: revenues 10.00 and 10.25, so the raw average is exactly
	// 10.125 - the rounding boundary
	ledger := memory.NewLedger()
	mustCreate(t, ledger, "A", "x", 1, "10.00", "2024-01-01")
	mustCreate(t, ledger, "B", "x", 1, "10.25", "2024-01-02")

	engine := sales.NewAnalytics(ledger)
	summary, err := engine.Summarize(context.Background(), sales.Filter{})
	require.NoError(t, err)

	// 10.125 rounds to 10.13, not 10.12
	assert.Equal(t, "10.13", summary.AverageTicket.StringFixed(2))
	assert.Equal(t, "20.25", summary.TotalRevenue.StringFixed(2))
}

func TestSummarize_FiltersAreConjunctiveAndInclusive(t *testing.T) {
	ledger := memory.NewLedger()
	mustCreate(t, ledger, "A", "tools", 1, "10.00", "2024-01-01")
	mustCreate(t, ledger, "B", "tools", 1, "20.00", "2024-01-31")
	mustCreate(t, ledger, "C", "toys", 1, "40.00", "2024-01-15")
	mustCreate(t, ledger, "D", "tools", 1, "80.00", "2024-02-01")

	engine := sales.NewAnalytics(ledger)
	summary, err := engine.Summarize(context.Background(), sales.Filter{
		StartDate: datePtr("2024-01-01"),
		EndDate:   datePtr("2024-01-31"),
		Category:  "tools",
	})
	require.NoError(t, err)

	// Both boundary dates included, toys and February excluded.
	assert.Equal(t, int64(2), summary.TotalSales)
	assert.Equal(t, "30.00", summary.TotalRevenue.StringFixed(2))
	assert.Equal(t, "15.00", summary.AverageTicket.StringFixed(2))
}

func TestSummarize_PropagatesLedgerErrors(t *testing.T) {
	ledger := memory.NewLedger()
	ledger.FailWith = &sales.StoreUnavailableError{Store: "ledger", Err: assert.AnError}

	engine := sales.NewAnalytics(ledger)
	_, err := engine.Summarize(context.Background(), sales.Filter{})

	require.Error(t, err)
	assert.True(t, sales.IsStoreUnavailable(err))
}

// =============================================================================
// QUANTITY BY CATEGORY
// =============================================================================

func TestQuantityByCategory_Empty(t *testing.T) {
	engine := sales.NewAnalytics(memory.NewLedger())

	rows, err := engine.QuantityByCategory(context.Background(), sales.Filter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
}

func TestQuantityByCategory_TotalsAndTieBreak(t *testing.T) {
	// GIVEN: categories A (3+2) and B (5), tied at 5
	ledger := memory.NewLedger()
	mustCreate(t, ledger, "p1", "A", 3, "1.00", "2024-01-01")
	mustCreate(t, ledger, "p2", "B", 5, "1.00", "2024-01-02")
	mustCreate(t, ledger, "p3", "A", 2, "1.00", "2024-01-03")

	engine := sales.NewAnalytics(ledger)
	rows, err := engine.QuantityByCategory(context.Background(), sales.Filter{})
	require.NoError(t, err)

	// Equal totals; the documented tie-break is category name ascending.
	require.Len(t, rows, 2)
	assert.Equal(t, sales.CategoryQuantity{Category: "A", TotalQuantity: 5}, rows[0])
	assert.Equal(t, sales.CategoryQuantity{Category: "B", TotalQuantity: 5}, rows[1])
}

func TestQuantityByCategory_OrdersByTotalDescending(t *testing.T) {
	ledger := memory.NewLedger()
	mustCreate(t, ledger, "p1", "small", 1, "1.00", "2024-01-01")
	mustCreate(t, ledger, "p2", "big", 9, "1.00", "2024-01-01")
	mustCreate(t, ledger, "p3", "mid", 4, "1.00", "2024-01-01")

	engine := sales.NewAnalytics(ledger)
	rows, err := engine.QuantityByCategory(context.Background(), sales.Filter{})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "big", rows[0].Category)
	assert.Equal(t, "mid", rows[1].Category)
	assert.Equal(t, "small", rows[2].Category)
}

func TestQuantityByCategory_IgnoresCategoryFilter(t *testing.T) {
	// The operation only offers date filtering; a category value on the
	// filter must not narrow the grouping.
	ledger := memory.NewLedger()
	mustCreate(t, ledger, "p1", "A", 1, "1.00", "2024-01-01")
	mustCreate(t, ledger, "p2", "B", 2, "1.00", "2024-01-01")

	engine := sales.NewAnalytics(ledger)
	rows, err := engine.QuantityByCategory(context.Background(), sales.Filter{Category: "A"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
