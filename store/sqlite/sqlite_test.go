package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/sales-ledger/sales"
	"github.com/warp/sales-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

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

func createSale(t *testing.T, store *sqlite.Store, product, category string, qty int64, unitPrice, saleDate string) sales.Sale {
	t.Helper()
	sale, err := store.CreateSale(context.Background(), sales.SaleInput{
		ProductName: product,
		Category:    category,
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(unitPrice),
		SaleDate:    date(saleDate),
	})
	require.NoError(t, err)
	return *sale
}

// =============================================================================
// CRUD
// =============================================================================

func TestCreateAndGetSale(t *testing.T) {
	store := newTestStore(t)

	created := createSale(t, store, "Widget", "tools", 3, "19.99", "2024-03-15")
	assert.Equal(t, int64(1), created.ID)

	got, err := store.GetSale(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Widget", got.ProductName)
	assert.Equal(t, "tools", got.Category)
	assert.Equal(t, int64(3), got.Quantity)
	assert.Equal(t, "19.99", got.UnitPrice.StringFixed(2))
	assert.Equal(t, "2024-03-15", got.SaleDate.Format(sales.DateFormat))
}

func TestGetSale_MissingIsNilNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetSale(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListSales_Ordering(t *testing.T) {
	// GIVEN: two sales on 2024-01-01 and one on 2024-02-01
	store := newTestStore(t)
	createSale(t, store, "a", "x", 1, "1.00", "2024-01-01") // id=1
	createSale(t, store, "b", "x", 1, "1.00", "2024-01-01") // id=2
	createSale(t, store, "c", "x", 1, "1.00", "2024-02-01") // id=3

	items, err := store.ListSales(context.Background(), sales.Filter{})
	require.NoError(t, err)

	// THEN: date descending, ties by id descending: [3, 2, 1]
	require.Len(t, items, 3)
	assert.Equal(t, int64(3), items[0].ID)
	assert.Equal(t, int64(2), items[1].ID)
	assert.Equal(t, int64(1), items[2].ID)
}

func TestListSales_Filters(t *testing.T) {
	store := newTestStore(t)
	createSale(t, store, "a", "tools", 1, "1.00", "2024-01-01")
	createSale(t, store, "b", "toys", 1, "1.00", "2024-01-15")
	createSale(t, store, "c", "tools", 1, "1.00", "2024-01-31")
	createSale(t, store, "d", "tools", 1, "1.00", "2024-02-10")

	ctx := context.Background()

	byCategory, err := store.ListSales(ctx, sales.Filter{Category: "tools"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 3)

	// Boundary dates are inclusive on both ends.
	inRange, err := store.ListSales(ctx, sales.Filter{
		StartDate: datePtr("2024-01-01"),
		EndDate:   datePtr("2024-01-31"),
	})
	require.NoError(t, err)
	assert.Len(t, inRange, 3)

	combined, err := store.ListSales(ctx, sales.Filter{
		StartDate: datePtr("2024-01-01"),
		EndDate:   datePtr("2024-01-31"),
		Category:  "tools",
	})
	require.NoError(t, err)
	assert.Len(t, combined, 2)
}

func TestUpdateSale_Partial(t *testing.T) {
	store := newTestStore(t)
	created := createSale(t, store, "Widget", "tools", 2, "19.99", "2024-03-01")

	newPrice := decimal.RequireFromString("25.00")
	updated, err := store.UpdateSale(context.Background(), created.ID, sales.SalePatch{UnitPrice: &newPrice})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "25.00", updated.UnitPrice.StringFixed(2))
	assert.Equal(t, "Widget", updated.ProductName)
	assert.Equal(t, int64(2), updated.Quantity)
}

func TestUpdateSale_EmptyPatchReturnsRecord(t *testing.T) {
	store := newTestStore(t)
	created := createSale(t, store, "Widget", "tools", 2, "19.99", "2024-03-01")

	updated, err := store.UpdateSale(context.Background(), created.ID, sales.SalePatch{})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, created.ID, updated.ID)
}

func TestUpdateSale_MissingIsNilNil(t *testing.T) {
	store := newTestStore(t)

	qty := int64(5)
	updated, err := store.UpdateSale(context.Background(), 42, sales.SalePatch{Quantity: &qty})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestDeleteSale_ReportsExistence(t *testing.T) {
	store := newTestStore(t)
	created := createSale(t, store, "Widget", "tools", 1, "1.00", "2024-01-01")
	ctx := context.Background()

	deleted, err := store.DeleteSale(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteSale(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

// =============================================================================
// AGGREGATION
// =============================================================================

func TestAggregateSummary_EmptyCoalescesToZero(t *testing.T) {
	store := newTestStore(t)

	raw, err := store.AggregateSummary(context.Background(), sales.Filter{})
	require.NoError(t, err)

	assert.Equal(t, int64(0), raw.Count)
	assert.Zero(t, raw.RevenueSum)
	assert.Zero(t, raw.RevenueAvg)
}

func TestAggregateSummary_NativeFloats(t *testing.T) {
	store := newTestStore(t)
	createSale(t, store, "a", "x", 3, "19.25", "2024-01-01") // 57.75
	createSale(t, store, "b", "x", 1, "5.50", "2024-01-02")  // 5.50

	raw, err := store.AggregateSummary(context.Background(), sales.Filter{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), raw.Count)
	assert.InDelta(t, 63.25, raw.RevenueSum, 1e-9)
	assert.InDelta(t, 31.625, raw.RevenueAvg, 1e-9)

	// Quantization of the native result gives the contract values;
	// the raw average sits exactly on the midpoint and rounds up.
	assert.Equal(t, "63.25", sales.Quantize(raw.RevenueSum).StringFixed(2))
	assert.Equal(t, "31.63", sales.Quantize(raw.RevenueAvg).StringFixed(2))
}

func TestAggregateSummary_RespectsFilter(t *testing.T) {
	store := newTestStore(t)
	createSale(t, store, "a", "tools", 2, "10.00", "2024-01-01")
	createSale(t, store, "b", "toys", 1, "99.00", "2024-01-01")

	raw, err := store.AggregateSummary(context.Background(), sales.Filter{Category: "tools"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), raw.Count)
	assert.InDelta(t, 20.0, raw.RevenueSum, 1e-9)
}

func TestQuantityByCategory_OrderAndTieBreak(t *testing.T) {
	store := newTestStore(t)
	createSale(t, store, "p1", "A", 3, "1.00", "2024-01-01")
	createSale(t, store, "p2", "B", 5, "1.00", "2024-01-02")
	createSale(t, store, "p3", "A", 2, "1.00", "2024-01-03")
	createSale(t, store, "p4", "C", 9, "1.00", "2024-01-04")

	rows, err := store.QuantityByCategory(context.Background(), sales.Filter{})
	require.NoError(t, err)

	// C=9 first, then A=5 and B=5 tied, name ascending.
	require.Len(t, rows, 3)
	assert.Equal(t, sales.CategoryQuantity{Category: "C", TotalQuantity: 9}, rows[0])
	assert.Equal(t, sales.CategoryQuantity{Category: "A", TotalQuantity: 5}, rows[1])
	assert.Equal(t, sales.CategoryQuantity{Category: "B", TotalQuantity: 5}, rows[2])
}

func TestQuantityByCategory_DateFilterOnly(t *testing.T) {
	store := newTestStore(t)
	createSale(t, store, "p1", "A", 3, "1.00", "2024-01-01")
	createSale(t, store, "p2", "B", 5, "1.00", "2024-02-01")

	rows, err := store.QuantityByCategory(context.Background(), sales.Filter{
		EndDate: datePtr("2024-01-31"),
		// A category value must be ignored by this operation.
		Category: "B",
	})
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].Category)
}
