/*
Package sqlite provides the SQLite-backed implementation of the sales
ledger store.

PURPOSE:
  Implements sales.LedgerStore. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

SCHEMA:
  sales:
    id           INTEGER PRIMARY KEY AUTOINCREMENT
    product_name TEXT    (non-empty, <=255, validated upstream)
    category     TEXT    (indexed: filtering and grouping)
    quantity     INTEGER (> 0)
    unit_price   TEXT    (exact decimal string, e.g. "19.99")
    sale_date    TEXT    (YYYY-MM-DD, indexed; lexicographic order is
                          chronological order)

MONEY:
  unit_price is stored as its exact decimal string. Aggregations
  (SUM/AVG of quantity * unit_price) run in SQLite's native REAL
  arithmetic - SQLite coerces the TEXT operand to a float. The caller
  (sales.Analytics) quantizes the raw float back to an exact 2-digit
  decimal. That split is deliberate; see sales/analytics.go.

ORDERING:
  ListSales orders by sale_date DESC, id DESC: most recent first, date
  ties broken deterministically. QuantityByCategory orders by total
  DESC, category ASC.

CONCURRENCY:
  sync.RWMutex for thread-safety, WAL mode for better concurrency.
  Use ":memory:" for an in-memory database in tests.

ERRORS:
  Lookups that miss return (nil, nil). Every driver failure is wrapped
  in sales.StoreUnavailableError{Store: "ledger"}.

SEE ALSO:
  - sales/store.go: interface definition
  - store/memory/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/sales-ledger/sales"
)

var _ sales.LedgerStore = (*Store)(nil)

// Store implements sales.LedgerStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_name TEXT NOT NULL,
		category TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price TEXT NOT NULL,
		sale_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_category ON sales(category);
	CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales(sale_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateSale inserts a record and returns it with the assigned id.
func (s *Store) CreateSale(ctx context.Context, in sales.SaleInput) (*sales.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sales (product_name, category, quantity, unit_price, sale_date)
		 VALUES (?, ?, ?, ?, ?)`,
		in.ProductName, in.Category, in.Quantity,
		in.UnitPrice.StringFixed(sales.MaxPriceFractionDigits),
		in.SaleDate.Format(sales.DateFormat),
	)
	if err != nil {
		return nil, ledgerErr(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, ledgerErr(err)
	}

	return &sales.Sale{
		ID:          id,
		ProductName: in.ProductName,
		Category:    in.Category,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		SaleDate:    in.SaleDate,
	}, nil
}

// GetSale returns the sale or (nil, nil) if it does not exist.
func (s *Store) GetSale(ctx context.Context, id int64) (*sales.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, product_name, category, quantity, unit_price, sale_date FROM sales WHERE id = ?",
		id,
	)

	sale, err := scanSale(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, ledgerErr(err)
	}
	return sale, nil
}

// ListSales returns records matching the filter, ordered by sale_date
// descending then id descending.
func (s *Store) ListSales(ctx context.Context, f sales.Filter) ([]sales.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := whereClause(f, true)
	query := "SELECT id, product_name, category, quantity, unit_price, sale_date FROM sales" +
		where + " ORDER BY sale_date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ledgerErr(err)
	}
	defer rows.Close()

	var result []sales.Sale
	for rows.Next() {
		sale, err := scanSale(rows.Scan)
		if err != nil {
			return nil, ledgerErr(err)
		}
		result = append(result, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, ledgerErr(err)
	}
	return result, nil
}

// UpdateSale applies only the supplied patch fields and returns the
// updated record, or (nil, nil) if the sale does not exist.
func (s *Store) UpdateSale(ctx context.Context, id int64, patch sales.SalePatch) (*sales.Sale, error) {
	sets, args := patchClauses(patch)

	if len(sets) > 0 {
		s.mu.Lock()
		args = append(args, id)
		_, err := s.db.ExecContext(ctx,
			"UPDATE sales SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		s.mu.Unlock()
		if err != nil {
			return nil, ledgerErr(err)
		}
	}

	return s.GetSale(ctx, id)
}

// DeleteSale removes the record, reporting whether it existed.
func (s *Store) DeleteSale(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sales WHERE id = ?", id)
	if err != nil {
		return false, ledgerErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, ledgerErr(err)
	}
	return n > 0, nil
}

// AggregateSummary computes count, revenue sum and revenue average with
// SQLite's native arithmetic. SUM and AVG coalesce to 0 on an empty
// match; quantization is the caller's job.
func (s *Store) AggregateSummary(ctx context.Context, f sales.Filter) (sales.RawSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := whereClause(f, true)
	query := `SELECT COUNT(id),
		COALESCE(SUM(quantity * unit_price), 0),
		COALESCE(AVG(quantity * unit_price), 0)
		FROM sales` + where

	var raw sales.RawSummary
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&raw.Count, &raw.RevenueSum, &raw.RevenueAvg)
	if err != nil {
		return sales.RawSummary{}, ledgerErr(err)
	}
	return raw, nil
}

// QuantityByCategory sums quantities per category among records in the
// filter's date range, ordered by total descending then category name
// ascending. The filter's category field is ignored.
func (s *Store) QuantityByCategory(ctx context.Context, f sales.Filter) ([]sales.CategoryQuantity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := whereClause(f, false)
	query := `SELECT category, SUM(quantity) FROM sales` + where +
		` GROUP BY category ORDER BY SUM(quantity) DESC, category ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ledgerErr(err)
	}
	defer rows.Close()

	var result []sales.CategoryQuantity
	for rows.Next() {
		var cq sales.CategoryQuantity
		if err := rows.Scan(&cq.Category, &cq.TotalQuantity); err != nil {
			return nil, ledgerErr(err)
		}
		result = append(result, cq)
	}
	if err := rows.Err(); err != nil {
		return nil, ledgerErr(err)
	}
	return result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// whereClause builds the conjunctive WHERE clause for a filter.
// Sale dates are TEXT in YYYY-MM-DD, so string comparison is date
// comparison, inclusive on both ends.
func whereClause(f sales.Filter, includeCategory bool) (string, []any) {
	var conds []string
	var args []any

	if f.StartDate != nil {
		conds = append(conds, "sale_date >= ?")
		args = append(args, f.StartDate.Format(sales.DateFormat))
	}
	if f.EndDate != nil {
		conds = append(conds, "sale_date <= ?")
		args = append(args, f.EndDate.Format(sales.DateFormat))
	}
	if includeCategory && f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// patchClauses builds SET clauses for the supplied patch fields.
func patchClauses(patch sales.SalePatch) ([]string, []any) {
	var sets []string
	var args []any

	if patch.ProductName != nil {
		sets = append(sets, "product_name = ?")
		args = append(args, *patch.ProductName)
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *patch.Quantity)
	}
	if patch.UnitPrice != nil {
		sets = append(sets, "unit_price = ?")
		args = append(args, patch.UnitPrice.StringFixed(sales.MaxPriceFractionDigits))
	}
	if patch.SaleDate != nil {
		sets = append(sets, "sale_date = ?")
		args = append(args, patch.SaleDate.Format(sales.DateFormat))
	}
	return sets, args
}

// scanSale scans one sales row, converting the stored text columns.
func scanSale(scan func(dest ...any) error) (*sales.Sale, error) {
	var sale sales.Sale
	var price, date string

	if err := scan(&sale.ID, &sale.ProductName, &sale.Category, &sale.Quantity, &price, &date); err != nil {
		return nil, err
	}

	var err error
	sale.UnitPrice, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid unit_price %q: %w", price, err)
	}
	sale.SaleDate, err = time.Parse(sales.DateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("invalid sale_date %q: %w", date, err)
	}
	return &sale, nil
}

func ledgerErr(err error) error {
	return &sales.StoreUnavailableError{Store: "ledger", Err: err}
}
