/*
store.go - Storage interfaces for the two independent datastores

PURPOSE:
  Contracts the domain logic depends on. Two collaborators, two
  consistency domains:

  LedgerStore: structured, queryable sale records (SQLite in prod).
  NoteStore:   free-text documents keyed by owning sale id (MongoDB).

  The two stores are independently and non-atomically updated. No
  operation here coordinates a cross-store transaction; callers must
  tolerate partial success.

IMPLEMENTATIONS:
  store/sqlite:  production LedgerStore
  store/mongodb: production NoteStore
  store/memory:  in-memory fakes of both for tests

SEE ALSO:
  - service.go: orchestration across both stores
  - analytics.go: consumer of the raw aggregation contract
*/
package sales

import "context"

// LedgerStore is the contract for the structured sale ledger.
//
// Error convention: lookups that miss return (nil, nil) rather than an
// error; any store-level failure wraps ErrLedgerUnavailable.
type LedgerStore interface {
	// CreateSale inserts a record and returns it with the assigned ID.
	CreateSale(ctx context.Context, in SaleInput) (*Sale, error)

	// GetSale returns the sale or (nil, nil) if it does not exist.
	GetSale(ctx context.Context, id int64) (*Sale, error)

	// ListSales returns records matching the filter, ordered by
	// sale_date descending then id descending. The ordering is
	// load-bearing: most recent first, date ties broken reproducibly.
	ListSales(ctx context.Context, f Filter) ([]Sale, error)

	// UpdateSale applies only the supplied patch fields and returns the
	// updated record, or (nil, nil) if the sale does not exist.
	UpdateSale(ctx context.Context, id int64, patch SalePatch) (*Sale, error)

	// DeleteSale removes the record, reporting whether it existed.
	DeleteSale(ctx context.Context, id int64) (bool, error)

	// AggregateSummary computes count, revenue sum and revenue average
	// over matching records using the engine's native arithmetic. The
	// sum and average are exactly zero (not null) on an empty match.
	// Quantization to exact decimals is the caller's job.
	AggregateSummary(ctx context.Context, f Filter) (RawSummary, error)

	// QuantityByCategory sums quantities per distinct category among
	// matching records, ordered by total descending then category name
	// ascending. The category predicate of the filter is ignored.
	QuantityByCategory(ctx context.Context, f Filter) ([]CategoryQuantity, error)
}

// NoteStore is the contract for the free-text note documents.
//
// Any store-level failure wraps ErrNoteStoreUnavailable.
type NoteStore interface {
	// CreateNote stores a document and returns it with the assigned ID.
	CreateNote(ctx context.Context, saleID int64, text string) (*Note, error)

	// SearchNotes returns documents whose text contains the query as a
	// case-insensitive literal substring. Characters with pattern
	// meaning in the underlying mechanism are neutralized, so "3.5%"
	// matches only the literal text "3.5%". Result order is whatever
	// the store returns.
	SearchNotes(ctx context.Context, query string) ([]Note, error)

	// DeleteNotesByOwner removes all documents owned by the sale.
	// A no-op, not an error, when none exist.
	DeleteNotesByOwner(ctx context.Context, saleID int64) error
}
