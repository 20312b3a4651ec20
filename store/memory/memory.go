/*
Package memory provides in-memory implementations of the sales store
interfaces for tests and local development.

The fakes mirror the production adapters' semantics, not just their
signatures:

  - Ledger.AggregateSummary sums revenue in float64, mimicking the
    engine-native floating-point aggregation SQLite performs, so the
    quantization contract is exercised the same way in tests.
  - Note search is plain case-insensitive substring matching, matching
    the literal semantics the MongoDB adapter produces via escaping.

Both fakes accept an injected failure for partial-failure tests.
*/
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/warp/sales-ledger/sales"
)

// =============================================================================
// LEDGER - In-memory sales.LedgerStore
// =============================================================================

var (
	_ sales.LedgerStore = (*Ledger)(nil)
	_ sales.NoteStore   = (*Notes)(nil)
)

// Ledger is an in-memory sales.LedgerStore.
type Ledger struct {
	mu     sync.RWMutex
	sales  map[int64]sales.Sale
	nextID int64

	// FailWith, when set, makes every operation return that error.
	FailWith error
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{sales: make(map[int64]sales.Sale), nextID: 1}
}

func (l *Ledger) CreateSale(_ context.Context, in sales.SaleInput) (*sales.Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailWith != nil {
		return nil, l.FailWith
	}

	sale := sales.Sale{
		ID:          l.nextID,
		ProductName: in.ProductName,
		Category:    in.Category,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		SaleDate:    in.SaleDate,
	}
	l.sales[sale.ID] = sale
	l.nextID++
	return &sale, nil
}

func (l *Ledger) GetSale(_ context.Context, id int64) (*sales.Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.FailWith != nil {
		return nil, l.FailWith
	}

	sale, ok := l.sales[id]
	if !ok {
		return nil, nil
	}
	return &sale, nil
}

func (l *Ledger) ListSales(_ context.Context, f sales.Filter) ([]sales.Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.FailWith != nil {
		return nil, l.FailWith
	}

	matched := l.match(f)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].SaleDate.Equal(matched[j].SaleDate) {
			return matched[i].SaleDate.After(matched[j].SaleDate)
		}
		return matched[i].ID > matched[j].ID
	})
	return matched, nil
}

func (l *Ledger) UpdateSale(_ context.Context, id int64, patch sales.SalePatch) (*sales.Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailWith != nil {
		return nil, l.FailWith
	}

	sale, ok := l.sales[id]
	if !ok {
		return nil, nil
	}
	if patch.ProductName != nil {
		sale.ProductName = *patch.ProductName
	}
	if patch.Category != nil {
		sale.Category = *patch.Category
	}
	if patch.Quantity != nil {
		sale.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		sale.UnitPrice = *patch.UnitPrice
	}
	if patch.SaleDate != nil {
		sale.SaleDate = *patch.SaleDate
	}
	l.sales[id] = sale
	return &sale, nil
}

func (l *Ledger) DeleteSale(_ context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailWith != nil {
		return false, l.FailWith
	}

	if _, ok := l.sales[id]; !ok {
		return false, nil
	}
	delete(l.sales, id)
	return true, nil
}

func (l *Ledger) AggregateSummary(_ context.Context, f sales.Filter) (sales.RawSummary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.FailWith != nil {
		return sales.RawSummary{}, l.FailWith
	}

	var raw sales.RawSummary
	for _, s := range l.match(f) {
		price, _ := s.UnitPrice.Float64()
		raw.Count++
		raw.RevenueSum += float64(s.Quantity) * price
	}
	if raw.Count > 0 {
		raw.RevenueAvg = raw.RevenueSum / float64(raw.Count)
	}
	return raw, nil
}

func (l *Ledger) QuantityByCategory(_ context.Context, f sales.Filter) ([]sales.CategoryQuantity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.FailWith != nil {
		return nil, l.FailWith
	}

	f.Category = "" // category predicate not offered here
	totals := make(map[string]int64)
	for _, s := range l.match(f) {
		totals[s.Category] += s.Quantity
	}

	rows := make([]sales.CategoryQuantity, 0, len(totals))
	for category, total := range totals {
		rows = append(rows, sales.CategoryQuantity{Category: category, TotalQuantity: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalQuantity != rows[j].TotalQuantity {
			return rows[i].TotalQuantity > rows[j].TotalQuantity
		}
		return rows[i].Category < rows[j].Category
	})
	return rows, nil
}

// match returns the sales satisfying every supplied filter predicate.
// Callers hold the lock.
func (l *Ledger) match(f sales.Filter) []sales.Sale {
	matched := make([]sales.Sale, 0, len(l.sales))
	for _, s := range l.sales {
		if f.StartDate != nil && s.SaleDate.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && s.SaleDate.After(*f.EndDate) {
			continue
		}
		if f.Category != "" && s.Category != f.Category {
			continue
		}
		matched = append(matched, s)
	}
	return matched
}

// =============================================================================
// NOTES - In-memory sales.NoteStore
// =============================================================================

// Notes is an in-memory sales.NoteStore. Insertion order is preserved
// in search results.
type Notes struct {
	mu     sync.RWMutex
	notes  []sales.Note
	nextID int64

	// FailWith, when set, makes every operation return that error.
	FailWith error
}

// NewNotes creates an empty in-memory note store.
func NewNotes() *Notes {
	return &Notes{nextID: 1}
}

func (n *Notes) CreateNote(_ context.Context, saleID int64, text string) (*sales.Note, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailWith != nil {
		return nil, n.FailWith
	}

	note := sales.Note{
		ID:     "note-" + strconv.FormatInt(n.nextID, 10),
		SaleID: saleID,
		Text:   text,
	}
	n.notes = append(n.notes, note)
	n.nextID++
	return &note, nil
}

func (n *Notes) SearchNotes(_ context.Context, query string) ([]sales.Note, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.FailWith != nil {
		return nil, n.FailWith
	}

	needle := strings.ToLower(query)
	var matched []sales.Note
	for _, note := range n.notes {
		if strings.Contains(strings.ToLower(note.Text), needle) {
			matched = append(matched, note)
		}
	}
	return matched, nil
}

func (n *Notes) DeleteNotesByOwner(_ context.Context, saleID int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailWith != nil {
		return n.FailWith
	}

	kept := n.notes[:0]
	for _, note := range n.notes {
		if note.SaleID != saleID {
			kept = append(kept, note)
		}
	}
	n.notes = kept
	return nil
}

// Count reports how many notes are stored, for test assertions.
func (n *Notes) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.notes)
}
