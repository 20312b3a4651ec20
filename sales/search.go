/*
search.go - Free-text note search correlated with the ledger

PURPOSE:
  Joins note-search hits back to their owning sale records. Notes and
  sales live in independent stores with no referential integrity, so a
  hit whose owner no longer exists is silently dropped - that is
  defined filtering behavior, not an error, and is distinct from a
  genuine not-found on a direct lookup.

SEE ALSO:
  - store.go: NoteStore.SearchNotes literal-substring contract
  - store/mongodb/mongo.go: pattern escaping lives in the adapter
*/
package sales

import "context"

// Correlator joins note search results to their owning sales.
type Correlator struct {
	ledger LedgerStore
	notes  NoteStore
}

// NewCorrelator creates a search correlator over the two stores.
func NewCorrelator(ledger LedgerStore, notes NoteStore) *Correlator {
	return &Correlator{ledger: ledger, notes: notes}
}

// SearchAndCorrelate finds notes containing query as a case-insensitive
// literal substring and resolves each owner in the ledger. Dangling
// notes are dropped. Results keep the note store's order. Store
// failures from either side propagate unchanged.
func (c *Correlator) SearchAndCorrelate(ctx context.Context, query string) ([]SearchResult, error) {
	if query == "" {
		return nil, &ValidationError{Field: "q", Message: "must not be empty"}
	}

	notes, err := c.notes.SearchNotes(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(notes))
	for _, n := range notes {
		sale, err := c.ledger.GetSale(ctx, n.SaleID)
		if err != nil {
			return nil, err
		}
		if sale == nil {
			// Dangling reference: owner was deleted without note
			// cleanup. Skip silently.
			continue
		}
		results = append(results, SearchResult{
			NoteID: n.ID,
			SaleID: n.SaleID,
			Text:   n.Text,
			Sale:   *sale,
		})
	}
	return results, nil
}
