/*
service.go - Orchestration across the ledger and note stores

PURPOSE:
  The boundary the HTTP handlers call into. Validates input, dispatches
  to the stores, and owns the deliberately relaxed cross-store
  consistency:

  - Creating a sale with a note is two independent writes. If the note
    write fails the sale stays created and the note error propagates.
  - Deleting a sale triggers ONE best-effort note cleanup. A cleanup
    failure is logged and swallowed; the deletion still succeeds.

  No retry, no queue, no compensating transaction.

SEE ALSO:
  - errors.go: the taxonomy surfaced from here
  - api/handlers.go: caller
*/
package sales

import (
	"context"

	"go.uber.org/zap"
)

// Service provides the sales management operations on the two stores.
type Service struct {
	ledger LedgerStore
	notes  NoteStore
	logger *zap.Logger
}

// NewService creates a new Service. A nil logger falls back to a
// production zap logger.
func NewService(ledger LedgerStore, notes NoteStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Service{ledger: ledger, notes: notes, logger: logger}
}

// CreateSale validates and inserts a sale. When noteText is non-empty a
// note is created afterwards; a note-store failure at that point leaves
// the sale created and returns the error alongside the sale.
func (s *Service) CreateSale(ctx context.Context, in SaleInput, noteText string) (*Sale, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	sale, err := s.ledger.CreateSale(ctx, in)
	if err != nil {
		s.logger.Error("failed to create sale", zap.Error(err))
		return nil, err
	}

	if noteText != "" {
		if _, err := s.notes.CreateNote(ctx, sale.ID, noteText); err != nil {
			// The sale is already committed. Partial success is
			// tolerated; the caller learns the note write failed.
			s.logger.Error("sale created but note write failed",
				zap.Int64("sale_id", sale.ID), zap.Error(err))
			return sale, err
		}
	}

	s.logger.Info("sale created",
		zap.Int64("sale_id", sale.ID),
		zap.String("category", sale.Category))
	return sale, nil
}

// GetSale returns the sale or ErrSaleNotFound.
func (s *Service) GetSale(ctx context.Context, id int64) (*Sale, error) {
	sale, err := s.ledger.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	return sale, nil
}

// ListSales returns sales matching the filter, most recent first with
// date ties broken by id descending.
func (s *Service) ListSales(ctx context.Context, f Filter) ([]Sale, error) {
	sales, err := s.ledger.ListSales(ctx, f)
	if err != nil {
		return nil, err
	}
	if sales == nil {
		sales = []Sale{}
	}
	return sales, nil
}

// UpdateSale applies a partial update and returns the updated record.
func (s *Service) UpdateSale(ctx context.Context, id int64, patch SalePatch) (*Sale, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	sale, err := s.ledger.UpdateSale(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}

	s.logger.Info("sale updated", zap.Int64("sale_id", id))
	return sale, nil
}

// DeleteSale removes the sale from the ledger, then makes a single
// best-effort attempt to remove its notes. The note cleanup failing
// does not fail the deletion.
func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	deleted, err := s.ledger.DeleteSale(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSaleNotFound
	}

	if err := s.notes.DeleteNotesByOwner(ctx, id); err != nil {
		// Leaves dangling notes; the search correlator filters them.
		s.logger.Warn("sale deleted but note cleanup failed",
			zap.Int64("sale_id", id), zap.Error(err))
	}

	s.logger.Info("sale deleted", zap.Int64("sale_id", id))
	return nil
}

// AddNote attaches a note to an existing sale. The owning sale must
// exist at the time of the write; afterwards the reference may dangle.
func (s *Service) AddNote(ctx context.Context, saleID int64, text string) (*Note, error) {
	if text == "" {
		return nil, &ValidationError{Field: "text", Message: "must not be empty"}
	}

	sale, err := s.ledger.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}

	note, err := s.notes.CreateNote(ctx, saleID, text)
	if err != nil {
		s.logger.Error("failed to create note", zap.Int64("sale_id", saleID), zap.Error(err))
		return nil, err
	}
	return note, nil
}
