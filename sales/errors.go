/*
errors.go - Centralized error types for the sales domain

PURPOSE:
  All error types in one place. The taxonomy the HTTP layer maps onto
  status codes:

  1. Validation  - caller input violates a constraint (400)
  2. Not-found   - referenced sale does not exist (404)
  3. Store-unavailable - the ledger or note collaborator failed,
     distinguished by which store (503)
  4. Anything else - internal (500), logged, never swallowed

PROPAGATION:
  The analytics engine and search correlator never catch store errors;
  adapters wrap them with the matching sentinel and callers classify
  with errors.Is. A dangling note reference during search is NOT an
  error - it is defined filtering behavior (see search.go).

SEE ALSO:
  - store.go: adapter contracts referencing these errors
  - api/handlers.go: status code mapping
*/
package sales

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSaleNotFound is returned when a referenced sale does not exist.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrLedgerUnavailable is returned when the ledger store cannot be
	// reached or errors during a call.
	ErrLedgerUnavailable = errors.New("ledger store unavailable")

	// ErrNoteStoreUnavailable is returned when the note store cannot be
	// reached or errors during a call.
	ErrNoteStoreUnavailable = errors.New("note store unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which field violated which constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StoreUnavailableError identifies which collaborator failed so callers
// can reason about partial-failure scenarios.
type StoreUnavailableError struct {
	Store string // "ledger" or "notes"
	Err   error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("%s store unavailable: %v", e.Store, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	switch e.Store {
	case "notes":
		return ErrNoteStoreUnavailable
	default:
		return ErrLedgerUnavailable
	}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is due to invalid client input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound returns true if the error indicates a missing sale.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSaleNotFound)
}

// IsStoreUnavailable returns true if either collaborator failed. Such
// errors are retriable.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrLedgerUnavailable) || errors.Is(err, ErrNoteStoreUnavailable)
}
