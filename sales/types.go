/*
types.go - Core domain types for the sales ledger

PURPOSE:
  Defines the Sale record, the free-text Note document, the derived
  analytics values, and the filter/patch types shared by the store
  adapters and the service layer.

DESIGN DECISIONS:
  1. Money: unit prices and revenue use decimal.Decimal. Floating point
     never touches a persisted or presented money value; the only place
     floats appear is inside the stores' native aggregation (see
     analytics.go).
  2. Dates: sale_date is a calendar date. It is carried as a time.Time
     at UTC midnight and exchanged as YYYY-MM-DD everywhere.
  3. Identifiers: sale IDs are store-assigned integers, note IDs are
     opaque strings assigned by the note store. Notes reference sales
     by ID with no enforced referential integrity.

SEE ALSO:
  - store.go: store interfaces consuming these types
  - analytics.go: derived Summary / CategoryQuantity computation
  - errors.go: validation error types
*/
package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field constraints, matching the ledger schema.
const (
	MaxProductNameLen = 255
	MaxCategoryLen    = 100

	// Unit prices carry at most 2 fractional digits and 12 digits total.
	MaxPriceDigits         = 12
	MaxPriceFractionDigits = 2
)

// DateFormat is the wire and storage format for sale dates.
const DateFormat = "2006-01-02"

// Sale is a single sales transaction in the ledger.
type Sale struct {
	ID          int64
	ProductName string
	Category    string
	Quantity    int64
	UnitPrice   decimal.Decimal
	SaleDate    time.Time
}

// Revenue is quantity × unit price, computed exactly.
func (s Sale) Revenue() decimal.Decimal {
	return s.UnitPrice.Mul(decimal.NewFromInt(s.Quantity))
}

// Note is a free-text document attached to a sale. The SaleID reference
// may dangle: deleting a sale removes its notes only best-effort.
type Note struct {
	ID     string
	SaleID int64
	Text   string
}

// Filter selects sales by inclusive date range and exact category.
// Nil/empty fields impose no constraint; present fields are ANDed.
type Filter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  string
}

// SaleInput is the validated payload for creating a sale.
type SaleInput struct {
	ProductName string
	Category    string
	Quantity    int64
	UnitPrice   decimal.Decimal
	SaleDate    time.Time
}

// Validate checks all field constraints. Returns a *ValidationError on
// the first violation.
func (in SaleInput) Validate() error {
	if err := validateProductName(in.ProductName); err != nil {
		return err
	}
	if err := validateCategory(in.Category); err != nil {
		return err
	}
	if in.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}
	return validateUnitPrice(in.UnitPrice)
}

// SalePatch is a partial update: only non-nil fields are applied.
type SalePatch struct {
	ProductName *string
	Category    *string
	Quantity    *int64
	UnitPrice   *decimal.Decimal
	SaleDate    *time.Time
}

// Validate checks the constraints of every supplied field. An empty
// patch is valid and applies no changes.
func (p SalePatch) Validate() error {
	if p.ProductName != nil {
		if err := validateProductName(*p.ProductName); err != nil {
			return err
		}
	}
	if p.Category != nil {
		if err := validateCategory(*p.Category); err != nil {
			return err
		}
	}
	if p.Quantity != nil && *p.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}
	if p.UnitPrice != nil {
		return validateUnitPrice(*p.UnitPrice)
	}
	return nil
}

// Summary holds aggregate analytics over a filtered set of sales.
// TotalRevenue and AverageTicket are quantized to exactly 2 fractional
// digits; both are zero (not null) when nothing matches.
type Summary struct {
	TotalSales    int64
	TotalRevenue  decimal.Decimal
	AverageTicket decimal.Decimal
}

// CategoryQuantity is the summed quantity for one category.
type CategoryQuantity struct {
	Category      string
	TotalQuantity int64
}

// RawSummary is what the ledger's native aggregation returns before
// quantization. Sum and average may have been computed in floating
// point by the store engine.
type RawSummary struct {
	Count      int64
	RevenueSum float64
	RevenueAvg float64
}

// SearchResult is one note-search hit correlated with its owning sale.
type SearchResult struct {
	NoteID string
	SaleID int64
	Text   string
	Sale   Sale
}

func validateProductName(name string) error {
	if name == "" {
		return &ValidationError{Field: "product_name", Message: "must not be empty"}
	}
	if len(name) > MaxProductNameLen {
		return &ValidationError{Field: "product_name", Message: "must be at most 255 characters"}
	}
	return nil
}

func validateCategory(category string) error {
	if category == "" {
		return &ValidationError{Field: "category", Message: "must not be empty"}
	}
	if len(category) > MaxCategoryLen {
		return &ValidationError{Field: "category", Message: "must be at most 100 characters"}
	}
	return nil
}

func validateUnitPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return &ValidationError{Field: "unit_price", Message: "must be greater than zero"}
	}
	if price.Exponent() < -MaxPriceFractionDigits {
		return &ValidationError{Field: "unit_price", Message: "must have at most 2 decimal places"}
	}
	if totalDigits(price) > MaxPriceDigits {
		return &ValidationError{Field: "unit_price", Message: "must have at most 12 digits"}
	}
	return nil
}

// totalDigits counts the digits of a decimal including both sides of
// the point, e.g. 1234.56 has 6.
func totalDigits(d decimal.Decimal) int {
	digits := int(d.NumDigits())
	if exp := int(d.Exponent()); exp > 0 {
		digits += exp
	} else if -exp > digits {
		digits = -exp
	}
	return digits
}
