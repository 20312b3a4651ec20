/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  domain model from the external contract.

MONEY:
  Money fields are serialized as fixed two-digit decimal strings
  ("10.13"), never floats. Incoming unit prices accept JSON numbers or
  strings; decimal.Decimal handles both.

DATES:
  Sale dates cross the wire as YYYY-MM-DD strings.

SEE ALSO:
  - handlers.go: uses these types
  - sales/types.go: the domain types these mirror
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/sales-ledger/sales"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateSaleRequest is the request to create a sale. TextNote, when
// present, attaches a note to the new sale in the same request.
type CreateSaleRequest struct {
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	SaleDate    string          `json:"sale_date"`
	TextNote    string          `json:"text_note,omitempty"`
}

// UpdateSaleRequest is a partial update; absent fields are untouched.
type UpdateSaleRequest struct {
	ProductName *string          `json:"product_name"`
	Category    *string          `json:"category"`
	Quantity    *int64           `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	SaleDate    *string          `json:"sale_date"`
}

// CreateNoteRequest is the request to attach a note to a sale.
type CreateNoteRequest struct {
	Text string `json:"text"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// SaleDTO represents a sale in API responses.
type SaleDTO struct {
	ID          int64  `json:"id"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	SaleDate    string `json:"sale_date"`
}

// NoteDTO represents a note in API responses.
type NoteDTO struct {
	ID     string `json:"id"`
	SaleID int64  `json:"sale_id"`
	Text   string `json:"text"`
}

// SummaryDTO is the aggregate analytics response.
type SummaryDTO struct {
	TotalSales    int64  `json:"total_sales"`
	TotalRevenue  string `json:"total_revenue"`
	AverageTicket string `json:"average_ticket"`
}

// CategoryQuantityDTO is one per-category quantity row.
type CategoryQuantityDTO struct {
	Category      string `json:"category"`
	TotalQuantity int64  `json:"total_quantity"`
}

// SearchResultDTO is one note-search hit with its correlated sale.
type SearchResultDTO struct {
	TextID string  `json:"text_id"`
	SaleID int64   `json:"sale_id"`
	Text   string  `json:"text"`
	Sale   SaleDTO `json:"sale"`
}

// ErrorResponse is the JSON error body. Store identifies which
// collaborator failed on 503 responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Store   string `json:"store,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toSaleDTO(s sales.Sale) SaleDTO {
	return SaleDTO{
		ID:          s.ID,
		ProductName: s.ProductName,
		Category:    s.Category,
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice.StringFixed(sales.MaxPriceFractionDigits),
		SaleDate:    s.SaleDate.Format(sales.DateFormat),
	}
}

func toSaleDTOs(items []sales.Sale) []SaleDTO {
	dtos := make([]SaleDTO, len(items))
	for i, s := range items {
		dtos[i] = toSaleDTO(s)
	}
	return dtos
}

func toNoteDTO(n sales.Note) NoteDTO {
	return NoteDTO{ID: n.ID, SaleID: n.SaleID, Text: n.Text}
}

func toSummaryDTO(s sales.Summary) SummaryDTO {
	return SummaryDTO{
		TotalSales:    s.TotalSales,
		TotalRevenue:  s.TotalRevenue.StringFixed(sales.MaxPriceFractionDigits),
		AverageTicket: s.AverageTicket.StringFixed(sales.MaxPriceFractionDigits),
	}
}
