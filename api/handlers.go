/*
handlers.go - HTTP API handlers for the sales ledger service

PURPOSE:
  Exposes the service via REST. Handles HTTP request/response, JSON
  serialization, and delegates to the domain logic.

ENDPOINTS:
  Sales:
    POST   /api/sales               Create sale (optional text_note)
    GET    /api/sales               List sales (date range, category)
    GET    /api/sales/{id}          Get sale
    PUT    /api/sales/{id}          Partial update
    DELETE /api/sales/{id}          Delete sale + best-effort notes
    POST   /api/sales/{id}/texts    Attach note

  Analytics:
    GET    /api/analytics/summary              Count/revenue/avg ticket
    GET    /api/analytics/quantity-by-category Per-category quantities

  Search:
    GET    /api/search/text?q=      Literal note search + correlation

ERROR HANDLING:
  Domain errors map onto HTTP status:
  - 400: validation failures (malformed dates, constraint violations)
  - 404: sale not found
  - 503: ledger or note store unavailable; the response body carries
         which store failed so callers can reason about partial failure
  - 500: anything else, logged

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
  - sales/errors.go: the taxonomy mapped here
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/sales-ledger/sales"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	service    *sales.Service
	analytics  *sales.Analytics
	correlator *sales.Correlator
	logger     *zap.Logger
}

// NewHandler creates a handler wired to the two stores.
func NewHandler(ledger sales.LedgerStore, notes sales.NoteStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Handler{
		service:    sales.NewService(ledger, notes, logger),
		analytics:  sales.NewAnalytics(ledger),
		correlator: sales.NewCorrelator(ledger, notes),
		logger:     logger,
	}
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// CreateSale creates a new sale, and a note when text_note is present.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	saleDate, err := time.Parse(sales.DateFormat, req.SaleDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sale_date format (use YYYY-MM-DD)", err)
		return
	}

	in := sales.SaleInput{
		ProductName: req.ProductName,
		Category:    req.Category,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		SaleDate:    saleDate,
	}

	sale, err := h.service.CreateSale(r.Context(), in, req.TextNote)
	if err != nil {
		// The sale may have been created even when the note write
		// failed; partial success still surfaces the store error.
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSaleDTO(*sale))
}

// ListSales returns sales matching the query filters, most recent first.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	items, err := h.service.ListSales(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSaleDTOs(items))
}

// GetSale returns a single sale.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSaleDTO(*sale))
}

// UpdateSale applies a partial update to a sale.
func (h *Handler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	patch := sales.SalePatch{
		ProductName: req.ProductName,
		Category:    req.Category,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
	}
	if req.SaleDate != nil {
		saleDate, err := time.Parse(sales.DateFormat, *req.SaleDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid sale_date format (use YYYY-MM-DD)", err)
			return
		}
		patch.SaleDate = &saleDate
	}

	sale, err := h.service.UpdateSale(r.Context(), id, patch)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSaleDTO(*sale))
}

// DeleteSale removes a sale and best-effort removes its notes.
func (h *Handler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSale(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateSaleText attaches a note to an existing sale.
func (h *Handler) CreateSaleText(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	note, err := h.service.AddNote(r.Context(), id, req.Text)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNoteDTO(*note))
}

// =============================================================================
// ANALYTICS HANDLERS
// =============================================================================

// GetSummary returns count, total revenue and average ticket.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	summary, err := h.analytics.Summarize(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// GetQuantityByCategory returns per-category quantity totals.
func (h *Handler) GetQuantityByCategory(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	rows, err := h.analytics.QuantityByCategory(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]CategoryQuantityDTO, len(rows))
	for i, row := range rows {
		dtos[i] = CategoryQuantityDTO{Category: row.Category, TotalQuantity: row.TotalQuantity}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SEARCH HANDLER
// =============================================================================

// SearchText searches notes and correlates hits with their sales.
func (h *Handler) SearchText(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := h.correlator.SearchAndCorrelate(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]SearchResultDTO, len(results))
	for i, res := range results {
		dtos[i] = SearchResultDTO{
			TextID: res.NoteID,
			SaleID: res.SaleID,
			Text:   res.Text,
			Sale:   toSaleDTO(res.Sale),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseID extracts the {id} URL parameter, writing a 400 on failure.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sale id", err)
		return 0, false
	}
	return id, true
}

// parseFilter builds a sales.Filter from start_date/end_date/category
// query parameters.
func parseFilter(r *http.Request) (sales.Filter, error) {
	var f sales.Filter
	q := r.URL.Query()

	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse(sales.DateFormat, v)
		if err != nil {
			return sales.Filter{}, &sales.ValidationError{Field: "start_date", Message: "use YYYY-MM-DD"}
		}
		f.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse(sales.DateFormat, v)
		if err != nil {
			return sales.Filter{}, &sales.ValidationError{Field: "end_date", Message: "use YYYY-MM-DD"}
		}
		f.EndDate = &t
	}
	f.Category = q.Get("category")
	return f, nil
}

// writeServiceError maps a domain error onto an HTTP response.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case sales.IsValidation(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case sales.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Sale not found", nil)
	case sales.IsStoreUnavailable(err):
		store := "ledger"
		if errors.Is(err, sales.ErrNoteStoreUnavailable) {
			store = "notes"
		}
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error: "Store unavailable",
			Store: store,
		})
	default:
		h.logger.Error("unexpected error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
