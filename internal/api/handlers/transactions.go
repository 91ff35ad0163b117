// Package handlers maps the HTTP surface onto the store and the extractor.
// Route registration lives in cmd/api; everything here is scoped to the
// user resolved by the middleware chain.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-ledger/internal/api/middleware"
	"github.com/dvloznov/expense-ledger/internal/domain"
	"github.com/dvloznov/expense-ledger/internal/money"
	"github.com/dvloznov/expense-ledger/internal/store"
)

// TransactionsHandler handles transaction CRUD and query endpoints.
type TransactionsHandler struct {
	store store.Store
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(s store.Store, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: s, log: log}
}

// Create handles POST /api/v1/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft domain.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.store.Insert(r.Context(), middleware.UserID(r.Context()), draft)
	if err != nil {
		h.writeError(w, err, "Failed to create transaction")
		return
	}

	h.log.Info().Str("transaction_id", tx.ID).Int64("amount_paise", int64(tx.AmountPaise)).Msg("Transaction created")
	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// BulkCreate handles POST /api/v1/transactions/bulk
func (h *TransactionsHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transactions []domain.Draft `json:"transactions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Transactions) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "At least one transaction is required")
		return
	}

	txs, err := h.store.BulkInsert(r.Context(), middleware.UserID(r.Context()), req.Transactions)
	if err != nil {
		h.writeError(w, err, "Failed to create transactions")
		return
	}

	h.log.Info().Int("count", len(txs)).Msg("Transactions bulk created")
	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"data":  txs,
		"count": len(txs),
	})
}

// List handles GET /api/v1/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := store.ParseQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, err, "Invalid query parameters")
		return
	}

	rows, total, err := h.store.FindMany(r.Context(), middleware.UserID(r.Context()), q)
	if err != nil {
		h.writeError(w, err, "Failed to query transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":       rows,
		"totalCount": total,
	})
}

// Get handles GET /api/v1/transactions/{id}
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.store.FindByID(r.Context(), middleware.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err, "Failed to fetch transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// updateRequest is the PUT body; absent fields are left unchanged.
type updateRequest struct {
	Date        *string  `json:"date"`
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	IsConfirmed *bool    `json:"isConfirmed"`
}

// Update handles PUT /api/v1/transactions/{id}
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch, verrs := req.toPatch()
	if verrs != nil {
		h.writeError(w, verrs, "Invalid update")
		return
	}

	ctx := r.Context()
	userID := middleware.UserID(ctx)
	id := r.PathValue("id")

	// Confirmation is one-way: a confirmed transaction never returns to
	// the unconfirmed partition.
	if patch.IsConfirmed != nil && !*patch.IsConfirmed {
		current, err := h.store.FindByID(ctx, userID, id)
		if err != nil {
			h.writeError(w, err, "Failed to fetch transaction")
			return
		}
		if current.IsConfirmed {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction is already confirmed and cannot be unconfirmed")
			return
		}
	}

	tx, err := h.store.Update(ctx, userID, id, patch)
	if err != nil {
		h.writeError(w, err, "Failed to update transaction")
		return
	}

	h.log.Info().Str("transaction_id", tx.ID).Bool("is_confirmed", tx.IsConfirmed).Msg("Transaction updated")
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// Delete handles DELETE /api/v1/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Delete(r.Context(), middleware.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err, "Failed to delete transaction")
		return
	}
	if n == 0 {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]int64{"deletedCount": n})
}

// ListCategories handles GET /api/v1/categories
func (h *TransactionsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.DistinctCategories(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.writeError(w, err, "Failed to list categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

func (r updateRequest) toPatch() (domain.Patch, domain.Errors) {
	var patch domain.Patch
	var errs domain.Errors

	if r.Date != nil {
		parsed, ok := parseDate(*r.Date)
		if !ok {
			errs = append(errs, domain.FieldError{Field: "date", Code: domain.CodeInvalidDate, Reason: "invalid date format: " + *r.Date})
		} else {
			utc := parsed.UTC()
			patch.Date = &utc
		}
	}
	if r.Amount != nil {
		paise, err := money.PaiseFromFloat(*r.Amount)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "amount", Code: domain.CodeNonIntegerAmount, Reason: "amount must be an integer number of paise"})
		} else {
			patch.AmountPaise = &paise
		}
	}
	patch.Category = r.Category
	patch.Description = r.Description
	patch.IsConfirmed = r.IsConfirmed

	if len(errs) > 0 {
		return domain.Patch{}, errs
	}
	return patch, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// writeError maps the error taxonomy onto HTTP statuses. Validation and
// not-found details are client-visible; storage failures stay opaque.
func (h *TransactionsHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	var bulkErr *store.BulkValidationError
	if errors.As(err, &bulkErr) {
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "Validation failed",
			"index":   bulkErr.Index,
			"details": bulkErr.Errors,
		})
		return
	}
	if verrs, ok := domain.AsErrors(err); ok {
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "Validation failed",
			"details": verrs,
		})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	h.log.Error().Err(err).Msg(fallback)
	middleware.WriteError(w, http.StatusInternalServerError, fallback)
}
