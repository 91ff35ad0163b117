package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-ledger/internal/api/middleware"
	"github.com/dvloznov/expense-ledger/internal/domain"
	"github.com/dvloznov/expense-ledger/internal/extract"
)

// TransactionExtractor is what the handler needs from the extractor;
// satisfied by *extract.Extractor and mockable in tests.
type TransactionExtractor interface {
	Extract(ctx context.Context, req extract.Request) ([]domain.Draft, error)
}

// ExtractHandler handles the natural-language extraction endpoint.
type ExtractHandler struct {
	extractor TransactionExtractor
	log       zerolog.Logger
}

// NewExtractHandler creates a new extraction handler.
func NewExtractHandler(extractor TransactionExtractor, log zerolog.Logger) *ExtractHandler {
	return &ExtractHandler{extractor: extractor, log: log}
}

// Extract handles POST /api/v1/extract. It returns candidate drafts only;
// nothing is persisted until the client submits them via bulk insert.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TransactionsDescription string `json:"transactionsDescription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	drafts, err := h.extractor.Extract(r.Context(), extract.Request{
		Text: req.TransactionsDescription,
		AsOf: time.Now().UTC(),
	})
	if err != nil {
		if refusal, ok := extract.IsRefusal(err); ok {
			middleware.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": refusal.Reason,
			})
			return
		}
		// Service failures are checked before validation errors: a
		// candidate that breaks the schema contract carries field errors
		// about the model's output, not the user's input, and must stay
		// a retryable upstream failure.
		if errors.Is(err, extract.ErrService) {
			h.log.Error().Err(err).Msg("Extraction service failed")
			middleware.WriteError(w, http.StatusBadGateway, "Extraction service unavailable, please try again")
			return
		}
		if verrs, ok := domain.AsErrors(err); ok {
			middleware.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   "Validation failed",
				"details": verrs,
			})
			return
		}

		h.log.Error().Err(err).Msg("Extraction failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Extraction failed")
		return
	}

	h.log.Info().Int("candidates", len(drafts)).Msg("Extraction request served")
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": drafts,
	})
}
