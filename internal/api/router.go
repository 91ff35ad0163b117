// Package api assembles the HTTP surface: routes plus the middleware chain.
package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-ledger/internal/api/handlers"
	"github.com/dvloznov/expense-ledger/internal/api/middleware"
)

// NewRouter wires every route and wraps the mux in the middleware chain.
func NewRouter(tx *handlers.TransactionsHandler, ex *handlers.ExtractHandler, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Transactions endpoints
	mux.HandleFunc("POST /api/v1/transactions", tx.Create)
	mux.HandleFunc("POST /api/v1/transactions/bulk", tx.BulkCreate)
	mux.HandleFunc("GET /api/v1/transactions", tx.List)
	mux.HandleFunc("GET /api/v1/transactions/{id}", tx.Get)
	mux.HandleFunc("PUT /api/v1/transactions/{id}", tx.Update)
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", tx.Delete)

	// Categories endpoint
	mux.HandleFunc("GET /api/v1/categories", tx.ListCategories)

	// Extraction endpoint
	mux.HandleFunc("POST /api/v1/extract", ex.Extract)

	protected := middleware.UserScope(mux)

	// Health check stays outside the user scope.
	root := http.NewServeMux()
	root.Handle("/api/", protected)
	root.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(root),
			),
		),
	)
}
