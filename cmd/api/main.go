package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/expense-ledger/internal/api"
	"github.com/dvloznov/expense-ledger/internal/api/handlers"
	"github.com/dvloznov/expense-ledger/internal/config"
	"github.com/dvloznov/expense-ledger/internal/extract"
	"github.com/dvloznov/expense-ledger/internal/logger"
	"github.com/dvloznov/expense-ledger/internal/store"
	"github.com/dvloznov/expense-ledger/internal/store/memory"
	"github.com/dvloznov/expense-ledger/internal/store/postgres"
)

func main() {
	cfg := config.Load()

	// Parse command-line flags; flags override the environment.
	var (
		port        = flag.String("port", cfg.Port, "HTTP server port")
		databaseURL = flag.String("database-url", cfg.DatabaseURL, "Postgres connection string (or set DATABASE_URL env); empty runs the in-memory store")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	ctx := context.Background()

	// Pick the store backend.
	var txStore store.Store
	if *databaseURL == "" {
		log.Warn().Msg("No database configured - using in-memory store, data will not survive restarts")
		txStore = memory.New()
	} else {
		pgStore, err := postgres.Connect(ctx, *databaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to postgres")
		}
		defer pgStore.Close()
		txStore = pgStore
	}

	// Initialize the extractor; credentials come from the environment.
	generator, err := extract.NewGeminiGenerator(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create generation client")
	}
	extractor := extract.New(generator, log)

	// Initialize handlers and routes.
	transactionsHandler := handlers.NewTransactionsHandler(txStore, log)
	extractHandler := handlers.NewExtractHandler(extractor, log)
	handler := api.NewRouter(transactionsHandler, extractHandler, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // extraction calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
