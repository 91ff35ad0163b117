package main

import (
	"context"
	"flag"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dvloznov/expense-ledger/internal/config"
	"github.com/dvloznov/expense-ledger/internal/logger"
	"github.com/dvloznov/expense-ledger/internal/store/postgres"
)

func main() {
	cfg := config.Load()

	databaseURL := flag.String("database-url", cfg.DatabaseURL, "Postgres connection string (or set DATABASE_URL env)")
	flag.Parse()

	log := logger.New()

	if *databaseURL == "" {
		log.Fatal().Msg("Error: --database-url is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn, err := pgx.Connect(ctx, *databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to postgres")
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, postgres.Schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	log.Info().Msg("Schema applied")
}
