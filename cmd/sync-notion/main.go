package main

import (
	"context"
	"flag"
	"time"

	"github.com/dvloznov/expense-ledger/internal/config"
	"github.com/dvloznov/expense-ledger/internal/logger"
	"github.com/dvloznov/expense-ledger/internal/notionsync"
	"github.com/dvloznov/expense-ledger/internal/store"
	"github.com/dvloznov/expense-ledger/internal/store/postgres"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	cfg := config.Load()

	// Parse CLI flags
	userID := flag.String("user-id", "", "User whose confirmed transactions to sync (required)")
	startDateStr := flag.String("start-date", "", "Start date in YYYY-MM-DD format (optional)")
	endDateStr := flag.String("end-date", "", "End date in YYYY-MM-DD format (optional)")
	databaseURL := flag.String("database-url", cfg.DatabaseURL, "Postgres connection string (or set DATABASE_URL env)")
	notionToken := flag.String("notion-token", cfg.NotionToken, "Notion API token (or set NOTION_TOKEN env)")
	notionDBID := flag.String("notion-db-id", cfg.NotionDatabaseID, "Notion database ID (or set NOTION_DATABASE_ID env)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	// Validate required flags
	if *userID == "" {
		log.Fatal().Msg("Error: --user-id is required")
	}
	if *databaseURL == "" {
		log.Fatal().Msg("Error: --database-url is required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}

	// Parse the optional date window.
	var dateRange *store.DateRange
	if *startDateStr != "" || *endDateStr != "" {
		r := store.DateRange{End: time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)}
		var err error
		if *startDateStr != "" {
			r.Start, err = time.Parse("2006-01-02", *startDateStr)
			if err != nil {
				log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
			}
		}
		if *endDateStr != "" {
			r.End, err = time.Parse("2006-01-02", *endDateStr)
			if err != nil {
				log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
			}
		}
		if r.End.Before(r.Start) {
			log.Fatal().
				Time("start_date", r.Start).
				Time("end_date", r.End).
				Msg("Error: end-date must be after start-date")
		}
		dateRange = &r
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	pgStore, err := postgres.Connect(ctx, *databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to postgres")
	}
	defer pgStore.Close()

	notionClient := notionsync.NewNotionClient(*notionToken)

	if err := notionsync.Sync(ctx, pgStore, notionClient, *notionDBID, *userID, dateRange, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Notion sync failed")
	}
}
