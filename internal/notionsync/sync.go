// Package notionsync exports a user's confirmed transactions to a Notion
// database, so the reviewed ledger is browsable outside the app. The sync
// is idempotent: pages are keyed by a Transaction ID property, re-runs
// update in place, and pages whose transaction no longer exists are
// archived.
package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/expense-ledger/internal/logger"
	"github.com/dvloznov/expense-ledger/internal/store"
)

// notionPageSize is the Notion API's maximum query page size.
const notionPageSize = 100

// Sync pushes the user's confirmed transactions (optionally restricted to
// a date range) into the Notion database. With dryRun set it only logs
// what it would do.
func Sync(ctx context.Context, st store.Store, notionClient NotionService, notionDBID, userID string, dateRange *store.DateRange, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Str("user_id", userID).
		Bool("dry_run", dryRun).
		Msg("Starting confirmed-transaction sync to Notion")

	// Only the confirmed partition is exported; unconfirmed records are
	// still under review and have no business leaving the app.
	transactions, total, err := st.FindMany(ctx, userID, store.Query{
		Confirmed: true,
		DateRange: dateRange,
		Sort:      []store.SortKey{{Field: store.SortDate, Direction: store.Asc}},
	})
	if err != nil {
		return fmt.Errorf("query confirmed transactions: %w", err)
	}

	log.Info().Int("transaction_count", total).Msg("Retrieved confirmed transactions")

	validIDs := make(map[string]bool, len(transactions))
	for _, tx := range transactions {
		validIDs[tx.ID] = true
	}

	pages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	// Map of transaction ID -> existing page, for the upsert decision.
	existing := make(map[string]notionapi.Page, len(pages))

	var archived int
	for _, page := range pages {
		txID := extractTransactionID(page)

		// Pages without a Transaction ID or whose transaction was deleted
		// or unconfirmed since the last run are stale.
		if txID == "" || !validIDs[txID] {
			if dryRun {
				log.Info().
					Str("transaction_id", txID).
					Str("page_id", string(page.ID)).
					Msg("[DRY RUN] Would archive stale Notion page")
				archived++
				continue
			}
			if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
				log.Warn().
					Err(err).
					Str("transaction_id", txID).
					Str("page_id", string(page.ID)).
					Msg("Failed to archive stale Notion page")
				continue
			}
			archived++
			continue
		}

		existing[txID] = page
	}

	var created, updated int
	for _, tx := range transactions {
		props := TransactionToProperties(tx)

		if page, ok := existing[tx.ID]; ok {
			if dryRun {
				log.Info().Str("transaction_id", tx.ID).Msg("[DRY RUN] Would update Notion page")
				updated++
				continue
			}
			if _, err := notionClient.UpdatePage(ctx, string(page.ID), props); err != nil {
				log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("Failed to update Notion page")
				continue
			}
			updated++
			continue
		}

		if dryRun {
			log.Info().Str("transaction_id", tx.ID).Msg("[DRY RUN] Would create Notion page")
			created++
			continue
		}
		if _, err := notionClient.CreatePage(ctx, notionDBID, props); err != nil {
			log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("Failed to create Notion page")
			continue
		}
		created++
	}

	log.Info().
		Int("created", created).
		Int("updated", updated).
		Int("archived", archived).
		Msg("Notion sync complete")

	return nil
}

// queryAllNotionPages walks the database's cursor pagination and returns
// every page.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, notionDBID string) ([]notionapi.Page, error) {
	var pages []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{
		PageSize: notionPageSize,
	}
	for {
		resp, err := notionClient.QueryDatabase(ctx, notionDBID, req)
		if err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore {
			return pages, nil
		}
		req.StartCursor = resp.NextCursor
	}
}
