package notionsync

import (
	"context"

	"github.com/jomei/notionapi"
)

// NotionService is what the sync needs from Notion; *NotionClient satisfies
// it and tests substitute a recording mock.
type NotionService interface {
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
	QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)

	// DeletePage archives the page, removing it from the database view.
	DeletePage(ctx context.Context, pageID string) error
}
