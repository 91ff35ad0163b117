package notionsync

import (
	"github.com/jomei/notionapi"

	"github.com/dvloznov/expense-ledger/internal/domain"
)

// transactionIDProperty is the rich-text property that keys the upsert;
// it must exist on the target Notion database.
const transactionIDProperty = "Transaction ID"

// TransactionToProperties converts a confirmed transaction into Notion page
// properties. Amounts are rendered in rupees since Notion numbers are for
// human reading, not arithmetic.
func TransactionToProperties(tx domain.Transaction) notionapi.Properties {
	amount, _ := tx.AmountPaise.Rupees().Float()

	props := notionapi.Properties{
		"Description": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Description,
					},
				},
			},
		},
		transactionIDProperty: notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.ID,
					},
				},
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: amount,
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(tx.Date)
					return &d
				}(),
			},
		},
	}

	if tx.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Category,
			},
		}
	}

	return props
}

// extractTransactionID reads the upsert key back out of a Notion page;
// empty when the page was not created by this sync.
func extractTransactionID(page notionapi.Page) string {
	prop, ok := page.Properties[transactionIDProperty]
	if !ok {
		return ""
	}
	richText, ok := prop.(*notionapi.RichTextProperty)
	if !ok || len(richText.RichText) == 0 {
		return ""
	}
	return richText.RichText[0].PlainText
}
