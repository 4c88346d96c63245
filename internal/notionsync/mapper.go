package notionsync

import (
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/jomei/notionapi"
)

// Property names of the expense database.
const (
	PropDescription = "Description"
	PropAmount      = "Amount"
	PropCategory    = "Category"
	PropDate        = "Date"
	PropMerchant    = "Merchant"
	PropExpenseID   = "Expense ID"
	PropSource      = "Source"
)

// ExpenseToNotionProperties converts an expense record to Notion page properties.
// Merchant is omitted when the record has none.
func ExpenseToNotionProperties(rec *domain.ExpenseRecord) notionapi.Properties {
	props := notionapi.Properties{
		PropDescription: notionapi.TitleProperty{
			Title: []notionapi.RichText{textValue(rec.Description)},
		},
		PropAmount: notionapi.NumberProperty{
			Number: rec.Amount,
		},
		PropCategory: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(categoryOrOther(rec.Category))},
		},
		PropDate: notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(time.Date(
						rec.Date.Year(),
						rec.Date.Month(),
						rec.Date.Day(),
						0, 0, 0, 0, time.UTC,
					))
					return &d
				}(),
			},
		},
		PropExpenseID: notionapi.RichTextProperty{
			RichText: []notionapi.RichText{textValue(rec.ID)},
		},
		PropSource: notionapi.SelectProperty{
			Select: notionapi.Option{Name: sourceName(rec.SourceKind)},
		},
	}

	if rec.Merchant != nil && *rec.Merchant != "" {
		props[PropMerchant] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{textValue(*rec.Merchant)},
		}
	}

	return props
}

func textValue(s string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}
}

func categoryOrOther(c domain.Category) domain.Category {
	if c == "" {
		return domain.CategoryOther
	}
	return c
}

func sourceName(k domain.SourceKind) string {
	if k == "" {
		return string(domain.SourceText)
	}
	return string(k)
}

// extractExpenseID extracts the expense ID from a Notion page's properties.
// Returns empty string if not found.
func extractExpenseID(page notionapi.Page) string {
	prop, ok := page.Properties[PropExpenseID]
	if !ok {
		return ""
	}
	switch p := prop.(type) {
	case *notionapi.RichTextProperty:
		if len(p.RichText) > 0 {
			return p.RichText[0].PlainText
		}
	case notionapi.RichTextProperty:
		if len(p.RichText) > 0 {
			return p.RichText[0].PlainText
		}
	}
	return ""
}
