package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// ExpenseRow maps to the expenses table.
type ExpenseRow struct {
	ExpenseID     string              `bigquery:"expense_id"`     // REQUIRED
	TelegramID    int64               `bigquery:"telegram_id"`    // REQUIRED
	Amount        *big.Rat            `bigquery:"amount"`         // REQUIRED, NUMERIC
	Description   string              `bigquery:"description"`    // REQUIRED
	Category      string              `bigquery:"category"`       // REQUIRED
	Merchant      bigquery.NullString `bigquery:"merchant"`       // NULLABLE
	ExpenseDate   civil.Date          `bigquery:"expense_date"`   // REQUIRED
	CreatedTS     time.Time           `bigquery:"created_ts"`     // REQUIRED
	ImageURI      bigquery.NullString `bigquery:"image_uri"`      // NULLABLE
	RawText       bigquery.NullString `bigquery:"raw_text"`       // NULLABLE
	ProcessedJSON bigquery.NullJSON   `bigquery:"processed_json"` // NULLABLE
	SourceKind    string              `bigquery:"source_kind"`    // REQUIRED
}
