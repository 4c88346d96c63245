package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
)

// UserRow maps to the users table.
type UserRow struct {
	TelegramID int64               `bigquery:"telegram_id"` // REQUIRED
	Username   bigquery.NullString `bigquery:"username"`    // NULLABLE
	FirstName  bigquery.NullString `bigquery:"first_name"`  // NULLABLE
	CreatedTS  time.Time           `bigquery:"created_ts"`  // REQUIRED
}

// CategoryRow maps to the categories table.
type CategoryRow struct {
	Name      string              `bigquery:"name"`       // REQUIRED
	SortOrder int64               `bigquery:"sort_order"` // REQUIRED
	Keywords  []string            `bigquery:"keywords"`   // REPEATED
	Color     bigquery.NullString `bigquery:"color"`      // NULLABLE
}

// ModelOutputRow maps to the model_outputs table. One row per model call
// that produced a stored expense.
type ModelOutputRow struct {
	OutputID    string            `bigquery:"output_id"`    // REQUIRED
	ExpenseID   string            `bigquery:"expense_id"`   // REQUIRED
	TelegramID  int64             `bigquery:"telegram_id"`  // REQUIRED
	ModelName   string            `bigquery:"model_name"`   // REQUIRED
	RawResponse string            `bigquery:"raw_response"` // REQUIRED
	Coerced     bool              `bigquery:"coerced"`      // REQUIRED
	ParsedJSON  bigquery.NullJSON `bigquery:"parsed_json"`  // NULLABLE
	CreatedTS   time.Time         `bigquery:"created_ts"`   // REQUIRED
}

// CategoryTotalRow is one row of the monthly analytics query.
type CategoryTotalRow struct {
	TelegramID   int64               `bigquery:"telegram_id"`
	FirstName    bigquery.NullString `bigquery:"first_name"`
	Username     bigquery.NullString `bigquery:"username"`
	Category     string              `bigquery:"category"`
	ExpenseCount int64               `bigquery:"expense_count"`
	TotalAmount  *big.Rat            `bigquery:"total_amount"`
}
