package bigquery

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/pipeline"
	"github.com/google/uuid"
)

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

func nullStringPtr(s *string) bigquery.NullString {
	if s == nil {
		return bigquery.NullString{}
	}
	return nullString(*s)
}

func civilDate(t time.Time) civil.Date {
	return civil.DateOf(t)
}

// amountToNumeric rounds to two decimals, the precision of the NUMERIC column
// as the tracker uses it.
func amountToNumeric(v float64) (*big.Rat, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("amount is not finite")
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'f', 2, 64))
	if !ok {
		return nil, fmt.Errorf("amount %v is not representable", v)
	}
	if r.Sign() <= 0 {
		return nil, fmt.Errorf("amount %v is not positive at two decimals", v)
	}
	return r, nil
}

func numericToAmount(r *big.Rat) float64 {
	if r == nil {
		return 0
	}
	f, _ := r.Float64()
	return f
}

// ExpenseRowFromRecord converts a validated record into its table row.
func ExpenseRowFromRecord(rec *domain.ExpenseRecord) (*ExpenseRow, error) {
	if rec == nil {
		return nil, fmt.Errorf("ExpenseRowFromRecord: nil record")
	}
	amount, err := amountToNumeric(rec.Amount)
	if err != nil {
		return nil, fmt.Errorf("ExpenseRowFromRecord: %w", err)
	}

	return &ExpenseRow{
		ExpenseID:     rec.ID,
		TelegramID:    rec.OwnerID,
		Amount:        amount,
		Description:   rec.Description,
		Category:      string(rec.Category),
		Merchant:      nullStringPtr(rec.Merchant),
		ExpenseDate:   civilDate(rec.Date),
		CreatedTS:     rec.CreatedAt.UTC(),
		ImageURI:      nullString(rec.ImageURI),
		RawText:       nullString(rec.RawText),
		ProcessedJSON: bigquery.NullJSON{JSONVal: rec.ProcessedJSON, Valid: rec.ProcessedJSON != ""},
		SourceKind:    string(rec.SourceKind),
	}, nil
}

// RecordFromExpenseRow converts a stored row back into a domain record.
// Unknown category names read back as Other.
func RecordFromExpenseRow(row *ExpenseRow) domain.ExpenseRecord {
	category, _ := domain.ParseCategory(row.Category)

	var merchant *string
	if row.Merchant.Valid {
		m := row.Merchant.StringVal
		merchant = &m
	}

	var processed string
	if row.ProcessedJSON.Valid {
		processed = row.ProcessedJSON.JSONVal
	}

	return domain.ExpenseRecord{
		ID:            row.ExpenseID,
		OwnerID:       row.TelegramID,
		Amount:        numericToAmount(row.Amount),
		Description:   row.Description,
		Category:      category,
		Date:          row.ExpenseDate.In(time.UTC),
		Merchant:      merchant,
		RawText:       row.RawText.StringVal,
		SourceKind:    domain.SourceKind(row.SourceKind),
		ImageURI:      row.ImageURI.StringVal,
		CreatedAt:     row.CreatedTS,
		ProcessedJSON: processed,
	}
}

// UserRowFromDomain fills created_ts with now when the user has none.
func UserRowFromDomain(u *domain.User, now time.Time) *UserRow {
	created := u.CreatedAt
	if created.IsZero() {
		created = now
	}
	return &UserRow{
		TelegramID: u.TelegramID,
		Username:   nullString(u.Username),
		FirstName:  nullString(u.FirstName),
		CreatedTS:  created.UTC(),
	}
}

// UserFromRow converts a users table row.
func UserFromRow(row *UserRow) domain.User {
	return domain.User{
		TelegramID: row.TelegramID,
		Username:   row.Username.StringVal,
		FirstName:  row.FirstName.StringVal,
		CreatedAt:  row.CreatedTS,
	}
}

// ModelOutputRowFromOutcome builds the audit row for a model call.
func ModelOutputRowFromOutcome(expenseID string, ownerID int64, outcome *pipeline.ModelOutcome, now time.Time) (*ModelOutputRow, error) {
	if outcome == nil {
		return nil, fmt.Errorf("ModelOutputRowFromOutcome: nil outcome")
	}

	row := &ModelOutputRow{
		OutputID:    uuid.New().String(),
		ExpenseID:   expenseID,
		TelegramID:  ownerID,
		ModelName:   outcome.ModelName,
		RawResponse: outcome.RawResponse,
		Coerced:     outcome.Coerced,
		CreatedTS:   now.UTC(),
	}

	if outcome.Coerced && outcome.Object != nil {
		b, err := json.Marshal(outcome.Object)
		if err != nil {
			return nil, fmt.Errorf("ModelOutputRowFromOutcome: marshal object: %w", err)
		}
		row.ParsedJSON = bigquery.NullJSON{JSONVal: string(b), Valid: true}
	}

	return row, nil
}

// CategoriesFromRows keeps the stored names that belong to the taxonomy, in
// row order, without duplicates.
func CategoriesFromRows(rows []CategoryRow) []domain.Category {
	seen := make(map[domain.Category]bool, len(rows))
	var out []domain.Category
	for _, r := range rows {
		c, ok := domain.ParseCategory(r.Name)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// CategoryTotalFromRow converts one analytics row.
func CategoryTotalFromRow(row CategoryTotalRow) domain.UserCategoryTotal {
	category, _ := domain.ParseCategory(row.Category)
	return domain.UserCategoryTotal{
		TelegramID:   row.TelegramID,
		FirstName:    row.FirstName.StringVal,
		Username:     row.Username.StringVal,
		Category:     category,
		ExpenseCount: int(row.ExpenseCount),
		TotalAmount:  numericToAmount(row.TotalAmount),
	}
}
