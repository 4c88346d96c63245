package bigquery

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/pipeline"
)

func TestExpenseRowFromRecord(t *testing.T) {
	merchant := "Indomaret"
	rec := &domain.ExpenseRecord{
		ID:            "e-1",
		OwnerID:       42,
		Amount:        25000.456,
		Description:   "groceries",
		Category:      domain.CategoryShopping,
		Date:          time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Merchant:      &merchant,
		RawText:       "belanja 25rb",
		SourceKind:    domain.SourceText,
		CreatedAt:     time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		ProcessedJSON: `{"amount":25000}`,
	}

	row, err := ExpenseRowFromRecord(rec)
	if err != nil {
		t.Fatalf("ExpenseRowFromRecord() error = %v", err)
	}

	if got := row.Amount.FloatString(2); got != "25000.46" {
		t.Errorf("Amount = %s, want 25000.46", got)
	}
	if row.ExpenseDate.String() != "2024-03-15" {
		t.Errorf("ExpenseDate = %s, want 2024-03-15", row.ExpenseDate)
	}
	if !row.Merchant.Valid || row.Merchant.StringVal != "Indomaret" {
		t.Errorf("Merchant = %+v", row.Merchant)
	}
	if row.ImageURI.Valid {
		t.Errorf("ImageURI should be NULL for text expenses")
	}
	if !row.ProcessedJSON.Valid {
		t.Errorf("ProcessedJSON should be set")
	}
	if row.Category != "Shopping" || row.SourceKind != "text" {
		t.Errorf("Category/SourceKind = %q/%q", row.Category, row.SourceKind)
	}
}

func TestExpenseRowFromRecord_Errors(t *testing.T) {
	if _, err := ExpenseRowFromRecord(nil); err == nil {
		t.Error("expected error for nil record")
	}

	tests := []struct {
		name   string
		amount float64
	}{
		{"zero", 0},
		{"rounds to zero", 0.004},
		{"negative", -10},
		{"nan", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &domain.ExpenseRecord{ID: "e1", OwnerID: 1, Amount: tt.amount, Category: domain.CategoryFood}
			if _, err := ExpenseRowFromRecord(rec); err == nil {
				t.Errorf("expected error for amount %v", tt.amount)
			}
		})
	}
}

func TestRecordFromExpenseRow_RoundTrip(t *testing.T) {
	rec := &domain.ExpenseRecord{
		ID:          "e-2",
		OwnerID:     7,
		Amount:      50000,
		Description: "Receipt",
		Category:    domain.CategoryFood,
		Date:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		SourceKind:  domain.SourceImage,
		ImageURI:    "gs://bucket/receipts/7/x.jpg",
		CreatedAt:   time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
	}

	row, err := ExpenseRowFromRecord(rec)
	if err != nil {
		t.Fatalf("ExpenseRowFromRecord() error = %v", err)
	}
	got := RecordFromExpenseRow(row)

	if got.Amount != 50000 {
		t.Errorf("Amount = %v, want 50000", got.Amount)
	}
	if !got.Date.Equal(rec.Date) {
		t.Errorf("Date = %v, want %v", got.Date, rec.Date)
	}
	if got.Merchant != nil {
		t.Errorf("Merchant = %v, want nil", *got.Merchant)
	}
	if got.ImageURI != rec.ImageURI || got.Category != domain.CategoryFood {
		t.Errorf("got %+v", got)
	}
}

func TestRecordFromExpenseRow_UnknownCategory(t *testing.T) {
	row := &ExpenseRow{ExpenseID: "e-3", Category: "Groceries"}
	if got := RecordFromExpenseRow(row); got.Category != domain.CategoryOther {
		t.Errorf("Category = %q, want Other", got.Category)
	}
}

func TestUserRowFromDomain(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	row := UserRowFromDomain(&domain.User{TelegramID: 1, FirstName: "Budi"}, now)
	if !row.CreatedTS.Equal(now) {
		t.Errorf("CreatedTS = %v, want %v", row.CreatedTS, now)
	}
	if row.Username.Valid {
		t.Error("empty username should be NULL")
	}

	u := UserFromRow(row)
	if u.FirstName != "Budi" || u.Username != "" {
		t.Errorf("UserFromRow() = %+v", u)
	}
}

func TestModelOutputRowFromOutcome(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		outcome    *pipeline.ModelOutcome
		wantParsed bool
		wantErr    bool
	}{
		{
			name: "coerced object is stored",
			outcome: &pipeline.ModelOutcome{
				ModelName:   "gemini",
				RawResponse: "```json {\"amount\": 1} ```",
				Coerced:     true,
				Object:      map[string]interface{}{"amount": 1.0},
			},
			wantParsed: true,
		},
		{
			name:    "fallback has no parsed json",
			outcome: &pipeline.ModelOutcome{ModelName: "gemini", RawResponse: "no idea"},
		},
		{
			name:    "nil outcome",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := ModelOutputRowFromOutcome("e-1", 9, tt.outcome, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if row.OutputID == "" {
				t.Error("OutputID should be generated")
			}
			if row.ParsedJSON.Valid != tt.wantParsed {
				t.Errorf("ParsedJSON.Valid = %v, want %v", row.ParsedJSON.Valid, tt.wantParsed)
			}
			if tt.wantParsed {
				var obj map[string]interface{}
				if err := json.Unmarshal([]byte(row.ParsedJSON.JSONVal), &obj); err != nil {
					t.Errorf("ParsedJSON is not valid JSON: %v", err)
				}
			}
		})
	}
}

func TestCategoriesFromRows(t *testing.T) {
	rows := []CategoryRow{
		{Name: "Food", SortOrder: 1},
		{Name: "transport", SortOrder: 2},
		{Name: "Gadgets", SortOrder: 3},
		{Name: "Food", SortOrder: 4},
	}
	got := CategoriesFromRows(rows)
	want := []domain.Category{domain.CategoryFood, domain.CategoryTransport}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTablesRender(t *testing.T) {
	tables := Tables{ProjectID: "proj", DatasetID: "ds"}
	got := tables.render(scopeExpensesSQL)
	if !strings.Contains(got, "`proj.ds.expenses`") {
		t.Errorf("rendered query missing table name:\n%s", got)
	}
	if strings.Contains(got, "{{") {
		t.Errorf("rendered query has unresolved placeholders:\n%s", got)
	}
	if !strings.Contains(got, "ORDER BY expense_date DESC, created_ts DESC") {
		t.Error("scope query must order newest first")
	}
}
