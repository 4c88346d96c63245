package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
)

func TestCanonicalize(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 45, 0, 0, time.UTC)
	today := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	receiptDay := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	merchant := "Indomaret"

	tests := []struct {
		name      string
		draft     domain.ExpenseDraft
		raw       string
		kind      domain.SourceKind
		wantAmt   *float64
		wantDesc  string
		wantCat   domain.Category
		wantDate  time.Time
		wantClar  bool
		wantMerch *string
	}{
		{
			name:     "complete draft passes through",
			draft:    domain.ExpenseDraft{Amount: domain.Amount(15000), Description: "Coffee", Category: domain.CategoryFood, Date: receiptDay, Merchant: &merchant},
			raw:      "kopi 15rb",
			kind:     domain.SourceText,
			wantAmt:  domain.Amount(15000),
			wantDesc: "Coffee", wantCat: domain.CategoryFood, wantDate: receiptDay, wantMerch: &merchant,
		},
		{
			name:     "zero amount needs clarification",
			draft:    domain.ExpenseDraft{Amount: domain.Amount(0), Description: "kopi", Category: domain.CategoryFood},
			raw:      "kopi",
			kind:     domain.SourceText,
			wantAmt:  nil,
			wantDesc: "kopi", wantCat: domain.CategoryFood, wantDate: today, wantClar: true,
		},
		{
			name:     "smallest storable amount is accepted",
			draft:    domain.ExpenseDraft{Amount: domain.Amount(0.01), Description: "permen", Category: domain.CategoryFood, Date: receiptDay},
			raw:      "permen 0,01",
			kind:     domain.SourceText,
			wantAmt:  domain.Amount(0.01),
			wantDesc: "permen", wantCat: domain.CategoryFood, wantDate: receiptDay,
		},
		{
			name:     "amount below two decimals needs clarification",
			draft:    domain.ExpenseDraft{Amount: domain.Amount(0.004), Description: "permen", Category: domain.CategoryFood},
			raw:      "permen",
			kind:     domain.SourceText,
			wantAmt:  nil,
			wantDesc: "permen", wantCat: domain.CategoryFood, wantDate: today, wantClar: true,
		},
		{
			name:     "negative amount needs clarification",
			draft:    domain.ExpenseDraft{Amount: domain.Amount(-5), Category: domain.CategoryFood},
			raw:      "refund",
			kind:     domain.SourceText,
			wantAmt:  nil,
			wantDesc: "refund", wantCat: domain.CategoryFood, wantDate: today, wantClar: true,
		},
		{
			name:     "nan amount needs clarification",
			draft:    domain.ExpenseDraft{Amount: domain.Amount(math.NaN())},
			raw:      "x",
			kind:     domain.SourceText,
			wantAmt:  nil,
			wantDesc: "x", wantCat: domain.CategoryOther, wantDate: today, wantClar: true,
		},
		{
			name:     "empty text description falls back to raw",
			draft:    domain.ExpenseDraft{Amount: domain.Amount(10000), Description: "  "},
			raw:      "parkir 10rb",
			kind:     domain.SourceText,
			wantAmt:  domain.Amount(10000),
			wantDesc: "parkir 10rb", wantCat: domain.CategoryOther, wantDate: today,
		},
		{
			name:     "empty image description uses placeholder",
			draft:    domain.ExpenseDraft{Amount: domain.Amount(42000)},
			raw:      "",
			kind:     domain.SourceImage,
			wantAmt:  domain.Amount(42000),
			wantDesc: ImageDescriptionPlaceholder, wantCat: domain.CategoryOther, wantDate: today,
		},
		{
			name:     "category matched case-insensitively",
			draft:    domain.ExpenseDraft{Amount: domain.Amount(1), Description: "x", Category: domain.Category(" food ")},
			kind:     domain.SourceText,
			wantAmt:  domain.Amount(1),
			wantDesc: "x", wantCat: domain.CategoryFood, wantDate: today,
		},
		{
			name:     "unknown category becomes other",
			draft:    domain.ExpenseDraft{Amount: domain.Amount(1), Description: "x", Category: domain.Category("Groceries")},
			kind:     domain.SourceText,
			wantAmt:  domain.Amount(1),
			wantDesc: "x", wantCat: domain.CategoryOther, wantDate: today,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.draft, tt.raw, tt.kind, now)

			assertAmount(t, got.Amount, tt.wantAmt)
			if got.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", got.Description, tt.wantDesc)
			}
			if got.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCat)
			}
			if !got.Date.Equal(tt.wantDate) {
				t.Errorf("Date = %v, want %v", got.Date, tt.wantDate)
			}
			if got.NeedsClarification() != tt.wantClar {
				t.Errorf("NeedsClarification() = %v, want %v", got.NeedsClarification(), tt.wantClar)
			}
			if got.SourceKind != tt.kind {
				t.Errorf("SourceKind = %q, want %q", got.SourceKind, tt.kind)
			}
			assertOptionalString(t, "Merchant", got.Merchant, tt.wantMerch)
		})
	}
}

func TestDraftFromModelObject(t *testing.T) {
	obj := map[string]interface{}{
		"amount":      "15rb",
		"description": " Kopi susu ",
		"category":    "food",
		"date":        "2024-02-30",
		"merchant":    "null",
		"raw_text":    "KOPI SUSU 15.000",
	}

	text := draftFromModelObject(obj, "kopi susu 15rb", domain.SourceText)
	assertAmount(t, text.Amount, domain.Amount(15000))
	if text.Description != "Kopi susu" {
		t.Errorf("Description = %q", text.Description)
	}
	if !text.Date.IsZero() {
		t.Errorf("impossible date should be dropped, got %v", text.Date)
	}
	if text.Merchant != nil {
		t.Errorf("Merchant = %q, want nil", *text.Merchant)
	}
	if text.RawText != "kopi susu 15rb" {
		t.Errorf("text RawText = %q", text.RawText)
	}

	image := draftFromModelObject(obj, "", domain.SourceImage)
	if image.RawText != "KOPI SUSU 15.000" {
		t.Errorf("image RawText = %q, want transcript", image.RawText)
	}
}

func TestGetAmountField(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  *float64
	}{
		{"number", float64(25000), domain.Amount(25000)},
		{"shorthand string", "2.5k", domain.Amount(2500)},
		{"null", nil, nil},
		{"garbage string", "gratis", nil},
		{"bool", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getAmountField(map[string]interface{}{"amount": tt.value}, "amount")
			assertAmount(t, got, tt.want)
		})
	}
}
