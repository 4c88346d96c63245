package domain

import (
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input  string
		want   Category
		wantOK bool
	}{
		{"Food", CategoryFood, true},
		{"  food ", CategoryFood, true},
		{"EDUCATION", CategoryEducation, true},
		{"Groceries", CategoryOther, false},
		{"", CategoryOther, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseCategory(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseCategory(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTaxonomyIsCopy(t *testing.T) {
	cats := Taxonomy()
	cats[0] = "Broken"
	if Taxonomy()[0] != CategoryFood {
		t.Error("Taxonomy() must not expose the internal slice")
	}
	if len(TaxonomyNames()) != 8 {
		t.Errorf("expected 8 categories, got %d", len(TaxonomyNames()))
	}
}

func TestNeedsClarification(t *testing.T) {
	tests := []struct {
		name   string
		amount *float64
		want   bool
	}{
		{"nil amount", nil, true},
		{"zero", Amount(0), true},
		{"negative", Amount(-5), true},
		{"smallest positive", Amount(0.01), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ExpenseDraft{Amount: tt.amount}
			if got := d.NeedsClarification(); got != tt.want {
				t.Errorf("NeedsClarification() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScopeBoundsAndPreviousMonth(t *testing.T) {
	s := Scope{OwnerID: 1, Year: 2024, Month: 12}
	start, end := s.Bounds()
	if start.Format("2006-01-02") != "2024-12-01" || end.Format("2006-01-02") != "2025-01-01" {
		t.Errorf("Bounds() = %v, %v", start, end)
	}

	prev := PreviousMonth(7, time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC))
	if prev.Year != 2024 || prev.Month != 12 || prev.OwnerID != 7 {
		t.Errorf("PreviousMonth() = %+v", prev)
	}

	if (Scope{Year: 2024, Month: 13}).Valid() {
		t.Error("month 13 must be invalid")
	}
}
