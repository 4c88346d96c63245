package domain

import "time"

// Scope bounds a report to one owner and one calendar month.
type Scope struct {
	OwnerID int64 `json:"telegram_id"`
	Year    int   `json:"year"`
	Month   int   `json:"month"`
}

// NewScope returns the scope of the month containing t.
func NewScope(ownerID int64, t time.Time) Scope {
	return Scope{OwnerID: ownerID, Year: t.Year(), Month: int(t.Month())}
}

// PreviousMonth returns the scope of the month before the one containing now.
func PreviousMonth(ownerID int64, now time.Time) Scope {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return NewScope(ownerID, first.AddDate(0, -1, 0))
}

// Bounds returns the first day of the scope month and the first day of the
// following month, both in UTC.
func (s Scope) Bounds() (start, end time.Time) {
	start = time.Date(s.Year, time.Month(s.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Valid reports whether the month is in range.
func (s Scope) Valid() bool {
	return s.Month >= 1 && s.Month <= 12 && s.Year > 0
}

// CategorySummary is the per-category part of a monthly report.
type CategorySummary struct {
	Category   Category `json:"category"`
	Count      int      `json:"count"`
	Total      float64  `json:"total"`
	Average    float64  `json:"average"`
	Percentage float64  `json:"percentage"`
}

// MonthlyReport is recomputed from records on every request.
type MonthlyReport struct {
	Scope      Scope             `json:"scope"`
	Total      float64           `json:"total"`
	Count      int               `json:"count"`
	Categories []CategorySummary `json:"categories"`
}

// UserCategoryTotal is one row of the cross-user analytics view.
type UserCategoryTotal struct {
	TelegramID   int64    `json:"telegram_id"`
	FirstName    string   `json:"first_name"`
	Username     string   `json:"username"`
	Category     Category `json:"category"`
	ExpenseCount int      `json:"expense_count"`
	TotalAmount  float64  `json:"total_amount"`
}
