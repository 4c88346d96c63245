package domain

import (
	"time"
)

// SourceKind tells whether an expense came from a chat message or a receipt photo.
type SourceKind string

const (
	SourceText  SourceKind = "text"
	SourceImage SourceKind = "image"
)

// ExpenseDraft is an unpersisted interpretation of user input.
// A nil or non-positive Amount means the user has to be asked for the amount.
type ExpenseDraft struct {
	Amount      *float64
	Description string
	Category    Category
	Date        time.Time // zero when absent
	Merchant    *string
	RawText     string
	SourceKind  SourceKind
}

// NeedsClarification reports whether the draft lacks a usable amount.
func (d ExpenseDraft) NeedsClarification() bool {
	return d.Amount == nil || *d.Amount <= 0
}

// AmountValue returns the amount or 0 when absent.
func (d ExpenseDraft) AmountValue() float64 {
	if d.Amount == nil {
		return 0
	}
	return *d.Amount
}

// ExpenseRecord is a validated expense owned by one user. It is never
// mutated after creation.
type ExpenseRecord struct {
	ID          string     `json:"id"`
	OwnerID     int64      `json:"telegram_id"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Date        time.Time  `json:"date"`
	Merchant    *string    `json:"merchant,omitempty"`
	RawText     string     `json:"raw_text"`
	SourceKind  SourceKind `json:"source_kind"`
	ImageURI    string     `json:"image_uri,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// ProcessedJSON is the structured interpretation the record was built from.
	ProcessedJSON string `json:"processed_json,omitempty"`
}

// User is a chat user known to the tracker.
type User struct {
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Amount returns a pointer to v. Handy for building drafts.
func Amount(v float64) *float64 {
	return &v
}
