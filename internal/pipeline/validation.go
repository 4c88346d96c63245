package pipeline

import (
	"math"
	"strings"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
)

// Canonicalize is the single gate between an extraction guess and storage.
//   - amount survives only when strictly positive
//   - empty descriptions become the raw input (text) or a placeholder (image)
//   - categories outside the taxonomy become Other
//   - a missing date becomes the processing day
//   - merchant passes through
//
// The result may still need clarification; callers must check
// NeedsClarification before persisting.
func Canonicalize(draft domain.ExpenseDraft, raw string, kind domain.SourceKind, now time.Time) domain.ExpenseDraft {
	out := domain.ExpenseDraft{
		Merchant:   draft.Merchant,
		SourceKind: kind,
		RawText:    draft.RawText,
	}
	if out.RawText == "" {
		out.RawText = raw
	}

	if draft.Amount != nil && *draft.Amount >= MinAmount && !math.IsInf(*draft.Amount, 1) {
		out.Amount = domain.Amount(*draft.Amount)
	}

	out.Description = strings.TrimSpace(draft.Description)
	if out.Description == "" {
		if kind == domain.SourceImage {
			out.Description = ImageDescriptionPlaceholder
		} else {
			out.Description = raw
		}
	}

	if c, ok := domain.ParseCategory(string(draft.Category)); ok {
		out.Category = c
	} else {
		out.Category = domain.CategoryOther
	}

	if draft.Date.IsZero() {
		out.Date = startOfDay(now)
	} else {
		out.Date = startOfDay(draft.Date)
	}

	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
