package pipeline

import (
	"math"
	"strings"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/locale"
)

// draftFromModelObject maps a coerced model object onto a draft. Fields the
// model left out or typed wrongly are simply absent; the canonicalizer fills
// them in.
func draftFromModelObject(obj map[string]interface{}, rawInput string, kind domain.SourceKind) domain.ExpenseDraft {
	draft := domain.ExpenseDraft{
		Amount:      getAmountField(obj, "amount"),
		Description: getStringField(obj, "description"),
		Category:    domain.Category(getStringField(obj, "category")),
		Merchant:    getOptionalStringField(obj, "merchant"),
		RawText:     rawInput,
		SourceKind:  kind,
	}

	if d, ok := getDateField(obj, "date"); ok {
		draft.Date = d
	}

	if kind == domain.SourceImage {
		if transcript := getStringField(obj, "raw_text"); transcript != "" {
			draft.RawText = transcript
		}
	}

	return draft
}

func getStringField(m map[string]interface{}, key string) string {
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func getOptionalStringField(m map[string]interface{}, key string) *string {
	s := getStringField(m, key)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

// getAmountField accepts a JSON number or a string such as "15rb".
func getAmountField(m map[string]interface{}, key string) *float64 {
	switch val := m[key].(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return domain.Amount(val)
	case string:
		if n, ok := locale.ParseAmount(val); ok {
			return domain.Amount(n)
		}
	}
	return nil
}

func getDateField(m map[string]interface{}, key string) (time.Time, bool) {
	s := getStringField(m, key)
	if s == "" {
		return time.Time{}, false
	}
	return parseDate(s)
}

// parseDate accepts YYYY-MM-DD only and rejects impossible calendar dates.
func parseDate(s string) (time.Time, bool) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
