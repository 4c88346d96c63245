package pipeline

import (
	"regexp"
	"strings"

	"github.com/dvloznov/expense-tracker/internal/categorizer"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/locale"
)

// amountMatcher reads an amount out of free text, reporting false when it
// finds none.
type amountMatcher func(text string) (float64, bool)

// patternMatcher feeds the whole first match of re to the number parser.
func patternMatcher(re *regexp.Regexp) amountMatcher {
	return func(text string) (float64, bool) {
		m := re.FindString(text)
		if m == "" {
			return 0, false
		}
		return locale.ParseAmount(m)
	}
}

// amountMatchers run in priority order; the first positive amount wins and
// later patterns are not tried.
var amountMatchers = []amountMatcher{
	patternMatcher(regexp.MustCompile(`(?i)(\d+(?:\.\d{3})*(?:,\d{2})?)\s*(?:rb|ribu)`)),
	patternMatcher(regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*k\b`)),
	patternMatcher(regexp.MustCompile(`(?i)rp\.?\s*(\d+(?:\.\d{3})*(?:,\d{2})?)`)),
	patternMatcher(regexp.MustCompile(`(?i)(\d+(?:\.\d{3})*(?:,\d{2})?)\s*rupiah`)),
	patternMatcher(regexp.MustCompile(`(\d+(?:\.\d{3})*(?:,\d{2})?)`)),
}

var merchantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:di|at)\s+([a-zA-Z\s]+?)(?:\s|$)`),
	regexp.MustCompile(`(?i)([a-zA-Z]+(?:\s+[a-zA-Z]+)*)\s+(?:\d+|rp)`),
}

// ExtractHeuristic guesses an expense from text without any model. It never
// fails: the worst case is a draft with no amount and category Other.
func ExtractHeuristic(text string) domain.ExpenseDraft {
	draft := domain.ExpenseDraft{
		Description: text,
		Category:    domain.CategoryOther,
		RawText:     text,
	}
	if strings.TrimSpace(text) == "" {
		return draft
	}

	draft.Amount = firstAmount(text)
	draft.Category = categorizer.Categorize(text)
	draft.Merchant = guessMerchant(text)
	return draft
}

func firstAmount(text string) *float64 {
	for _, match := range amountMatchers {
		if v, ok := match(text); ok && v > 0 {
			return domain.Amount(v)
		}
	}
	return nil
}

func guessMerchant(text string) *string {
	for _, re := range merchantPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil || len(m[1]) <= 2 {
			continue
		}
		merchant := strings.TrimSpace(m[1])
		return &merchant
	}
	return nil
}
