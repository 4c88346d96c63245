// Package report turns the expense records of one month into summaries,
// chat messages, AI commentary and a category chart.
package report

import (
	"sort"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type categoryTotal struct {
	category domain.Category
	count    int
	total    decimal.Decimal
}

// Summarize groups records by category. Categories are ordered by total
// descending with ties broken by name, so the same records always produce
// the same report. Percentages are of the whole period total, Other included,
// and are 0 when that total is 0.
//
// Sums are kept in decimal so equal rupiah totals compare equal regardless
// of the order the amounts were added in.
func Summarize(scope domain.Scope, records []domain.ExpenseRecord) domain.MonthlyReport {
	report := domain.MonthlyReport{
		Scope:      scope,
		Categories: []domain.CategorySummary{},
	}

	var totals []categoryTotal
	index := make(map[domain.Category]int)
	grand := decimal.Zero
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(totals)
			index[r.Category] = i
			totals = append(totals, categoryTotal{category: r.Category, total: decimal.Zero})
		}
		amount := decimal.NewFromFloat(r.Amount)
		totals[i].count++
		totals[i].total = totals[i].total.Add(amount)
		grand = grand.Add(amount)
		report.Count++
	}

	sort.SliceStable(totals, func(i, j int) bool {
		if c := totals[i].total.Cmp(totals[j].total); c != 0 {
			return c > 0
		}
		return totals[i].category < totals[j].category
	})

	report.Total = grand.InexactFloat64()
	for _, t := range totals {
		summary := domain.CategorySummary{
			Category: t.category,
			Count:    t.count,
			Total:    t.total.InexactFloat64(),
			Average:  t.total.Div(decimal.NewFromInt(int64(t.count))).InexactFloat64(),
		}
		if !grand.IsZero() {
			summary.Percentage = t.total.Mul(hundred).Div(grand).InexactFloat64()
		}
		report.Categories = append(report.Categories, summary)
	}

	return report
}
