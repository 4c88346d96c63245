package report

import (
	"bytes"
	"fmt"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/locale"
	"github.com/wcharczuk/go-chart/v2"
)

// CategoryLabel renders the slice label, e.g. "Food: Rp 150.000 (75.0%)".
func CategoryLabel(c domain.CategorySummary) string {
	return fmt.Sprintf("%s: %s (%.1f%%)", c.Category, locale.FormatRupiah(c.Total), c.Percentage)
}

// RenderCategoryPie draws the category split of a report as a PNG. It returns
// nil bytes and no error when there is nothing to draw.
func RenderCategoryPie(report domain.MonthlyReport) ([]byte, error) {
	values := make([]chart.Value, 0, len(report.Categories))
	for _, c := range report.Categories {
		if c.Total <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: CategoryLabel(c),
			Value: c.Total,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Title:  fmt.Sprintf("Pengeluaran / Expenses %04d-%02d", report.Scope.Year, report.Scope.Month),
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("RenderCategoryPie: render: %w", err)
	}

	return buffer.Bytes(), nil
}
