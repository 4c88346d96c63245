package report

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/pipeline"
)

// TextGenerator is the part of the model client the insight generator needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// InsightGenerator asks the model for a readable commentary on a month.
type InsightGenerator struct {
	model TextGenerator
}

// NewInsightGenerator creates an InsightGenerator.
func NewInsightGenerator(model TextGenerator) *InsightGenerator {
	return &InsightGenerator{model: model}
}

type insightExpense struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

// Generate returns plain-text insights for the records. An empty record set
// yields an empty string without calling the model.
func (g *InsightGenerator) Generate(ctx context.Context, records []domain.ExpenseRecord) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	data := make([]insightExpense, 0, len(records))
	for _, r := range records {
		data = append(data, insightExpense{
			Amount:      r.Amount,
			Category:    string(r.Category),
			Description: r.Description,
			Date:        r.Date.Format(pipeline.DateLayout),
		})
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("Generate: marshal expenses: %w", err)
	}

	text, err := g.model.GenerateText(ctx, buildInsightPrompt(string(payload)))
	if err != nil {
		return "", fmt.Errorf("Generate: generate content: %w", err)
	}
	return text, nil
}

func buildInsightPrompt(expensesJSON string) string {
	return "Generate a comprehensive monthly expense report based on this data:\n" +
		expensesJSON + "\n\n" +
		"Amounts are in Indonesian Rupiah.\n\n" +
		"Provide insights including:\n" +
		"1. Total spending\n" +
		"2. Top spending categories\n" +
		"3. Spending patterns\n" +
		"4. Recommendations for saving\n" +
		"5. Unusual or high expenses\n\n" +
		"Format the response as a readable report, not JSON.\n"
}

// TruncateInsights cuts text to at most max runes, appending "..." when cut.
func TruncateInsights(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "..."
}
