package notionsync

import (
	"context"
	"fmt"

	bq "github.com/dvloznov/expense-tracker/internal/bigquery"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/jomei/notionapi"
)

// Result counts what an export did. In dry-run mode Created counts the pages
// that would have been created.
type Result struct {
	Total   int
	Created int
	Skipped int
	Failed  int
}

// ExportExpenses copies the scope's expense records into a Notion database.
// Records whose ID is already present in the "Expense ID" column are skipped,
// so repeated runs only add what is missing. A failed page write is logged and
// counted; the export carries on with the next record.
func ExportExpenses(ctx context.Context, repo bq.ExpenseRepository, notionClient NotionService, notionDBID string, scope domain.Scope, dryRun bool) (Result, error) {
	log := logger.FromContext(ctx).With().
		Int64("telegram_id", scope.OwnerID).
		Int("year", scope.Year).
		Int("month", scope.Month).
		Bool("dry_run", dryRun).
		Logger()

	var res Result
	if !scope.Valid() {
		return res, fmt.Errorf("ExportExpenses: invalid scope %d-%02d", scope.Year, scope.Month)
	}

	log.Info().Msg("Starting expense export to Notion")

	records, err := repo.QueryExpensesByScope(ctx, scope)
	if err != nil {
		return res, fmt.Errorf("ExportExpenses: query expenses: %w", err)
	}
	res.Total = len(records)
	if len(records) == 0 {
		log.Info().Msg("No expenses to export")
		return res, nil
	}

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return res, fmt.Errorf("ExportExpenses: query notion pages: %w", err)
	}
	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	existing := make(map[string]bool, len(notionPages))
	for _, page := range notionPages {
		if id := extractExpenseID(page); id != "" {
			existing[id] = true
		}
	}

	for i := range records {
		rec := &records[i]
		if existing[rec.ID] {
			res.Skipped++
			continue
		}

		if dryRun {
			log.Info().Str("expense_id", rec.ID).Msg("[DRY RUN] Would create Notion page")
			res.Created++
			continue
		}

		page, err := notionClient.CreatePage(ctx, notionDBID, ExpenseToNotionProperties(rec))
		if err != nil {
			log.Warn().Err(err).Str("expense_id", rec.ID).Msg("Failed to create Notion page")
			res.Failed++
			continue
		}
		existing[rec.ID] = true
		res.Created++
		log.Debug().Str("expense_id", rec.ID).Str("page_id", string(page.ID)).Msg("Created Notion page")
	}

	log.Info().
		Int("total", res.Total).
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("Expense export completed")

	return res, nil
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}

		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
