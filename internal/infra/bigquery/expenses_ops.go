package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"google.golang.org/api/iterator"
)

const insertExpenseSQL = `
	INSERT INTO {{expenses}} (
	  expense_id,
	  telegram_id,
	  amount,
	  description,
	  category,
	  merchant,
	  expense_date,
	  created_ts,
	  image_uri,
	  raw_text,
	  processed_json,
	  source_kind
	)
	VALUES (
	  @expense_id,
	  @telegram_id,
	  @amount,
	  @description,
	  @category,
	  @merchant,
	  @expense_date,
	  @created_ts,
	  @image_uri,
	  @raw_text,
	  @processed_json,
	  @source_kind
	)
`

const expenseColumns = `
	  expense_id,
	  telegram_id,
	  amount,
	  description,
	  category,
	  merchant,
	  expense_date,
	  created_ts,
	  image_uri,
	  raw_text,
	  processed_json,
	  source_kind
`

const scopeExpensesSQL = `
	SELECT` + expenseColumns + `
	FROM {{expenses}}
	WHERE telegram_id = @telegram_id
	  AND expense_date >= @start_date
	  AND expense_date < @end_date
	ORDER BY expense_date DESC, created_ts DESC
`

const recentExpensesSQL = `
	SELECT` + expenseColumns + `
	FROM {{expenses}}
	WHERE telegram_id = @telegram_id
	ORDER BY created_ts DESC
	LIMIT @limit
`

// InsertExpenseWithClient inserts a single expense row using DML.
func InsertExpenseWithClient(ctx context.Context, client *bigquery.Client, tables Tables, row *ExpenseRow) error {
	if row == nil {
		return fmt.Errorf("InsertExpense: nil row")
	}

	q := client.Query(tables.render(insertExpenseSQL))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "expense_id", Value: row.ExpenseID},
		{Name: "telegram_id", Value: row.TelegramID},
		{Name: "amount", Value: row.Amount},
		{Name: "description", Value: row.Description},
		{Name: "category", Value: row.Category},
		{Name: "merchant", Value: row.Merchant},
		{Name: "expense_date", Value: row.ExpenseDate},
		{Name: "created_ts", Value: row.CreatedTS},
		{Name: "image_uri", Value: row.ImageURI},
		{Name: "raw_text", Value: row.RawText},
		{Name: "processed_json", Value: row.ProcessedJSON},
		{Name: "source_kind", Value: row.SourceKind},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("InsertExpense: run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("InsertExpense: wait job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("InsertExpense: job error: %w", err)
	}

	return nil
}

// QueryExpensesByScopeWithClient returns the owner's expenses dated inside the
// scope month, newest first.
func QueryExpensesByScopeWithClient(ctx context.Context, client *bigquery.Client, tables Tables, scope domain.Scope) ([]*ExpenseRow, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("QueryExpensesByScope: invalid scope %d-%02d", scope.Year, scope.Month)
	}
	start, end := scope.Bounds()

	q := client.Query(tables.render(scopeExpensesSQL))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "telegram_id", Value: scope.OwnerID},
		{Name: "start_date", Value: civilDate(start)},
		{Name: "end_date", Value: civilDate(end)},
	}

	rows, err := readExpenseRows(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("QueryExpensesByScope: %w", err)
	}
	return rows, nil
}

// QueryRecentExpensesWithClient returns up to limit of the owner's expenses by
// creation time, newest first.
func QueryRecentExpensesWithClient(ctx context.Context, client *bigquery.Client, tables Tables, ownerID int64, limit int) ([]*ExpenseRow, error) {
	if limit <= 0 {
		return nil, nil
	}

	q := client.Query(tables.render(recentExpensesSQL))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "telegram_id", Value: ownerID},
		{Name: "limit", Value: int64(limit)},
	}

	rows, err := readExpenseRows(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("QueryRecentExpenses: %w", err)
	}
	return rows, nil
}

func readExpenseRows(ctx context.Context, q *bigquery.Query) ([]*ExpenseRow, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query read: %w", err)
	}

	var rows []*ExpenseRow
	for {
		var r ExpenseRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
