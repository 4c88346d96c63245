package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const categoryTotalsSQL = `
	SELECT
	  u.telegram_id,
	  u.first_name,
	  u.username,
	  e.category,
	  COUNT(e.expense_id) AS expense_count,
	  SUM(e.amount) AS total_amount
	FROM {{users}} u
	JOIN {{expenses}} e ON u.telegram_id = e.telegram_id
	WHERE EXTRACT(YEAR FROM e.expense_date) = @year
	  AND EXTRACT(MONTH FROM e.expense_date) = @month
	GROUP BY u.telegram_id, u.first_name, u.username, e.category
	ORDER BY total_amount DESC
`

// QueryCategoryTotalsWithClient returns per-user, per-category totals for one
// calendar month.
func QueryCategoryTotalsWithClient(ctx context.Context, client *bigquery.Client, tables Tables, year, month int) ([]CategoryTotalRow, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("QueryCategoryTotals: invalid month %d", month)
	}

	q := client.Query(tables.render(categoryTotalsSQL))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "year", Value: int64(year)},
		{Name: "month", Value: int64(month)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryCategoryTotals: query read: %w", err)
	}

	var rows []CategoryTotalRow
	for {
		var r CategoryTotalRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryCategoryTotals: iter next: %w", err)
		}
		rows = append(rows, r)
	}

	return rows, nil
}
