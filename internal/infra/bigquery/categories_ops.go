package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const listCategoriesSQL = `
	SELECT
	  name,
	  sort_order,
	  keywords,
	  color
	FROM {{categories}}
	ORDER BY sort_order, name
`

// ListCategoriesWithClient returns the stored taxonomy in display order.
func ListCategoriesWithClient(ctx context.Context, client *bigquery.Client, tables Tables) ([]CategoryRow, error) {
	q := client.Query(tables.render(listCategoriesSQL))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: query read: %w", err)
	}

	var rows []CategoryRow
	for {
		var r CategoryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCategories: iter next: %w", err)
		}
		rows = append(rows, r)
	}

	return rows, nil
}
