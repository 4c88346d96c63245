package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const upsertUserSQL = `
	MERGE {{users}} AS t
	USING (
	  SELECT
	    @telegram_id AS telegram_id,
	    @username AS username,
	    @first_name AS first_name,
	    @created_ts AS created_ts
	) AS s
	ON t.telegram_id = s.telegram_id
	WHEN MATCHED THEN
	  UPDATE SET username = s.username, first_name = s.first_name
	WHEN NOT MATCHED THEN
	  INSERT (telegram_id, username, first_name, created_ts)
	  VALUES (s.telegram_id, s.username, s.first_name, s.created_ts)
`

const listUsersSQL = `
	SELECT
	  telegram_id,
	  username,
	  first_name,
	  created_ts
	FROM {{users}}
	ORDER BY created_ts DESC
`

// UpsertUserWithClient creates the user on first contact and refreshes the
// display fields afterwards. created_ts is kept from the first insert.
func UpsertUserWithClient(ctx context.Context, client *bigquery.Client, tables Tables, row *UserRow) error {
	if row == nil {
		return fmt.Errorf("UpsertUser: nil row")
	}

	q := client.Query(tables.render(upsertUserSQL))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "telegram_id", Value: row.TelegramID},
		{Name: "username", Value: row.Username},
		{Name: "first_name", Value: row.FirstName},
		{Name: "created_ts", Value: row.CreatedTS},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("UpsertUser: run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("UpsertUser: wait job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("UpsertUser: job error: %w", err)
	}

	return nil
}

// ListUsersWithClient returns every known user, newest first.
func ListUsersWithClient(ctx context.Context, client *bigquery.Client, tables Tables) ([]*UserRow, error) {
	q := client.Query(tables.render(listUsersSQL))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: query read: %w", err)
	}

	var rows []*UserRow
	for {
		var r UserRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListUsers: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
