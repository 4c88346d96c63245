package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

const insertModelOutputSQL = `
	INSERT INTO {{model_outputs}} (
	  output_id,
	  expense_id,
	  telegram_id,
	  model_name,
	  raw_response,
	  coerced,
	  parsed_json,
	  created_ts
	)
	VALUES (
	  @output_id,
	  @expense_id,
	  @telegram_id,
	  @model_name,
	  @raw_response,
	  @coerced,
	  @parsed_json,
	  @created_ts
	)
`

// InsertModelOutputWithClient stores the raw model reply behind an expense.
func InsertModelOutputWithClient(ctx context.Context, client *bigquery.Client, tables Tables, row *ModelOutputRow) error {
	if row == nil {
		return fmt.Errorf("InsertModelOutput: nil row")
	}

	q := client.Query(tables.render(insertModelOutputSQL))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "output_id", Value: row.OutputID},
		{Name: "expense_id", Value: row.ExpenseID},
		{Name: "telegram_id", Value: row.TelegramID},
		{Name: "model_name", Value: row.ModelName},
		{Name: "raw_response", Value: row.RawResponse},
		{Name: "coerced", Value: row.Coerced},
		{Name: "parsed_json", Value: row.ParsedJSON},
		{Name: "created_ts", Value: row.CreatedTS},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("InsertModelOutput: run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("InsertModelOutput: wait job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("InsertModelOutput: job error: %w", err)
	}

	return nil
}
