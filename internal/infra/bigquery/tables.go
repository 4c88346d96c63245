package bigquery

import (
	"fmt"
	"strings"
)

const (
	tableExpenses     = "expenses"
	tableUsers        = "users"
	tableCategories   = "categories"
	tableModelOutputs = "model_outputs"
)

// Tables resolves fully qualified table names for one dataset.
type Tables struct {
	ProjectID string
	DatasetID string
}

// FQN returns the backtick-quoted project.dataset.table reference.
func (t Tables) FQN(table string) string {
	return fmt.Sprintf("`%s.%s.%s`", t.ProjectID, t.DatasetID, table)
}

// render substitutes {{expenses}}-style placeholders in a query template.
func (t Tables) render(query string) string {
	r := strings.NewReplacer(
		"{{expenses}}", t.FQN(tableExpenses),
		"{{users}}", t.FQN(tableUsers),
		"{{categories}}", t.FQN(tableCategories),
		"{{model_outputs}}", t.FQN(tableModelOutputs),
	)
	return r.Replace(query)
}
