package pipeline

import (
	"github.com/dvloznov/expense-tracker/internal/domain"
)

// ModelOutcome records one successful model invocation for the audit table.
type ModelOutcome struct {
	ModelName   string
	RawResponse string
	Coerced     bool                   // false when the heuristic fallback ran
	Object      map[string]interface{} // coerced object, nil when Coerced is false
}

// Extraction is the adapter's result: the best available guess plus, when a
// model was called, what it returned.
type Extraction struct {
	Draft   domain.ExpenseDraft
	Outcome *ModelOutcome
}
