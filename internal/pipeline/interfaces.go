package pipeline

import (
	"context"

	"github.com/dvloznov/expense-tracker/internal/domain"
)

// ModelClient is the external generative model. Both calls fail only when the
// model could not be reached or refused the request.
type ModelClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
	ModelName() string
}

// ExpenseRepository persists validated expense records.
type ExpenseRepository interface {
	InsertExpense(ctx context.Context, record *domain.ExpenseRecord) error
}

// ModelOutputRepository stores raw model responses for later inspection.
type ModelOutputRepository interface {
	InsertModelOutput(ctx context.Context, expenseID string, ownerID int64, outcome *ModelOutcome) error
}

// ImageArchive keeps a copy of receipt images and returns their gs:// URI.
type ImageArchive interface {
	ArchiveReceipt(ctx context.Context, ownerID int64, data []byte, mimeType string) (string, error)
}

// StorageService fetches previously archived images.
type StorageService interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}
