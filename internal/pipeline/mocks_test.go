package pipeline_test

import (
	"context"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/pipeline"
)

// MockModelClient is a mock implementation of pipeline.ModelClient.
type MockModelClient struct {
	GenerateTextFunc      func(ctx context.Context, prompt string) (string, error)
	GenerateWithImageFunc func(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
}

func (m *MockModelClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, prompt)
	}
	return "{}", nil
}

func (m *MockModelClient) GenerateWithImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	if m.GenerateWithImageFunc != nil {
		return m.GenerateWithImageFunc(ctx, prompt, data, mimeType)
	}
	return "{}", nil
}

func (m *MockModelClient) ModelName() string { return "test-model" }

// MockExpenseRepository records inserted expenses.
type MockExpenseRepository struct {
	InsertExpenseFunc func(ctx context.Context, record *domain.ExpenseRecord) error
	Inserted          []*domain.ExpenseRecord
}

func (m *MockExpenseRepository) InsertExpense(ctx context.Context, record *domain.ExpenseRecord) error {
	if m.InsertExpenseFunc != nil {
		if err := m.InsertExpenseFunc(ctx, record); err != nil {
			return err
		}
	}
	m.Inserted = append(m.Inserted, record)
	return nil
}

// MockModelOutputRepository is a mock implementation of pipeline.ModelOutputRepository.
type MockModelOutputRepository struct {
	InsertModelOutputFunc func(ctx context.Context, expenseID string, ownerID int64, outcome *pipeline.ModelOutcome) error
	Calls                 int
}

func (m *MockModelOutputRepository) InsertModelOutput(ctx context.Context, expenseID string, ownerID int64, outcome *pipeline.ModelOutcome) error {
	m.Calls++
	if m.InsertModelOutputFunc != nil {
		return m.InsertModelOutputFunc(ctx, expenseID, ownerID, outcome)
	}
	return nil
}

// MockImageArchive is a mock implementation of pipeline.ImageArchive.
type MockImageArchive struct {
	ArchiveReceiptFunc func(ctx context.Context, ownerID int64, data []byte, mimeType string) (string, error)
}

func (m *MockImageArchive) ArchiveReceipt(ctx context.Context, ownerID int64, data []byte, mimeType string) (string, error) {
	if m.ArchiveReceiptFunc != nil {
		return m.ArchiveReceiptFunc(ctx, ownerID, data, mimeType)
	}
	return "gs://receipts/test.jpg", nil
}

// MockStorageService is a mock implementation of pipeline.StorageService.
type MockStorageService struct {
	FetchFromGCSFunc func(ctx context.Context, gcsURI string) ([]byte, error)
}

func (m *MockStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	if m.FetchFromGCSFunc != nil {
		return m.FetchFromGCSFunc(ctx, gcsURI)
	}
	return []byte("mock image data"), nil
}
