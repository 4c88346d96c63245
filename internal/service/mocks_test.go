package service_test

import (
	"context"
	"sync"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/pipeline"
)

type MockStore struct {
	mu       sync.Mutex
	Inserted []*domain.ExpenseRecord
	Outputs  []*pipeline.ModelOutcome

	InsertExpenseFunc        func(ctx context.Context, record *domain.ExpenseRecord) error
	QueryExpensesByScopeFunc func(ctx context.Context, scope domain.Scope) ([]domain.ExpenseRecord, error)
	QueryRecentExpensesFunc  func(ctx context.Context, ownerID int64, limit int) ([]domain.ExpenseRecord, error)
	UpsertUserFunc           func(ctx context.Context, user *domain.User) error
	ListUsersFunc            func(ctx context.Context) ([]domain.User, error)
	ListCategoriesFunc       func(ctx context.Context) ([]domain.Category, error)
	QueryCategoryTotalsFunc  func(ctx context.Context, year, month int) ([]domain.UserCategoryTotal, error)
}

func (m *MockStore) InsertExpense(ctx context.Context, record *domain.ExpenseRecord) error {
	if m.InsertExpenseFunc != nil {
		if err := m.InsertExpenseFunc(ctx, record); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Inserted = append(m.Inserted, record)
	m.mu.Unlock()
	return nil
}

func (m *MockStore) QueryExpensesByScope(ctx context.Context, scope domain.Scope) ([]domain.ExpenseRecord, error) {
	if m.QueryExpensesByScopeFunc != nil {
		return m.QueryExpensesByScopeFunc(ctx, scope)
	}
	return nil, nil
}

func (m *MockStore) QueryRecentExpenses(ctx context.Context, ownerID int64, limit int) ([]domain.ExpenseRecord, error) {
	if m.QueryRecentExpensesFunc != nil {
		return m.QueryRecentExpensesFunc(ctx, ownerID, limit)
	}
	return nil, nil
}

func (m *MockStore) UpsertUser(ctx context.Context, user *domain.User) error {
	if m.UpsertUserFunc != nil {
		return m.UpsertUserFunc(ctx, user)
	}
	return nil
}

func (m *MockStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) QueryCategoryTotals(ctx context.Context, year, month int) ([]domain.UserCategoryTotal, error) {
	if m.QueryCategoryTotalsFunc != nil {
		return m.QueryCategoryTotalsFunc(ctx, year, month)
	}
	return nil, nil
}

func (m *MockStore) InsertModelOutput(ctx context.Context, expenseID string, ownerID int64, outcome *pipeline.ModelOutcome) error {
	m.mu.Lock()
	m.Outputs = append(m.Outputs, outcome)
	m.mu.Unlock()
	return nil
}

type MockModelClient struct {
	GenerateTextFunc      func(ctx context.Context, prompt string) (string, error)
	GenerateWithImageFunc func(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
}

func (m *MockModelClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return m.GenerateTextFunc(ctx, prompt)
}

func (m *MockModelClient) GenerateWithImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	return m.GenerateWithImageFunc(ctx, prompt, data, mimeType)
}

func (m *MockModelClient) ModelName() string {
	return "test-model"
}

type MockInsights struct {
	GenerateFunc func(ctx context.Context, records []domain.ExpenseRecord) (string, error)
}

func (m *MockInsights) Generate(ctx context.Context, records []domain.ExpenseRecord) (string, error) {
	return m.GenerateFunc(ctx, records)
}
