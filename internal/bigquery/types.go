// Package bigquery declares the storage contracts the tracker depends on.
// The BigQuery implementation lives in internal/infra/bigquery.
package bigquery

import (
	"context"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/pipeline"
)

// ExpenseRepository provides an interface for expense storage.
type ExpenseRepository interface {
	// InsertExpense stores one validated record.
	InsertExpense(ctx context.Context, record *domain.ExpenseRecord) error

	// QueryExpensesByScope returns the owner's records dated within the scope
	// month, newest first.
	QueryExpensesByScope(ctx context.Context, scope domain.Scope) ([]domain.ExpenseRecord, error)

	// QueryRecentExpenses returns the owner's latest records by creation time.
	QueryRecentExpenses(ctx context.Context, ownerID int64, limit int) ([]domain.ExpenseRecord, error)
}

// UserRepository provides an interface for chat user storage.
type UserRepository interface {
	// UpsertUser creates the user or refreshes username and first name.
	UpsertUser(ctx context.Context, user *domain.User) error

	// ListUsers returns all users, newest first.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// CategoryRepository provides an interface for the stored taxonomy.
type CategoryRepository interface {
	// ListCategories returns the categories in display order.
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// AnalyticsRepository provides cross-user aggregates for the dashboard.
type AnalyticsRepository interface {
	// QueryCategoryTotals returns per-user, per-category totals for a month,
	// largest total first.
	QueryCategoryTotals(ctx context.Context, year, month int) ([]domain.UserCategoryTotal, error)
}

// Repository is everything the tracker stores.
type Repository interface {
	ExpenseRepository
	UserRepository
	CategoryRepository
	AnalyticsRepository
	pipeline.ModelOutputRepository
}
