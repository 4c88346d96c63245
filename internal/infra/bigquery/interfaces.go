package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	bq "github.com/dvloznov/expense-tracker/internal/bigquery"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/pipeline"
)

// Re-export interfaces from the shared package.
type ExpenseRepository = bq.ExpenseRepository
type UserRepository = bq.UserRepository
type CategoryRepository = bq.CategoryRepository
type AnalyticsRepository = bq.AnalyticsRepository
type Repository = bq.Repository

var _ Repository = (*BigQueryRepository)(nil)

// BigQueryRepository implements every tracker store on one shared BigQuery
// client.
type BigQueryRepository struct {
	client *bigquery.Client
	tables Tables
	now    func() time.Time
}

// NewBigQueryRepository creates a repository bound to one project and dataset.
func NewBigQueryRepository(ctx context.Context, projectID, datasetID string) (*BigQueryRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryRepository: creating client: %w", err)
	}
	return NewBigQueryRepositoryWithClient(client, Tables{ProjectID: projectID, DatasetID: datasetID}), nil
}

// NewBigQueryRepositoryWithClient wraps an existing client. Close will close it.
func NewBigQueryRepositoryWithClient(client *bigquery.Client, tables Tables) *BigQueryRepository {
	return &BigQueryRepository{client: client, tables: tables, now: time.Now}
}

// Client exposes the underlying client for migrations.
func (r *BigQueryRepository) Client() *bigquery.Client {
	return r.client
}

// Tables returns the dataset the repository writes to.
func (r *BigQueryRepository) Tables() Tables {
	return r.tables
}

// Close closes the BigQuery client connection.
func (r *BigQueryRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertExpense stores one validated record.
func (r *BigQueryRepository) InsertExpense(ctx context.Context, record *domain.ExpenseRecord) error {
	row, err := ExpenseRowFromRecord(record)
	if err != nil {
		return fmt.Errorf("InsertExpense: %w", err)
	}
	return InsertExpenseWithClient(ctx, r.client, r.tables, row)
}

// QueryExpensesByScope returns the scope month's records, newest first.
func (r *BigQueryRepository) QueryExpensesByScope(ctx context.Context, scope domain.Scope) ([]domain.ExpenseRecord, error) {
	rows, err := QueryExpensesByScopeWithClient(ctx, r.client, r.tables, scope)
	if err != nil {
		return nil, err
	}
	return recordsFromRows(rows), nil
}

// QueryRecentExpenses returns the owner's latest records.
func (r *BigQueryRepository) QueryRecentExpenses(ctx context.Context, ownerID int64, limit int) ([]domain.ExpenseRecord, error) {
	rows, err := QueryRecentExpensesWithClient(ctx, r.client, r.tables, ownerID, limit)
	if err != nil {
		return nil, err
	}
	return recordsFromRows(rows), nil
}

// UpsertUser creates or refreshes a user.
func (r *BigQueryRepository) UpsertUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("UpsertUser: nil user")
	}
	return UpsertUserWithClient(ctx, r.client, r.tables, UserRowFromDomain(user, r.now()))
}

// ListUsers returns all users, newest first.
func (r *BigQueryRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := ListUsersWithClient(ctx, r.client, r.tables)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, UserFromRow(row))
	}
	return users, nil
}

// ListCategories returns the stored taxonomy in display order.
func (r *BigQueryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := ListCategoriesWithClient(ctx, r.client, r.tables)
	if err != nil {
		return nil, err
	}
	return CategoriesFromRows(rows), nil
}

// QueryCategoryTotals returns per-user, per-category totals for a month.
func (r *BigQueryRepository) QueryCategoryTotals(ctx context.Context, year, month int) ([]domain.UserCategoryTotal, error) {
	rows, err := QueryCategoryTotalsWithClient(ctx, r.client, r.tables, year, month)
	if err != nil {
		return nil, err
	}
	totals := make([]domain.UserCategoryTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, CategoryTotalFromRow(row))
	}
	return totals, nil
}

// InsertModelOutput stores the raw model reply behind an expense.
func (r *BigQueryRepository) InsertModelOutput(ctx context.Context, expenseID string, ownerID int64, outcome *pipeline.ModelOutcome) error {
	row, err := ModelOutputRowFromOutcome(expenseID, ownerID, outcome, r.now())
	if err != nil {
		return fmt.Errorf("InsertModelOutput: %w", err)
	}
	return InsertModelOutputWithClient(ctx, r.client, r.tables, row)
}

func recordsFromRows(rows []*ExpenseRow) []domain.ExpenseRecord {
	records := make([]domain.ExpenseRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, RecordFromExpenseRow(row))
	}
	return records
}
