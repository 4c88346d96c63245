// Package service exposes the expense tracker's use cases to the chat bot,
// the HTTP API, the job worker and the command line tools.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bq "github.com/dvloznov/expense-tracker/internal/bigquery"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/jobs"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/pipeline"
	"github.com/dvloznov/expense-tracker/internal/report"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNeedsClarification is reported through Outcome.NeedsClarification and
	// is only returned by callers that treat it as a failure.
	ErrNeedsClarification = pipeline.ErrNeedsClarification

	// ErrExtractionUnavailable means the model could not be reached.
	ErrExtractionUnavailable = pipeline.ErrExtractionUnavailable
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// InsightSource writes a narrative summary of a month of expenses.
type InsightSource interface {
	Generate(ctx context.Context, records []domain.ExpenseRecord) (string, error)
}

// ChartRenderer draws a report as an image. Nil bytes mean nothing to draw.
type ChartRenderer func(report domain.MonthlyReport) ([]byte, error)

// Deps are the tracker's collaborators. Archive, Storage, Insights and Chart
// may be nil.
type Deps struct {
	Store     bq.Repository
	Extractor *pipeline.Extractor
	Timeout   time.Duration
	Archive   pipeline.ImageArchive
	Storage   pipeline.StorageService
	Insights  InsightSource
	Chart     ChartRenderer
}

// ExpenseTracker implements the tracker's use cases.
type ExpenseTracker struct {
	store    bq.Repository
	ingest   *pipeline.Pipeline
	insights InsightSource
	chart    ChartRenderer
	now      func() time.Time
}

// New wires an ExpenseTracker.
func New(deps Deps) *ExpenseTracker {
	return &ExpenseTracker{
		store: deps.Store,
		ingest: pipeline.NewIngestionPipeline(pipeline.IngestionDeps{
			Extractor:    deps.Extractor,
			Timeout:      deps.Timeout,
			Expenses:     deps.Store,
			ModelOutputs: deps.Store,
			Archive:      deps.Archive,
			Storage:      deps.Storage,
		}),
		insights: deps.Insights,
		chart:    deps.Chart,
		now:      time.Now,
	}
}

// Outcome is the result of recording one input. Record is nil when the
// input needs clarification.
type Outcome struct {
	Record             *domain.ExpenseRecord
	Draft              domain.ExpenseDraft
	NeedsClarification bool
}

// RegisterUser creates the user or refreshes its names.
func (t *ExpenseTracker) RegisterUser(ctx context.Context, user domain.User) error {
	if user.TelegramID == 0 {
		return fmt.Errorf("RegisterUser: telegram id is required")
	}
	if err := t.store.UpsertUser(ctx, &user); err != nil {
		return fmt.Errorf("RegisterUser: %w", err)
	}
	return nil
}

// RecordText extracts and stores an expense from a chat message.
func (t *ExpenseTracker) RecordText(ctx context.Context, ownerID int64, text string) (Outcome, error) {
	return t.record(ctx, &pipeline.IngestionState{
		OwnerID: ownerID,
		Kind:    domain.SourceText,
		Text:    text,
	})
}

// RecordImage extracts and stores an expense from receipt image bytes.
func (t *ExpenseTracker) RecordImage(ctx context.Context, ownerID int64, data []byte, mimeType string) (Outcome, error) {
	if len(data) == 0 {
		return Outcome{}, fmt.Errorf("RecordImage: empty image")
	}
	return t.record(ctx, &pipeline.IngestionState{
		OwnerID:  ownerID,
		Kind:     domain.SourceImage,
		Image:    data,
		MIMEType: mimeType,
	})
}

// RecordArchivedImage extracts and stores an expense from a receipt image
// that already lives in Cloud Storage.
func (t *ExpenseTracker) RecordArchivedImage(ctx context.Context, ownerID int64, gcsURI, mimeType string) (Outcome, error) {
	if gcsURI == "" {
		return Outcome{}, fmt.Errorf("RecordArchivedImage: image uri is required")
	}
	return t.record(ctx, &pipeline.IngestionState{
		OwnerID:  ownerID,
		Kind:     domain.SourceImage,
		ImageURI: gcsURI,
		MIMEType: mimeType,
	})
}

func (t *ExpenseTracker) record(ctx context.Context, state *pipeline.IngestionState) (Outcome, error) {
	state.Now = t.now()

	err := t.ingest.Execute(ctx, state)
	switch {
	case errors.Is(err, ErrNeedsClarification):
		log := logger.FromContext(ctx)
		log.Info().
			Int64("telegram_id", state.OwnerID).
			Str("source_kind", string(state.Kind)).
			Msg("expense needs clarification")
		return Outcome{Draft: state.Draft, NeedsClarification: true}, nil
	case err != nil:
		return Outcome{Draft: state.Draft}, err
	}

	return Outcome{Record: state.Record, Draft: state.Draft}, nil
}

// Recent returns the owner's latest expenses. limit defaults to 10 and is
// capped at 100.
func (t *ExpenseTracker) Recent(ctx context.Context, ownerID int64, limit int) ([]domain.ExpenseRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	records, err := t.store.QueryRecentExpenses(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("Recent: %w", err)
	}
	return records, nil
}

// MonthlyView is a month of expenses with its report and optional extras.
type MonthlyView struct {
	Records  []domain.ExpenseRecord
	Report   domain.MonthlyReport
	Insights string
	Chart    []byte
}

// MonthlyReport loads the scope's records and summarizes them.
func (t *ExpenseTracker) MonthlyReport(ctx context.Context, scope domain.Scope) (*MonthlyView, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("MonthlyReport: invalid month %d-%02d", scope.Year, scope.Month)
	}
	records, err := t.store.QueryExpensesByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("MonthlyReport: %w", err)
	}
	return &MonthlyView{Records: records, Report: report.Summarize(scope, records)}, nil
}

// MonthlyReportWithInsights adds the AI narrative and the pie chart. Both are
// produced concurrently; failures in either are logged and leave the field
// empty.
func (t *ExpenseTracker) MonthlyReportWithInsights(ctx context.Context, scope domain.Scope) (*MonthlyView, error) {
	view, err := t.MonthlyReport(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(view.Records) == 0 {
		return view, nil
	}

	log := logger.FromContext(ctx)
	g, gctx := errgroup.WithContext(ctx)

	if t.insights != nil {
		g.Go(func() error {
			text, err := t.insights.Generate(gctx, view.Records)
			if err != nil {
				log.Warn().Err(err).Int64("telegram_id", scope.OwnerID).Msg("generating insights failed")
				return nil
			}
			view.Insights = text
			return nil
		})
	}

	if t.chart != nil {
		g.Go(func() error {
			png, err := t.chart(view.Report)
			if err != nil {
				log.Warn().Err(err).Int64("telegram_id", scope.OwnerID).Msg("rendering chart failed")
				return nil
			}
			view.Chart = png
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("MonthlyReportWithInsights: %w", err)
	}
	return view, nil
}

// Total returns the scope's spending total.
func (t *ExpenseTracker) Total(ctx context.Context, scope domain.Scope) (float64, error) {
	view, err := t.MonthlyReport(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("Total: %w", err)
	}
	return view.Report.Total, nil
}

// Categories returns the stored taxonomy, or the built-in one when the table
// is empty.
func (t *ExpenseTracker) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := t.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("Categories: %w", err)
	}
	if len(categories) == 0 {
		return domain.Taxonomy(), nil
	}
	return categories, nil
}

// Users returns every known user, newest first.
func (t *ExpenseTracker) Users(ctx context.Context) ([]domain.User, error) {
	users, err := t.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("Users: %w", err)
	}
	return users, nil
}

// Analytics returns per-user, per-category totals for a month.
func (t *ExpenseTracker) Analytics(ctx context.Context, year, month int) ([]domain.UserCategoryTotal, error) {
	if month < 1 || month > 12 || year <= 0 {
		return nil, fmt.Errorf("Analytics: invalid month %d-%02d", year, month)
	}
	totals, err := t.store.QueryCategoryTotals(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("Analytics: %w", err)
	}
	return totals, nil
}

// HandleExtractJob is the job queue handler for asynchronous extraction.
// Clarification completes the job; an unreachable model is retried.
func (t *ExpenseTracker) HandleExtractJob(ctx context.Context, job *jobs.ExtractExpenseJob) error {
	var (
		outcome Outcome
		err     error
	)

	switch job.SourceKind {
	case domain.SourceText:
		if job.Text == "" {
			return fmt.Errorf("HandleExtractJob: empty text: %w", jobs.ErrPermanent)
		}
		outcome, err = t.RecordText(ctx, job.OwnerID, job.Text)
	case domain.SourceImage:
		if job.ImageURI == "" {
			return fmt.Errorf("HandleExtractJob: missing image uri: %w", jobs.ErrPermanent)
		}
		outcome, err = t.RecordArchivedImage(ctx, job.OwnerID, job.ImageURI, job.MIMEType)
	default:
		return fmt.Errorf("HandleExtractJob: unknown source kind %q: %w", job.SourceKind, jobs.ErrPermanent)
	}
	if err != nil {
		return fmt.Errorf("HandleExtractJob: %w", err)
	}

	job.NeedsClarification = outcome.NeedsClarification
	if outcome.Record != nil {
		job.ExpenseID = outcome.Record.ID
	}
	return nil
}
