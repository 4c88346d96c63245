package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/jobs"
	"github.com/dvloznov/expense-tracker/internal/pipeline"
	"github.com/dvloznov/expense-tracker/internal/service"
)

func newTracker(store *MockStore, client pipeline.ModelClient, deps service.Deps) *service.ExpenseTracker {
	deps.Store = store
	if client != nil {
		deps.Extractor = pipeline.NewExtractor(client)
	} else {
		deps.Extractor = pipeline.NewExtractor(nil)
	}
	deps.Timeout = time.Second
	return service.New(deps)
}

func TestRecordText_Heuristic(t *testing.T) {
	store := &MockStore{}
	tracker := newTracker(store, nil, service.Deps{})

	outcome, err := tracker.RecordText(context.Background(), 42, "kopi 15rb")
	if err != nil {
		t.Fatalf("RecordText() error = %v", err)
	}
	if outcome.NeedsClarification {
		t.Fatal("NeedsClarification = true, want false")
	}
	if outcome.Record == nil {
		t.Fatal("Record is nil")
	}
	if outcome.Record.Amount != 15000 {
		t.Errorf("Amount = %v, want 15000", outcome.Record.Amount)
	}
	if outcome.Record.Category != domain.CategoryFood {
		t.Errorf("Category = %q, want Food", outcome.Record.Category)
	}
	if outcome.Record.OwnerID != 42 {
		t.Errorf("OwnerID = %d, want 42", outcome.Record.OwnerID)
	}
	if len(store.Inserted) != 1 {
		t.Errorf("inserted %d records, want 1", len(store.Inserted))
	}
}

func TestRecordText_NeedsClarification(t *testing.T) {
	store := &MockStore{}
	tracker := newTracker(store, nil, service.Deps{})

	outcome, err := tracker.RecordText(context.Background(), 42, "makan siang")
	if err != nil {
		t.Fatalf("RecordText() error = %v", err)
	}
	if !outcome.NeedsClarification {
		t.Error("NeedsClarification = false, want true")
	}
	if outcome.Record != nil {
		t.Error("Record should be nil")
	}
	if len(store.Inserted) != 0 {
		t.Errorf("inserted %d records, want 0", len(store.Inserted))
	}
}

func TestRecordText_ModelUnavailable(t *testing.T) {
	store := &MockStore{}
	client := &MockModelClient{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("503")
		},
	}
	tracker := newTracker(store, client, service.Deps{})

	_, err := tracker.RecordText(context.Background(), 1, "kopi 15rb")
	if !errors.Is(err, service.ErrExtractionUnavailable) {
		t.Errorf("RecordText() error = %v, want ErrExtractionUnavailable", err)
	}
	if len(store.Inserted) != 0 {
		t.Error("nothing should be stored when the model is unavailable")
	}
}

func TestRecordText_ModelReplyIsAudited(t *testing.T) {
	store := &MockStore{}
	client := &MockModelClient{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			return `{"amount": 50000, "description": "Lunch", "category": "food", "date": "2024-03-15", "merchant": null}`, nil
		},
	}
	tracker := newTracker(store, client, service.Deps{})

	outcome, err := tracker.RecordText(context.Background(), 1, "makan siang 50rb")
	if err != nil {
		t.Fatalf("RecordText() error = %v", err)
	}
	if outcome.Record == nil || outcome.Record.Category != domain.CategoryFood {
		t.Fatalf("Record = %+v", outcome.Record)
	}
	if len(store.Outputs) != 1 || !store.Outputs[0].Coerced {
		t.Errorf("model outputs = %+v, want one coerced outcome", store.Outputs)
	}
}

func TestRecordImage_EmptyData(t *testing.T) {
	tracker := newTracker(&MockStore{}, nil, service.Deps{})
	if _, err := tracker.RecordImage(context.Background(), 1, nil, "image/jpeg"); err == nil {
		t.Error("RecordImage() with no data should fail")
	}
}

func TestRegisterUser(t *testing.T) {
	var got *domain.User
	store := &MockStore{
		UpsertUserFunc: func(ctx context.Context, user *domain.User) error {
			got = user
			return nil
		},
	}
	tracker := newTracker(store, nil, service.Deps{})

	if err := tracker.RegisterUser(context.Background(), domain.User{TelegramID: 5, FirstName: "Sari"}); err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}
	if got == nil || got.TelegramID != 5 {
		t.Errorf("upserted %+v", got)
	}

	if err := tracker.RegisterUser(context.Background(), domain.User{}); err == nil {
		t.Error("RegisterUser() without id should fail")
	}
}

func TestRecent_Limits(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, 10},
		{"negative", -3, 10},
		{"explicit", 25, 25},
		{"capped", 500, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			store := &MockStore{
				QueryRecentExpensesFunc: func(ctx context.Context, ownerID int64, limit int) ([]domain.ExpenseRecord, error) {
					gotLimit = limit
					return nil, nil
				},
			}
			tracker := newTracker(store, nil, service.Deps{})

			if _, err := tracker.Recent(context.Background(), 1, tt.limit); err != nil {
				t.Fatalf("Recent() error = %v", err)
			}
			if gotLimit != tt.want {
				t.Errorf("limit = %d, want %d", gotLimit, tt.want)
			}
		})
	}
}

func scopeRecords() []domain.ExpenseRecord {
	d := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	return []domain.ExpenseRecord{
		{ID: "1", Amount: 30000, Category: domain.CategoryFood, Date: d},
		{ID: "2", Amount: 10000, Category: domain.CategoryTransport, Date: d},
	}
}

func TestMonthlyReport(t *testing.T) {
	store := &MockStore{
		QueryExpensesByScopeFunc: func(ctx context.Context, scope domain.Scope) ([]domain.ExpenseRecord, error) {
			return scopeRecords(), nil
		},
	}
	tracker := newTracker(store, nil, service.Deps{})
	scope := domain.Scope{OwnerID: 1, Year: 2024, Month: 3}

	view, err := tracker.MonthlyReport(context.Background(), scope)
	if err != nil {
		t.Fatalf("MonthlyReport() error = %v", err)
	}
	if view.Report.Total != 40000 || view.Report.Count != 2 {
		t.Errorf("report = %+v", view.Report)
	}
	if view.Report.Categories[0].Category != domain.CategoryFood {
		t.Errorf("first category = %q, want Food", view.Report.Categories[0].Category)
	}

	total, err := tracker.Total(context.Background(), scope)
	if err != nil || total != 40000 {
		t.Errorf("Total() = %v, %v", total, err)
	}

	if _, err := tracker.MonthlyReport(context.Background(), domain.Scope{OwnerID: 1, Year: 2024, Month: 13}); err == nil {
		t.Error("MonthlyReport() with month 13 should fail")
	}
}

func TestMonthlyReportWithInsights(t *testing.T) {
	store := &MockStore{
		QueryExpensesByScopeFunc: func(ctx context.Context, scope domain.Scope) ([]domain.ExpenseRecord, error) {
			return scopeRecords(), nil
		},
	}

	t.Run("insights and chart", func(t *testing.T) {
		tracker := newTracker(store, nil, service.Deps{
			Insights: &MockInsights{GenerateFunc: func(ctx context.Context, records []domain.ExpenseRecord) (string, error) {
				return "spend less on coffee", nil
			}},
			Chart: func(r domain.MonthlyReport) ([]byte, error) { return []byte("png"), nil },
		})

		view, err := tracker.MonthlyReportWithInsights(context.Background(), domain.Scope{OwnerID: 1, Year: 2024, Month: 3})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if view.Insights != "spend less on coffee" {
			t.Errorf("Insights = %q", view.Insights)
		}
		if string(view.Chart) != "png" {
			t.Errorf("Chart = %q", view.Chart)
		}
	})

	t.Run("failures are dropped", func(t *testing.T) {
		tracker := newTracker(store, nil, service.Deps{
			Insights: &MockInsights{GenerateFunc: func(ctx context.Context, records []domain.ExpenseRecord) (string, error) {
				return "", errors.New("quota")
			}},
			Chart: func(r domain.MonthlyReport) ([]byte, error) { return nil, errors.New("font") },
		})

		view, err := tracker.MonthlyReportWithInsights(context.Background(), domain.Scope{OwnerID: 1, Year: 2024, Month: 3})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if view.Insights != "" || view.Chart != nil {
			t.Errorf("view = %+v, want no extras", view)
		}
		if view.Report.Total != 40000 {
			t.Errorf("Total = %v", view.Report.Total)
		}
	})
}

func TestCategories_FallsBackToTaxonomy(t *testing.T) {
	tracker := newTracker(&MockStore{}, nil, service.Deps{})

	got, err := tracker.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(got) != len(domain.Taxonomy()) {
		t.Errorf("Categories() = %v, want full taxonomy", got)
	}
}

func TestAnalytics_InvalidMonth(t *testing.T) {
	tracker := newTracker(&MockStore{}, nil, service.Deps{})
	if _, err := tracker.Analytics(context.Background(), 2024, 0); err == nil {
		t.Error("Analytics() with month 0 should fail")
	}
}

func TestHandleExtractJob(t *testing.T) {
	tests := []struct {
		name              string
		job               jobs.ExtractExpenseJob
		wantErr           bool
		wantPermanent     bool
		wantClarification bool
		wantExpense       bool
	}{
		{
			name:        "text job stores expense",
			job:         jobs.ExtractExpenseJob{OwnerID: 1, SourceKind: domain.SourceText, Text: "bensin 50rb"},
			wantExpense: true,
		},
		{
			name:              "text without amount completes with clarification",
			job:               jobs.ExtractExpenseJob{OwnerID: 1, SourceKind: domain.SourceText, Text: "bensin"},
			wantClarification: true,
		},
		{
			name:          "image job without uri is permanent",
			job:           jobs.ExtractExpenseJob{OwnerID: 1, SourceKind: domain.SourceImage},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name:          "unknown kind is permanent",
			job:           jobs.ExtractExpenseJob{OwnerID: 1, SourceKind: "audio"},
			wantErr:       true,
			wantPermanent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTracker(&MockStore{}, nil, service.Deps{})
			job := tt.job

			err := tracker.HandleExtractJob(context.Background(), &job)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleExtractJob() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(err, jobs.ErrPermanent) != tt.wantPermanent {
				t.Errorf("permanent = %v, want %v", errors.Is(err, jobs.ErrPermanent), tt.wantPermanent)
			}
			if job.NeedsClarification != tt.wantClarification {
				t.Errorf("NeedsClarification = %v, want %v", job.NeedsClarification, tt.wantClarification)
			}
			if (job.ExpenseID != "") != tt.wantExpense {
				t.Errorf("ExpenseID = %q", job.ExpenseID)
			}
		})
	}
}

func TestHandleExtractJob_UnavailableIsRetryable(t *testing.T) {
	client := &MockModelClient{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("timeout")
		},
	}
	tracker := newTracker(&MockStore{}, client, service.Deps{})

	job := &jobs.ExtractExpenseJob{OwnerID: 1, SourceKind: domain.SourceText, Text: "kopi 15rb"}
	err := tracker.HandleExtractJob(context.Background(), job)
	if !errors.Is(err, service.ErrExtractionUnavailable) {
		t.Errorf("error = %v, want ErrExtractionUnavailable", err)
	}
	if errors.Is(err, jobs.ErrPermanent) {
		t.Error("unavailable model must be retryable")
	}
}
