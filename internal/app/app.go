// Package app wires the tracker's production dependencies from configuration.
// Every command builds on it.
package app

import (
	"context"
	"fmt"

	"github.com/dvloznov/expense-tracker/internal/config"
	"github.com/dvloznov/expense-tracker/internal/gcsuploader"
	"github.com/dvloznov/expense-tracker/internal/gemini"
	infraBQ "github.com/dvloznov/expense-tracker/internal/infra/bigquery"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/pipeline"
	"github.com/dvloznov/expense-tracker/internal/report"
	"github.com/dvloznov/expense-tracker/internal/service"
)

// App holds the shared clients. Storage and Archive are nil when no bucket
// is configured; Model is nil when the model client could not be created.
type App struct {
	Config  *config.Config
	Repo    *infraBQ.BigQueryRepository
	Storage *gcsuploader.GCSStorageService
	Archive *gcsuploader.Archive
	Model   *gemini.Client
	Tracker *service.ExpenseTracker
}

// New connects to BigQuery, Cloud Storage and Gemini and builds the tracker.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.FromContext(ctx)

	if err := cfg.RequireStorage(); err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}

	repo, err := infraBQ.NewBigQueryRepository(ctx, cfg.GCPProject, cfg.BQDataset)
	if err != nil {
		return nil, fmt.Errorf("app.New: bigquery: %w", err)
	}
	a := &App{Config: cfg, Repo: repo}

	if cfg.GCSBucket != "" {
		storage, err := gcsuploader.NewGCSStorageService(ctx)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app.New: storage: %w", err)
		}
		a.Storage = storage
		a.Archive = gcsuploader.NewArchive(storage, cfg.GCSBucket)
	} else {
		log.Warn().Msg("GCS_BUCKET not set, receipt images will not be archived")
	}

	model, err := gemini.NewClient(ctx, cfg.GeminiModel)
	if err != nil {
		log.Warn().Err(err).Msg("Gemini unavailable, text extraction falls back to keyword heuristics")
	} else {
		a.Model = model
	}

	a.Tracker = service.New(a.deps())
	return a, nil
}

// deps converts the optional clients to interface values without producing
// typed nils.
func (a *App) deps() service.Deps {
	deps := service.Deps{
		Store:   a.Repo,
		Timeout: a.Config.ExtractionTimeout,
		Chart:   report.RenderCategoryPie,
	}

	var model pipeline.ModelClient
	if a.Model != nil {
		model = a.Model
		deps.Insights = report.NewInsightGenerator(a.Model)
	}
	deps.Extractor = pipeline.NewExtractor(model)

	if a.Archive != nil {
		deps.Archive = a.Archive
	}
	if a.Storage != nil {
		deps.Storage = a.Storage
	}
	return deps
}

// Close releases the clients.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
	}
	if a.Repo != nil {
		a.Repo.Close()
	}
}
