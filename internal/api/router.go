// Package api assembles the HTTP surface of the expense tracker.
package api

import (
	"net/http"

	"github.com/dvloznov/expense-tracker/internal/api/handlers"
	"github.com/dvloznov/expense-tracker/internal/api/middleware"
	"github.com/dvloznov/expense-tracker/internal/jobs"
	"github.com/rs/zerolog"
)

// Deps are the collaborators of the HTTP API. Archive and Bot may be nil.
type Deps struct {
	Tracker   handlers.Tracker
	Publisher jobs.Publisher
	Jobs      jobs.JobStore
	Archive   handlers.ReceiptArchive
	Bot       handlers.UpdateHandler
	APIKey    string
	Log       zerolog.Logger
}

// NewRouter registers every route and wraps the mux in the middleware chain
// Recovery, Logger, RequestID, CORS, Auth.
func NewRouter(deps Deps) http.Handler {
	users := handlers.NewUsersHandler(deps.Tracker)
	expenses := handlers.NewExpensesHandler(deps.Tracker, deps.Publisher, deps.Archive)
	reports := handlers.NewReportHandler(deps.Tracker)
	categories := handlers.NewCategoriesHandler(deps.Tracker)
	jobsHandler := handlers.NewJobsHandler(deps.Jobs)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/users", users.ListUsers)
	mux.HandleFunc("GET /api/expenses/{telegramID}", expenses.ListExpenses)
	mux.HandleFunc("POST /api/expenses/{telegramID}/extract", expenses.EnqueueExtraction)
	mux.HandleFunc("GET /api/report/{telegramID}", reports.GetReport)
	mux.HandleFunc("GET /api/analytics", reports.GetAnalytics)
	mux.HandleFunc("GET /api/categories", categories.ListCategories)
	mux.HandleFunc("GET /api/jobs", jobsHandler.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", jobsHandler.GetJob)
	mux.HandleFunc("GET /health", handlers.Health)

	if deps.Bot != nil {
		mux.HandleFunc("POST /webhook", handlers.NewWebhookHandler(deps.Bot).Receive)
	}

	return middleware.Recovery(deps.Log)(
		middleware.Logger(deps.Log)(
			middleware.RequestID(deps.Log)(
				middleware.CORS(
					middleware.Auth(deps.APIKey, "/health", "/webhook")(mux),
				),
			),
		),
	)
}
