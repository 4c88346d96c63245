package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/expense-tracker/internal/api/middleware"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/jobs"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/service"
)

// maxBodyBytes bounds request bodies, base64 receipt images included.
const maxBodyBytes = 20 << 20

// Tracker is the subset of the expense service the API reads from.
type Tracker interface {
	Users(ctx context.Context) ([]domain.User, error)
	Recent(ctx context.Context, ownerID int64, limit int) ([]domain.ExpenseRecord, error)
	MonthlyReport(ctx context.Context, scope domain.Scope) (*service.MonthlyView, error)
	Analytics(ctx context.Context, year, month int) ([]domain.UserCategoryTotal, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// ReceiptArchive stores uploaded receipt images before extraction.
type ReceiptArchive interface {
	ArchiveReceipt(ctx context.Context, ownerID int64, data []byte, mimeType string) (string, error)
}

// UsersHandler handles user endpoints.
type UsersHandler struct {
	tracker Tracker
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(tracker Tracker) *UsersHandler {
	return &UsersHandler{tracker: tracker}
}

// ListUsers handles GET /api/users
func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.tracker.Users(ctx)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Failed to list users")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	if users == nil {
		users = []domain.User{}
	}
	middleware.WriteJSON(w, http.StatusOK, users)
}

// ExpensesHandler handles expense listing and extraction.
type ExpensesHandler struct {
	tracker   Tracker
	publisher jobs.Publisher
	archive   ReceiptArchive
}

// NewExpensesHandler creates a new expenses handler. archive may be nil, in
// which case image extraction is refused.
func NewExpensesHandler(tracker Tracker, publisher jobs.Publisher, archive ReceiptArchive) *ExpensesHandler {
	return &ExpensesHandler{
		tracker:   tracker,
		publisher: publisher,
		archive:   archive,
	}
}

// ListExpenses handles GET /api/expenses/{telegramID}
func (h *ExpensesHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	ownerID, ok := telegramIDParam(w, r)
	if !ok {
		return
	}

	year, month, ok := yearMonthParams(w, r, time.Time{})
	if !ok {
		return
	}

	query := r.URL.Query()
	var records []domain.ExpenseRecord
	if query.Get("year") != "" && query.Get("month") != "" {
		view, err := h.tracker.MonthlyReport(ctx, domain.Scope{OwnerID: ownerID, Year: year, Month: month})
		if err != nil {
			log.Error().Err(err).Int64("telegram_id", ownerID).Msg("Failed to query expenses")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to query expenses")
			return
		}
		records = view.Records
	} else {
		var err error
		records, err = h.tracker.Recent(ctx, ownerID, service.MaxRecentLimit)
		if err != nil {
			log.Error().Err(err).Int64("telegram_id", ownerID).Msg("Failed to query expenses")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to query expenses")
			return
		}
	}

	if records == nil {
		records = []domain.ExpenseRecord{}
	}
	middleware.WriteJSON(w, http.StatusOK, records)
}

type extractRequest struct {
	Text        string `json:"text"`
	ImageBase64 string `json:"image_base64"`
	MIMEType    string `json:"mime_type"`
}

// EnqueueExtraction handles POST /api/expenses/{telegramID}/extract
func (h *ExpensesHandler) EnqueueExtraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	ownerID, ok := telegramIDParam(w, r)
	if !ok {
		return
	}

	var req extractRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job := &jobs.ExtractExpenseJob{OwnerID: ownerID}
	switch {
	case strings.TrimSpace(req.Text) != "":
		job.SourceKind = domain.SourceText
		job.Text = req.Text
	case req.ImageBase64 != "":
		if h.archive == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Image extraction is not configured")
			return
		}
		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil || len(data) == 0 {
			middleware.WriteError(w, http.StatusBadRequest, "image_base64 is not valid base64")
			return
		}
		mimeType := req.MIMEType
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}
		uri, err := h.archive.ArchiveReceipt(ctx, ownerID, data, mimeType)
		if err != nil {
			log.Error().Err(err).Int64("telegram_id", ownerID).Msg("Failed to archive receipt")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to store image")
			return
		}
		job.SourceKind = domain.SourceImage
		job.ImageURI = uri
		job.MIMEType = mimeType
	default:
		middleware.WriteError(w, http.StatusBadRequest, "text or image_base64 is required")
		return
	}

	if err := h.publisher.PublishExtractExpense(ctx, job); err != nil {
		log.Error().Err(err).Int64("telegram_id", ownerID).Msg("Failed to enqueue extraction job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction job")
		return
	}

	log.Info().
		Str("job_id", job.JobID).
		Int64("telegram_id", ownerID).
		Str("source_kind", string(job.SourceKind)).
		Msg("Extraction job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// ReportHandler handles report and analytics endpoints.
type ReportHandler struct {
	tracker Tracker
	now     func() time.Time
}

// NewReportHandler creates a new report handler.
func NewReportHandler(tracker Tracker) *ReportHandler {
	return &ReportHandler{tracker: tracker, now: time.Now}
}

// GetReport handles GET /api/report/{telegramID}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := telegramIDParam(w, r)
	if !ok {
		return
	}
	year, month, ok := yearMonthParams(w, r, h.now())
	if !ok {
		return
	}

	view, err := h.tracker.MonthlyReport(ctx, domain.Scope{OwnerID: ownerID, Year: year, Month: month})
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Int64("telegram_id", ownerID).Msg("Failed to build report")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}

	records := view.Records
	if records == nil {
		records = []domain.ExpenseRecord{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expenses":      records,
		"monthlyReport": view.Report.Categories,
		"total":         view.Report.Total,
		"year":          year,
		"month":         month,
	})
}

// GetAnalytics handles GET /api/analytics
func (h *ReportHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, month, ok := yearMonthParams(w, r, h.now())
	if !ok {
		return
	}

	totals, err := h.tracker.Analytics(ctx, year, month)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Failed to query analytics")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query analytics")
		return
	}

	if totals == nil {
		totals = []domain.UserCategoryTotal{}
	}
	middleware.WriteJSON(w, http.StatusOK, totals)
}

// CategoriesHandler handles category-related endpoints.
type CategoriesHandler struct {
	tracker Tracker
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(tracker Tracker) *CategoriesHandler {
	return &CategoriesHandler{tracker: tracker}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.tracker.Categories(ctx)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore) *JobsHandler {
	return &JobsHandler{store: store}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := r.PathValue("id")

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if ownerStr := query.Get("telegram_id"); ownerStr != "" {
		ownerID, err := strconv.ParseInt(ownerStr, 10, 64)
		if err != nil || ownerID <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid telegram_id")
			return
		}
		filter.OwnerID = ownerID
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// telegramIDParam reads the {telegramID} path segment. It writes a 400 and
// returns false when the id is not a positive integer.
func telegramIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("telegramID"), 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid telegram ID")
		return 0, false
	}
	return id, true
}

// yearMonthParams reads ?year= and ?month=. Missing values default to now's
// year and month; invalid ones produce a 400.
func yearMonthParams(w http.ResponseWriter, r *http.Request, now time.Time) (int, int, bool) {
	query := r.URL.Query()
	year, month := now.Year(), int(now.Month())

	if s := query.Get("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 9999 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid year")
			return 0, 0, false
		}
		year = v
	}
	if s := query.Get("month"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 12 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid month")
			return 0, 0, false
		}
		month = v
	}
	return year, month, true
}
