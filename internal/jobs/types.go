package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeExtractExpense turns a chat message or receipt image into an expense.
	JobTypeExtractExpense JobType = "extract_expense"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// DefaultMaxRetries applies when a published job leaves MaxRetries at zero.
const DefaultMaxRetries = 3

// ErrPermanent marks handler errors that retrying cannot fix.
var ErrPermanent = errors.New("permanent job failure")

// ExtractExpenseJob represents one asynchronous expense extraction.
type ExtractExpenseJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// OwnerID is the Telegram id of the user the expense belongs to.
	OwnerID int64 `json:"telegram_id"`

	// SourceKind selects between Text and ImageURI.
	SourceKind domain.SourceKind `json:"source_kind"`

	// Text is the chat message for text jobs.
	Text string `json:"text,omitempty"`

	// ImageURI is the gs:// location of the receipt for image jobs.
	ImageURI string `json:"image_uri,omitempty"`

	// MIMEType of the image at ImageURI.
	MIMEType string `json:"mime_type,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`

	// ExpenseID is set once the expense has been stored.
	ExpenseID string `json:"expense_id,omitempty"`

	// NeedsClarification is set when no amount could be found. The job still
	// completes; nothing is stored.
	NeedsClarification bool `json:"needs_clarification"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ExtractExpenseJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ExtractExpenseJob) GetType() JobType {
	return JobTypeExtractExpense
}

// GetStatus implements the Job interface.
func (j *ExtractExpenseJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishExtractExpense publishes an extraction job.
	PublishExtractExpense(ctx context.Context, job *ExtractExpenseJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. It may set ExpenseID and NeedsClarification on
// the job. A returned error is retried unless it wraps ErrPermanent.
type JobHandler func(ctx context.Context, job *ExtractExpenseJob) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ExtractExpenseJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ExtractExpenseJob, error)

	// ListJobs retrieves jobs with optional filtering, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExtractExpenseJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// ErrJobNotFound is returned by stores for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// OwnerID filters jobs by Telegram id. Zero means all owners.
	OwnerID int64

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
