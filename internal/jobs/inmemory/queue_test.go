package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.ExtractExpenseJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := store.GetJob(context.Background(), jobID)
	t.Fatalf("job %s did not reach status %q, last seen %+v", jobID, want, job)
	return nil
}

func startQueue(t *testing.T, handler jobs.JobHandler) (*Queue, *Store) {
	t.Helper()
	store := NewStore()
	queue := NewQueue(10, 2, store, WithBackoff(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		_ = queue.Stop(context.Background())
		cancel()
	})
	return queue, store
}

func TestQueue_PublishSetsDefaults(t *testing.T) {
	store := NewStore()
	queue := NewQueue(1, 1, store)
	defer queue.Close()

	job := &jobs.ExtractExpenseJob{OwnerID: 1, SourceKind: domain.SourceText, Text: "kopi 15rb"}
	if err := queue.PublishExtractExpense(context.Background(), job); err != nil {
		t.Fatalf("PublishExtractExpense() error = %v", err)
	}

	if job.JobID == "" {
		t.Error("JobID should be generated")
	}
	if job.Status != jobs.JobStatusPending {
		t.Errorf("Status = %q, want pending", job.Status)
	}
	if job.MaxRetries != jobs.DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", job.MaxRetries, jobs.DefaultMaxRetries)
	}
	if job.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if _, err := store.GetJob(context.Background(), job.JobID); err != nil {
		t.Errorf("job not saved: %v", err)
	}
}

func TestQueue_ProcessesJob(t *testing.T) {
	queue, store := startQueue(t, func(ctx context.Context, job *jobs.ExtractExpenseJob) error {
		job.ExpenseID = "exp-" + job.JobID
		return nil
	})

	job := &jobs.ExtractExpenseJob{JobID: "j1", OwnerID: 1, SourceKind: domain.SourceText, Text: "kopi"}
	if err := queue.PublishExtractExpense(context.Background(), job); err != nil {
		t.Fatalf("PublishExtractExpense() error = %v", err)
	}

	got := waitForStatus(t, store, "j1", jobs.JobStatusCompleted)
	if got.ExpenseID != "exp-j1" {
		t.Errorf("ExpenseID = %q, want exp-j1", got.ExpenseID)
	}
	if got.StartedAt == nil || got.CompletedAt == nil {
		t.Error("timestamps should be set")
	}
}

func TestQueue_RetriesThenSucceeds(t *testing.T) {
	var attempts int32
	queue, store := startQueue(t, func(ctx context.Context, job *jobs.ExtractExpenseJob) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("model unavailable")
		}
		return nil
	})

	_ = queue.PublishExtractExpense(context.Background(), &jobs.ExtractExpenseJob{JobID: "j1", MaxRetries: 3})

	got := waitForStatus(t, store, "j1", jobs.JobStatusCompleted)
	if got.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", got.RetryCount)
	}
	if got.Error != "" {
		t.Errorf("Error = %q, want empty", got.Error)
	}
}

func TestQueue_FailsAfterMaxRetries(t *testing.T) {
	var attempts int32
	queue, store := startQueue(t, func(ctx context.Context, job *jobs.ExtractExpenseJob) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("model unavailable")
	})

	_ = queue.PublishExtractExpense(context.Background(), &jobs.ExtractExpenseJob{JobID: "j1", MaxRetries: 2})

	got := waitForStatus(t, store, "j1", jobs.JobStatusFailed)
	if got.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", got.RetryCount)
	}
	if n := atomic.LoadInt32(&attempts); n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
}

func TestQueue_PermanentErrorIsNotRetried(t *testing.T) {
	var attempts int32
	queue, store := startQueue(t, func(ctx context.Context, job *jobs.ExtractExpenseJob) error {
		atomic.AddInt32(&attempts, 1)
		return fmt.Errorf("bad image uri: %w", jobs.ErrPermanent)
	})

	_ = queue.PublishExtractExpense(context.Background(), &jobs.ExtractExpenseJob{JobID: "j1"})

	got := waitForStatus(t, store, "j1", jobs.JobStatusFailed)
	if got.RetryCount != 0 {
		t.Errorf("RetryCount = %d, want 0", got.RetryCount)
	}
	if n := atomic.LoadInt32(&attempts); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestQueue_ClosedQueueRejectsJobs(t *testing.T) {
	queue := NewQueue(1, 1, NewStore())
	if err := queue.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if err := queue.PublishExtractExpense(context.Background(), &jobs.ExtractExpenseJob{}); err == nil {
		t.Error("PublishExtractExpense() on closed queue should fail")
	}
	if err := queue.Start(context.Background(), func(context.Context, *jobs.ExtractExpenseJob) error { return nil }); err == nil {
		t.Error("Start() on closed queue should fail")
	}
}
