package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dvloznov/expense-tracker/internal/jobs"
)

// DefaultRetention is how many finished extraction jobs a Store keeps.
const DefaultRetention = 1000

// Store keeps extraction jobs in process memory so the API can report on
// them. Pending and running jobs are always kept; completed and failed ones
// are pruned oldest first once there are more than the retention limit.
// Everything is lost on restart.
type Store struct {
	mu        sync.RWMutex
	jobs      map[string]*jobs.ExtractExpenseJob
	retention int
	now       func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRetention caps the number of finished jobs kept. n <= 0 keeps all.
func WithRetention(n int) StoreOption {
	return func(s *Store) {
		s.retention = n
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		jobs:      make(map[string]*jobs.ExtractExpenseJob),
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveJob stores a snapshot of the job, replacing any earlier snapshot with
// the same id.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ExtractExpenseJob) error {
	if job.JobID == "" {
		return fmt.Errorf("SaveJob: job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := *job
	s.jobs[job.JobID] = &snapshot
	if finished(snapshot.Status) {
		s.prune()
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ExtractExpenseJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", jobs.ErrJobNotFound, jobID)
	}
	snapshot := *job
	return &snapshot, nil
}

// ListJobs filters by Telegram id and status and pages the result. Jobs are
// ordered newest first, job id breaking ties, so pages are stable.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExtractExpenseJob, error) {
	s.mu.RLock()
	matched := []*jobs.ExtractExpenseJob{}
	for _, job := range s.jobs {
		if filter.OwnerID != 0 && job.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		snapshot := *job
		matched = append(matched, &snapshot)
	}
	s.mu.RUnlock()

	sortNewestFirst(matched)

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*jobs.ExtractExpenseJob{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// UpdateJobStatus moves a job to status. Finished states get a completion
// time; an empty errorMsg leaves the previous error in place.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", jobs.ErrJobNotFound, jobID)
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	if finished(status) && job.CompletedAt == nil {
		at := s.now()
		job.CompletedAt = &at
	}
	if finished(status) {
		s.prune()
	}
	return nil
}

// prune drops the oldest finished jobs beyond the retention limit. Callers
// hold the write lock.
func (s *Store) prune() {
	if s.retention <= 0 {
		return
	}

	var done []*jobs.ExtractExpenseJob
	for _, job := range s.jobs {
		if finished(job.Status) {
			done = append(done, job)
		}
	}
	if len(done) <= s.retention {
		return
	}

	sortNewestFirst(done)
	for _, job := range done[s.retention:] {
		delete(s.jobs, job.JobID)
	}
}

func finished(status jobs.JobStatus) bool {
	return status == jobs.JobStatusCompleted || status == jobs.JobStatusFailed
}

func sortNewestFirst(list []*jobs.ExtractExpenseJob) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].JobID < list[j].JobID
	})
}

var _ jobs.JobStore = (*Store)(nil)
