package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/expense-tracker/internal/jobs"
)

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	job := &jobs.ExtractExpenseJob{JobID: "j1", OwnerID: 1, Status: jobs.JobStatusPending}
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob() error = %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	job.Status = jobs.JobStatusFailed

	got, err := store.GetJob(ctx, "j1")
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != jobs.JobStatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}

	if _, err := store.GetJob(ctx, "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("GetJob(missing) error = %v, want ErrJobNotFound", err)
	}
	if err := store.SaveJob(ctx, &jobs.ExtractExpenseJob{}); err == nil {
		t.Error("SaveJob() without id should fail")
	}
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, j := range []*jobs.ExtractExpenseJob{
		{JobID: "a", OwnerID: 1, Status: jobs.JobStatusCompleted},
		{JobID: "b", OwnerID: 2, Status: jobs.JobStatusPending},
		{JobID: "c", OwnerID: 1, Status: jobs.JobStatusPending},
	} {
		j.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{"all newest first", jobs.JobFilter{}, []string{"c", "b", "a"}},
		{"by owner", jobs.JobFilter{OwnerID: 1}, []string{"c", "a"}},
		{"by status", jobs.JobFilter{Status: jobs.JobStatusPending}, []string{"c", "b"}},
		{"limit", jobs.JobFilter{Limit: 1}, []string{"c"}},
		{"offset", jobs.JobFilter{Offset: 2}, []string{"a"}},
		{"offset past end", jobs.JobFilter{Offset: 5}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListJobs() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListJobs() returned %d jobs, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].JobID != id {
					t.Errorf("job[%d] = %q, want %q", i, got[i].JobID, id)
				}
			}
		})
	}
}

func TestStore_UpdateJobStatus(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_ = store.SaveJob(ctx, &jobs.ExtractExpenseJob{JobID: "j1"})

	if err := store.UpdateJobStatus(ctx, "j1", jobs.JobStatusFailed, "boom"); err != nil {
		t.Fatalf("UpdateJobStatus() error = %v", err)
	}
	got, _ := store.GetJob(ctx, "j1")
	if got.Status != jobs.JobStatusFailed || got.Error != "boom" {
		t.Errorf("job = %+v", got)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt should be set for a failed job")
	}

	if err := store.UpdateJobStatus(ctx, "nope", jobs.JobStatusFailed, ""); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("UpdateJobStatus(nope) error = %v", err)
	}
}

func TestStore_Retention(t *testing.T) {
	ctx := context.Background()
	store := NewStore(WithRetention(2))
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, j := range []*jobs.ExtractExpenseJob{
		{JobID: "old", Status: jobs.JobStatusCompleted},
		{JobID: "waiting", Status: jobs.JobStatusPending},
		{JobID: "mid", Status: jobs.JobStatusFailed},
		{JobID: "new", Status: jobs.JobStatusCompleted},
	} {
		j.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob(%s) error = %v", j.JobID, err)
		}
	}

	tests := []struct {
		id   string
		kept bool
	}{
		{"old", false},
		{"waiting", true},
		{"mid", true},
		{"new", true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := store.GetJob(ctx, tt.id)
			if tt.kept && err != nil {
				t.Errorf("GetJob(%s) error = %v, want kept", tt.id, err)
			}
			if !tt.kept && !errors.Is(err, jobs.ErrJobNotFound) {
				t.Errorf("GetJob(%s) error = %v, want pruned", tt.id, err)
			}
		})
	}
}
