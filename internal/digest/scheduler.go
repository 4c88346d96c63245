package digest

import (
	"context"
	"time"

	"github.com/dvloznov/expense-tracker/internal/logger"
)

const checkInterval = time.Minute

// Scheduler runs the digest once a month, on day 1 at the configured hour.
type Scheduler struct {
	digest   *Digest
	hour     int
	interval time.Duration
	now      func() time.Time
	lastRun  string
}

// NewScheduler creates a scheduler firing at hour:00 local time.
func NewScheduler(d *Digest, hour int) *Scheduler {
	return &Scheduler{digest: d, hour: hour, interval: checkInterval, now: time.Now}
}

// Run checks the clock every minute until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info().Int("hour", s.hour).Msg("Digest scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Digest scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// due reports whether the digest should run at now and has not yet run this
// month.
func (s *Scheduler) due(now time.Time) bool {
	return now.Day() == 1 && now.Hour() == s.hour && s.lastRun != monthKey(now)
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	if !s.due(now) {
		return
	}
	s.lastRun = monthKey(now)

	if _, err := s.digest.Send(ctx, now); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Monthly digest failed")
	}
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
