// Package digest pushes last month's summary to every user on the first day
// of each month.
package digest

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/report"
	"github.com/dvloznov/expense-tracker/internal/service"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Notifier delivers a Markdown message to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Source is what the digest reads.
type Source interface {
	Users(ctx context.Context) ([]domain.User, error)
	MonthlyReport(ctx context.Context, scope domain.Scope) (*service.MonthlyView, error)
}

// Result counts what one run did.
type Result struct {
	Sent    int
	Skipped int
	Failed  int
}

// Digest sends the previous month's report to each user with expenses.
type Digest struct {
	source      Source
	notifier    Notifier
	concurrency int
}

// New creates a Digest.
func New(source Source, notifier Notifier) *Digest {
	return &Digest{source: source, notifier: notifier, concurrency: defaultConcurrency}
}

// Send builds and delivers the digest for the month before now. A failure
// for one user is logged and does not stop the others; only failing to list
// users is returned.
func (d *Digest) Send(ctx context.Context, now time.Time) (Result, error) {
	log := logger.FromContext(ctx)

	users, err := d.source.Users(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("Send: listing users: %w", err)
	}

	var sent, skipped, failed int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, u := range users {
		u := u
		g.Go(func() error {
			scope := domain.PreviousMonth(u.TelegramID, now)
			ulog := log.With().Int64("telegram_id", u.TelegramID).Str("month", report.MonthLabel(scope)).Logger()

			view, err := d.source.MonthlyReport(gctx, scope)
			if err != nil {
				ulog.Error().Err(err).Msg("building digest failed")
				atomic.AddInt64(&failed, 1)
				return nil
			}
			if view.Report.Count == 0 {
				atomic.AddInt64(&skipped, 1)
				return nil
			}

			if err := d.notifier.Notify(gctx, u.TelegramID, report.FormatDigest(view.Report)); err != nil {
				ulog.Error().Err(err).Msg("sending digest failed")
				atomic.AddInt64(&failed, 1)
				return nil
			}
			atomic.AddInt64(&sent, 1)
			return nil
		})
	}

	// Workers never return errors.
	_ = g.Wait()

	res := Result{Sent: int(sent), Skipped: int(skipped), Failed: int(failed)}
	log.Info().
		Int("users", len(users)).
		Int("sent", res.Sent).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("Monthly digest finished")
	return res, nil
}
