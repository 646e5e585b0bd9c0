package river

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
)

// EventWorker processes wizard event jobs from the River queue.
// It records the onboarding audit trail in the log.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]
}

// Work processes a single event job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	slog.InfoContext(ctx, "processing wizard event",
		"event", job.Args.Event,
		"wizard_id", job.Args.WizardID,
		"company_id", job.Args.CompanyID,
		"stage", job.Args.Stage,
		"roles", job.Args.RoleCount,
		"nodes", job.Args.NodeCount,
		"total_quantity", job.Args.TotalQuantity,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// SessionPurger removes sessions created before a cutoff.
type SessionPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Purgers fans a purge out to several stores. Every store is attempted;
// the removed counts are summed and the errors joined.
type Purgers []SessionPurger

func (p Purgers) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var (
		total int64
		errs  []error
	)
	for _, store := range p {
		n, err := store.PurgeBefore(ctx, cutoff)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// SessionPurgeArgs is the periodic job that expires stale identity sessions.
type SessionPurgeArgs struct{}

// Kind returns the unique job type identifier used by River's job routing.
func (SessionPurgeArgs) Kind() string { return "session.purge" }

// SessionPurgeWorker deletes sessions older than TTL.
type SessionPurgeWorker struct {
	river.WorkerDefaults[SessionPurgeArgs]

	Store SessionPurger
	TTL   time.Duration
	Now   func() time.Time
}

// Work processes a single purge job.
func (w *SessionPurgeWorker) Work(ctx context.Context, job *river.Job[SessionPurgeArgs]) error {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	n, err := w.Store.PurgeBefore(ctx, now().Add(-w.TTL))
	if err != nil {
		return fmt.Errorf("purging sessions: %w", err)
	}

	slog.InfoContext(ctx, "purged stale sessions",
		"removed", n,
		"ttl", w.TTL.String(),
		"job_id", job.ID,
	)
	return nil
}
