package worker

import (
	"context"
	"log/slog"
	"time"

	"kassza/internal/core"
	"kassza/internal/services"
)

// RuleOwnerLister enumerates users that own at least one active rule.
type RuleOwnerLister interface {
	ListUserIDsWithActiveRules(ctx context.Context) ([]string, error)
}

// RecurringWorker runs catch-up on a timer for every user with active
// rules. Reads already catch up on demand, so this only bounds how stale a
// rule can get for users who never open the app.
type RecurringWorker struct {
	owners   RuleOwnerLister
	engine   *services.CatchUpEngine
	interval time.Duration
}

func NewRecurringWorker(owners RuleOwnerLister, engine *services.CatchUpEngine, interval time.Duration) *RecurringWorker {
	return &RecurringWorker{
		owners:   owners,
		engine:   engine,
		interval: interval,
	}
}

// Run processes once immediately, then on every tick until ctx is done.
func (w *RecurringWorker) Run(ctx context.Context) error {
	w.RunOnce(ctx, time.Now())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			w.RunOnce(ctx, now)
		}
	}
}

// RunOnce catches up every rule owner as of now. Per-user failures are
// logged and do not stop the sweep.
func (w *RecurringWorker) RunOnce(ctx context.Context, now time.Time) {
	today := core.DateOf(now)

	users, err := w.owners.ListUserIDsWithActiveRules(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list rule owners", "error", err)
		return
	}

	var materialized int
	for _, userID := range users {
		res, err := w.engine.CatchUp(ctx, userID, today)
		if err != nil {
			slog.ErrorContext(ctx, "Catch-up failed", "user_id", userID, "error", err)
			continue
		}
		materialized += res.Materialized
		if res.Partial() {
			slog.WarnContext(ctx, "Catch-up finished with failures",
				"user_id", userID,
				"materialized", res.Materialized,
				"failed_rules", res.FailedRules)
		}
	}

	slog.InfoContext(ctx, "Recurring sweep complete",
		"users", len(users),
		"materialized", materialized,
		"date", today.String())
}
