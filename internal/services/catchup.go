package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"kassza/internal/core"
)

// defaultMaxSteps bounds the per-rule catch-up loop. The stepper strictly
// advances the date, so the bound only matters under data corruption; a
// thousand daily steps cover an absence of almost three years.
const defaultMaxSteps = 1000

// CatchUpEngine brings a user's recurring rules up to date with "today" by
// materializing every due occurrence as a concrete transaction.
//
// Two concurrent catch-up runs for the same user are safe: in-process
// callers are coalesced with singleflight, and across processes every
// occurrence is persisted with a compare-and-swap on the rule cursor, so a
// lost race skips the rule instead of double-materializing it.
type CatchUpEngine struct {
	rules    RuleStore
	events   EventPublisher
	maxSteps int

	group singleflight.Group
}

// CatchUpResult reports what one catch-up run did.
type CatchUpResult struct {
	// Materialized is the number of transactions created.
	Materialized int
	// SkippedLocked counts rules skipped because a concurrent run owned
	// their cursor.
	SkippedLocked int
	// FailedRules counts rules aborted by bad data or store errors. Their
	// cursors stay at the last successfully written occurrence.
	FailedRules int
}

// Partial reports whether any rule stopped before reaching today.
func (r CatchUpResult) Partial() bool {
	return r.SkippedLocked > 0 || r.FailedRules > 0
}

func NewCatchUpEngine(rules RuleStore, events EventPublisher) *CatchUpEngine {
	return &CatchUpEngine{
		rules:    rules,
		events:   events,
		maxSteps: defaultMaxSteps,
	}
}

// CatchUp materializes all occurrences due up to and including today for
// every active rule owned by userID. A rule whose next occurrence equals
// today does materialize today's occurrence. Per-rule failures are logged
// and isolated; the remaining rules still run.
func (e *CatchUpEngine) CatchUp(ctx context.Context, userID string, today core.Date) (CatchUpResult, error) {
	// Concurrent read paths (two dashboard tabs polling) share one run.
	v, err, _ := e.group.Do(userID+"|"+today.String(), func() (any, error) {
		return e.run(ctx, userID, today)
	})
	if err != nil {
		return CatchUpResult{}, err
	}
	return v.(CatchUpResult), nil
}

func (e *CatchUpEngine) run(ctx context.Context, userID string, today core.Date) (CatchUpResult, error) {
	var result CatchUpResult

	rules, err := e.rules.ListActiveRules(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("list active rules: %w", err)
	}

	for _, rule := range rules {
		created, skipped, err := e.catchUpRule(ctx, rule, today)
		result.Materialized += created
		switch {
		case err != nil:
			result.FailedRules++
			slog.ErrorContext(ctx, "Rule catch-up failed",
				"rule_id", rule.ID,
				"description", rule.Description,
				"materialized_before_failure", created,
				"error", err)
		case skipped:
			result.SkippedLocked++
			slog.InfoContext(ctx, "Rule catch-up skipped, cursor owned by concurrent run",
				"rule_id", rule.ID)
		}
	}

	if result.Materialized > 0 || result.Partial() {
		slog.InfoContext(ctx, "Recurring catch-up complete",
			"user_id", userID,
			"today", today.String(),
			"materialized", result.Materialized,
			"skipped_locked", result.SkippedLocked,
			"failed_rules", result.FailedRules)
	}

	return result, nil
}

// catchUpRule walks one rule forward from its cursor to today. It returns
// the number of transactions created and whether the rule was skipped
// because of a lost cursor race. The persisted cursor never moves past an
// occurrence whose write failed.
func (e *CatchUpEngine) catchUpRule(ctx context.Context, rule core.RecurringRule, today core.Date) (created int, skipped bool, err error) {
	if err := rule.Frequency.Validate(); err != nil {
		return 0, false, fmt.Errorf("rule %s: %w", rule.ID, err)
	}
	if rule.StartDate.IsZero() {
		return 0, false, fmt.Errorf("rule %s: %w: null start date", rule.ID, core.ErrInvalidDate)
	}

	cursor := rule.Cursor()

	for steps := 0; !cursor.After(today); steps++ {
		if steps >= e.maxSteps {
			return created, false, fmt.Errorf("rule %s: aborted after %d steps without reaching today", rule.ID, steps)
		}

		// End date is inclusive: the occurrence falling exactly on it is
		// still emitted, deactivation happens one step later.
		if !rule.EndDate.IsZero() && cursor.After(rule.EndDate) {
			if err := e.rules.DeactivateRule(ctx, rule.ID, cursor); err != nil {
				return created, false, fmt.Errorf("deactivate rule %s: %w", rule.ID, err)
			}
			return created, false, nil
		}

		next, err := core.NextOccurrence(cursor, rule.Frequency)
		if err != nil {
			return created, false, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		if !next.After(cursor) {
			return created, false, fmt.Errorf("rule %s: stepper did not advance from %s", rule.ID, cursor)
		}

		tx := core.Transaction{
			UserID:      rule.UserID,
			CategoryID:  rule.CategoryID,
			Amount:      rule.Amount,
			Description: rule.Description + core.AutoDescriptionSuffix,
			Date:        cursor,
			Type:        rule.Type,
		}

		id, ok, err := e.rules.MaterializeOccurrence(ctx, rule, tx, next)
		if err != nil {
			return created, false, fmt.Errorf("materialize occurrence %s of rule %s: %w", cursor, rule.ID, err)
		}
		if !ok {
			return created, true, nil
		}
		created++
		e.publishSync(ctx, id)

		cursor = next
	}

	// Zero due occurrences: persist the defaulted cursor so the rule no
	// longer carries a null next_occurrence.
	if created == 0 && rule.NextOccurrence.IsZero() {
		if err := e.rules.InitializeCursor(ctx, rule.ID, cursor); err != nil {
			return 0, false, fmt.Errorf("initialize cursor of rule %s: %w", rule.ID, err)
		}
	}

	return created, false, nil
}

func (e *CatchUpEngine) publishSync(ctx context.Context, txID string) {
	if e.events == nil {
		return
	}
	// Sync is best effort; the transaction is already durable locally.
	if err := e.events.PublishTransactionSync(ctx, txID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "transaction_id", txID, "error", err)
	}
}
