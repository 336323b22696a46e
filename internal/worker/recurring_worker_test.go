package worker

import (
	"context"
	"testing"
	"time"

	"kassza/internal/core"
	"kassza/internal/services"
	"kassza/internal/storage/memory"
)

func TestRecurringSweepCoversAllRuleOwners(t *testing.T) {
	store := memory.New()
	engine := services.NewCatchUpEngine(store, nil)
	w := NewRecurringWorker(store, engine, time.Hour)

	for _, userID := range []string{"u1", "u2"} {
		if _, err := store.CreateRule(context.Background(), core.RecurringRule{
			UserID:         userID,
			Amount:         core.Money{Cents: 1000},
			Description:    "Albérlet",
			Type:           core.Expense,
			Frequency:      core.Monthly,
			StartDate:      core.NewDate(2024, 1, 1),
			NextOccurrence: core.NewDate(2024, 1, 1),
			IsActive:       true,
		}); err != nil {
			t.Fatalf("seed rule: %v", err)
		}
	}

	w.RunOnce(context.Background(), time.Date(2024, 2, 15, 8, 0, 0, 0, time.UTC))

	for _, userID := range []string{"u1", "u2"} {
		txs, err := store.ListTransactions(context.Background(), userID)
		if err != nil {
			t.Fatalf("list transactions: %v", err)
		}
		if len(txs) != 2 {
			t.Errorf("user %s has %d transactions, want 2", userID, len(txs))
		}
	}
}

func TestRecurringSweepIdempotent(t *testing.T) {
	store := memory.New()
	engine := services.NewCatchUpEngine(store, nil)
	w := NewRecurringWorker(store, engine, time.Hour)

	if _, err := store.CreateRule(context.Background(), core.RecurringRule{
		UserID:         "u1",
		Amount:         core.Money{Cents: 1000},
		Description:    "Netflix",
		Type:           core.Expense,
		Frequency:      core.Weekly,
		StartDate:      core.NewDate(2024, 1, 1),
		NextOccurrence: core.NewDate(2024, 1, 1),
		IsActive:       true,
	}); err != nil {
		t.Fatalf("seed rule: %v", err)
	}

	now := time.Date(2024, 1, 20, 8, 0, 0, 0, time.UTC)
	w.RunOnce(context.Background(), now)
	w.RunOnce(context.Background(), now)

	txs, err := store.ListTransactions(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 3 {
		t.Errorf("got %d transactions after two sweeps, want 3", len(txs))
	}
}
