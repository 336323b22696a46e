package services

import (
	"context"
	"testing"

	"kassza/internal/core"
	"kassza/internal/storage/memory"
)

func seedWallet(t *testing.T, store *memory.Store, name string, balance int64) string {
	t.Helper()
	id, err := store.CreateWallet(context.Background(), core.Wallet{
		UserID:  "u1",
		Name:    name,
		Type:    core.WalletBank,
		Balance: core.Money{Cents: balance},
	})
	if err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
	return id
}

func walletBalance(t *testing.T, store *memory.Store, id string) int64 {
	t.Helper()
	wallets, err := store.ListWallets(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list wallets: %v", err)
	}
	for _, w := range wallets {
		if w.ID == id {
			return w.Balance.Cents
		}
	}
	t.Fatalf("wallet %s not found", id)
	return 0
}

func TestCreateAppliesWalletBalance(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, NewCatchUpEngine(store, nil), nil)
	wallet := seedWallet(t, store, "Bankszámla", 100000)

	id, err := svc.Create(context.Background(), core.Transaction{
		UserID:      "u1",
		CategoryID:  "c1",
		WalletID:    wallet,
		Amount:      core.Money{Cents: 25000},
		Description: "Bevásárlás",
		Date:        core.NewDate(2024, 4, 2),
		Type:        core.Expense,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := walletBalance(t, store, wallet); got != 75000 {
		t.Errorf("wallet balance = %d, want 75000 after the expense", got)
	}

	if err := svc.Delete(context.Background(), "u1", id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := walletBalance(t, store, wallet); got != 100000 {
		t.Errorf("wallet balance = %d, want 100000 after the delete reversed it", got)
	}
}

func TestCreateRejectsInvalidTransaction(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, NewCatchUpEngine(store, nil), nil)

	_, err := svc.Create(context.Background(), core.Transaction{
		UserID: "u1",
		Amount: core.Money{Cents: -5},
		Date:   core.NewDate(2024, 4, 2),
		Type:   core.Expense,
	})
	if err == nil {
		t.Fatal("Create() accepted a negative amount")
	}
	if got := len(listTxs(t, store, "u1")); got != 0 {
		t.Errorf("store holds %d transactions, want 0", got)
	}
}

func TestTransferMovesBalanceBetweenWallets(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, NewCatchUpEngine(store, nil), nil)
	from := seedWallet(t, store, "Bankszámla", 50000)
	to := seedWallet(t, store, "Készpénz", 10000)

	id, err := svc.Transfer(context.Background(), "u1", from, to, core.Money{Cents: 20000}, core.NewDate(2024, 4, 5))
	if err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if got := walletBalance(t, store, from); got != 30000 {
		t.Errorf("source balance = %d, want 30000", got)
	}
	if got := walletBalance(t, store, to); got != 30000 {
		t.Errorf("destination balance = %d, want 30000", got)
	}

	txs := listTxs(t, store, "u1")
	if len(txs) != 1 || txs[0].ID != id {
		t.Fatalf("expected one transfer row, got %d", len(txs))
	}
	if !txs[0].IsSystemMovement() {
		t.Error("transfer should be a system movement (no category)")
	}
}

func TestTransferRejectsSameWallet(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, NewCatchUpEngine(store, nil), nil)
	w := seedWallet(t, store, "Bankszámla", 50000)

	if _, err := svc.Transfer(context.Background(), "u1", w, w, core.Money{Cents: 100}, core.NewDate(2024, 4, 5)); err == nil {
		t.Fatal("Transfer() accepted identical source and destination")
	}
}

func TestAllocateToSavingsCreditsGoal(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, NewCatchUpEngine(store, nil), nil)
	wallet := seedWallet(t, store, "Bankszámla", 100000)
	goal, err := store.CreateGoal(context.Background(), core.SavingsGoal{
		UserID:       "u1",
		Name:         "Nyaralás",
		TargetAmount: core.Money{Cents: 300000},
	})
	if err != nil {
		t.Fatalf("seed goal: %v", err)
	}

	if _, err := svc.AllocateToSavings(context.Background(), "u1", wallet, goal, core.Money{Cents: 40000}, core.NewDate(2024, 4, 8)); err != nil {
		t.Fatalf("AllocateToSavings() error = %v", err)
	}

	if got := walletBalance(t, store, wallet); got != 60000 {
		t.Errorf("wallet balance = %d, want 60000", got)
	}
	goals, _ := store.ListGoals(context.Background(), "u1")
	if goals[0].CurrentAmount.Cents != 40000 {
		t.Errorf("goal amount = %d, want 40000", goals[0].CurrentAmount.Cents)
	}
	if goals[0].Status != core.GoalActive {
		t.Errorf("goal status = %s, want active", goals[0].Status)
	}
}

func TestAllocateToSavingsRollsBackOnMissingGoal(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, NewCatchUpEngine(store, nil), nil)
	wallet := seedWallet(t, store, "Bankszámla", 100000)

	if _, err := svc.AllocateToSavings(context.Background(), "u1", wallet, "missing-goal", core.Money{Cents: 40000}, core.NewDate(2024, 4, 8)); err == nil {
		t.Fatal("AllocateToSavings() succeeded against a missing goal")
	}

	// The ledger entry was rolled back and the wallet balance restored.
	if got := len(listTxs(t, store, "u1")); got != 0 {
		t.Errorf("store holds %d transactions, want 0 after rollback", got)
	}
	if got := walletBalance(t, store, wallet); got != 100000 {
		t.Errorf("wallet balance = %d, want 100000 after rollback", got)
	}
}

func TestAllocateCompletesGoal(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, NewCatchUpEngine(store, nil), nil)
	wallet := seedWallet(t, store, "Bankszámla", 500000)
	goal, _ := store.CreateGoal(context.Background(), core.SavingsGoal{
		UserID:        "u1",
		Name:          "Vésztartalék",
		TargetAmount:  core.Money{Cents: 100000},
		CurrentAmount: core.Money{Cents: 90000},
	})

	if _, err := svc.AllocateToSavings(context.Background(), "u1", wallet, goal, core.Money{Cents: 10000}, core.NewDate(2024, 4, 8)); err != nil {
		t.Fatalf("AllocateToSavings() error = %v", err)
	}
	goals, _ := store.ListGoals(context.Background(), "u1")
	if goals[0].Status != core.GoalCompleted {
		t.Errorf("goal status = %s, want completed", goals[0].Status)
	}
}

func TestListTriggersCatchUp(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, NewCatchUpEngine(store, nil), nil)
	seedRule(t, store, core.RecurringRule{
		Frequency:      core.Weekly,
		StartDate:      core.NewDate(2024, 1, 1),
		NextOccurrence: core.NewDate(2024, 1, 1),
	})

	txs, err := svc.List(context.Background(), "u1", core.NewDate(2024, 1, 15))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(txs) != 3 {
		t.Errorf("List() returned %d transactions, want 3 materialized occurrences", len(txs))
	}
}
