package services

import (
	"context"
	"testing"
	"time"

	"kassza/internal/core"
	"kassza/internal/storage/memory"
)

func TestCashflowProjection(t *testing.T) {
	store := memory.New()
	svc := NewForecastService(store, NewCatchUpEngine(store, nil))
	now := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)

	// Starting balance: 200000 income minus 50000 expenses.
	seedTx(t, store, core.Transaction{CategoryID: "c1", Amount: core.Money{Cents: 200000}, Date: core.NewDate(2024, 3, 1), Type: core.Income})
	seedTx(t, store, core.Transaction{CategoryID: "c2", Amount: core.Money{Cents: 50000}, Date: core.NewDate(2024, 3, 10), Type: core.Expense})

	// Recurring: 300000 salary in, 80000 rent out. Cursors already in the
	// future so catch-up leaves the ledger alone.
	seedRule(t, store, core.RecurringRule{
		Description:    "Fizetés",
		Type:           core.Income,
		Amount:         core.Money{Cents: 300000},
		Frequency:      core.Monthly,
		StartDate:      core.NewDate(2024, 1, 1),
		NextOccurrence: core.NewDate(2024, 5, 1),
	})
	seedRule(t, store, core.RecurringRule{
		Description:    "Albérlet",
		Amount:         core.Money{Cents: 80000},
		Frequency:      core.Monthly,
		StartDate:      core.NewDate(2024, 1, 1),
		NextOccurrence: core.NewDate(2024, 5, 1),
	})

	// May budgets total 100000, above the recurring expenses.
	if err := store.UpsertBudget(context.Background(), core.Budget{
		UserID: "u1", CategoryID: "c2", Amount: core.Money{Cents: 100000}, Month: 5, Year: 2024,
	}); err != nil {
		t.Fatalf("seed budget: %v", err)
	}

	forecast, err := svc.Cashflow(context.Background(), "u1", now)
	if err != nil {
		t.Fatalf("Cashflow() error = %v", err)
	}
	if len(forecast) != forecastMonths {
		t.Fatalf("got %d months, want %d", len(forecast), forecastMonths)
	}

	// April: current balance, untouched.
	if forecast[0].Month != 4 || forecast[0].Year != 2024 {
		t.Errorf("month 0 = %d-%02d, want 2024-04", forecast[0].Year, forecast[0].Month)
	}
	if forecast[0].Balance.Cents != 150000 {
		t.Errorf("month 0 balance = %d, want 150000", forecast[0].Balance.Cents)
	}

	// May: budgeted 100000 wins over recurring 80000.
	if forecast[1].Month != 5 {
		t.Errorf("month 1 = %d, want May", forecast[1].Month)
	}
	if forecast[1].Expenses.Cents != 100000 {
		t.Errorf("month 1 expenses = %d, want budgeted 100000", forecast[1].Expenses.Cents)
	}
	if forecast[1].Balance.Cents != 350000 {
		t.Errorf("month 1 balance = %d, want 350000", forecast[1].Balance.Cents)
	}

	// June: no budget, recurring expenses apply.
	if forecast[2].Expenses.Cents != 80000 {
		t.Errorf("month 2 expenses = %d, want recurring 80000", forecast[2].Expenses.Cents)
	}
	if forecast[2].Balance.Cents != 570000 {
		t.Errorf("month 2 balance = %d, want 570000", forecast[2].Balance.Cents)
	}
	if forecast[3].Balance.Cents != 790000 {
		t.Errorf("month 3 balance = %d, want 790000", forecast[3].Balance.Cents)
	}

	for _, m := range forecast {
		if m.Income.Cents != 300000 {
			t.Errorf("month %d income = %d, want 300000", m.Month, m.Income.Cents)
		}
	}
}

func TestCashflowMonthLabelsAtYearEnd(t *testing.T) {
	store := memory.New()
	svc := NewForecastService(store, NewCatchUpEngine(store, nil))
	now := time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)

	forecast, err := svc.Cashflow(context.Background(), "u1", now)
	if err != nil {
		t.Fatalf("Cashflow() error = %v", err)
	}
	want := []struct{ year, month int }{
		{2024, 11}, {2024, 12}, {2025, 1}, {2025, 2},
	}
	for i, w := range want {
		if forecast[i].Year != w.year || forecast[i].Month != w.month {
			t.Errorf("month %d = %d-%02d, want %d-%02d", i, forecast[i].Year, forecast[i].Month, w.year, w.month)
		}
	}
}

func TestCashflowExcludesSystemMovements(t *testing.T) {
	store := memory.New()
	svc := NewForecastService(store, NewCatchUpEngine(store, nil))
	now := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)

	seedTx(t, store, core.Transaction{CategoryID: "c1", Amount: core.Money{Cents: 100000}, Date: core.NewDate(2024, 4, 1), Type: core.Income})
	// Savings allocation must not shrink the projected balance.
	seedTx(t, store, core.Transaction{Amount: core.Money{Cents: 40000}, Date: core.NewDate(2024, 4, 2), Type: core.Expense})

	forecast, err := svc.Cashflow(context.Background(), "u1", now)
	if err != nil {
		t.Fatalf("Cashflow() error = %v", err)
	}
	if forecast[0].Balance.Cents != 100000 {
		t.Errorf("starting balance = %d, want 100000", forecast[0].Balance.Cents)
	}
}
