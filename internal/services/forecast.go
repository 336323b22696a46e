package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kassza/internal/core"
)

// forecastMonths covers the rest of the current month plus three more.
const forecastMonths = 4

// ForecastService projects the cashflow of the coming months from active
// recurring rules and monthly budgets.
type ForecastService struct {
	store  Store
	engine *CatchUpEngine
}

func NewForecastService(store Store, engine *CatchUpEngine) *ForecastService {
	return &ForecastService{store: store, engine: engine}
}

// Cashflow returns the projection. The first month carries the current
// balance unchanged; each following month adds the recurring income and
// subtracts the larger of the budgeted and the recurring expense total.
func (s *ForecastService) Cashflow(ctx context.Context, userID string, now time.Time) ([]core.ForecastMonth, error) {
	today := core.DateOf(now)
	if _, err := s.engine.CatchUp(ctx, userID, today); err != nil {
		slog.ErrorContext(ctx, "Catch-up before forecast failed", "user_id", userID, "error", err)
	}

	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	var balance core.Money
	for _, tx := range txs {
		if tx.IsSystemMovement() {
			continue
		}
		if tx.Type == core.Income {
			balance = balance.Add(tx.Amount)
		} else {
			balance = balance.Sub(tx.Amount)
		}
	}

	rules, err := s.store.ListActiveRules(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}
	var recurringIncome, recurringExpenses core.Money
	for _, r := range rules {
		switch r.Type {
		case core.Income:
			recurringIncome = recurringIncome.Add(r.Amount)
		case core.Expense:
			recurringExpenses = recurringExpenses.Add(r.Amount)
		}
	}

	forecast := make([]core.ForecastMonth, 0, forecastMonths)
	for i := 0; i < forecastMonths; i++ {
		target := core.AddMonths(today, i)
		month := target.Month()
		year := target.Year()

		budgets, err := s.store.ListBudgets(ctx, userID, month, year)
		if err != nil {
			return nil, fmt.Errorf("list budgets for %d-%02d: %w", year, month, err)
		}
		var budgeted core.Money
		for _, b := range budgets {
			budgeted = budgeted.Add(b.Amount)
		}

		expenses := budgeted
		if recurringExpenses.Cents > expenses.Cents {
			expenses = recurringExpenses
		}

		if i > 0 {
			balance = balance.Add(recurringIncome).Sub(expenses)
		}

		forecast = append(forecast, core.ForecastMonth{
			Year:     year,
			Month:    month,
			Income:   recurringIncome,
			Expenses: expenses,
			Balance:  balance,
		})
	}

	return forecast, nil
}
