package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"kassza/internal/core"
)

// DashboardService computes the aggregates behind the dashboard screen.
// It is a downstream consumer of the catch-up engine: every GetStats call
// triggers catch-up first, which is the system's only materialization
// trigger besides the optional background worker.
type DashboardService struct {
	store  Store
	engine *CatchUpEngine
}

func NewDashboardService(store Store, engine *CatchUpEngine) *DashboardService {
	return &DashboardService{store: store, engine: engine}
}

const recentTransactionCount = 5

// GetStats returns the dashboard aggregate for the user. Month boundaries
// are calendar months. A catch-up failure degrades the figures to the data
// already stored instead of failing the page.
func (s *DashboardService) GetStats(ctx context.Context, userID string, now time.Time) (core.DashboardStats, error) {
	today := core.DateOf(now)
	if _, err := s.engine.CatchUp(ctx, userID, today); err != nil {
		slog.ErrorContext(ctx, "Catch-up before dashboard failed", "user_id", userID, "error", err)
	}

	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return core.DashboardStats{}, fmt.Errorf("list transactions: %w", err)
	}

	currentStart := core.NewDate(today.Year(), today.Month(), 1)
	previousStart := core.Date{Time: currentStart.AddDate(0, -1, 0)}

	var stats core.DashboardStats
	var lastIncome, lastExpenses core.Money
	expensesByCategory := make(map[string]int64)

	for _, tx := range txs {
		// Transfers and savings allocations are internal movements: they
		// shift money between the user's own pots, so the income/expense
		// figures and the balance skip them.
		if tx.IsSystemMovement() {
			continue
		}

		switch tx.Type {
		case core.Income:
			stats.TotalBalance = stats.TotalBalance.Add(tx.Amount)
		case core.Expense:
			stats.TotalBalance = stats.TotalBalance.Sub(tx.Amount)
		}

		inCurrent := !tx.Date.Before(currentStart)
		inPrevious := !tx.Date.Before(previousStart) && tx.Date.Before(currentStart)

		switch {
		case inCurrent && tx.Type == core.Income:
			stats.MonthlyIncome = stats.MonthlyIncome.Add(tx.Amount)
		case inCurrent && tx.Type == core.Expense:
			stats.MonthlyExpenses = stats.MonthlyExpenses.Add(tx.Amount)
			expensesByCategory[tx.CategoryID] += tx.Amount.Cents
		case inPrevious && tx.Type == core.Income:
			lastIncome = lastIncome.Add(tx.Amount)
		case inPrevious && tx.Type == core.Expense:
			lastExpenses = lastExpenses.Add(tx.Amount)
		}
	}

	stats.IncomeGrowth = growthPercent(stats.MonthlyIncome, lastIncome)
	stats.ExpenseGrowth = growthPercent(stats.MonthlyExpenses, lastExpenses)

	if len(txs) > recentTransactionCount {
		stats.RecentTransactions = txs[:recentTransactionCount]
	} else {
		stats.RecentTransactions = txs
	}

	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "List categories failed", "user_id", userID, "error", err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	for id, cents := range expensesByCategory {
		stats.ExpensesByCategory = append(stats.ExpensesByCategory, core.CategoryAmount{
			CategoryID: id,
			Name:       names[id],
			Amount:     core.Money{Cents: cents},
		})
	}
	sortCategoryAmounts(stats.ExpensesByCategory)

	// The surrounding sections fall back to empty on error, the page still
	// renders with best-effort data.
	if stats.Wallets, err = s.store.ListWallets(ctx, userID); err != nil {
		slog.ErrorContext(ctx, "List wallets failed", "user_id", userID, "error", err)
	}
	if stats.Budgets, err = s.store.ListBudgets(ctx, userID, today.Month(), today.Year()); err != nil {
		slog.ErrorContext(ctx, "List budgets failed", "user_id", userID, "error", err)
	}
	if stats.SavingsGoals, err = s.store.ListGoals(ctx, userID); err != nil {
		slog.ErrorContext(ctx, "List savings goals failed", "user_id", userID, "error", err)
	}

	stats.Insights = GenerateInsights(txs, stats.Budgets, stats.SavingsGoals, expensesByCategory, names, now)

	return stats, nil
}

// growthPercent returns the month-over-month change in percent. A zero
// baseline is reported as 0% growth, never a division by zero.
func growthPercent(current, baseline core.Money) float64 {
	if baseline.Cents == 0 {
		return 0
	}
	return float64(current.Cents-baseline.Cents) / float64(baseline.Cents) * 100
}

func sortCategoryAmounts(amounts []core.CategoryAmount) {
	sort.Slice(amounts, func(i, j int) bool {
		return amounts[i].Amount.Cents > amounts[j].Amount.Cents
	})
}
