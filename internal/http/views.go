package http

import "kassza/internal/core"

// JSON views of the domain types. Amounts travel as integer cents, dates as
// YYYY-MM-DD strings.

type transactionView struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category_id,omitempty"`
	WalletID    string `json:"wallet_id,omitempty"`
	ToWalletID  string `json:"to_wallet_id,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Type        string `json:"type"`
}

func toTransactionView(tx core.Transaction) transactionView {
	return transactionView{
		ID:          tx.ID,
		CategoryID:  tx.CategoryID,
		WalletID:    tx.WalletID,
		ToWalletID:  tx.ToWalletID,
		AmountCents: tx.Amount.Cents,
		Description: tx.Description,
		Date:        tx.Date.String(),
		Type:        string(tx.Type),
	}
}

func toTransactionViews(txs []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionView(tx))
	}
	return out
}

type walletView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	BalanceCents int64  `json:"balance_cents"`
	Currency     string `json:"currency"`
	Color        string `json:"color,omitempty"`
}

func toWalletView(w core.Wallet) walletView {
	return walletView{
		ID:           w.ID,
		Name:         w.Name,
		Type:         string(w.Type),
		BalanceCents: w.Balance.Cents,
		Currency:     w.Currency,
		Color:        w.Color,
	}
}

type categoryView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func toCategoryView(c core.Category) categoryView {
	return categoryView{
		ID:    c.ID,
		Name:  c.Name,
		Type:  string(c.Type),
		Icon:  c.Icon,
		Color: c.Color,
	}
}

type budgetView struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category_id"`
	AmountCents int64  `json:"amount_cents"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
}

func toBudgetView(b core.Budget) budgetView {
	return budgetView{
		ID:          b.ID,
		CategoryID:  b.CategoryID,
		AmountCents: b.Amount.Cents,
		Month:       b.Month,
		Year:        b.Year,
	}
}

type savingsGoalView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TargetCents  int64  `json:"target_cents"`
	CurrentCents int64  `json:"current_cents"`
	Deadline     string `json:"deadline,omitempty"`
	Status       string `json:"status"`
	Color        string `json:"color,omitempty"`
}

func toSavingsGoalView(g core.SavingsGoal) savingsGoalView {
	v := savingsGoalView{
		ID:           g.ID,
		Name:         g.Name,
		TargetCents:  g.TargetAmount.Cents,
		CurrentCents: g.CurrentAmount.Cents,
		Status:       string(g.Status),
		Color:        g.Color,
	}
	if !g.Deadline.IsZero() {
		v.Deadline = g.Deadline.String()
	}
	return v
}

type recurringRuleView struct {
	ID             string `json:"id"`
	CategoryID     string `json:"category_id,omitempty"`
	AmountCents    int64  `json:"amount_cents"`
	Description    string `json:"description"`
	Type           string `json:"type"`
	Frequency      string `json:"frequency"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date,omitempty"`
	NextOccurrence string `json:"next_occurrence,omitempty"`
	IsActive       bool   `json:"is_active"`
}

func toRecurringRuleView(r core.RecurringRule) recurringRuleView {
	v := recurringRuleView{
		ID:          r.ID,
		CategoryID:  r.CategoryID,
		AmountCents: r.Amount.Cents,
		Description: r.Description,
		Type:        string(r.Type),
		Frequency:   string(r.Frequency),
		StartDate:   r.StartDate.String(),
		IsActive:    r.IsActive,
	}
	if !r.EndDate.IsZero() {
		v.EndDate = r.EndDate.String()
	}
	if !r.NextOccurrence.IsZero() {
		v.NextOccurrence = r.NextOccurrence.String()
	}
	return v
}

type insightView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	CategoryID  string `json:"category_id,omitempty"`
}

type categoryAmountView struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

type dashboardView struct {
	TotalBalanceCents    int64                `json:"total_balance_cents"`
	MonthlyIncomeCents   int64                `json:"monthly_income_cents"`
	MonthlyExpensesCents int64                `json:"monthly_expenses_cents"`
	IncomeGrowth         float64              `json:"income_growth"`
	ExpenseGrowth        float64              `json:"expense_growth"`
	RecentTransactions   []transactionView    `json:"recent_transactions"`
	ExpensesByCategory   []categoryAmountView `json:"expenses_by_category"`
	Wallets              []walletView         `json:"wallets"`
	Budgets              []budgetView         `json:"budgets"`
	SavingsGoals         []savingsGoalView    `json:"savings_goals"`
	Insights             []insightView        `json:"insights"`
}

func toDashboardView(stats core.DashboardStats) dashboardView {
	view := dashboardView{
		TotalBalanceCents:    stats.TotalBalance.Cents,
		MonthlyIncomeCents:   stats.MonthlyIncome.Cents,
		MonthlyExpensesCents: stats.MonthlyExpenses.Cents,
		IncomeGrowth:         stats.IncomeGrowth,
		ExpenseGrowth:        stats.ExpenseGrowth,
		RecentTransactions:   toTransactionViews(stats.RecentTransactions),
		ExpensesByCategory:   make([]categoryAmountView, 0, len(stats.ExpensesByCategory)),
		Wallets:              make([]walletView, 0, len(stats.Wallets)),
		Budgets:              make([]budgetView, 0, len(stats.Budgets)),
		SavingsGoals:         make([]savingsGoalView, 0, len(stats.SavingsGoals)),
		Insights:             make([]insightView, 0, len(stats.Insights)),
	}
	for _, c := range stats.ExpensesByCategory {
		view.ExpensesByCategory = append(view.ExpensesByCategory, categoryAmountView{
			CategoryID:  c.CategoryID,
			Name:        c.Name,
			AmountCents: c.Amount.Cents,
		})
	}
	for _, w := range stats.Wallets {
		view.Wallets = append(view.Wallets, toWalletView(w))
	}
	for _, b := range stats.Budgets {
		view.Budgets = append(view.Budgets, toBudgetView(b))
	}
	for _, g := range stats.SavingsGoals {
		view.SavingsGoals = append(view.SavingsGoals, toSavingsGoalView(g))
	}
	for _, i := range stats.Insights {
		view.Insights = append(view.Insights, insightView{
			ID:          i.ID,
			Title:       i.Title,
			Description: i.Description,
			Type:        string(i.Type),
			Priority:    string(i.Priority),
			CategoryID:  i.CategoryID,
		})
	}
	return view
}

type forecastMonthView struct {
	Year          int   `json:"year"`
	Month         int   `json:"month"`
	IncomeCents   int64 `json:"income_cents"`
	ExpensesCents int64 `json:"expenses_cents"`
	BalanceCents  int64 `json:"balance_cents"`
}

func toForecastViews(months []core.ForecastMonth) []forecastMonthView {
	out := make([]forecastMonthView, 0, len(months))
	for _, m := range months {
		out = append(out, forecastMonthView{
			Year:          m.Year,
			Month:         m.Month,
			IncomeCents:   m.Income.Cents,
			ExpensesCents: m.Expenses.Cents,
			BalanceCents:  m.Balance.Cents,
		})
	}
	return out
}
