package core

// CategoryAmount is an amount aggregated under one category.
type CategoryAmount struct {
	CategoryID string
	Name       string
	Amount     Money
}

// DashboardStats is the aggregate a dashboard read returns. All monthly
// figures use calendar-month boundaries.
type DashboardStats struct {
	TotalBalance    Money
	MonthlyIncome   Money
	MonthlyExpenses Money
	// Growth percentages vs the previous month; 0 when the prior-period
	// baseline is 0, never NaN or Inf.
	IncomeGrowth  float64
	ExpenseGrowth float64

	RecentTransactions []Transaction
	ExpensesByCategory []CategoryAmount
	Wallets            []Wallet
	Budgets            []Budget
	SavingsGoals       []SavingsGoal
	Insights           []Insight
}

type InsightType string

const (
	InsightInfo    InsightType = "info"
	InsightWarning InsightType = "warning"
	InsightSuccess InsightType = "success"
	InsightTrend   InsightType = "trend"
)

type InsightPriority string

const (
	PriorityLow    InsightPriority = "low"
	PriorityMedium InsightPriority = "medium"
	PriorityHigh   InsightPriority = "high"
)

// Insight is one advisor hint derived from the user's recent activity.
type Insight struct {
	ID          string
	Title       string
	Description string
	Type        InsightType
	Priority    InsightPriority
	CategoryID  string
}

// ForecastMonth is one projected month of the cashflow forecast.
type ForecastMonth struct {
	Year     int
	Month    int // 1-12
	Income   Money
	Expenses Money
	Balance  Money
}
