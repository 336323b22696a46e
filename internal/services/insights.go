package services

import (
	"fmt"
	"sort"
	"time"

	"kassza/internal/core"
)

const maxInsights = 4

// GenerateInsights derives advisor hints from the user's recent activity:
// budget limit alerts, a rising-spending trend, savings goals close to
// completion and an emergency-fund tip. Pure function, no I/O.
func GenerateInsights(
	txs []core.Transaction,
	budgets []core.Budget,
	goals []core.SavingsGoal,
	expensesByCategory map[string]int64,
	categoryNames map[string]string,
	now time.Time,
) []core.Insight {
	var insights []core.Insight

	today := core.DateOf(now)
	currentStart := core.NewDate(today.Year(), today.Month(), 1)
	previousStart := core.Date{Time: currentStart.AddDate(0, -1, 0)}

	for _, budget := range budgets {
		spent := expensesByCategory[budget.CategoryID]
		if budget.Amount.Cents == 0 {
			continue
		}
		percent := float64(spent) / float64(budget.Amount.Cents) * 100
		name := categoryNames[budget.CategoryID]

		switch {
		case percent >= 100:
			insights = append(insights, core.Insight{
				ID:          "budget-over-" + budget.ID,
				Title:       "Költségkeret túllépés: " + name,
				Description: fmt.Sprintf("Már %.0f%%-kal többet költöttél erre, mint amit terveztél. Érdemes visszafogni a kiadásokat ebben a hónapban.", percent-100),
				Type:        core.InsightWarning,
				Priority:    core.PriorityHigh,
				CategoryID:  budget.CategoryID,
			})
		case percent >= 85:
			remaining := core.Money{Cents: budget.Amount.Cents - spent}
			insights = append(insights, core.Insight{
				ID:          "budget-near-" + budget.ID,
				Title:       "Közeledsz a keretedhez: " + name,
				Description: fmt.Sprintf("A havi keret %.0f%%-át már felhasználtad. Még %.0f Ft maradt.", percent, remaining.Units()),
				Type:        core.InsightInfo,
				Priority:    core.PriorityMedium,
				CategoryID:  budget.CategoryID,
			})
		}
	}

	var lastMonth, currentMonth, balance int64
	for _, tx := range txs {
		if tx.IsSystemMovement() {
			continue
		}
		if tx.Type == core.Income {
			balance += tx.Amount.Cents
		} else {
			balance -= tx.Amount.Cents
		}
		if tx.Type != core.Expense {
			continue
		}
		switch {
		case !tx.Date.Before(currentStart):
			currentMonth += tx.Amount.Cents
		case !tx.Date.Before(previousStart):
			lastMonth += tx.Amount.Cents
		}
	}

	if currentMonth > lastMonth && lastMonth > 0 {
		insights = append(insights, core.Insight{
			ID:          "trend-spending-up",
			Title:       "Növekvő kiadások",
			Description: "Az eddigi költéseid már most meghaladják a múlt havi teljes összeget. Nézzük át, hol lehetne faragni belőle!",
			Type:        core.InsightTrend,
			Priority:    core.PriorityMedium,
		})
	}

	for _, goal := range goals {
		if goal.TargetAmount.Cents == 0 {
			continue
		}
		percent := float64(goal.CurrentAmount.Cents) / float64(goal.TargetAmount.Cents) * 100
		if percent >= 90 && percent < 100 {
			missing := goal.TargetAmount.Sub(goal.CurrentAmount)
			insights = append(insights, core.Insight{
				ID:          "savings-near-" + goal.ID,
				Title:       "Majdnem megvagy: " + goal.Name + "!",
				Description: fmt.Sprintf("Már csak %.0f Ft hiányzik a célod eléréséhez. Szuper a tempód!", missing.Units()),
				Type:        core.InsightSuccess,
				Priority:    core.PriorityHigh,
			})
		}
	}

	if balance > 0 && balance < currentMonth*2 {
		insights = append(insights, core.Insight{
			ID:          "tip-emergency-fund",
			Title:       "Pénzügyi biztonsági háló",
			Description: "A jelenlegi egyenleged kevesebb, mint 2 havi kiadásod. Javasolt egy 3-6 havi tartalékalap felépítése váratlan helyzetekre.",
			Type:        core.InsightInfo,
			Priority:    core.PriorityMedium,
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return priorityScore(insights[i].Priority) > priorityScore(insights[j].Priority)
	})
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

func priorityScore(p core.InsightPriority) int {
	switch p {
	case core.PriorityHigh:
		return 3
	case core.PriorityMedium:
		return 2
	default:
		return 1
	}
}
