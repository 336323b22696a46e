// Package services holds the business logic: the recurrence catch-up
// engine, the dashboard aggregator, the cashflow forecast and the advisor.
// Stores are injected through the interfaces below; implementations live in
// internal/storage (SQLite) and internal/storage/memory (tests, demo mode).
package services

import (
	"context"

	"kassza/internal/core"
)

type (
	// RuleStore is the recurring-rule side of the store as seen by the
	// catch-up engine.
	RuleStore interface {
		// ListActiveRules returns the caller's active recurring rules.
		ListActiveRules(ctx context.Context, userID string) ([]core.RecurringRule, error)

		// MaterializeOccurrence persists one occurrence as an atomic unit:
		// it advances the rule cursor from tx.Date to next with a
		// compare-and-swap and inserts the materialized transaction in the
		// same store transaction. ok is false when the stored cursor no
		// longer matches tx.Date, i.e. a concurrent catch-up already
		// materialized this occurrence; nothing is written in that case.
		MaterializeOccurrence(ctx context.Context, rule core.RecurringRule, tx core.Transaction, next core.Date) (id string, ok bool, err error)

		// DeactivateRule marks the rule inactive and persists the cursor
		// it had reached when it ran past its end date.
		DeactivateRule(ctx context.Context, ruleID string, cursor core.Date) error

		// InitializeCursor persists the cursor for a rule whose
		// next_occurrence is still null and which produced no occurrence.
		InitializeCursor(ctx context.Context, ruleID string, cursor core.Date) error
	}

	// RuleAdminStore is the CRUD surface for recurring rules.
	RuleAdminStore interface {
		ListRules(ctx context.Context, userID string) ([]core.RecurringRule, error)
		CreateRule(ctx context.Context, rule core.RecurringRule) (string, error)
		SetRuleActive(ctx context.Context, userID, ruleID string, active bool) error
		DeleteRule(ctx context.Context, userID, ruleID string) error
	}

	// TransactionStore writes and reads ledger entries. CreateTransaction
	// applies the wallet balance deltas of the entry atomically with the
	// insert; DeleteTransaction reverses them.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) (string, error)
		DeleteTransaction(ctx context.Context, userID, id string) error
		// ListTransactions returns all of the user's transactions, newest
		// date first.
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	}

	WalletStore interface {
		ListWallets(ctx context.Context, userID string) ([]core.Wallet, error)
		CreateWallet(ctx context.Context, w core.Wallet) (string, error)
		UpdateWallet(ctx context.Context, w core.Wallet) error
		// DeleteWallet fails when transactions still reference the wallet.
		DeleteWallet(ctx context.Context, userID, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (string, error)
		DeleteCategory(ctx context.Context, userID, id string) error
	}

	BudgetStore interface {
		// ListBudgets returns the user's budgets for one calendar month.
		ListBudgets(ctx context.Context, userID string, month, year int) ([]core.Budget, error)
		// UpsertBudget inserts or replaces the budget keyed by
		// (user, category, month, year).
		UpsertBudget(ctx context.Context, b core.Budget) error
	}

	SavingsStore interface {
		ListGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error)
		CreateGoal(ctx context.Context, g core.SavingsGoal) (string, error)
		// AddToGoal adjusts the goal's current amount by delta cents.
		AddToGoal(ctx context.Context, userID, goalID string, delta core.Money) error
		DeleteGoal(ctx context.Context, userID, id string) error
	}

	// Store is the full surface a backend must provide.
	Store interface {
		RuleStore
		RuleAdminStore
		TransactionStore
		WalletStore
		CategoryStore
		BudgetStore
		SavingsStore
	}

	// EventPublisher pushes created-transaction events to the sync queue.
	// A nil publisher is valid and means sync is disabled.
	EventPublisher interface {
		PublishTransactionSync(ctx context.Context, id string) error
	}
)
