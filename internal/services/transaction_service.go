package services

import (
	"context"
	"fmt"
	"log/slog"

	"kassza/internal/core"
)

// TransactionService orchestrates ledger writes across the store and the
// sync queue. Wallet balance effects are applied by the store atomically
// with each insert or delete.
type TransactionService struct {
	store  Store
	engine *CatchUpEngine
	events EventPublisher
}

func NewTransactionService(store Store, engine *CatchUpEngine, events EventPublisher) *TransactionService {
	return &TransactionService{
		store:  store,
		engine: engine,
		events: events,
	}
}

// Create saves a user-entered transaction and publishes a sync message.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	id, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", id,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.String())

	s.publishSync(ctx, id)
	return id, nil
}

// Delete removes a transaction; the store reverses its balance effect.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// List returns the user's transactions, newest first. Like every read path
// that needs current data, it catches up recurring rules first; a catch-up
// failure degrades to the stored data instead of failing the read.
func (s *TransactionService) List(ctx context.Context, userID string, today core.Date) ([]core.Transaction, error) {
	if _, err := s.engine.CatchUp(ctx, userID, today); err != nil {
		slog.ErrorContext(ctx, "Catch-up before transaction list failed", "user_id", userID, "error", err)
	}
	return s.store.ListTransactions(ctx, userID)
}

// Transfer moves money between two wallets of the same user. The row is a
// system movement (no category) so it never shows up in category reports.
func (s *TransactionService) Transfer(ctx context.Context, userID, fromWallet, toWallet string, amount core.Money, date core.Date) (string, error) {
	tx := core.Transaction{
		UserID:      userID,
		WalletID:    fromWallet,
		ToWalletID:  toWallet,
		Amount:      amount,
		Description: "Átvezetés",
		Date:        date,
		Type:        core.Expense,
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}
	id, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save transfer: %w", err)
	}
	slog.InfoContext(ctx, "Wallet transfer created",
		"id", id,
		"from_wallet", fromWallet,
		"to_wallet", toWallet,
		"amount_cents", amount.Cents)
	s.publishSync(ctx, id)
	return id, nil
}

// AllocateToSavings moves money from a wallet into a savings goal: one
// system-movement expense against the wallet plus the goal's current
// amount increase.
func (s *TransactionService) AllocateToSavings(ctx context.Context, userID, walletID, goalID string, amount core.Money, date core.Date) (string, error) {
	if err := amount.Validate(); err != nil {
		return "", err
	}

	tx := core.Transaction{
		UserID:      userID,
		WalletID:    walletID,
		Amount:      amount,
		Description: "Megtakarítás",
		Date:        date,
		Type:        core.Expense,
	}
	id, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save savings allocation: %w", err)
	}

	if err := s.store.AddToGoal(ctx, userID, goalID, amount); err != nil {
		// Undo the ledger entry so the wallet and the goal stay consistent.
		if delErr := s.store.DeleteTransaction(ctx, userID, id); delErr != nil {
			slog.ErrorContext(ctx, "Failed to roll back savings allocation",
				"transaction_id", id, "error", delErr)
		}
		return "", fmt.Errorf("credit savings goal: %w", err)
	}

	slog.InfoContext(ctx, "Savings allocation created",
		"id", id,
		"goal_id", goalID,
		"amount_cents", amount.Cents)
	s.publishSync(ctx, id)
	return id, nil
}

func (s *TransactionService) publishSync(ctx context.Context, id string) {
	if s.events == nil {
		return
	}
	// Best effort: the transaction is already durable locally.
	if err := s.events.PublishTransactionSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "transaction_id", id, "error", err)
	}
}
