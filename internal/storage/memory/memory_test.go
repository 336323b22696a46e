package memory

import (
	"context"
	"errors"
	"testing"

	"kassza/internal/core"
)

func seedWallet(t *testing.T, s *Store, userID string, balance int64) string {
	t.Helper()
	id, err := s.CreateWallet(context.Background(), core.Wallet{
		UserID:  userID,
		Name:    "Bankszámla",
		Type:    core.WalletBank,
		Balance: core.Money{Cents: balance},
	})
	if err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
	return id
}

func walletBalance(t *testing.T, s *Store, userID, id string) int64 {
	t.Helper()
	wallets, err := s.ListWallets(context.Background(), userID)
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

func TestCreateTransactionRejectsForeignWallet(t *testing.T) {
	s := New()
	victim := seedWallet(t, s, "u1", 10_000)

	_, err := s.CreateTransaction(context.Background(), core.Transaction{
		UserID:      "u2",
		CategoryID:  "c1",
		WalletID:    victim,
		Amount:      core.Money{Cents: 9_999},
		Description: "x",
		Date:        core.NewDate(2024, 5, 1),
		Type:        core.Expense,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CreateTransaction error = %v, want ErrNotFound", err)
	}

	if got := walletBalance(t, s, "u1", victim); got != 10_000 {
		t.Errorf("victim balance = %d, want 10000 untouched", got)
	}
	txs, _ := s.ListTransactions(context.Background(), "u2")
	if len(txs) != 0 {
		t.Errorf("rejected insert stored %d transactions, want 0", len(txs))
	}
}

func TestCreateTransactionRejectsUnknownWallet(t *testing.T) {
	s := New()

	_, err := s.CreateTransaction(context.Background(), core.Transaction{
		UserID:      "u1",
		CategoryID:  "c1",
		WalletID:    "no-such-wallet",
		Amount:      core.Money{Cents: 500},
		Description: "x",
		Date:        core.NewDate(2024, 5, 1),
		Type:        core.Expense,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CreateTransaction error = %v, want ErrNotFound", err)
	}
	txs, _ := s.ListTransactions(context.Background(), "u1")
	if len(txs) != 0 {
		t.Errorf("rejected insert stored %d transactions, want 0", len(txs))
	}
}

func TestTransferRowRejectsForeignDestination(t *testing.T) {
	s := New()
	own := seedWallet(t, s, "u1", 50_000)
	foreign := seedWallet(t, s, "u2", 0)

	_, err := s.CreateTransaction(context.Background(), core.Transaction{
		UserID:      "u1",
		WalletID:    own,
		ToWalletID:  foreign,
		Amount:      core.Money{Cents: 20_000},
		Description: "transfer",
		Date:        core.NewDate(2024, 5, 2),
		Type:        core.Expense,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CreateTransaction error = %v, want ErrNotFound", err)
	}

	if got := walletBalance(t, s, "u1", own); got != 50_000 {
		t.Errorf("source balance = %d, want 50000 untouched", got)
	}
	if got := walletBalance(t, s, "u2", foreign); got != 0 {
		t.Errorf("foreign balance = %d, want 0 untouched", got)
	}
}
