package worker

import (
	"context"
	"testing"

	"kassza/internal/amqp"
	"kassza/internal/core"
	sheetsmem "kassza/internal/sheets/memory"
	"kassza/internal/storage/memory"
)

func TestHandleSyncMessageAppendsRow(t *testing.T) {
	store := memory.New()
	writer := sheetsmem.NewWriter()
	w := NewSyncWorker(store, writer)

	catID, err := store.CreateCategory(context.Background(), core.Category{UserID: "u1", Name: "Étel", Type: core.Expense})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	txID, err := store.CreateTransaction(context.Background(), core.Transaction{
		UserID:      "u1",
		CategoryID:  catID,
		Amount:      core.Money{Cents: 15000},
		Description: "Bevásárlás",
		Date:        core.NewDate(2024, 4, 2),
		Type:        core.Expense,
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(txID)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	rows := writer.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Transaction.ID != txID {
		t.Errorf("row transaction id = %s, want %s", rows[0].Transaction.ID, txID)
	}
	if rows[0].CategoryName != "Étel" {
		t.Errorf("row category name = %q, want Étel", rows[0].CategoryName)
	}
}

func TestHandleSyncMessageMissingTransaction(t *testing.T) {
	w := NewSyncWorker(memory.New(), sheetsmem.NewWriter())

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage("missing")); err == nil {
		t.Fatal("HandleSyncMessage() should fail for an unknown id")
	}
}

func TestHandleSyncMessageSystemMovementHasNoCategory(t *testing.T) {
	store := memory.New()
	writer := sheetsmem.NewWriter()
	w := NewSyncWorker(store, writer)

	txID, err := store.CreateTransaction(context.Background(), core.Transaction{
		UserID:      "u1",
		Amount:      core.Money{Cents: 5000},
		Description: "Megtakarítás",
		Date:        core.NewDate(2024, 4, 2),
		Type:        core.Expense,
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(txID)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}
	if rows := writer.Rows(); rows[0].CategoryName != "" {
		t.Errorf("system movement category name = %q, want empty", rows[0].CategoryName)
	}
}
