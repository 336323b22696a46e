// Package worker holds the background processes: the queue-driven sheet
// sync and the periodic recurring-rule catch-up.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kassza/internal/amqp"
	"kassza/internal/core"
	"kassza/internal/sheets"
)

// TransactionSource resolves queued transaction ids to full rows.
type TransactionSource interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListCategories(ctx context.Context, userID string) ([]core.Category, error)
}

// SyncWorker mirrors created transactions into the spreadsheet export.
type SyncWorker struct {
	source TransactionSource
	sheets sheets.TransactionWriter
}

func NewSyncWorker(source TransactionSource, sheets sheets.TransactionWriter) *SyncWorker {
	return &SyncWorker{
		source: source,
		sheets: sheets,
	}
}

// HandleSyncMessage processes one queued sync message. The message carries
// only the id; the row itself is loaded from storage so the export always
// reflects the durable state.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	tx, err := w.source.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	categoryName := ""
	if tx.CategoryID != "" {
		categories, err := w.source.ListCategories(ctx, tx.UserID)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		for _, c := range categories {
			if c.ID == tx.CategoryID {
				categoryName = c.Name
				break
			}
		}
	}

	ref, err := w.sheets.Append(ctx, tx, categoryName)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Transaction synced to sheet",
		"id", tx.ID,
		"sheets_ref", ref,
		"amount_cents", tx.Amount.Cents)

	return nil
}
