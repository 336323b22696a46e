// Package memory is an in-process TransactionWriter used by tests and by
// deployments that run without a spreadsheet export.
package memory

import (
	"context"
	"fmt"
	"sync"

	"kassza/internal/core"
)

type Row struct {
	Transaction  core.Transaction
	CategoryName string
}

type Writer struct {
	mu   sync.Mutex
	rows []Row
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Append(_ context.Context, tx core.Transaction, categoryName string) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, Row{Transaction: tx, CategoryName: categoryName})
	return fmt.Sprintf("row-%d", len(w.rows)), nil
}

// Rows returns a snapshot of everything appended so far.
func (w *Writer) Rows() []Row {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Row, len(w.rows))
	copy(out, w.rows)
	return out
}
