// Package sheets defines the ports for the external ledger export.
package sheets

import (
	"context"

	"kassza/internal/core"
)

type (
	// TransactionWriter appends one ledger entry to the export target.
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction, categoryName string) (rowRef string, err error)
	}
)
