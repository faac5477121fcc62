package sheets

import (
	"context"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseWriter mirrors an expense entry to the reimbursement sheet.
	// Upsert keys on the entry ID, so re-delivered or re-edited entries
	// overwrite their existing row instead of duplicating it.
	ExpenseWriter interface {
		Upsert(ctx context.Context, e core.ExpenseEntry) (rowRef string, err error)
	}

	// ExpenseRemover clears the sheet row for a deleted entry.
	ExpenseRemover interface {
		Remove(ctx context.Context, id string) error
	}
)
