// Package worker mirrors locally stored expenses to the reimbursement
// sheet. It consumes queue notifications and runs a periodic scan over the
// pending rows so entries survive lost messages and broker outages.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/takayashoshi888/nihaokaoqing/internal/amqp"
	"github.com/takayashoshi888/nihaokaoqing/internal/core"
	"github.com/takayashoshi888/nihaokaoqing/internal/metrics"
	"github.com/takayashoshi888/nihaokaoqing/internal/sheets"
	"github.com/takayashoshi888/nihaokaoqing/internal/storage"
)

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	sheet     sheets.ExpenseWriter
	remover   sheets.ExpenseRemover
	collector *metrics.Collector
	batchSize int
	interval  time.Duration
}

func NewSyncWorker(
	storage *storage.SQLiteRepository,
	sheet sheets.ExpenseWriter,
	remover sheets.ExpenseRemover,
	collector *metrics.Collector,
	batchSize int,
	interval time.Duration,
) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		sheet:     sheet,
		remover:   remover,
		collector: collector,
		batchSize: batchSize,
		interval:  interval,
	}
}

// Run drives the worker until the context is cancelled: one goroutine
// consumes queue messages, another scans for pending rows on a ticker. The
// first scan runs immediately so a restart drains the backlog without
// waiting a full interval.
func (w *SyncWorker) Run(ctx context.Context, client *amqp.Client) error {
	g, ctx := errgroup.WithContext(ctx)

	if client != nil {
		g.Go(func() error {
			return client.ConsumeWithReconnect(ctx, func(msg *amqp.ExpenseSyncMessage) error {
				return w.HandleSyncMessage(ctx, msg)
			})
		})
	}

	g.Go(func() error {
		if err := w.ProcessPendingExpenses(ctx); err != nil {
			slog.ErrorContext(ctx, "Startup pending scan failed", "error", err)
		}

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPendingExpenses(ctx); err != nil {
					slog.ErrorContext(ctx, "Pending scan failed", "error", err)
				}
			}
		}
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// HandleSyncMessage mirrors a single expense to the sheet. An entry deleted
// since the message was queued gets its sheet row cleared instead.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	slog.DebugContext(ctx, "Handling sync message", "expense_id", msg.ID, "version", msg.Version)

	entry, err := w.storage.GetExpense(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	if entry == nil {
		slog.InfoContext(ctx, "Expense gone before sync, clearing sheet row", "expense_id", msg.ID)
		if w.remover != nil {
			if err := w.remover.Remove(ctx, msg.ID); err != nil {
				return fmt.Errorf("remove sheet row: %w", err)
			}
		}
		return nil
	}

	return w.syncEntry(ctx, *entry)
}

// ProcessPendingExpenses is the catch-up path for entries whose queue
// message never arrived.
func (w *SyncWorker) ProcessPendingExpenses(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	for _, p := range pending {
		entry, err := w.storage.GetExpense(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("get pending expense %s: %w", p.ID, err)
		}
		if entry == nil {
			continue
		}
		if err := w.syncEntry(ctx, *entry); err != nil {
			// Row is marked with an error state; keep draining the rest.
			slog.ErrorContext(ctx, "Failed to sync pending expense",
				"expense_id", p.ID,
				"error", err)
		}
	}
	return nil
}

func (w *SyncWorker) syncEntry(ctx context.Context, entry core.ExpenseEntry) error {
	ref, err := w.sheet.Upsert(ctx, entry)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, entry.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "expense_id", entry.ID, "error", markErr)
		}
		if w.collector != nil {
			w.collector.RecordSyncFailure()
		}
		return fmt.Errorf("upsert sheet row: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, entry.ID); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	if w.collector != nil {
		w.collector.RecordSyncSuccess()
	}

	slog.InfoContext(ctx, "Expense synced",
		"expense_id", entry.ID,
		"sheets_ref", ref)
	return nil
}
