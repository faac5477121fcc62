package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
	"github.com/takayashoshi888/nihaokaoqing/internal/storage"
)

// SyncPublisher notifies the sync worker that an expense changed.
// *amqp.Client satisfies it; a nil publisher disables notifications and the
// worker's startup scan covers the gap.
type SyncPublisher interface {
	PublishExpenseSync(ctx context.Context, id string, version int64) error
}

// ExpenseService orchestrates expense writes across SQLite and the sync
// queue. SQLite is the source of truth; queue publishes are best-effort and
// never fail the caller's request.
type ExpenseService struct {
	storage   *storage.SQLiteRepository
	publisher SyncPublisher
}

func NewExpenseService(storage *storage.SQLiteRepository, publisher SyncPublisher) *ExpenseService {
	return &ExpenseService{
		storage:   storage,
		publisher: publisher,
	}
}

// Add parses the raw amount, assigns an ID and prepends the entry to the
// ledger. The raw amount accepts decimal input and rounds half-up to whole
// yen.
func (s *ExpenseService) Add(ctx context.Context, date string, category core.Category, rawAmount, note string) (core.ExpenseEntry, error) {
	amount, err := core.ParseAmount(rawAmount)
	if err != nil {
		return core.ExpenseEntry{}, err
	}

	entry, err := core.NewExpenseEntry(date, category, amount, note)
	if err != nil {
		return core.ExpenseEntry{}, err
	}

	if err := s.storage.InsertExpense(ctx, entry); err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("save expense: %w", err)
	}

	s.publishSync(ctx, entry.ID, 1)
	return entry, nil
}

// Edit replaces the stored entry matching entry.ID wholesale. An unknown ID
// is a logged no-op, never an implicit insert.
func (s *ExpenseService) Edit(ctx context.Context, entry core.ExpenseEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	version, found, err := s.storage.UpdateExpense(ctx, entry)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if !found {
		slog.InfoContext(ctx, "Edit ignored, unknown expense", "expense_id", entry.ID)
		return nil
	}

	s.publishSync(ctx, entry.ID, version)
	return nil
}

// Delete removes the entry matching the ID. Unknown IDs are no-ops.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	removed, err := s.storage.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if !removed {
		slog.InfoContext(ctx, "Delete ignored, unknown expense", "expense_id", id)
		return nil
	}

	// The worker resolves a message for a missing row into a sheet-row
	// removal.
	s.publishSync(ctx, id, 0)
	return nil
}

// Entries returns the full ledger, newest insertion first.
func (s *ExpenseService) Entries(ctx context.Context) ([]core.ExpenseEntry, error) {
	return s.storage.LoadExpenses(ctx)
}

// Get returns a single entry, or nil when absent.
func (s *ExpenseService) Get(ctx context.Context, id string) (*core.ExpenseEntry, error) {
	return s.storage.GetExpense(ctx, id)
}

func (s *ExpenseService) publishSync(ctx context.Context, id string, version int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseSync(ctx, id, version); err != nil {
		// Local write already succeeded; the startup scan will catch up.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"expense_id", id,
			"version", version,
			"error", err)
	}
}
