package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states for the reimbursement sheet pipeline.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// SQLiteRepository persists the three data slots: the identity row, the
// date-keyed attendance record map and the expense list. Reads return full
// snapshots; absent slots come back as their defined defaults (nil
// identity, empty map, empty list).
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadIdentity returns the stored identity, or nil when none has been
// saved yet.
func (r *SQLiteRepository) LoadIdentity(ctx context.Context) (*core.Identity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT name, site_name FROM identity WHERE id = 1`)
	var id core.Identity
	if err := row.Scan(&id.Name, &id.SiteName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}
	return &id, nil
}

// SaveIdentity writes the identity wholesale, creating or replacing the
// single row.
func (r *SQLiteRepository) SaveIdentity(ctx context.Context, id core.Identity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identity (id, name, site_name, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			site_name = excluded.site_name,
			updated_at = CURRENT_TIMESTAMP`,
		id.Name, id.SiteName)
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}

	slog.InfoContext(ctx, "Identity saved", "name", id.Name, "site_name", id.SiteName)
	return nil
}

// LoadRecords returns the full attendance record map keyed by date.
func (r *SQLiteRepository) LoadRecords(ctx context.Context) (map[string]core.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, time FROM attendance_records`)
	if err != nil {
		return nil, fmt.Errorf("load attendance records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]core.AttendanceRecord)
	for rows.Next() {
		var rec core.AttendanceRecord
		if err := rows.Scan(&rec.Date, &rec.Time); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records[rec.Date] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return records, nil
}

// InsertRecord stores a check-in. The date is the primary key, so a second
// insert for the same day fails instead of duplicating.
func (r *SQLiteRepository) InsertRecord(ctx context.Context, rec core.AttendanceRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attendance_records (date, time) VALUES (?, ?)`,
		rec.Date, rec.Time)
	if err != nil {
		return fmt.Errorf("insert attendance record: %w", err)
	}

	slog.InfoContext(ctx, "Check-in saved", "date", rec.Date, "time", rec.Time)
	return nil
}

// DeleteRecord removes the record for a date. Returns false when no record
// existed; callers treat that as a no-op.
func (r *SQLiteRepository) DeleteRecord(ctx context.Context, date string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE date = ?`, date)
	if err != nil {
		return false, fmt.Errorf("delete attendance record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ClearRecords empties the record map.
func (r *SQLiteRepository) ClearRecords(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records`); err != nil {
		return fmt.Errorf("clear attendance records: %w", err)
	}
	slog.InfoContext(ctx, "All attendance records cleared")
	return nil
}

// LoadExpenses returns the full expense list, newest insertion first,
// which preserves the prepend semantics of the entry form.
func (r *SQLiteRepository) LoadExpenses(ctx context.Context) ([]core.ExpenseEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, category, amount, note
		FROM expenses
		ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	defer rows.Close()

	entries := make([]core.ExpenseEntry, 0)
	for rows.Next() {
		var e core.ExpenseEntry
		var category string
		if err := rows.Scan(&e.ID, &e.Date, &category, &e.Amount, &e.Note); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Category = core.Category(category)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return entries, nil
}

// GetExpense retrieves a single expense by ID, or nil when absent.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (*core.ExpenseEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, category, amount, note
		FROM expenses WHERE id = ?`, id)
	var e core.ExpenseEntry
	var category string
	if err := row.Scan(&e.ID, &e.Date, &category, &e.Amount, &e.Note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	e.Category = core.Category(category)
	return &e, nil
}

// InsertExpense stores a new expense entry in pending sync state.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.ExpenseEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, date, category, amount, note)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Date, string(e.Category), e.Amount, e.Note)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"date", e.Date,
		"category", string(e.Category),
		"amount_yen", e.Amount)
	return nil
}

// UpdateExpense replaces the entry with the same ID in place, bumping its
// version and re-marking it for sync. Returns the new version, or false
// when the ID is unknown; callers treat that as a no-op.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.ExpenseEntry) (int64, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE expenses
		SET date = ?, category = ?, amount = ?, note = ?,
			version = version + 1, sync_status = ?
		WHERE id = ?
		RETURNING version`,
		e.Date, string(e.Category), e.Amount, e.Note, SyncPending, e.ID)

	var version int64
	if err := row.Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("update expense: %w", err)
	}
	return version, true, nil
}

// DeleteExpense removes the entry matching the ID. Returns false when no
// entry existed.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// PendingSyncExpense is the minimal row the sync worker needs to build a
// queue message or perform a startup scan.
type PendingSyncExpense struct {
	ID        string
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncExpenses returns expenses not yet mirrored to the
// reimbursement sheet, oldest first.
func (r *SQLiteRepository) GetPendingSyncExpenses(ctx context.Context, limit int) ([]PendingSyncExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, created_at
		FROM expenses
		WHERE sync_status = ?
		ORDER BY created_at ASC
		LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync expenses: %w", err)
	}
	defer rows.Close()

	pending := make([]PendingSyncExpense, 0)
	for rows.Next() {
		var p PendingSyncExpense
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending expense: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending expenses: %w", err)
	}
	return pending, nil
}

// MarkSynced marks an expense as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET sync_status = ? WHERE id = ?`, SyncDone, id); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	slog.InfoContext(ctx, "Expense marked as synced", "expense_id", id)
	return nil
}

// MarkSyncError marks an expense as having failed to sync.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET sync_status = ? WHERE id = ?`, SyncError, id); err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with sync error", "expense_id", id)
	return nil
}
