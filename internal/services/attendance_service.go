package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
	"github.com/takayashoshi888/nihaokaoqing/internal/storage"
)

// ErrAlreadyCheckedIn is returned when a check-in already exists for the day.
var ErrAlreadyCheckedIn = errors.New("already checked in for this date")

// AttendanceService enforces the one-record-per-day rule on top of the
// repository. All dates are canonical YYYY-MM-DD keys in local time.
type AttendanceService struct {
	storage *storage.SQLiteRepository
}

func NewAttendanceService(storage *storage.SQLiteRepository) *AttendanceService {
	return &AttendanceService{storage: storage}
}

// CheckIn records attendance for the given day, stamping the current wall
// clock time. A day that already has a record is rejected, never overwritten.
func (s *AttendanceService) CheckIn(ctx context.Context, day time.Time, now time.Time) (core.AttendanceRecord, error) {
	rec := core.NewAttendanceRecord(day, now)

	records, err := s.storage.LoadRecords(ctx)
	if err != nil {
		return core.AttendanceRecord{}, fmt.Errorf("load records: %w", err)
	}
	if _, exists := records[rec.Date]; exists {
		return core.AttendanceRecord{}, ErrAlreadyCheckedIn
	}

	if err := s.storage.InsertRecord(ctx, rec); err != nil {
		return core.AttendanceRecord{}, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

// Cancel removes the check-in for a date. Cancelling a date without a
// record is a no-op.
func (s *AttendanceService) Cancel(ctx context.Context, date string) error {
	removed, err := s.storage.DeleteRecord(ctx, date)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if !removed {
		slog.InfoContext(ctx, "Cancel ignored, no check-in for date", "date", date)
	}
	return nil
}

// ClearAll wipes the whole attendance history.
func (s *AttendanceService) ClearAll(ctx context.Context) error {
	return s.storage.ClearRecords(ctx)
}

// Records returns the full date-keyed record map.
func (s *AttendanceService) Records(ctx context.Context) (map[string]core.AttendanceRecord, error) {
	return s.storage.LoadRecords(ctx)
}
