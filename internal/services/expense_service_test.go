package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
	"github.com/takayashoshi888/nihaokaoqing/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	published []string
	versions  []int64
	err       error
}

func (f *fakePublisher) PublishExpenseSync(ctx context.Context, id string, version int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	f.versions = append(f.versions, version)
	return nil
}

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestExpenseAdd(t *testing.T) {
	repo := newTestStorage(t)
	pub := &fakePublisher{}
	svc := NewExpenseService(repo, pub)
	ctx := context.Background()

	entry, err := svc.Add(ctx, "2024-03-05", core.Transportation, "500.5", "train")
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, int64(501), entry.Amount, "decimal input rounds half-up to whole yen")

	entries, err := svc.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])

	require.Len(t, pub.published, 1)
	assert.Equal(t, entry.ID, pub.published[0])
	assert.Equal(t, int64(1), pub.versions[0])
}

func TestExpenseAddRejectsBadInput(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewExpenseService(repo, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "2024-03-05", core.Transportation, "0", "")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = svc.Add(ctx, "2024-03-05", core.Transportation, "abc", "")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = svc.Add(ctx, "2024-03-05", core.Category("meals"), "100", "")
	assert.ErrorIs(t, err, core.ErrInvalidCategory)

	_, err = svc.Add(ctx, "not-a-date", core.Toll, "100", "")
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	entries, err := svc.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected inputs must not reach storage")
}

func TestExpenseAddPublishFailureDoesNotFailRequest(t *testing.T) {
	repo := newTestStorage(t)
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewExpenseService(repo, pub)
	ctx := context.Background()

	entry, err := svc.Add(ctx, "2024-03-05", core.Parking, "200", "")
	require.NoError(t, err)

	stored, err := svc.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestExpenseEdit(t *testing.T) {
	repo := newTestStorage(t)
	pub := &fakePublisher{}
	svc := NewExpenseService(repo, pub)
	ctx := context.Background()

	entry, err := svc.Add(ctx, "2024-03-05", core.Toll, "300", "highway")
	require.NoError(t, err)

	entry.Amount = 350
	entry.Note = "highway, return trip"
	require.NoError(t, svc.Edit(ctx, entry))

	got, err := svc.Get(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(350), got.Amount)
	assert.Equal(t, "highway, return trip", got.Note)

	// Edit publishes the bumped version.
	require.Len(t, pub.versions, 2)
	assert.Equal(t, int64(2), pub.versions[1])
}

func TestExpenseEditUnknownIDIsNoOp(t *testing.T) {
	repo := newTestStorage(t)
	pub := &fakePublisher{}
	svc := NewExpenseService(repo, pub)
	ctx := context.Background()

	err := svc.Edit(ctx, core.ExpenseEntry{
		ID:       "ghost",
		Date:     "2024-03-05",
		Category: core.Parking,
		Amount:   100,
	})
	require.NoError(t, err, "editing an unknown id is a no-op, not an error")

	entries, err := svc.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "a missed edit never becomes an insert")
	assert.Empty(t, pub.published)
}

func TestExpenseDelete(t *testing.T) {
	repo := newTestStorage(t)
	pub := &fakePublisher{}
	svc := NewExpenseService(repo, pub)
	ctx := context.Background()

	entry, err := svc.Add(ctx, "2024-03-05", core.Transportation, "500", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, entry.ID))
	require.NoError(t, svc.Delete(ctx, entry.ID), "second delete is a no-op")

	entries, err := svc.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Add then delete: one publish each, the miss publishes nothing.
	require.Len(t, pub.published, 2)
	assert.Equal(t, int64(0), pub.versions[1], "deletion notice carries version 0")
}

func TestAttendanceCheckIn(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewAttendanceService(repo)
	ctx := context.Background()

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	now := time.Date(2024, 3, 5, 8, 15, 30, 0, time.Local)

	rec, err := svc.CheckIn(ctx, day, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", rec.Date)
	assert.Equal(t, "08:15:30", rec.Time)

	// Same day again: rejected, original record untouched.
	_, err = svc.CheckIn(ctx, day, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	records, err := svc.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "08:15:30", records["2024-03-05"].Time)
}

func TestAttendanceCancel(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewAttendanceService(repo)
	ctx := context.Background()

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	_, err := svc.CheckIn(ctx, day, day)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, "2024-03-05"))
	require.NoError(t, svc.Cancel(ctx, "2024-03-05"), "cancel without a record is a no-op")

	records, err := svc.Records(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAttendanceClearAll(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewAttendanceService(repo)
	ctx := context.Background()

	for d := 1; d <= 3; d++ {
		day := time.Date(2024, 3, d, 8, 0, 0, 0, time.Local)
		_, err := svc.CheckIn(ctx, day, day)
		require.NoError(t, err)
	}
	require.NoError(t, svc.ClearAll(ctx))

	records, err := svc.Records(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
