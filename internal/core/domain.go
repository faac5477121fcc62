package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Transportation Category = "transportation"
	Toll           Category = "toll"
	Parking        Category = "parking"
)

type (
	// Category is one of the three fixed expense types.
	Category string

	// Identity is the single site/name pair recorded at first login.
	// It is overwritten wholesale on edit and survives logout.
	Identity struct {
		Name     string
		SiteName string
	}

	// AttendanceRecord is one check-in. Date is the canonical YYYY-MM-DD
	// key, Time the wall-clock HH:MM:SS of the check-in action.
	AttendanceRecord struct {
		Date string
		Time string
	}

	// ExpenseEntry is a single reimbursable expense. Amount is whole yen.
	ExpenseEntry struct {
		ID       string
		Date     string
		Category Category
		Amount   int64
		Note     string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptySiteName   = errors.New("empty site name")
)

// Categories lists the closed category set in display order. The same
// order fixes the pie chart sweep.
func Categories() []Category {
	return []Category{Transportation, Toll, Parking}
}

// Label returns the display name used across the UI, prompt and export.
func (c Category) Label() string {
	switch c {
	case Transportation:
		return "交通费"
	case Toll:
		return "高速费"
	case Parking:
		return "停车费"
	default:
		return string(c)
	}
}

func (c Category) Validate() error {
	switch c {
	case Transportation, Toll, Parking:
		return nil
	default:
		return ErrInvalidCategory
	}
}

func (id Identity) Validate() error {
	if strings.TrimSpace(id.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(id.SiteName) == "" {
		return ErrEmptySiteName
	}
	return nil
}

// NewAttendanceRecord builds the record for a check-in happening at now
// on the given calendar day.
func NewAttendanceRecord(day time.Time, now time.Time) AttendanceRecord {
	return AttendanceRecord{
		Date: DateKey(day),
		Time: ClockTime(now),
	}
}

func (r AttendanceRecord) Validate() error {
	if _, err := ParseKey(r.Date); err != nil {
		return ErrInvalidDate
	}
	if _, err := time.Parse("15:04:05", r.Time); err != nil {
		return errors.New("invalid clock time")
	}
	return nil
}

// NewExpenseEntry assigns a fresh ID and validates the fields. Amount must
// already be coerced to whole yen (see ParseAmount).
func NewExpenseEntry(date string, category Category, amount int64, note string) (ExpenseEntry, error) {
	e := ExpenseEntry{
		ID:       uuid.NewString(),
		Date:     date,
		Category: category,
		Amount:   amount,
		Note:     strings.TrimSpace(note),
	}
	if err := e.Validate(); err != nil {
		return ExpenseEntry{}, err
	}
	return e, nil
}

func (e ExpenseEntry) Validate() error {
	if _, err := ParseKey(e.Date); err != nil {
		return ErrInvalidDate
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(e.Note) > 200 {
		return errors.New("note too long (max 200 characters)")
	}
	return nil
}
