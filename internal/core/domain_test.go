package core

import (
	"testing"
	"time"
)

func TestIdentityValidate(t *testing.T) {
	cases := []struct {
		id Identity
		ok bool
	}{
		{Identity{Name: "Tanaka", SiteName: "Shinjuku Tower"}, true},
		{Identity{Name: "", SiteName: "Site"}, false},
		{Identity{Name: "  ", SiteName: "Site"}, false},
		{Identity{Name: "Tanaka", SiteName: ""}, false},
		{Identity{Name: "Tanaka", SiteName: " \t"}, false},
	}
	for i, tc := range cases {
		err := tc.id.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	for _, c := range Categories() {
		if err := c.Validate(); err != nil {
			t.Fatalf("%s: %v", c, err)
		}
	}
	if err := Category("fuel").Validate(); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestNewAttendanceRecord(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	now := time.Date(2024, 3, 5, 8, 1, 2, 0, time.Local)
	r := NewAttendanceRecord(day, now)
	if r.Date != "2024-03-05" || r.Time != "08:01:02" {
		t.Fatalf("record = %+v", r)
	}
	if err := r.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestNewExpenseEntry(t *testing.T) {
	e, err := NewExpenseEntry("2024-03-05", Toll, 300, " highway ")
	if err != nil {
		t.Fatal(err)
	}
	if e.ID == "" {
		t.Fatal("missing id")
	}
	if e.Note != "highway" {
		t.Fatalf("note = %q", e.Note)
	}

	bads := []ExpenseEntry{
		{ID: "x", Date: "bad", Category: Toll, Amount: 1},
		{ID: "x", Date: "2024-03-05", Category: "fuel", Amount: 1},
		{ID: "x", Date: "2024-03-05", Category: Toll, Amount: 0},
		{ID: "x", Date: "2024-03-05", Category: Toll, Amount: -5},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
