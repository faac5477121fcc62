package core

import (
	"testing"
	"time"
)

func TestDateKeyRoundTrip(t *testing.T) {
	keys := []string{"2024-01-01", "2024-02-29", "2024-12-31", "1999-06-15"}
	for _, k := range keys {
		parsed, err := ParseKey(k)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", k, err)
		}
		if got := DateKey(parsed); got != k {
			t.Fatalf("round trip %q -> %q", k, got)
		}
	}
}

func TestDateKeySameLocalDay(t *testing.T) {
	// Two instants on the same local day must share a key regardless of
	// time of day.
	early := time.Date(2024, 3, 5, 0, 0, 1, 0, time.Local)
	late := time.Date(2024, 3, 5, 23, 59, 59, 0, time.Local)
	if DateKey(early) != DateKey(late) {
		t.Fatalf("keys differ: %q vs %q", DateKey(early), DateKey(late))
	}
}

func TestParseKeyKeepsWeekday(t *testing.T) {
	// 2024-03-05 is a Tuesday; a UTC parse displayed locally can shift it.
	d, err := ParseKey("2024-03-05")
	if err != nil {
		t.Fatal(err)
	}
	if d.Weekday() != time.Tuesday {
		t.Fatalf("weekday = %v, want Tuesday", d.Weekday())
	}
	if got := WeekdayLabel("2024-03-05"); got != "火" {
		t.Fatalf("WeekdayLabel = %q, want 火", got)
	}
}

func TestParseKeyInvalid(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "not-a-date", "2024/03/05"} {
		if _, err := ParseKey(s); err == nil {
			t.Fatalf("ParseKey(%q) expected error", s)
		}
	}
}

func TestMonthGrid(t *testing.T) {
	cases := []struct {
		year   int
		month  time.Month
		blanks int
		days   int
	}{
		{2024, time.February, 4, 29}, // leap year, Feb 1 is a Thursday
		{2024, time.March, 5, 31},    // Mar 1 is a Friday
		{2024, time.September, 0, 30},
		{2023, time.February, 3, 28},
	}
	for _, tc := range cases {
		grid := MonthGrid(tc.year, tc.month)
		if len(grid) != tc.blanks+tc.days {
			t.Fatalf("%d-%d: len = %d, want %d", tc.year, tc.month, len(grid), tc.blanks+tc.days)
		}
		for i := 0; i < tc.blanks; i++ {
			if !grid[i].Blank() {
				t.Fatalf("%d-%d: cell %d should be blank", tc.year, tc.month, i)
			}
		}
		first := time.Date(tc.year, tc.month, 1, 0, 0, 0, 0, time.Local)
		if tc.blanks != int(first.Weekday()) {
			t.Fatalf("%d-%d: blank count %d != weekday %d", tc.year, tc.month, tc.blanks, first.Weekday())
		}
		for d := 1; d <= tc.days; d++ {
			cell := grid[tc.blanks+d-1]
			if cell.Day != d {
				t.Fatalf("%d-%d: cell day = %d, want %d", tc.year, tc.month, cell.Day, d)
			}
			if _, err := ParseKey(cell.Date); err != nil {
				t.Fatalf("%d-%d: bad cell key %q", tc.year, tc.month, cell.Date)
			}
		}
	}
}

func TestMonthGridDeterministic(t *testing.T) {
	a := MonthGrid(2024, time.February)
	b := MonthGrid(2024, time.February)
	if len(a) != len(b) {
		t.Fatal("grid length not deterministic")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cell %d differs between calls", i)
		}
	}
}

func TestIsToday(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)
	if !IsToday("2024-03-05", now) {
		t.Fatal("expected today")
	}
	if IsToday("2024-03-06", now) {
		t.Fatal("expected not today")
	}
}

func TestIsWeekday(t *testing.T) {
	// 2024-03-04 Mon .. 2024-03-10 Sun
	want := []bool{true, true, true, true, true, false, false}
	for i, w := range want {
		day := time.Date(2024, 3, 4+i, 0, 0, 0, 0, time.Local)
		if IsWeekday(day) != w {
			t.Fatalf("IsWeekday(%s) = %v, want %v", day.Format("2006-01-02"), !w, w)
		}
	}
}
