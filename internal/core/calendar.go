// Package core holds the domain model and the pure aggregation layer.
//
// This file contains the calendar derivation helpers: canonical date keys,
// the month grid used by the calendar and heatmap views, and weekday
// classification. All functions work in the local calendar; a key is never
// interpreted as a UTC instant because that shifts the day near midnight.
package core

import "time"

const dateKeyLayout = "2006-01-02"

// GridCell is one slot of a calendar month grid. Leading cells before the
// first of the month are blank (Day == 0, empty Date).
type GridCell struct {
	Day  int
	Date string
}

// Blank reports whether the cell is a leading placeholder.
func (c GridCell) Blank() bool {
	return c.Day == 0
}

// DateKey maps a time to its canonical YYYY-MM-DD key in the local
// calendar. Two instants on the same local day always produce the same key.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// ParseKey parses a canonical key back to a local midnight. The local
// location keeps the weekday stable when the key is re-displayed.
func ParseKey(s string) (time.Time, error) {
	return time.ParseInLocation(dateKeyLayout, s, time.Local)
}

// ClockTime formats a time-of-day as HH:MM:SS.
func ClockTime(t time.Time) string {
	return t.Format("15:04:05")
}

// IsToday compares the canonical keys of key and now.
func IsToday(key string, now time.Time) bool {
	return key == DateKey(now)
}

// MonthGrid returns the flat calendar grid for a month: one blank cell per
// weekday offset of day 1 (0 = Sunday), then one cell per day in order.
// The result is freshly computed on every call.
func MonthGrid(year int, month time.Month) []GridCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	lead := int(first.Weekday())
	days := daysIn(year, month)

	grid := make([]GridCell, 0, lead+days)
	for i := 0; i < lead; i++ {
		grid = append(grid, GridCell{})
	}
	for d := 1; d <= days; d++ {
		grid = append(grid, GridCell{
			Day:  d,
			Date: DateKey(time.Date(year, month, d, 0, 0, 0, 0, time.Local)),
		})
	}
	return grid
}

// IsWeekday reports Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Sunday && wd != time.Saturday
}

// Short weekday characters indexed by time.Weekday (Sunday first), as the
// record log displays them.
var weekdayChars = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// WeekdayLabel returns the short weekday character for a canonical key,
// parsing it as a local date. Unparseable keys yield the empty string.
func WeekdayLabel(key string) string {
	t, err := ParseKey(key)
	if err != nil {
		return ""
	}
	return weekdayChars[t.Weekday()]
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}
