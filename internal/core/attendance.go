package core

import (
	"math"
	"sort"
	"time"
)

// HeatmapCell is a month grid cell annotated for rendering: whether the
// day carries a check-in and whether it is the reference day.
type HeatmapCell struct {
	GridCell
	CheckedIn bool
	Today     bool
}

// AttendanceStats is everything the stats and calendar views derive from
// the record map. Re-computed fresh on every call; no cached state.
type AttendanceStats struct {
	MonthlyCheckIns int
	AttendanceRate  int // percent of elapsed weekdays attended, 0..100
	Recent          []AttendanceRecord
	Heatmap         []HeatmapCell
}

// SummarizeAttendance derives the monthly check-in count, the workday
// attendance rate, the recent-activity list and the heatmap feed from the
// record map, relative to now. The reference time is an explicit parameter
// so date-dependent results are deterministic under test.
func SummarizeAttendance(records map[string]AttendanceRecord, now time.Time) AttendanceStats {
	year, month, today := now.Year(), now.Month(), now.Day()

	stats := AttendanceStats{}

	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.Local).Format("2006-01")
	for key := range records {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			stats.MonthlyCheckIns++
		}
	}

	// Rate counts only weekdays elapsed so far this month. Zero elapsed
	// weekdays (the 1st falling on a weekend) must yield 0, not NaN.
	elapsed, attended := 0, 0
	for d := 1; d <= today; d++ {
		day := time.Date(year, month, d, 0, 0, 0, 0, time.Local)
		if !IsWeekday(day) {
			continue
		}
		elapsed++
		if _, ok := records[DateKey(day)]; ok {
			attended++
		}
	}
	if elapsed > 0 {
		stats.AttendanceRate = int(math.Round(float64(attended) / float64(elapsed) * 100))
	}

	stats.Recent = RecentRecords(records, 5)

	grid := MonthGrid(year, month)
	stats.Heatmap = make([]HeatmapCell, len(grid))
	for i, cell := range grid {
		_, checked := records[cell.Date]
		stats.Heatmap[i] = HeatmapCell{
			GridCell:  cell,
			CheckedIn: !cell.Blank() && checked,
			Today:     !cell.Blank() && IsToday(cell.Date, now),
		}
	}

	return stats
}

// RecentRecords returns the records sorted by date descending, truncated
// to limit. Lexicographic order on YYYY-MM-DD keys is chronological.
func RecentRecords(records map[string]AttendanceRecord, limit int) []AttendanceRecord {
	out := make([]AttendanceRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MonthRecords returns the records falling in the given year+month, date
// descending. The calendar page lists these under the grid.
func MonthRecords(records map[string]AttendanceRecord, year int, month time.Month) []AttendanceRecord {
	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.Local).Format("2006-01")
	out := make([]AttendanceRecord, 0)
	for key, r := range records {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
