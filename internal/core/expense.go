package core

import (
	"sort"
	"time"
)

// CategoryTotal is one slice of the monthly composition. Percent is the
// share of the grand total; From/To are the cumulative percentage
// boundaries of the category's arc in the fixed category order.
type CategoryTotal struct {
	Category Category
	Amount   int64
	Percent  float64
	From     float64
	To       float64
}

// ExpenseStats is the derived monthly view of the expense list. The three
// categories are always present in ByCategory, zero or not, in the fixed
// order returned by Categories.
type ExpenseStats struct {
	Year       int
	Month      time.Month
	ByCategory []CategoryTotal
	Total      int64
	Ledger     []ExpenseEntry
}

// SummarizeExpenses derives per-category totals, the grand total,
// percentage shares and sweep boundaries for the given year+month, plus
// the full ledger sorted by date descending (stable, so entries sharing a
// date keep their relative order).
//
// Aggregation does not assume entry amounts are positive: entry-time
// validation enforces that, but sums here take the stored values as-is.
func SummarizeExpenses(entries []ExpenseEntry, year int, month time.Month) ExpenseStats {
	stats := ExpenseStats{Year: year, Month: month}

	sums := map[Category]int64{}
	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.Local).Format("2006-01")
	for _, e := range entries {
		if len(e.Date) >= len(prefix) && e.Date[:len(prefix)] == prefix {
			sums[e.Category] += e.Amount
			stats.Total += e.Amount
		}
	}

	cursor := 0.0
	for _, c := range Categories() {
		ct := CategoryTotal{Category: c, Amount: sums[c]}
		if stats.Total > 0 {
			ct.Percent = float64(ct.Amount) / float64(stats.Total) * 100
		}
		ct.From = cursor
		cursor += ct.Percent
		ct.To = cursor
		stats.ByCategory = append(stats.ByCategory, ct)
	}

	stats.Ledger = SortedLedger(entries)
	return stats
}

// SortedLedger returns the expense list sorted by date descending. The
// sort is stable so insertion order is preserved for equal dates.
func SortedLedger(entries []ExpenseEntry) []ExpenseEntry {
	out := make([]ExpenseEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// MonthLedger filters the sorted ledger down to one year+month. The
// export document and the expense page show this slice.
func MonthLedger(entries []ExpenseEntry, year int, month time.Month) []ExpenseEntry {
	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.Local).Format("2006-01")
	out := make([]ExpenseEntry, 0)
	for _, e := range SortedLedger(entries) {
		if len(e.Date) >= len(prefix) && e.Date[:len(prefix)] == prefix {
			out = append(out, e)
		}
	}
	return out
}
