package core

import (
	"math"
	"testing"
	"time"
)

func entry(id, date string, c Category, amount int64) ExpenseEntry {
	return ExpenseEntry{ID: id, Date: date, Category: c, Amount: amount}
}

func TestSummarizeExpensesScenario(t *testing.T) {
	entries := []ExpenseEntry{
		entry("1", "2024-03-01", Transportation, 500),
		entry("2", "2024-03-02", Toll, 300),
	}
	stats := SummarizeExpenses(entries, 2024, time.March)

	if stats.Total != 800 {
		t.Fatalf("total = %d, want 800", stats.Total)
	}
	wantAmounts := map[Category]int64{Transportation: 500, Toll: 300, Parking: 0}
	wantPercent := map[Category]float64{Transportation: 62.5, Toll: 37.5, Parking: 0}
	if len(stats.ByCategory) != 3 {
		t.Fatalf("categories = %d, want 3 (always present)", len(stats.ByCategory))
	}
	for _, ct := range stats.ByCategory {
		if ct.Amount != wantAmounts[ct.Category] {
			t.Fatalf("%s amount = %d, want %d", ct.Category, ct.Amount, wantAmounts[ct.Category])
		}
		if math.Abs(ct.Percent-wantPercent[ct.Category]) > 1e-9 {
			t.Fatalf("%s percent = %v, want %v", ct.Category, ct.Percent, wantPercent[ct.Category])
		}
	}
}

func TestCategoryTotalsSumToGrandTotal(t *testing.T) {
	entries := []ExpenseEntry{
		entry("1", "2024-03-01", Transportation, 333),
		entry("2", "2024-03-02", Toll, 334),
		entry("3", "2024-03-03", Parking, 333),
		entry("4", "2024-03-04", Parking, 1),
		entry("5", "2024-04-01", Toll, 9999), // next month, excluded
	}
	stats := SummarizeExpenses(entries, 2024, time.March)
	var sum int64
	for _, ct := range stats.ByCategory {
		sum += ct.Amount
	}
	if sum != stats.Total {
		t.Fatalf("category sum %d != total %d", sum, stats.Total)
	}
	if stats.Total != 1001 {
		t.Fatalf("total = %d, want 1001", stats.Total)
	}
}

func TestSharesSumToHundredOrZero(t *testing.T) {
	entries := []ExpenseEntry{
		entry("1", "2024-03-01", Transportation, 1),
		entry("2", "2024-03-02", Toll, 1),
		entry("3", "2024-03-03", Parking, 1),
	}
	stats := SummarizeExpenses(entries, 2024, time.March)
	var pct float64
	for _, ct := range stats.ByCategory {
		pct += ct.Percent
	}
	if math.Abs(pct-100) > 1e-9 {
		t.Fatalf("shares sum = %v, want 100", pct)
	}

	empty := SummarizeExpenses(nil, 2024, time.March)
	if empty.Total != 0 {
		t.Fatalf("empty total = %d", empty.Total)
	}
	for _, ct := range empty.ByCategory {
		if ct.Percent != 0 || ct.Amount != 0 {
			t.Fatalf("%s not zero on empty input", ct.Category)
		}
	}
}

func TestSweepBoundaries(t *testing.T) {
	entries := []ExpenseEntry{
		entry("1", "2024-03-01", Transportation, 500),
		entry("2", "2024-03-02", Toll, 300),
		entry("3", "2024-03-03", Parking, 200),
	}
	stats := SummarizeExpenses(entries, 2024, time.March)

	// Contiguous arcs in fixed order, covering the full circle.
	if stats.ByCategory[0].From != 0 {
		t.Fatalf("first arc starts at %v", stats.ByCategory[0].From)
	}
	for i := 1; i < len(stats.ByCategory); i++ {
		if stats.ByCategory[i].From != stats.ByCategory[i-1].To {
			t.Fatalf("arc %d not contiguous: %v != %v", i, stats.ByCategory[i].From, stats.ByCategory[i-1].To)
		}
	}
	last := stats.ByCategory[len(stats.ByCategory)-1]
	if math.Abs(last.To-100) > 1e-9 {
		t.Fatalf("sweep ends at %v, want 100", last.To)
	}
}

func TestSortedLedgerStable(t *testing.T) {
	entries := []ExpenseEntry{
		entry("a", "2024-03-02", Toll, 1),
		entry("b", "2024-03-05", Parking, 1),
		entry("c", "2024-03-02", Transportation, 1),
		entry("d", "2024-03-02", Parking, 1),
	}
	ledger := SortedLedger(entries)
	want := []string{"b", "a", "c", "d"}
	for i, id := range want {
		if ledger[i].ID != id {
			t.Fatalf("ledger[%d] = %s, want %s", i, ledger[i].ID, id)
		}
	}
	// Input untouched.
	if entries[0].ID != "a" {
		t.Fatal("input slice mutated")
	}
}

func TestMonthLedger(t *testing.T) {
	entries := []ExpenseEntry{
		entry("1", "2024-03-01", Transportation, 500),
		entry("2", "2024-04-01", Toll, 300),
	}
	got := MonthLedger(entries, 2024, time.March)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("month ledger wrong: %+v", got)
	}
}

func TestAggregationToleratesInvalidAmounts(t *testing.T) {
	// Entry validation forbids these, but the aggregator must not assume.
	entries := []ExpenseEntry{
		entry("1", "2024-03-01", Transportation, -100),
		entry("2", "2024-03-02", Toll, 0),
	}
	stats := SummarizeExpenses(entries, 2024, time.March)
	if stats.Total != -100 {
		t.Fatalf("total = %d, want -100 (summed as-is)", stats.Total)
	}
}
