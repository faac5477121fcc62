package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
)

func TestBuildOrdersLikeTheViews(t *testing.T) {
	records := map[string]core.AttendanceRecord{
		"2024-03-01": {Date: "2024-03-01", Time: "08:00:00"},
		"2024-03-05": {Date: "2024-03-05", Time: "08:15:00"},
		"2024-02-28": {Date: "2024-02-28", Time: "09:00:00"},
	}
	entries := []core.ExpenseEntry{
		{ID: "a", Date: "2024-03-02", Category: core.Transportation, Amount: 500},
		{ID: "b", Date: "2024-03-04", Category: core.Toll, Amount: 300, Note: "高速"},
		{ID: "old", Date: "2024-02-10", Category: core.Parking, Amount: 100},
	}
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)

	data := Build(core.Identity{Name: "田中", SiteName: "新宿"}, records, entries, "", now)

	// Every stored record appears, date descending.
	if len(data.Records) != 3 {
		t.Fatalf("len(Records) = %d, want 3", len(data.Records))
	}
	gotDates := []string{data.Records[0].Date, data.Records[1].Date, data.Records[2].Date}
	wantDates := []string{"2024-03-05", "2024-03-01", "2024-02-28"}
	for i := range wantDates {
		if gotDates[i] != wantDates[i] {
			t.Errorf("Records[%d].Date = %s, want %s", i, gotDates[i], wantDates[i])
		}
	}

	// Ledger is current month only, date descending, with the grand total.
	if len(data.Ledger) != 2 {
		t.Fatalf("len(Ledger) = %d, want 2", len(data.Ledger))
	}
	if data.Ledger[0].Date != "2024-03-04" || data.Ledger[1].Date != "2024-03-02" {
		t.Errorf("ledger order = %s, %s", data.Ledger[0].Date, data.Ledger[1].Date)
	}
	if data.Total != 800 {
		t.Errorf("Total = %d, want 800", data.Total)
	}
	if data.MonthTitle != "2024年3月" {
		t.Errorf("MonthTitle = %s", data.MonthTitle)
	}
}

func TestRender(t *testing.T) {
	records := map[string]core.AttendanceRecord{
		"2024-03-05": {Date: "2024-03-05", Time: "08:15:00"},
	}
	entries := []core.ExpenseEntry{
		{ID: "a", Date: "2024-03-02", Category: core.Transportation, Amount: 500, Note: "电车"},
	}
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
	data := Build(core.Identity{Name: "田中", SiteName: "新宿"}, records, entries, "本月出勤良好。", now)

	var buf bytes.Buffer
	if err := Render(&buf, data); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"田中",
		"新宿",
		"2024-03-05",
		"08:15:00",
		"交通费",
		"电车",
		"本月出勤良好。",
		"2024年3月",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
}

func TestRenderEmptyState(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
	data := Build(core.Identity{Name: "a", SiteName: "b"}, nil, nil, "", now)

	var buf bytes.Buffer
	if err := Render(&buf, data); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "暂无考勤记录") || !strings.Contains(out, "本月暂无费用记录") {
		t.Error("empty state placeholders missing")
	}
}
