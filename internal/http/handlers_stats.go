package http

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
)

// Pie slice colors in fixed category order.
var sweepColors = []string{"#3b82f6", "#22c55e", "#f59e0b"}

type statsPageData struct {
	Identity        core.Identity
	MonthTitle      string
	MonthlyCheckIns int
	AttendanceRate  int
	Total           int64
	ByCategory      []categoryRow
	PieGradient     template.CSS
	HasExpenses     bool
	Heatmap         []core.HeatmapCell
	Recent          []recordRow
}

// handleStats renders the monthly statistics view. Snapshots are cached per
// month and invalidated on every mutation.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	now := time.Now()
	snap, err := s.statsSnapshot(r, now)
	if err != nil {
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	byCat := make([]categoryRow, 0, len(snap.Expenses.ByCategory))
	for _, ct := range snap.Expenses.ByCategory {
		byCat = append(byCat, categoryRow{
			Label:   ct.Category.Label(),
			Amount:  ct.Amount,
			Percent: ct.Percent,
		})
	}

	recent := make([]recordRow, 0, len(snap.Attendance.Recent))
	for _, rec := range snap.Attendance.Recent {
		recent = append(recent, recordRow{
			Date:    rec.Date,
			Weekday: core.WeekdayLabel(rec.Date),
			Time:    rec.Time,
		})
	}

	s.render(w, r, "stats.html", statsPageData{
		Identity:        identity,
		MonthTitle:      fmt.Sprintf("%d年%d月", now.Year(), int(now.Month())),
		MonthlyCheckIns: snap.Attendance.MonthlyCheckIns,
		AttendanceRate:  snap.Attendance.AttendanceRate,
		Total:           snap.Expenses.Total,
		ByCategory:      byCat,
		PieGradient:     pieGradient(snap.Expenses.ByCategory),
		HasExpenses:     snap.Expenses.Total > 0,
		Heatmap:         snap.Attendance.Heatmap,
		Recent:          recent,
	})
}

func (s *Server) statsSnapshot(r *http.Request, now time.Time) (statsSnapshot, error) {
	key := core.DateKey(now)[:7]
	if snap, ok := s.statsCache.Get(key); ok {
		return snap, nil
	}

	records, err := s.attendance.Records(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load records", "error", err)
		return statsSnapshot{}, err
	}
	entries, err := s.expenses.Entries(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load expenses", "error", err)
		return statsSnapshot{}, err
	}

	snap := statsSnapshot{
		Attendance: core.SummarizeAttendance(records, now),
		Expenses:   core.SummarizeExpenses(entries, now.Year(), now.Month()),
	}
	s.statsCache.Set(key, snap)
	return snap, nil
}

// pieGradient turns the cumulative sweep boundaries into a CSS
// conic-gradient value. Zero-width arcs contribute empty segments that the
// gradient simply skips over. The inputs are server-computed numbers, so
// the value is safe to mark as CSS.
func pieGradient(byCategory []core.CategoryTotal) template.CSS {
	segments := make([]string, 0, len(byCategory))
	for i, ct := range byCategory {
		color := sweepColors[i%len(sweepColors)]
		segments = append(segments, fmt.Sprintf("%s %.1f%% %.1f%%", color, ct.From, ct.To))
	}
	return template.CSS("conic-gradient(" + strings.Join(segments, ", ") + ")")
}
