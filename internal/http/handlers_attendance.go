package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
	"github.com/takayashoshi888/nihaokaoqing/internal/services"
)

type recordRow struct {
	Date    string
	Weekday string
	Time    string
}

type calendarData struct {
	Year      int
	Month     int
	PrevYear  int
	PrevMonth int
	NextYear  int
	NextMonth int
	Cells     []core.HeatmapCell
	Records   []recordRow
}

type attendanceData struct {
	Identity core.Identity
	Calendar calendarData
}

// handleAttendance renders the check-in calendar for the requested month,
// defaulting to the current one.
func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	now := time.Now()
	year, month := monthFromQuery(r, now)

	cal, err := s.buildCalendar(r, year, month, now)
	if err != nil {
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	s.render(w, r, "attendance.html", attendanceData{Identity: identity, Calendar: cal})
}

// handleCheckIn records attendance for the tapped calendar cell. The cell
// date comes from the form; the clock time is the server's now.
func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("请求格式错误").Write(w)
		return
	}

	dateKey := sanitizeInput(r.Form.Get("date"))
	day, err := core.ParseKey(dateKey)
	if err != nil {
		UnprocessableEntityError("无效的日期").Write(w)
		return
	}

	now := time.Now()
	rec, err := s.attendance.CheckIn(r.Context(), day, now)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyCheckedIn) {
			UnprocessableEntityError("该日期已打卡").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Check-in failed", "date", dateKey, "error", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	s.invalidateStats()
	if s.collector != nil {
		s.collector.RecordCheckIn()
	}
	s.respondWithCalendar(w, r, day, now, rec.Date, "打卡成功 "+rec.Time)
}

// handleCancel removes the check-in for a date. Cancelling an unmarked day
// is a no-op and still succeeds.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("请求格式错误").Write(w)
		return
	}

	dateKey := sanitizeInput(r.Form.Get("date"))
	day, err := core.ParseKey(dateKey)
	if err != nil {
		UnprocessableEntityError("无效的日期").Write(w)
		return
	}

	if err := s.attendance.Cancel(r.Context(), dateKey); err != nil {
		slog.ErrorContext(r.Context(), "Cancel failed", "date", dateKey, "error", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	s.invalidateStats()
	s.respondWithCalendar(w, r, day, time.Now(), dateKey, "已取消打卡")
}

// handleClear wipes the whole attendance history.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := s.attendance.ClearAll(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Clear all failed", "error", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	s.invalidateStats()
	http.Redirect(w, r, "/manage", http.StatusSeeOther)
}

// respondWithCalendar returns the refreshed calendar partial for HTMX
// requests, or redirects back to the month view.
func (s *Server) respondWithCalendar(w http.ResponseWriter, r *http.Request, day time.Time, now time.Time, date, message string) {
	if !isHTMX(r) {
		http.Redirect(w, r, fmt.Sprintf("/attendance?year=%d&month=%d", day.Year(), int(day.Month())), http.StatusSeeOther)
		return
	}

	cal, err := s.buildCalendar(r, day.Year(), day.Month(), now)
	if err != nil {
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "calendar", cal); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "template", "calendar", "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	NewHTMXResponse().
		TriggerCheckInChanged(date).
		TriggerSuccessNotification(message).
		BodyHTML(buf.String()).
		Write(w)
}

func (s *Server) buildCalendar(r *http.Request, year int, month time.Month, now time.Time) (calendarData, error) {
	records, err := s.attendance.Records(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load records", "error", err)
		return calendarData{}, err
	}

	cells := make([]core.HeatmapCell, 0)
	for _, cell := range core.MonthGrid(year, month) {
		hc := core.HeatmapCell{GridCell: cell}
		if !cell.Blank() {
			_, hc.CheckedIn = records[cell.Date]
			hc.Today = core.IsToday(cell.Date, now)
		}
		cells = append(cells, hc)
	}

	rows := make([]recordRow, 0)
	for _, rec := range core.MonthRecords(records, year, month) {
		rows = append(rows, recordRow{
			Date:    rec.Date,
			Weekday: core.WeekdayLabel(rec.Date),
			Time:    rec.Time,
		})
	}

	prev := time.Date(year, month, 1, 0, 0, 0, 0, time.Local).AddDate(0, -1, 0)
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.Local).AddDate(0, 1, 0)

	return calendarData{
		Year:      year,
		Month:     int(month),
		PrevYear:  prev.Year(),
		PrevMonth: int(prev.Month()),
		NextYear:  next.Year(),
		NextMonth: int(next.Month()),
		Cells:     cells,
		Records:   rows,
	}, nil
}

func monthFromQuery(r *http.Request, now time.Time) (int, time.Month) {
	year := now.Year()
	month := now.Month()
	if v := r.URL.Query().Get("year"); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y >= 1970 && y <= 9999 {
			year = y
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = time.Month(m)
		}
	}
	return year, month
}
