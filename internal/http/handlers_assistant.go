package http

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/takayashoshi888/nihaokaoqing/internal/assistant"
	"github.com/takayashoshi888/nihaokaoqing/internal/core"
	"github.com/takayashoshi888/nihaokaoqing/internal/report"
)

// Quick-query shortcuts shown above the free-text box.
var quickQueries = []string{
	"总结我这个月的考勤情况",
	"这个月费用一共花了多少？哪类最多？",
	"我最近一次打卡是什么时候？",
}

type assistantPageData struct {
	Identity     core.Identity
	QuickQueries []string
	Query        string
	Reply        string
}

// handleAssistant renders the Q&A page and, on POST, forwards the stored
// data plus the question to the summarization adapter. The adapter never
// errors: whatever string comes back is shown.
func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	data := assistantPageData{Identity: identity, QuickQueries: quickQueries}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			BadRequestError("请求格式错误").Write(w)
			return
		}
		query := sanitizeInput(r.Form.Get("query"))
		if query == "" {
			query = quickQueries[0]
		}

		records, entries, err := s.loadAll(r)
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}

		if s.collector != nil {
			s.collector.RecordAssistantCall()
		}
		reply := s.summarizer.Summarize(r.Context(), identity, records, entries, query)
		if s.collector != nil && (reply == assistant.MsgCallFailed || reply == assistant.MsgMissingKey) {
			s.collector.RecordAssistantError()
		}

		data.Query = query
		data.Reply = reply
	}

	s.render(w, r, "assistant.html", data)
}

// handleExport streams the printable report document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	records, entries, err := s.loadAll(r)
	if err != nil {
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	recordMap := make(map[string]core.AttendanceRecord, len(records))
	for _, rec := range records {
		recordMap[rec.Date] = rec
	}

	data := report.Build(identity, recordMap, entries, sanitizeInput(r.URL.Query().Get("summary")), time.Now())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.Render(w, data); err != nil {
		slog.ErrorContext(r.Context(), "Report rendering failed", "error", err)
	}
}

// loadAll returns the record list (date ascending) and the expense list as
// the assistant and export consume them.
func (s *Server) loadAll(r *http.Request) ([]core.AttendanceRecord, []core.ExpenseEntry, error) {
	recordMap, err := s.attendance.Records(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load records", "error", err)
		return nil, nil, err
	}
	records := make([]core.AttendanceRecord, 0, len(recordMap))
	for _, rec := range recordMap {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })

	entries, err := s.expenses.Entries(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load expenses", "error", err)
		return nil, nil, err
	}
	return records, entries, nil
}
