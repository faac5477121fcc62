package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
)

type ledgerRow struct {
	ID       string
	Date     string
	Category string
	Amount   int64
	Note     string
}

type categoryRow struct {
	Label   string
	Amount  int64
	Percent float64
}

type expensePageData struct {
	Identity   core.Identity
	Today      string
	Categories []core.Category
	MonthTitle string
	ByCategory []categoryRow
	Total      int64
	Ledger     []ledgerRow
	// Entry being edited (?edit=<id>); nil renders the add form.
	Editing *core.ExpenseEntry
	Error   string
}

// handleExpenses renders the expense entry form, this month's totals and
// the full ledger.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	data, err := s.buildExpensePage(r, identity, "")
	if err != nil {
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	s.render(w, r, "expenses.html", data)
}

// handleCreateExpense validates and stores a new entry, then returns the
// refreshed ledger partial (HTMX) or redirects back to the page.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("请求格式错误").Write(w)
		return
	}

	date := sanitizeInput(r.Form.Get("date"))
	category := core.Category(sanitizeInput(r.Form.Get("category")))
	amount := sanitizeInput(r.Form.Get("amount"))
	note := sanitizeInput(r.Form.Get("note"))

	entry, err := s.expenses.Add(r.Context(), date, category, amount, note)
	if err != nil {
		s.respondExpenseError(w, r, err)
		return
	}

	s.invalidateStats()
	if s.collector != nil {
		s.collector.RecordExpenseCreated()
	}
	slog.InfoContext(r.Context(), "Expense created via form", "expense_id", entry.ID)
	s.respondWithLedger(w, r, "已添加费用记录")
}

// handleEditExpense replaces an entry wholesale. An unknown id is a no-op
// that still reports success, mirroring the storage semantics.
func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("请求格式错误").Write(w)
		return
	}

	amount, err := core.ParseAmount(sanitizeInput(r.Form.Get("amount")))
	if err != nil {
		s.respondExpenseError(w, r, err)
		return
	}
	entry := core.ExpenseEntry{
		ID:       sanitizeInput(r.Form.Get("id")),
		Date:     sanitizeInput(r.Form.Get("date")),
		Category: core.Category(sanitizeInput(r.Form.Get("category"))),
		Amount:   amount,
		Note:     sanitizeInput(r.Form.Get("note")),
	}
	if err := s.expenses.Edit(r.Context(), entry); err != nil {
		s.respondExpenseError(w, r, err)
		return
	}

	s.invalidateStats()
	s.respondWithLedger(w, r, "已更新费用记录")
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("请求格式错误").Write(w)
		return
	}

	id := sanitizeInput(r.Form.Get("id"))
	if err := s.expenses.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Delete expense failed", "expense_id", id, "error", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	s.invalidateStats()
	s.respondWithLedger(w, r, "已删除费用记录")
}

func (s *Server) respondExpenseError(w http.ResponseWriter, r *http.Request, err error) {
	var msg string
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		msg = "金额无效，请输入正数"
	case errors.Is(err, core.ErrInvalidCategory):
		msg = "类别无效"
	case errors.Is(err, core.ErrInvalidDate):
		msg = "日期无效"
	default:
		slog.ErrorContext(r.Context(), "Expense mutation failed", "error", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	UnprocessableEntityError(msg).Write(w)
}

func (s *Server) respondWithLedger(w http.ResponseWriter, r *http.Request, message string) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/expenses", http.StatusSeeOther)
		return
	}

	identity, err := s.storage.LoadIdentity(r.Context())
	if err != nil || identity == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data, err := s.buildExpensePage(r, *identity, "")
	if err != nil {
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "ledger", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "template", "ledger", "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	NewHTMXResponse().
		TriggerExpenseChanged(now.Year(), int(now.Month())).
		TriggerSuccessNotification(message).
		BodyHTML(buf.String()).
		Write(w)
}

func (s *Server) buildExpensePage(r *http.Request, identity core.Identity, errMsg string) (expensePageData, error) {
	entries, err := s.expenses.Entries(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load expenses", "error", err)
		return expensePageData{}, err
	}

	now := time.Now()
	stats := core.SummarizeExpenses(entries, now.Year(), now.Month())

	byCat := make([]categoryRow, 0, len(stats.ByCategory))
	for _, ct := range stats.ByCategory {
		byCat = append(byCat, categoryRow{
			Label:   ct.Category.Label(),
			Amount:  ct.Amount,
			Percent: ct.Percent,
		})
	}

	ledger := make([]ledgerRow, 0, len(stats.Ledger))
	for _, e := range stats.Ledger {
		ledger = append(ledger, ledgerRow{
			ID:       e.ID,
			Date:     e.Date,
			Category: e.Category.Label(),
			Amount:   e.Amount,
			Note:     e.Note,
		})
	}

	// An unknown edit id leaves the form in add mode.
	var editing *core.ExpenseEntry
	if id := sanitizeInput(r.URL.Query().Get("edit")); id != "" {
		editing, err = s.expenses.Get(r.Context(), id)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to load expense for edit", "expense_id", id, "error", err)
			return expensePageData{}, err
		}
	}

	return expensePageData{
		Identity:   identity,
		Today:      core.DateKey(now),
		Categories: core.Categories(),
		MonthTitle: core.DateKey(now)[:7],
		ByCategory: byCat,
		Total:      stats.Total,
		Ledger:     ledger,
		Editing:    editing,
		Error:      errMsg,
	}, nil
}
