package http

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"weekday": core.WeekdayLabel,
		"monthCN": func(year, month int) string {
			return fmt.Sprintf("%d年%d月", year, month)
		},
	}
}

// render executes a named page template. Template failures after the first
// write cannot be unwound, so they are logged and the response left as-is.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed",
			"template", name,
			"error", err)
	}
}

// sanitizeInput trims whitespace and strips control characters from form
// input.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// requirePost guards mutation endpoints.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// isHTMX reports whether the request came from an hx-* attribute and wants
// a partial instead of a full page.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
