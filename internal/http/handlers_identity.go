package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
)

type loginData struct {
	Name     string
	SiteName string
	HasSaved bool
	Error    string
}

// handleIndex is the welcome page: the identity form, pre-filled when an
// identity is already stored. Logout lands here without touching the
// stored identity.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := loginData{}
	if identity, err := s.storage.LoadIdentity(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to load identity", "error", err)
	} else if identity != nil {
		data.Name = identity.Name
		data.SiteName = identity.SiteName
		data.HasSaved = true
	}
	s.render(w, r, "login.html", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	identity := core.Identity{
		Name:     sanitizeInput(r.Form.Get("name")),
		SiteName: sanitizeInput(r.Form.Get("siteName")),
	}
	if err := identity.Validate(); err != nil {
		s.render(w, r, "login.html", loginData{
			Name:     identity.Name,
			SiteName: identity.SiteName,
			Error:    validationMessage(err),
		})
		return
	}

	if err := s.storage.SaveIdentity(r.Context(), identity); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save identity", "error", err)
		http.Error(w, "failed to save", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/manage", http.StatusSeeOther)
}

type manageData struct {
	Identity core.Identity
}

// handleManage is the home menu after login.
func (s *Server) handleManage(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	s.render(w, r, "manage.html", manageData{Identity: identity})
}

type settingsData struct {
	Identity core.Identity
	Error    string
	Saved    bool
}

// handleSettings edits the identity wholesale.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		s.render(w, r, "settings.html", settingsData{Identity: identity})
		return
	}
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	updated := core.Identity{
		Name:     sanitizeInput(r.Form.Get("name")),
		SiteName: sanitizeInput(r.Form.Get("siteName")),
	}
	if err := updated.Validate(); err != nil {
		s.render(w, r, "settings.html", settingsData{Identity: updated, Error: validationMessage(err)})
		return
	}
	if err := s.storage.SaveIdentity(r.Context(), updated); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save identity", "error", err)
		http.Error(w, "failed to save", http.StatusInternalServerError)
		return
	}
	s.render(w, r, "settings.html", settingsData{Identity: updated, Saved: true})
}

// requireIdentity loads the stored identity, redirecting to the welcome
// page when none exists yet.
func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request) (core.Identity, bool) {
	identity, err := s.storage.LoadIdentity(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load identity", "error", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return core.Identity{}, false
	}
	if identity == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return core.Identity{}, false
	}
	return *identity, true
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyName), errors.Is(err, core.ErrEmptySiteName):
		return "姓名和现场名称不能为空"
	default:
		return err.Error()
	}
}
