// Package http serves the attendance and expense tracker UI: server-side
// rendered pages with HTMX partial swaps for the calendar and ledger.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/takayashoshi888/nihaokaoqing/internal/cache"
	"github.com/takayashoshi888/nihaokaoqing/internal/core"
	"github.com/takayashoshi888/nihaokaoqing/internal/metrics"
	"github.com/takayashoshi888/nihaokaoqing/internal/services"
	"github.com/takayashoshi888/nihaokaoqing/internal/storage"
	appweb "github.com/takayashoshi888/nihaokaoqing/web"

	"github.com/prometheus/client_golang/prometheus"
)

// Summarizer is the assistant adapter. It resolves to displayable text,
// never an error.
type Summarizer interface {
	Summarize(ctx context.Context, identity core.Identity, records []core.AttendanceRecord, expenses []core.ExpenseEntry, query string) string
}

type statsSnapshot struct {
	Attendance core.AttendanceStats
	Expenses   core.ExpenseStats
}

type Server struct {
	http.Server
	templates *template.Template

	storage    *storage.SQLiteRepository
	attendance *services.AttendanceService
	expenses   *services.ExpenseService
	summarizer Summarizer
	collector  *metrics.Collector

	rateLimiter *rateLimiter

	// Month-keyed stats snapshots, purged wholesale on any mutation.
	statsCache   *cache.LRUCache[statsSnapshot]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

func NewServer(
	addr string,
	repo *storage.SQLiteRepository,
	attendance *services.AttendanceService,
	expenses *services.ExpenseService,
	summarizer Summarizer,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
) (*Server, error) {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		storage:      repo,
		attendance:   attendance,
		expenses:     expenses,
		summarizer:   summarizer,
		collector:    collector,
		rateLimiter:  newRateLimiter(),
		statsCache:   cache.NewLRUCache[statsSnapshot](24, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.statsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withMiddleware(s.handleIndex))
	mux.HandleFunc("/login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("/manage", s.withMiddleware(s.handleManage))
	mux.HandleFunc("/settings", s.withMiddleware(s.handleSettings))
	mux.HandleFunc("/attendance", s.withMiddleware(s.handleAttendance))
	mux.HandleFunc("/attendance/checkin", s.withMiddleware(s.handleCheckIn))
	mux.HandleFunc("/attendance/cancel", s.withMiddleware(s.handleCancel))
	mux.HandleFunc("/attendance/clear", s.withMiddleware(s.handleClear))
	mux.HandleFunc("/expenses", s.withMiddleware(s.handleExpenses))
	mux.HandleFunc("/expenses/create", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("/expenses/edit", s.withMiddleware(s.handleEditExpense))
	mux.HandleFunc("/expenses/delete", s.withMiddleware(s.handleDeleteExpense))
	mux.HandleFunc("/stats", s.withMiddleware(s.handleStats))
	mux.HandleFunc("/assistant", s.withMiddleware(s.handleAssistant))
	mux.HandleFunc("/export", s.withMiddleware(s.handleExport))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	if gatherer != nil {
		mux.Handle("/metrics", metrics.Handler(gatherer))
	}

	return s, nil
}

// Shutdown stops the HTTP server plus the cache and rate limiter
// housekeeping goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateStats drops all cached snapshots. Called on every mutation.
func (s *Server) invalidateStats() {
	s.statsCache.Purge()
}

// withMiddleware adds request-id tracing, security headers, rate limiting
// on mutations, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		if s.collector != nil {
			s.collector.RecordHTTPStatus(rw.statusCode)
			s.collector.RecordHTTPLatency(duration)
		}
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	}
}

type requestIDKey struct{}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
