// Package http exposes the tracker as a JSON API: auth, the four entity
// collections, the dashboard aggregates, settings, and exports.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"dompetku/internal/appstate"
	"dompetku/internal/auth"
	"dompetku/internal/cache"
	"dompetku/internal/log"
	"dompetku/internal/storage"
)

// Options bundles the server dependencies.
type Options struct {
	Addr      string
	Repo      *storage.Repository
	Auth      *auth.Service
	State     *appstate.Service
	Logger    *log.Logger
	CacheSize int
	CacheTTL  time.Duration
}

type Server struct {
	http.Server
	repo        *storage.Repository
	auth        *auth.Service
	state       *appstate.Service
	logger      *log.Logger
	rateLimiter *rateLimiter

	// Per-user memo of the dashboard payload, dropped on every write.
	dashCache *cache.LRU[dashboardPayload]
	janitor   *cache.Janitor

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		repo:        opts.Repo,
		auth:        opts.Auth,
		state:       opts.State,
		logger:      opts.Logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(),
		dashCache:   cache.NewLRU[dashboardPayload](opts.CacheSize, opts.CacheTTL),
		janitor:     cache.NewJanitor(10*time.Minute, opts.Logger.WithComponent(log.ComponentCache)),
	}
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           log.Middleware(s.logger)(s.withCommon(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.janitor.Register("dashboard", s.dashCache)
	s.janitor.Start()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("POST /api/auth/logout", s.requireAuth(s.handleLogout))
	mux.Handle("GET /api/auth/me", s.requireAuth(s.handleMe))

	mux.Handle("GET /api/transactions", s.requireAuth(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.requireAuth(s.handleCreateTransaction))
	mux.Handle("PUT /api/transactions/{id}", s.requireAuth(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.requireAuth(s.handleDeleteTransaction))

	mux.Handle("GET /api/categories", s.requireAuth(s.handleListCategories))

	mux.Handle("GET /api/budgets", s.requireAuth(s.handleListBudgets))
	mux.Handle("POST /api/budgets", s.requireAuth(s.handleCreateBudget))
	mux.Handle("PUT /api/budgets/{id}", s.requireAuth(s.handleUpdateBudget))
	mux.Handle("DELETE /api/budgets/{id}", s.requireAuth(s.handleDeleteBudget))

	mux.Handle("GET /api/subscriptions", s.requireAuth(s.handleListSubscriptions))
	mux.Handle("POST /api/subscriptions", s.requireAuth(s.handleCreateSubscription))
	mux.Handle("GET /api/subscriptions/upcoming", s.requireAuth(s.handleUpcomingSubscriptions))
	mux.Handle("PUT /api/subscriptions/{id}", s.requireAuth(s.handleUpdateSubscription))
	mux.Handle("DELETE /api/subscriptions/{id}", s.requireAuth(s.handleDeleteSubscription))
	mux.Handle("POST /api/subscriptions/{id}/toggle", s.requireAuth(s.handleToggleSubscription))

	mux.Handle("GET /api/goals", s.requireAuth(s.handleListGoals))
	mux.Handle("POST /api/goals", s.requireAuth(s.handleCreateGoal))
	mux.Handle("PUT /api/goals/{id}", s.requireAuth(s.handleUpdateGoal))
	mux.Handle("DELETE /api/goals/{id}", s.requireAuth(s.handleDeleteGoal))
	mux.Handle("POST /api/goals/{id}/funds", s.requireAuth(s.handleAddGoalFunds))

	mux.Handle("GET /api/dashboard", s.requireAuth(s.handleDashboard))

	mux.Handle("GET /api/settings/theme", s.requireAuth(s.handleGetTheme))
	mux.Handle("PUT /api/settings/theme", s.requireAuth(s.handleSetTheme))
	mux.Handle("DELETE /api/settings/data", s.requireAuth(s.handleClearData))

	mux.Handle("GET /api/export/json", s.requireAuth(s.handleExportJSON))
	mux.Handle("GET /api/export/csv", s.requireAuth(s.handleExportCSV))
	mux.Handle("GET /api/export/xlsx", s.requireAuth(s.handleExportXLSX))

	return s
}

// Shutdown stops the background loops and then drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withCommon adds security headers, rate limiting on writes, and per-request
// structured logging with a request id.
func (s *Server) withCommon(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := clientAddr(r)
		requestID := generateRequestID()

		logger := log.FromContext(r.Context()).With(log.FieldRequestID, requestID)
		ctx := log.IntoContext(r.Context(), logger)
		r = r.WithContext(ctx)

		logger.InfoContext(ctx, "request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
			logger.Warn("rate limit exceeded", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		rw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		logger.InfoContext(ctx, "request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	})
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// statusWriter captures the status code for request logging.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) invalidateDashboard(userID string) {
	s.dashCache.Delete(userID)
}
