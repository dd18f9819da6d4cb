// Package http exposes the JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentledger/internal/auth"
	"rentledger/internal/core"
	"rentledger/internal/services"
	"rentledger/internal/storage"
)

const sessionCookie = "rentledger_session"

type contextKey string

const userIDKey contextKey = "user_id"

type Server struct {
	http.Server

	store         storage.Store
	ledger        *services.LedgerService
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager

	rateLimiter *rateLimiter

	// Dashboard aggregates per owner; invalidated on every write.
	dashboardCache *lruCache[core.Metrics]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

func NewServer(addr string, store storage.Store, ledger *services.LedgerService, authenticator auth.Authenticator, jwtManager *auth.JWTManager) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:            store,
		ledger:           ledger,
		authenticator:    authenticator,
		jwtManager:       jwtManager,
		rateLimiter:      newRateLimiter(60),
		dashboardCache:   newLRUCache[core.Metrics](100, time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}
	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/auth/register", s.wrap("/api/auth/register", s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.wrap("/api/auth/login", s.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", s.wrap("/api/auth/logout", s.handleLogout))
	mux.HandleFunc("GET /api/auth/me", s.wrap("/api/auth/me", s.requireAuth(s.handleMe)))

	mux.HandleFunc("POST /api/properties", s.wrap("/api/properties", s.requireAuth(s.handleCreateProperty)))
	mux.HandleFunc("GET /api/properties", s.wrap("/api/properties", s.requireAuth(s.handleListProperties)))
	mux.HandleFunc("GET /api/properties/{id}", s.wrap("/api/properties/{id}", s.requireAuth(s.handleGetProperty)))
	mux.HandleFunc("PUT /api/properties/{id}", s.wrap("/api/properties/{id}", s.requireAuth(s.handleUpdateProperty)))
	mux.HandleFunc("DELETE /api/properties/{id}", s.wrap("/api/properties/{id}", s.requireAuth(s.handleDeleteProperty)))

	mux.HandleFunc("POST /api/tenants", s.wrap("/api/tenants", s.requireAuth(s.handleCreateTenant)))
	mux.HandleFunc("GET /api/tenants", s.wrap("/api/tenants", s.requireAuth(s.handleListTenants)))
	mux.HandleFunc("GET /api/tenants/{id}", s.wrap("/api/tenants/{id}", s.requireAuth(s.handleGetTenant)))
	mux.HandleFunc("PUT /api/tenants/{id}", s.wrap("/api/tenants/{id}", s.requireAuth(s.handleUpdateTenant)))
	mux.HandleFunc("DELETE /api/tenants/{id}", s.wrap("/api/tenants/{id}", s.requireAuth(s.handleDeleteTenant)))

	mux.HandleFunc("POST /api/tenancies", s.wrap("/api/tenancies", s.requireAuth(s.handleCreateTenancy)))
	mux.HandleFunc("GET /api/tenancies", s.wrap("/api/tenancies", s.requireAuth(s.handleListTenancies)))
	mux.HandleFunc("GET /api/tenancies/{id}", s.wrap("/api/tenancies/{id}", s.requireAuth(s.handleGetTenancy)))
	mux.HandleFunc("POST /api/tenancies/{id}/end", s.wrap("/api/tenancies/{id}/end", s.requireAuth(s.handleEndTenancy)))
	mux.HandleFunc("DELETE /api/tenancies/{id}", s.wrap("/api/tenancies/{id}", s.requireAuth(s.handleDeleteTenancy)))

	mux.HandleFunc("POST /api/obligations", s.wrap("/api/obligations", s.requireAuth(s.handleCreateObligation)))
	mux.HandleFunc("GET /api/obligations", s.wrap("/api/obligations", s.requireAuth(s.handleListObligations)))
	mux.HandleFunc("GET /api/obligations/{id}", s.wrap("/api/obligations/{id}", s.requireAuth(s.handleGetObligation)))
	mux.HandleFunc("DELETE /api/obligations/{id}", s.wrap("/api/obligations/{id}", s.requireAuth(s.handleDeleteObligation)))
	mux.HandleFunc("POST /api/obligations/{id}/payments", s.wrap("/api/obligations/{id}/payments", s.requireAuth(s.handleRecordPayment)))
	mux.HandleFunc("POST /api/obligations/sweep", s.wrap("/api/obligations/sweep", s.requireAuth(s.handleSweepOverdue)))

	mux.HandleFunc("POST /api/maintenance", s.wrap("/api/maintenance", s.requireAuth(s.handleCreateMaintenance)))
	mux.HandleFunc("GET /api/maintenance", s.wrap("/api/maintenance", s.requireAuth(s.handleListMaintenance)))
	mux.HandleFunc("POST /api/maintenance/{id}/resolve", s.wrap("/api/maintenance/{id}/resolve", s.requireAuth(s.handleResolveMaintenance)))
	mux.HandleFunc("DELETE /api/maintenance/{id}", s.wrap("/api/maintenance/{id}", s.requireAuth(s.handleDeleteMaintenance)))

	mux.HandleFunc("GET /api/dashboard", s.wrap("/api/dashboard", s.requireAuth(s.handleDashboard)))

	return s
}

// wrap adds request logging, security headers, rate limiting and metrics.
// The route label keeps metric cardinality bounded.
func (s *Server) wrap(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), contextKey("request_id"), requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	}
}

// requireAuth validates the session cookie and stashes the user id in the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			writeError(w, r, auth.ErrMissingToken)
			return
		}
		claims, err := s.jwtManager.Validate(cookie.Value)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next(w, r.WithContext(ctx))
	}
}

func ownerID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

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

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.dashboardCache.CleanExpired(); n > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", n)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

func (s *Server) invalidateDashboard(owner string) {
	s.dashboardCache.Delete(dashboardCacheKey(owner, core.DateOf(time.Now())))
}

// Shutdown stops the background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// userCurrency resolves the display currency for responses, defaulting to
// EUR when the lookup fails.
func (s *Server) userCurrency(r *http.Request) string {
	u, err := s.store.GetUserByID(r.Context(), ownerID(r))
	if err != nil || u.Currency == "" {
		return "EUR"
	}
	return u.Currency
}
