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

	"fluxo/internal/cache"
	"fluxo/internal/core"
	applog "fluxo/internal/log"
	"fluxo/internal/reports"
	appweb "fluxo/web"
)

// Options tune the report memoization.
type Options struct {
	CacheTTL        time.Duration
	CacheMaxReports int
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.CacheMaxReports <= 0 {
		o.CacheMaxReports = 16
	}
	return o
}

type Server struct {
	http.Server
	templates *template.Template
	reader    reports.Reader

	rateLimiter *rateLimiter

	// One memo cache per result shape; each holds entries keyed by
	// report name, so every report is memoized on its identity alone.
	cashFlowCache *cache.LRU[core.CashFlow]
	labelCache    *cache.LRU[[]core.LabelTotal]
	overdueCache  *cache.LRU[[]core.Payable]
	monthlyCache  *cache.LRU[[]core.MonthlyTotal]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server on top of the given report reader.
func NewServer(addr string, reader reports.Reader, opts Options) *Server {
	opts = opts.withDefaults()
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		reader:           reader,
		rateLimiter:      newRateLimiter(),
		cashFlowCache:    cache.NewLRU[core.CashFlow](opts.CacheMaxReports, opts.CacheTTL),
		labelCache:       cache.NewLRU[[]core.LabelTotal](opts.CacheMaxReports, opts.CacheTTL),
		overdueCache:     cache.NewLRU[[]core.Payable](opts.CacheMaxReports, opts.CacheTTL),
		monthlyCache:     cache.NewLRU[[]core.MonthlyTotal](opts.CacheMaxReports, opts.CacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// Report partials, one per sidebar option
	mux.HandleFunc("/ui/cash-flow", s.withSecurityHeaders(s.handleCashFlow))
	mux.HandleFunc("/ui/categories", s.withSecurityHeaders(s.handleCategories))
	mux.HandleFunc("/ui/suppliers", s.withSecurityHeaders(s.handleSuppliers))
	mux.HandleFunc("/ui/overdue", s.withSecurityHeaders(s.handleOverdue))
	mux.HandleFunc("/ui/trend", s.withSecurityHeaders(s.handleTrend))
	mux.HandleFunc("/ui/refresh", s.withSecurityHeaders(s.handleRefresh))

	// Chart series as JSON
	mux.HandleFunc("/api/cash-flow/monthly", s.withSecurityHeaders(s.handleCashFlowMonthlyJSON))
	mux.HandleFunc("/api/trend", s.withSecurityHeaders(s.handleTrendJSON))

	return s
}

// InvalidateReports drops every memoized report; the next request for
// each view re-queries the ledger. Wired to the AMQP refresh consumer
// and the refresh endpoint.
func (s *Server) InvalidateReports() {
	s.cashFlowCache.Purge()
	s.labelCache.Purge()
	s.overdueCache.Purge()
	s.monthlyCache.Purge()
	slog.Info("Memoized reports invalidated", applog.FieldComponent, applog.ComponentCache)
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := s.cashFlowCache.CleanExpired() +
				s.labelCache.CleanExpired() +
				s.overdueCache.CleanExpired() +
				s.monthlyCache.CleanExpired()
			if cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging to a handler.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
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
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		if !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatus, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
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
