// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"saldo/internal/cache"
	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/middleware/ratelimit"
	"saldo/internal/middleware/security"
	"saldo/internal/middleware/trace"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerConfig carries the transport settings of the API.
type ServerConfig struct {
	Addr               string
	MountPath          string
	SessionMaxAge      time.Duration
	SecureCookie       bool
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	ledger  *ledger.Service
	store   Pinger
	logger  *log.Logger
	cookies sessionCookies

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	cacheStats       func() cache.Stats
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime              time.Time
	transactionsCreated atomic.Int64
	sessionsIssued      atomic.Int64
}

// Option configures optional server features.
type Option func(*Server)

// WithCacheStats exposes the summary cache counters on /metrics.
func WithCacheStats(stats func() cache.Stats) Option {
	return func(s *Server) {
		s.cacheStats = stats
	}
}

// NewServer wires the ledger routes under cfg.MountPath together with the
// health and metrics endpoints.
func NewServer(cfg ServerConfig, svc *ledger.Service, store Pinger, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:           svc,
		store:            store,
		logger:           logger,
		cookies:          sessionCookies{maxAge: cfg.SessionMaxAge, secure: cfg.SecureCookie},
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(
		s.traceMiddleware.Middleware,
		middleware.Recoverer,
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.securityDetector.Middleware,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Not found."})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, messageResponse{Message: "Method not allowed."})
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route(mountPattern(cfg.MountPath), func(r chi.Router) {
		r.Get("/", s.handleListTransactions)
		r.Get("/summary", s.handleSummary)
		r.Get("/{id}", s.handleGetTransaction)
		r.With(s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleRateLimited)).
			Post("/", s.handleCreateTransaction)
	})

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func mountPattern(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return "/transactions"
	}
	return p
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
