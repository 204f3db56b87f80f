package http

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	appweb "fintrack/web"
)

// Database is what the server needs from storage: a per-request handle and a
// liveness probe.
type Database interface {
	Acquire(ctx context.Context) (*storage.Queries, func(), error)
	Ping(ctx context.Context) error
}

// Deps groups the collaborators the server routes requests to.
type Deps struct {
	DB                 Database
	Accounts           *services.AccountService
	Ledger             *services.LedgerService
	Sessions           *auth.Sessions
	Logger             *log.Logger
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	db       Database
	accounts *services.AccountService
	ledger   *services.LedgerService
	sessions *auth.Sessions
	logger   *log.Logger
	views    *views
	limiter  *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer parses the views and wires routes, returning a ready-to-run server.
func NewServer(addr string, d Deps) (*Server, error) {
	v, err := loadViews(appweb.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}
	if d.Logger == nil {
		d.Logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		db:       d.DB,
		accounts: d.Accounts,
		ledger:   d.Ledger,
		sessions: d.Sessions,
		logger:   d.Logger.WithComponent(log.ComponentHTTP),
		views:    v,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: d.RateLimitPerMinute}),
	}

	handler, err := s.routes(d.TrustedProxies)
	if err != nil {
		s.limiter.Stop()
		return nil, err
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(trustedProxies []string) (http.Handler, error) {
	detector := security.NewDetector()
	for _, p := range trustedProxies {
		if err := detector.AddTrustedProxy(p); err != nil {
			return nil, err
		}
	}

	r := chi.NewRouter()
	r.Use(log.Middleware(s.logger))
	r.Use(trace.NewMiddleware(s.logger, detector.ExtractClientIP).Middleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.CleanPath)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(detector.Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	r.With(security.StaticAssetMiddleware(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	limit := s.limiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)

	r.Group(func(r chi.Router) {
		r.Use(s.requestScope)
		r.Use(security.NoStore)

		r.Get("/", s.handleIndex)
		r.Get("/logout", s.handleLogout)

		r.With(limit).Get("/login", s.handleLoginForm)
		r.With(limit).Post("/login", s.handleLogin)
		r.With(limit).Get("/register", s.handleRegisterForm)
		r.With(limit).Post("/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/add_expense", s.handleAddExpenseForm)
			r.Post("/add_expense", s.handleAddExpense)
			r.Get("/budget", s.handleBudget)
			r.Post("/budget", s.handleSetBudget)
			r.Get("/summary", s.handleSummary)
		})
	})

	return r, nil
}

// Shutdown stops background work and then the HTTP server. Safe to call twice.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded", log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}
