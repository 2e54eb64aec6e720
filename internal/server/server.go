package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tkingovr/postfilter/internal/audit"
	"github.com/tkingovr/postfilter/internal/config"
	"github.com/tkingovr/postfilter/internal/filter"
	"github.com/tkingovr/postfilter/relevance"
)

// maxBodyBytes caps the size of a check request body.
const maxBodyBytes = 64 << 10

// Server exposes the relevance check over HTTP.
type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	chain      *filter.Chain
	rules      relevance.RuleSet
	auditStore audit.Store
	cfg        *config.Config
	limiter    *RateLimiter
	addr       string
}

// NewServer creates a new HTTP server. chain must already include auditing
// into store if decisions should be recorded.
func NewServer(cfg *config.Config, chain *filter.Chain, rules relevance.RuleSet, store audit.Store, logger *slog.Logger) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		chain:      chain,
		rules:      rules,
		auditStore: store,
		cfg:        cfg,
		addr:       cfg.ListenAddr,
	}
	if cfg.RateLimit != nil {
		s.limiter = NewRateLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	check := s.handleCheck
	if s.limiter != nil {
		check = s.limiter.Middleware(check)
	}
	s.mux.HandleFunc("POST /api/v1/check", check)
	s.mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/v1/decisions", s.handleDecisions)
	s.mux.HandleFunc("GET /api/v1/stream", s.handleStream)
	s.mux.HandleFunc("GET /api/v1/rules", s.handleRules)
	s.mux.HandleFunc("GET /api/v1/policy", s.handlePolicy)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// ListenAndServe starts the HTTP server and stops it when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting server", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the HTTP handler for embedding in other servers.
func (s *Server) Handler() http.Handler {
	return s.mux
}
