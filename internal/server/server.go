// Package server hosts rendered org charts over HTTP.
//
// The server is a thin chi router in front of a [pipeline.Runner]: every
// chart, layout and hit-test request goes through the same load, layout and
// render stages (and the same caches) as the CLI.
//
// Routes:
//
//	GET /healthz
//	GET /metrics
//	GET /api/orgs/{org}/{mode}/chart.{format}
//	GET /api/orgs/{org}/{mode}/layout
//	GET /api/orgs/{org}/{mode}/hit?x=&y=
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/orgchart/pkg/observability/prom"
	"github.com/matzehuels/orgchart/pkg/pipeline"
)

// Default timeouts.
const (
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds listener settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves charts produced by a Runner.
type Server struct {
	runner   *pipeline.Runner
	metrics  *prom.Registry
	logger   *log.Logger
	defaults pipeline.Options
}

// New creates a server. defaults seeds every request's pipeline options
// before query parameters are applied; metrics may be nil, in which case
// /metrics is not mounted.
func New(runner *pipeline.Runner, metrics *prom.Registry, logger *log.Logger, defaults pipeline.Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:   runner,
		metrics:  metrics,
		logger:   logger,
		defaults: defaults,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/orgs/{org}/{mode}", func(r chi.Router) {
		r.Get("/chart.{format}", s.handleChart)
		r.Get("/layout", s.handleLayout)
		r.Get("/hit", s.handleHit)
	})
	return r
}

// Run listens on cfg.Addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, cfg Config) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg Config) error {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	srv := &http.Server{
		Handler:      s.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server forced to shutdown", "error", err)
		return err
	}
	return <-errCh
}
