// Package server exposes the lineage pipeline over HTTP.
//
// Routes:
//
//	GET /healthz
//	GET /metrics
//	GET /api/v1/projects/{project}/workflows?search=
//	GET /api/v1/projects/{project}/workflows/{id}/relations
//	GET /api/v1/projects/{project}/lineage?ids=1,2&focus=1&labels=true&locale=zh
//	GET /api/v1/projects/{project}/lineage.svg?ids=1,2&focus=1
//	GET /api/v1/projects/{project}/lineage.dot?ids=1,2&focus=1
//
// Errors are written as {"code": "...", "message": "..."} with the status
// given by [errors.HTTPStatus].
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/pipeline"
)

// Default server settings.
const (
	DefaultAddr          = ":8080"
	DefaultReadTimeout   = 10 * time.Second
	DefaultWriteTimeout  = 60 * time.Second
	DefaultShutdownGrace = 5 * time.Second
)

// Config holds configuration for the HTTP server.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// Server serves lineage options and exports.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
	router chi.Router
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	s := &Server{runner: runner, logger: logger, cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		requestID,
		s.accessLog,
		instrument,
		middleware.Recoverer,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: kerrors.ErrCodeNotFound, Message: "no such route"})
	})

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/projects/{project}", func(r chi.Router) {
		r.Get("/workflows", s.handleSearch)
		r.Get("/workflows/{id}/relations", s.handleRelations)
		r.Get("/lineage", s.handleLineage)
		r.Get("/lineage.svg", s.handleExport(pipeline.FormatSVG, "image/svg+xml"))
		r.Get("/lineage.dot", s.handleExport(pipeline.FormatDOT, "text/vnd.graphviz; charset=utf-8"))
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext: func(net.Listener) context.Context {
			return egctx
		},
	}

	s.logger.Info("starting server", "addr", ln.Addr().String())

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownGrace)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
