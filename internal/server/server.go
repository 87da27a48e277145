// Package server exposes the catalog over HTTP as a JSON API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/retrodex-labs/retrodex/pkg/core"
)

// Config holds configuration for the API server.
type Config struct {
	Store  core.Store
	Addr   string
	Logger *slog.Logger
}

// Server is the catalog API server.
type Server struct {
	store  core.Store
	addr   string
	logger *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		store:  cfg.Store,
		addr:   cfg.Addr,
		logger: logger,
	}
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		requestID,
		s.accessLog,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	h := newHandlers(s.store, s.logger)

	r.Get("/healthz", h.Healthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cores", func(r chi.Router) {
			r.Get("/", h.ListCores)
			r.Post("/", h.CreateCore)
			r.Get("/{core}", h.GetCore)
			r.Get("/{core}/systems", h.GetCoreSystems)
			r.Get("/{core}/releases", h.ListCoreReleases)
		})
		r.Route("/systems", func(r chi.Router) {
			r.Get("/", h.ListSystems)
			r.Get("/{system}", h.GetSystem)
		})
		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.ListTeams)
			r.Get("/{team}", h.GetTeam)
		})
		r.Route("/platforms", func(r chi.Router) {
			r.Get("/", h.ListPlatforms)
			r.Get("/{platform}", h.GetPlatform)
		})
	})

	return r
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting API server", slog.String("addr", s.addr))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
