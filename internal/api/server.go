// Package api exposes the persistence gateway contract over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flowforge/flowforge/internal/config"
	"github.com/flowforge/flowforge/internal/gateway"
	"github.com/flowforge/flowforge/internal/metrics"
)

// Server is the HTTP API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	gw         gateway.Gateway
	config     *config.APIConfig
	logger     *slog.Logger
	metrics    *metrics.Metrics
	startTime  time.Time
}

// ServerOptions configures a Server.
type ServerOptions struct {
	Gateway gateway.Gateway
	Config  *config.APIConfig
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// NewServer creates a new API server.
func NewServer(opts ServerOptions) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		gw:        opts.Gateway,
		config:    opts.Config,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		startTime: time.Now(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.HTTPMiddleware)
	}

	// Health check (no auth required)
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", s.handleListCampaigns)
			r.Post("/", s.handleCreateCampaign)
			r.Get("/{id}", s.handleGetCampaign)
			r.Patch("/{id}", s.handleUpdateCampaign)
			r.Delete("/{id}", s.handleDeleteCampaign)
			r.Put("/{id}/status", s.handleUpdateStatus)
		})
	})
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP API server", "addr", s.config.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
