// Package server implements the feedwatch HTTP API server.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dwsmith1983/feedwatch/internal/server/handlers"
)

// Server is the feedwatch HTTP API server.
type Server struct {
	svc    handlers.StatusService
	pinger handlers.Pinger
	logger *slog.Logger
	router chi.Router
	addr   string
	srv    *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithPinger makes /api/health report "degraded" when p fails.
func WithPinger(p handlers.Pinger) Option {
	return func(s *Server) { s.pinger = p }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a new HTTP server. An empty apiKey disables authentication.
func New(addr string, svc handlers.StatusService, apiKey string, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		addr:   addr,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))
	r.Use(APIKeyMiddleware(apiKey))

	s.router = r
	s.registerRoutes(r)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("feedwatch server listening", "addr", s.addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
