package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/dwsmith1983/feedwatch/internal/server/handlers"
)

func (s *Server) registerRoutes(r chi.Router) {
	h := handlers.New(s.svc, s.pinger)
	h.SetLogger(s.logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/feeds", h.ListFeeds)
		r.Get("/feed-status/{date}", h.FeedStatuses)
		r.Get("/feed-status/{date}/{feed}", h.FeedStatus)
	})
}
