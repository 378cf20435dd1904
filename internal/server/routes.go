package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	r := s.router

	r.Get("/version", s.getVersion)
	r.Get("/status", s.getStatus)

	// Task queue
	r.Post("/task", s.appendTask)
	r.Post("/plan", s.appendPlan)
	r.Post("/start", s.start)
	r.Post("/stop", s.stop)

	r.Route("/items", func(r chi.Router) {
		r.Get("/", s.itemCount)
		r.Get("/{itemID}", s.getItem)
	})

	// Event streaming (SSE)
	r.Get("/event", s.events)
}
