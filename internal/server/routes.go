package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler builds the router with all API endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&logFormatter{logger: s.logger}))
	r.Use(middleware.Recoverer)
	r.Use(s.cors.handler)

	r.Route("/api", func(api chi.Router) {
		api.Post("/generate", s.handleGenerate)
		api.Post("/login", s.handleLogin)
		api.Post("/logout", s.handleLogout)

		api.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/plan", s.handleGetPlan)
			r.Post("/reconcile", s.handleReconcile)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.handleListTasks)
				r.Post("/", s.handleCreateTask)
				r.Put("/{id}", s.handleUpdateTask)
				r.Post("/{id}/toggle", s.handleToggleTask)
				r.Post("/{id}/subtasks/{subtaskId}/toggle", s.handleToggleSubtask)
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", s.handleListEvents)
				r.Post("/", s.handleCreateEvent)
				r.Put("/{id}", s.handleUpdateEvent)
				r.Delete("/{id}", s.handleDeleteEvent)
			})

			r.Post("/chat", s.handleChat)
			r.Get("/chat", s.handleTranscript)
			r.Post("/quote", s.handleQuote)
		})
	})

	return r
}
