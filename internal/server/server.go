// Package server exposes the store and planner contracts over HTTP.
// It is the boundary a rendering layer calls; it renders nothing
// itself.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"weekly-planner/internal/service"
	"weekly-planner/internal/store"
)

type Server struct {
	store   *store.Store
	planner *service.PlannerService
	log     *zap.Logger
}

func New(st *store.Store, planner *service.PlannerService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{store: st, planner: planner, log: log}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Patch("/tasks/{id}", s.handlePatchTask)
		r.Delete("/tasks/{id}", s.handleDeleteTask)
		r.Post("/backlog/reorder", s.handleReorderBacklog)
		r.Get("/week", s.handleWeekView)
		r.Route("/resize", func(r chi.Router) {
			r.Post("/begin", s.handleResizeBegin)
			r.Post("/move", s.handleResizeMove)
			r.Post("/end", s.handleResizeEnd)
			r.Post("/cancel", s.handleResizeCancel)
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
