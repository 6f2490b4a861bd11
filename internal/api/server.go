// Package api exposes the company directory and enrichment pipeline
// over HTTP: JSON CRUD endpoints plus a server-sent-event stream for
// enrichment progress.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/portstack/beacon/internal/enrich"
	"github.com/portstack/beacon/internal/store"
)

// Enricher is the slice of the enrichment pipeline the API needs.
type Enricher interface {
	Stream(ctx context.Context, in enrich.Input) (<-chan enrich.Event, error)
}

// Server holds the handlers' dependencies.
type Server struct {
	store    store.Store
	enricher Enricher
}

func NewServer(st store.Store, enricher Enricher) *Server {
	return &Server{store: st, enricher: enricher}
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/companies", func(r chi.Router) {
		r.Get("/", s.handleListCompanies)
		r.Post("/", s.handleCreateCompany)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetCompany)
			r.Put("/", s.handleUpdateCompany)
			r.Delete("/", s.handleDeleteCompany)
			r.Patch("/star", s.handleStarCompany)
			r.Post("/enrich", s.handleEnrichCompany)
			r.Get("/runs", s.handleListRuns)

			r.Get("/notes", s.handleListNotes)
			r.Post("/notes", s.handleCreateNote)
			r.Patch("/notes/{noteId}", s.handleUpdateNote)
			r.Delete("/notes/{noteId}", s.handleDeleteNote)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) serverError(w http.ResponseWriter, action string, err error) {
	zap.L().Error(action, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
