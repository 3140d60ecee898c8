// Package server exposes the engine over a local JSON API with a
// Server-Sent Events stream of engine changes.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/handlers"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/engine"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	eng      *engine.Engine
	routines domain.RoutineSource
	history  domain.HistoryStore
	log      *logger.Logger
	router   chi.Router
	origins  []string
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins replaces the default localhost-only CORS origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// New creates a Server with all routes configured.
func New(eng *engine.Engine, routines domain.RoutineSource, history domain.HistoryStore, log *logger.Logger, opts ...Option) *Server {
	s := &Server{
		eng:      eng,
		routines: routines,
		history:  history,
		log:      log,
		router:   chi.NewRouter(),
		origins:  []string{"http://localhost:*", "http://127.0.0.1:*"},
	}
	for _, o := range opts {
		o(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handle mounts an extra handler, e.g. the MCP endpoint.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.router.Handle(pattern, h)
}

func (s *Server) routes() {
	s.router.Use(handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.log}),
	))
	s.router.Use(RequestLogging(s.log))
	s.router.Use(handlers.CORS(
		handlers.AllowedOriginValidator(originAllowed(s.origins)),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	))

	s.router.Get("/api/status", s.handleStatus)
	s.router.Get("/api/events", s.handleEvents)
	s.router.Get("/api/routines", s.handleRoutines)
	s.router.Get("/api/history", s.handleHistory)
	s.router.Get("/api/bests", s.handleBests)

	s.router.Route("/api/session", func(r chi.Router) {
		r.Post("/", s.handleStart)
		r.Delete("/", s.handleDiscard)
		r.Post("/end", s.handleEnd)
		r.Put("/minimized", s.handleMinimized)

		r.Delete("/exercises/{exerciseID}", s.handleRemoveExercise)
		r.Post("/exercises/{exerciseID}/sets", s.handleAddSet)
		r.Patch("/exercises/{exerciseID}/sets/{setID}", s.handleUpdateSet)
		r.Delete("/exercises/{exerciseID}/sets/{setID}", s.handleRemoveSet)
		r.Put("/exercises/{exerciseID}/sets/{setID}/complete", s.handleCompletion)
	})

	s.router.Route("/api/rest", func(r chi.Router) {
		r.Post("/pause", s.command(s.eng.PauseRest))
		r.Post("/resume", s.command(s.eng.ResumeRest))
		r.Post("/skip", s.command(s.eng.SkipRest))
		r.Post("/add", s.handleAddRest)
		r.Put("/duration", s.handleRestDuration)
	})

	s.router.Route("/api/quick", func(r chi.Router) {
		r.Post("/", s.handleQuickStart)
		r.Delete("/", s.command(s.eng.StopQuickTimer))
		r.Post("/pause", s.command(s.eng.PauseQuickTimer))
		r.Post("/resume", s.command(s.eng.ResumeQuickTimer))
		r.Post("/add", s.handleQuickAdd)
	})

	s.router.Route("/api/interval", func(r chi.Router) {
		r.Post("/", s.handleIntervalStart)
		r.Delete("/", s.command(s.eng.StopInterval))
		r.Post("/pause", s.command(s.eng.PauseInterval))
		r.Post("/resume", s.command(s.eng.ResumeInterval))
	})

	s.router.Route("/api/superset", func(r chi.Router) {
		r.Post("/{supersetID}", s.handleSupersetStart)
		r.Delete("/", s.command(s.eng.CloseSuperset))
		r.Post("/complete", s.handleSupersetComplete)
		r.Post("/advance", s.command(s.eng.SupersetAdvance))
		r.Post("/add", s.handleSupersetAdd)
		r.Post("/more", s.command(s.eng.SupersetOneMoreRound))
		r.Put("/visible", s.handleVisible)
	})

	s.router.Route("/api/reorganize", func(r chi.Router) {
		r.Post("/", s.handleReorganizeBegin)
		r.Delete("/", s.command(s.eng.CancelReorganize))
		r.Post("/moves", s.handleReorganizeMove)
		r.Post("/save", s.command(s.eng.SaveReorganize))
	})
}
