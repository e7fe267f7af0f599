// Package server exposes a read-only JSON API over the tracker.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Config holds configuration for the API server
type Config struct {
	Tracker tracker.Service
	Version string
	Logger  zerolog.Logger
}

// Server is the promile HTTP API server.
type Server struct {
	tracker tracker.Service
	router  chi.Router
	version string
	started time.Time
	logger  zerolog.Logger
}

// New creates a new Server
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Tracker == nil {
		return nil, errors.New("tracker service cannot be nil")
	}

	s := &Server{
		tracker: cfg.Tracker,
		version: cfg.Version,
		started: time.Now(),
		logger:  cfg.Logger.With().Str("component", "http").Logger(),
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/guilds/{guildID}", func(r chi.Router) {
			r.Get("/leaderboard/consumption", s.handleConsumption)
			r.Get("/leaderboard/intoxication", s.handleIntoxication)
			r.Get("/users/{userID}", s.handleUserStatus)
		})
	})

	s.router = r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps tracker errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, tracker.ErrUserNotFound):
		return http.StatusNotFound
	case tracker.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	guilds, err := s.tracker.ListGuilds(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"guilds":  len(guilds),
	})
}
