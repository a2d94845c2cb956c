// Package api exposes the typing service over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/verte-zerg/typist/internal/auth"
	"github.com/verte-zerg/typist/internal/session"
)

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires HTTP routes to the account, token, and session services.
type Server struct {
	accounts *auth.Accounts
	tokens   *auth.Tokens
	sessions *session.Service
	health   Pinger
	router   chi.Router
}

// NewServer builds the router. logger receives access and error logs.
func NewServer(accounts *auth.Accounts, tokens *auth.Tokens, sessions *session.Service, health Pinger, logger zerolog.Logger) *Server {
	s := &Server{
		accounts: accounts,
		tokens:   tokens,
		sessions: sessions,
		health:   health,
		router:   chi.NewRouter(),
	}
	s.routes(logger)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(logger zerolog.Logger) {
	r := s.router
	r.Use(hlog.NewHandler(logger))
	r.Use(requestID)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/users/{id}", s.handleGetUser)

		r.Route("/typing", func(r chi.Router) {
			r.Post("/sessions/start", s.handleStart)
			r.Get("/sessions/history", s.handleHistory)
			r.Route("/sessions/{sid}", func(r chi.Router) {
				r.Post("/keystrokes", s.handleKeystrokes)
				r.Put("/input", s.handleInput)
				r.Post("/end", s.handleEnd)
				r.Post("/complete", s.handleComplete)
				r.Post("/restart", s.handleRestart)
				r.Get("/summary", s.handleSummary)
				r.Get("/analysis", s.handleAnalysis)
			})
			r.Route("/analytics", func(r chi.Router) {
				r.Get("/character-problems", s.handleCharacterProblems)
				r.Get("/progress", s.handleProgress)
				r.Get("/profile", s.handleProfile)
			})
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("health check failed")
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
