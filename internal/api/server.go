// Package api exposes the challenge lifecycle over HTTP: issuing new
// challenges, verifying answers, and serving hints. The generation core
// stays behind a function value so the serving layer and tests can swap it.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/timeblind/timeblind-go/internal/captcha"
	"github.com/timeblind/timeblind-go/internal/store"
)

// Challenge lifecycle limits, matching the original service.
const (
	ChallengeTTL = 180 * time.Second
	MaxAttempts  = 5
)

// GenerateFunc produces a challenge. Injected so tests can avoid the
// encoder backend.
type GenerateFunc func(ctx context.Context, req captcha.Request) (*captcha.Challenge, error)

// Server handles HTTP requests.
type Server struct {
	db       store.DB
	generate GenerateFunc
	logger   *log.Logger
}

// NewServer creates an API server over the given store. A nil generate
// falls back to the real pipeline.
func NewServer(db store.DB, generate GenerateFunc) *Server {
	if generate == nil {
		generate = captcha.Generate
	}
	return &Server{
		db:       db,
		generate: generate,
		logger:   log.New(os.Stdout, "", log.LstdFlags|log.LUTC),
	}
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	r.Post("/captcha/new", s.handleNewChallenge)
	r.Post("/captcha/verify", s.handleVerify)
	r.Get("/captcha/hint/{id}", s.handleHint)
	r.Get("/captcha/modes", s.handleModes)
	r.Get("/healthz", s.handleHealth)

	return r
}

// SweepExpired runs the TTL sweeper until the context is canceled.
func (s *Server) SweepExpired(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.db.DeleteExpired(ctx, time.Now())
			if err != nil {
				s.logger.Printf("sweep_expired_failed err=%q", err)
				continue
			}
			if n > 0 {
				s.logger.Printf("sweep_expired removed=%d", n)
			}
		}
	}
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a structured error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string, context map[string]interface{}) {
	s.writeJSON(w, status, APIError{
		Type:      errType,
		Message:   message,
		Context:   context,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
