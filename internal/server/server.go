// Package server exposes the detection pipeline over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	veilotel "github.com/veil-sh/veil/internal/otel"
	"github.com/veil-sh/veil/internal/pipeline"
)

const requestTimeout = 30 * time.Second

// Server holds the dependencies for the HTTP API.
type Server struct {
	router    *chi.Mux
	processor *pipeline.Processor
	limiter   *RateLimiter
	startTime time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithRateLimiter sets the request rate limiter (optional; no limiting when unset).
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) { s.limiter = rl }
}

// NewServer builds a Server around a pipeline processor.
func NewServer(processor *pipeline.Processor, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		processor: processor,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(requestTimeout))
	s.router.Use(veilotel.Middleware())
	if s.limiter != nil {
		s.router.Use(s.rateLimitMiddleware)
	}

	s.router.Get("/health", s.handleHealth)
	s.router.Post("/v1/detect", s.handleDetect)
	s.router.Post("/v1/redact", s.handleRedact)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// rateLimitMiddleware rejects requests over the configured rate with 429.
// Clients are keyed by RemoteAddr.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
