// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematographus/internal/metrics"
	"github.com/tomtom215/cinematographus/internal/middleware"
)

// RouterConfig carries the transport settings the router needs. The
// default rate limit applies to the movie and user groups; a zero request
// count disables it.
type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type rateLimit struct {
	requests int
	window   time.Duration
}

// Auth endpoints keep fixed limits regardless of the configured default.
// Login gets the tightest window to slow credential stuffing.
var (
	authLimit   = rateLimit{requests: 5, window: time.Minute}
	loginLimit  = rateLimit{requests: 5, window: 5 * time.Minute}
	healthLimit = rateLimit{requests: 120, window: time.Minute}
)

// Router assembles the chi handler tree.
type Router struct {
	handler *Handler
	tokens  TokenValidator
	cfg     RouterConfig
	logger  zerolog.Logger
}

// NewRouter builds a router around the endpoint handlers and the token
// validator guarding the authenticated groups.
func NewRouter(handler *Handler, tokens TokenValidator, cfg RouterConfig, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		tokens:  tokens,
		cfg:     cfg,
		logger:  logger,
	}
}

// Routes returns the fully wired HTTP handler.
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(rt.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.corsOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(limitBy(healthLimit))
		r.Get("/", rt.handler.Health)
		r.Get("/ready", rt.handler.HealthReady)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(limitBy(authLimit))
		r.Use(middleware.Metrics)
		r.Post("/register", rt.handler.Register)
		r.With(limitBy(loginLimit)).Post("/login", rt.handler.Login)
	})

	r.Route("/api/v1/movies", func(r chi.Router) {
		r.Use(rt.defaultLimit())
		r.Use(middleware.Metrics)
		r.Use(middleware.Compression)
		r.Get("/search", rt.handler.MovieSearch)
		r.Get("/{id}/details", rt.handler.MovieDetails)
		r.With(Authenticate(rt.tokens)).Get("/discover", rt.handler.MovieDiscover)
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(rt.defaultLimit())
		r.Use(middleware.Metrics)
		r.Use(Authenticate(rt.tokens))
		r.Get("/genres", rt.handler.UserGenres)
		r.Put("/genres", rt.handler.ReplaceGenres)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeFail(w, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeFail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func (rt *Router) corsOrigins() []string {
	if len(rt.cfg.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return rt.cfg.CORSOrigins
}

func (rt *Router) defaultLimit() func(http.Handler) http.Handler {
	if rt.cfg.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return limitBy(rateLimit{requests: rt.cfg.RateLimitRequests, window: rt.cfg.RateLimitWindow})
}

func limitBy(rl rateLimit) func(http.Handler) http.Handler {
	return httprate.Limit(
		rl.requests,
		rl.window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimited),
	)
}

// rateLimited rejects throttled requests with the standard envelope so
// clients never see a bare 429 body.
func rateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
	writeFail(w, http.StatusTooManyRequests, "rate limit exceeded")
}
