// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

// Package main is the entry point for the Cinematographus server.
//
// Cinematographus aggregates movie metadata from independent upstream
// providers (OMDb, TMDb, YouTube, Spotify, streaming availability, trivia
// generation) into single responses, and recommends movies based on stored
// per-user genre preferences. Every aggregation fans out concurrently with
// per-branch timeouts, so one slow provider degrades the answer instead of
// stalling it.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, optional YAML file, environment
//     variables (Koanf v2)
//  2. Store: embedded BadgerDB holding accounts and genre preferences
//  3. Upstream clients: rate-limited, circuit-broken HTTP clients per provider
//  4. Aggregation: the orchestrator, the response cache and the four
//     aggregation operations (details, search, discovery, user genres)
//  5. Authentication: registration with optional email verification, JWT login
//  6. HTTP server: chi router served under a suture supervision tree
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config.yaml, built-in defaults.
// Provider credentials come from the environment:
//
//   - OMDB_API_KEY: OMDb metadata and title search
//   - TMDB_API_KEY: TMDb discovery and the genre catalog (v4 read token)
//   - YOUTUBE_API_KEY: trailer lookups
//   - SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET: soundtrack lookups
//   - STREAMING_AVAILABILITY_API_KEY: streaming availability
//   - GROQ_API_KEY: trivia generation
//   - ABSTRACT_API_KEY: registration email verification (optional)
//   - SECRET_KEY: 32+ character JWT signing secret
//
// A provider left without credentials still starts; its branches report as
// unavailable and aggregation degrades per the partial-failure rules.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (bounded by HTTP_SHUTDOWN_TIMEOUT)
//   - Stops the maintenance loops and closes the store
//
// # Example Usage
//
// Development run with metadata and discovery only:
//
//	export OMDB_API_KEY=your-omdb-key
//	export TMDB_API_KEY=your-tmdb-token
//	export SECRET_KEY=$(openssl rand -base64 32)
//	./cinematographus
//
// Docker:
//
//	docker run -d \
//	  -e OMDB_API_KEY=your-omdb-key \
//	  -e TMDB_API_KEY=your-tmdb-token \
//	  -e SECRET_KEY=your-signing-secret \
//	  -v cinematographus-data:/var/lib/cinematographus \
//	  -p 8080:8080 \
//	  ghcr.io/tomtom215/cinematographus
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/tomtom215/cinematographus/internal/aggregate"
	"github.com/tomtom215/cinematographus/internal/api"
	"github.com/tomtom215/cinematographus/internal/auth"
	"github.com/tomtom215/cinematographus/internal/cache"
	"github.com/tomtom215/cinematographus/internal/config"
	"github.com/tomtom215/cinematographus/internal/logging"
	"github.com/tomtom215/cinematographus/internal/metrics"
	"github.com/tomtom215/cinematographus/internal/movies"
	"github.com/tomtom215/cinematographus/internal/store"
	"github.com/tomtom215/cinematographus/internal/supervisor"
	"github.com/tomtom215/cinematographus/internal/supervisor/services"
	"github.com/tomtom215/cinematographus/internal/upstream"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().Str("version", version).Msg("Starting Cinematographus")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	logging.Info().
		Str("store_path", cfg.Store.Path).
		Str("streaming_country", cfg.Upstreams.Streaming.Country).
		Bool("email_verification", cfg.Auth.EmailVerification).
		Msg("Configuration loaded")

	st, err := store.Open(store.Config{
		Path:       cfg.Store.Path,
		SyncWrites: cfg.Store.SyncWrites,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Msg("Store opened")

	logger := logging.Logger()

	// Upstream provider clients. Each carries its own rate limiter and
	// circuit breaker; a client without credentials fails per request and
	// surfaces through the aggregation degradation rules.
	oc := cfg.Upstreams.OMDb
	omdb := upstream.NewOMDb(upstream.Options{
		Provider: "omdb", BaseURL: oc.BaseURL, APIKey: oc.APIKey,
		Timeout: oc.Timeout, RateLimit: oc.RateLimit, RateBurst: oc.RateBurst,
		MaxRetries: oc.MaxRetries, RetryDelay: oc.RetryDelay,
	})
	tc := cfg.Upstreams.TMDB
	tmdb := upstream.NewTMDB(upstream.Options{
		Provider: "tmdb", BaseURL: tc.BaseURL, APIKey: tc.APIKey,
		Timeout: tc.Timeout, RateLimit: tc.RateLimit, RateBurst: tc.RateBurst,
		MaxRetries: tc.MaxRetries, RetryDelay: tc.RetryDelay,
	})
	yc := cfg.Upstreams.YouTube
	youtube := upstream.NewYouTube(upstream.Options{
		Provider: "youtube", BaseURL: yc.BaseURL, APIKey: yc.APIKey,
		Timeout: yc.Timeout, RateLimit: yc.RateLimit, RateBurst: yc.RateBurst,
		MaxRetries: yc.MaxRetries, RetryDelay: yc.RetryDelay,
	})
	sc := cfg.Upstreams.Spotify
	spotify := upstream.NewSpotify(
		upstream.Options{
			Provider: "spotify", BaseURL: sc.BaseURL,
			Timeout: sc.Timeout, RateLimit: sc.RateLimit, RateBurst: sc.RateBurst,
			MaxRetries: sc.MaxRetries, RetryDelay: sc.RetryDelay,
		},
		upstream.SpotifyCredentials{
			ClientID:     sc.ClientID,
			ClientSecret: sc.ClientSecret,
			TokenURL:     sc.TokenURL,
		},
	)
	vc := cfg.Upstreams.Streaming
	streaming := upstream.NewStreaming(upstream.Options{
		Provider: "streaming", BaseURL: vc.BaseURL, APIKey: vc.APIKey,
		Timeout: vc.Timeout, RateLimit: vc.RateLimit, RateBurst: vc.RateBurst,
		MaxRetries: vc.MaxRetries, RetryDelay: vc.RetryDelay,
	})
	gc := cfg.Upstreams.Trivia
	trivia := upstream.NewTrivia(
		upstream.Options{
			Provider: "trivia", BaseURL: gc.BaseURL, APIKey: gc.APIKey,
			Timeout: gc.Timeout, RateLimit: gc.RateLimit, RateBurst: gc.RateBurst,
			MaxRetries: gc.MaxRetries, RetryDelay: gc.RetryDelay,
		},
		gc.Model,
	)

	// Aggregation core: one orchestrator and one response cache shared by
	// all four operations.
	orchestrator := aggregate.New(logger)
	responseCache := cache.New("aggregation", cfg.Cache.TTL)

	detailsSvc := movies.NewDetailsService(
		orchestrator, responseCache, cfg.Aggregation.MovieDetails,
		cfg.Upstreams.Streaming.Country,
		omdb, youtube, spotify, streaming, trivia, logger,
	)
	searchSvc := movies.NewSearchService(orchestrator, responseCache, cfg.Aggregation.TitleSearch, omdb, logger)
	discoverSvc := movies.NewDiscoverService(
		orchestrator, responseCache, cfg.Aggregation.GenreMatch,
		cfg.Upstreams.TMDB.PosterBaseURL,
		tmdb, st, logger,
	)
	genresSvc := movies.NewGenresService(orchestrator, responseCache, cfg.Aggregation.UserGenres, tmdb, st, logger)

	// Authentication: JWT issuance plus optional registration email
	// verification through the Abstract API.
	tokens, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create token manager")
	}
	var verifier auth.EmailVerifier
	if cfg.Auth.EmailVerification {
		ec := cfg.Upstreams.EmailCheck
		verifier = upstream.NewEmailCheck(upstream.Options{
			Provider: "email_check", BaseURL: ec.BaseURL, APIKey: ec.APIKey,
			Timeout: ec.Timeout, RateLimit: ec.RateLimit, RateBurst: ec.RateBurst,
			MaxRetries: ec.MaxRetries, RetryDelay: ec.RetryDelay,
		})
	}
	authSvc := auth.NewService(st, tokens, verifier, logger)

	readiness := func(ctx context.Context) error {
		_, err := st.CountUsers(ctx)
		return err
	}
	handler := api.NewHandler(detailsSvc, searchSvc, discoverSvc, genresSvc, authSvc, readiness, version, logger)
	router := api.NewRouter(handler, tokens, api.RouterConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitReqs,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	}, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddMaintenanceService(cache.NewJanitor(responseCache, cfg.Cache.SweepInterval, logger))
	tree.AddMaintenanceService(store.NewGCService(st, cfg.Store.GCInterval, cfg.Store.GCDiscardRatio, logger))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel until the supervisor has fully stopped
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
