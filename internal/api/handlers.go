// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematographus/internal/aggregate"
	"github.com/tomtom215/cinematographus/internal/auth"
	"github.com/tomtom215/cinematographus/internal/models"
	"github.com/tomtom215/cinematographus/internal/movies"
	"github.com/tomtom215/cinematographus/internal/store"
	"github.com/tomtom215/cinematographus/internal/validation"
)

// maxBodyBytes caps request bodies; nothing we accept is remotely close.
const maxBodyBytes = 1 << 20

// DetailsProvider aggregates the full record for a single movie.
type DetailsProvider interface {
	Details(ctx context.Context, movieID string) aggregate.Envelope
}

// SearchProvider aggregates a ranked title search.
type SearchProvider interface {
	Search(ctx context.Context, title string) aggregate.Envelope
}

// MatchProvider aggregates genre-based discovery for a user.
type MatchProvider interface {
	Match(ctx context.Context, userID string, genreIDs []int) aggregate.Envelope
}

// GenresProvider aggregates the genre catalog merged with a user's
// preferences, and replaces those preferences.
type GenresProvider interface {
	UserGenres(ctx context.Context, userID string) aggregate.Envelope
	ReplacePreferences(ctx context.Context, userID string, genreIDs []int) error
}

// Authenticator registers accounts and exchanges credentials for tokens.
// *auth.Service satisfies it.
type Authenticator interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error)
}

// Handler owns the endpoint implementations. All state is read-only after
// construction, so a single instance serves every request.
type Handler struct {
	details DetailsProvider
	search  SearchProvider
	match   MatchProvider
	genres  GenresProvider
	auth    Authenticator

	readiness func(ctx context.Context) error
	version   string
	started   time.Time
	logger    zerolog.Logger
}

// NewHandler wires the endpoint handlers. readiness is probed by
// GET /api/v1/health/ready and may be nil, which reports ready.
func NewHandler(
	details DetailsProvider,
	search SearchProvider,
	match MatchProvider,
	genres GenresProvider,
	authn Authenticator,
	readiness func(ctx context.Context) error,
	version string,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		details:   details,
		search:    search,
		match:     match,
		genres:    genres,
		auth:      authn,
		readiness: readiness,
		version:   version,
		started:   time.Now(),
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// MovieDetails handles GET /api/v1/movies/{id}/details.
func (h *Handler) MovieDetails(w http.ResponseWriter, r *http.Request) {
	movieID := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := validation.GetValidator().Var(movieID, "imdbid"); err != nil {
		writeFail(w, http.StatusBadRequest, "movie id must be an IMDb title id")
		return
	}

	writeAggregate(w, h.details.Details(r.Context(), movieID))
}

// MovieSearch handles GET /api/v1/movies/search?title=...
func (h *Handler) MovieSearch(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		writeFail(w, http.StatusBadRequest, "title query parameter is required")
		return
	}

	writeAggregate(w, h.search.Search(r.Context(), title))
}

// MovieDiscover handles GET /api/v1/movies/discover?genres=28,12 for an
// authenticated user. Without the genres parameter the match falls back
// to the user's stored preferences.
func (h *Handler) MovieDiscover(w http.ResponseWriter, r *http.Request) {
	genreIDs, err := parseGenreList(r.URL.Query().Get("genres"))
	if err != nil {
		writeFail(w, http.StatusBadRequest, "genres must be a comma-separated list of numeric ids")
		return
	}

	writeAggregate(w, h.match.Match(r.Context(), UserID(r.Context()), genreIDs))
}

// UserGenres handles GET /api/v1/users/genres.
func (h *Handler) UserGenres(w http.ResponseWriter, r *http.Request) {
	writeAggregate(w, h.genres.UserGenres(r.Context(), UserID(r.Context())))
}

// ReplaceGenres handles PUT /api/v1/users/genres.
func (h *Handler) ReplaceGenres(w http.ResponseWriter, r *http.Request) {
	var req models.PreferencesUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		writeFail(w, http.StatusBadRequest, verr.Error())
		return
	}

	err := h.genres.ReplacePreferences(r.Context(), UserID(r.Context()), req.Preferences)
	switch {
	case errors.Is(err, movies.ErrUnknownGenre):
		writeFail(w, http.StatusBadRequest, err.Error())
	case err != nil:
		h.logger.Error().Err(err).Msg("replacing preferences failed")
		writeError(w, http.StatusInternalServerError, "could not update preferences")
	default:
		writeSuccess(w, http.StatusOK, "preferences updated", nil)
	}
}

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		writeFail(w, http.StatusBadRequest, verr.Error())
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		writeFail(w, http.StatusConflict, "email address already registered")
	case errors.Is(err, auth.ErrEmailRejected):
		writeFail(w, http.StatusBadRequest, "email address was rejected")
	case err != nil:
		h.logger.Error().Err(err).Msg("registration failed")
		writeError(w, http.StatusInternalServerError, "could not create account")
	default:
		writeSuccess(w, http.StatusCreated, "account created", user)
	}
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		writeFail(w, http.StatusBadRequest, verr.Error())
		return
	}

	token, err := h.auth.Login(r.Context(), req)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeFail(w, http.StatusUnauthorized, "invalid email or password")
	case err != nil:
		h.logger.Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, "could not log in")
	default:
		writeSuccess(w, http.StatusOK, "login successful", token)
	}
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "service is up", map[string]any{
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// HealthReady handles GET /api/v1/health/ready. It answers 503 while the
// store probe fails so load balancers keep traffic away during startup
// and shutdown.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.readiness != nil {
		if err := h.readiness(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("readiness probe failed")
			writeError(w, http.StatusServiceUnavailable, "service is not ready")
			return
		}
	}
	writeSuccess(w, http.StatusOK, "service is ready", nil)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// parseGenreList turns "28, 12,878" into numeric ids, preserving order.
// An empty or absent parameter is nil, letting the match fall back to
// stored preferences.
func parseGenreList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
