// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package movies

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematographus/internal/aggregate"
	"github.com/tomtom215/cinematographus/internal/cache"
	"github.com/tomtom215/cinematographus/internal/config"
	"github.com/tomtom215/cinematographus/internal/models"
	"github.com/tomtom215/cinematographus/internal/store"
	"github.com/tomtom215/cinematographus/internal/upstream"
)

var discoverMessages = aggregate.Messages{
	Complete: "movies retrieved",
	Partial:  "movies retrieved without preference data",
}

// DiscoverService serves the genre_match aggregation: highly rated films
// matching a genre set, alongside the caller's stored preference profile.
// When the caller names no genres the stored profile supplies the set, so
// "recommend me something" works with an empty query.
//
// The discovery branch resolves genre names against the provider catalog
// itself rather than through a separate branch: a discovery payload
// without names is useless, so the lookup belongs to the same unit of
// work. The catalog is cached for a day, making the second fetch free.
type DiscoverService struct {
	orchestrator *aggregate.Orchestrator
	cache        *cache.Cache
	cfg          config.OperationConfig
	plan         aggregate.Plan
	discovery    DiscoveryClient
	store        PreferenceStore
	catalog      *catalogLoader
	posterBase   string
	logger       zerolog.Logger
}

// NewDiscoverService creates the genre_match service. posterBase is the
// absolute URL prefix for the provider's relative poster paths.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewDiscoverService(
	orch *aggregate.Orchestrator,
	c *cache.Cache,
	cfg config.OperationConfig,
	posterBase string,
	discovery DiscoveryClient,
	prefs PreferenceStore,
	logger zerolog.Logger,
) *DiscoverService {
	if posterBase != "" && !strings.HasSuffix(posterBase, "/") {
		posterBase += "/"
	}
	log := logger.With().Str("service", typeGenreMatch).Logger()
	return &DiscoverService{
		orchestrator: orch,
		cache:        c,
		cfg:          cfg,
		plan: aggregate.Plan{
			Type:      typeGenreMatch,
			Deadline:  cfg.Deadline,
			Mandatory: branchDiscovery,
			Messages:  discoverMessages,
		},
		discovery:  discovery,
		store:      prefs,
		catalog:    newCatalogLoader(discovery, c, log),
		posterBase: posterBase,
		logger:     log,
	}
}

// matchSubject is the cache key identity for one genre match call. The
// profile payload is per-user, so the user id is part of the key even
// when the genre set was given explicitly.
type matchSubject struct {
	UserID   string `json:"user_id"`
	GenreIDs []int  `json:"genre_ids"`
}

// Match discovers films for a genre set. An empty set falls back to the
// caller's stored preferences; if neither yields any genre the outcome is
// a subject-not-found failure.
func (s *DiscoverService) Match(ctx context.Context, userID string, genreIDs []int) aggregate.Envelope {
	ctx, cancel := context.WithTimeout(ctx, s.plan.Deadline)
	defer cancel()

	genreIDs = normalizeGenreIDs(genreIDs)
	if len(genreIDs) == 0 {
		stored, err := s.store.GetPreferences(ctx, userID)
		switch {
		case err == nil:
			genreIDs = normalizeGenreIDs(stored)
		case errors.Is(err, store.ErrUserNotFound):
			// No profile either; the discovery branch reports not found.
		default:
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("stored preferences unavailable for genre match")
		}
	}

	key := cache.Key(typeGenreMatch, matchSubject{UserID: userID, GenreIDs: genreIDs})
	if data, ok := s.cache.Get(key); ok {
		s.logger.Debug().Ints("genre_ids", genreIDs).Msg("genre match served from cache")
		return aggregate.Envelope{Status: aggregate.StatusSuccess, Message: discoverMessages.Complete, Data: data}
	}

	req := aggregate.Request{UserID: userID, GenreIDs: genreIDs}
	branches := []aggregate.Branch{
		{Name: branchDiscovery, Timeout: s.cfg.TimeoutFor(branchDiscovery), Invoke: s.discoveryBranch},
		{Name: branchProfile, Timeout: s.cfg.TimeoutFor(branchProfile), Invoke: s.profileBranch},
	}

	outcome := s.orchestrator.Run(ctx, s.plan, req, branches)
	env := aggregate.BuildEnvelope(outcome, s.plan.Messages)
	if outcome.Status == aggregate.Complete {
		s.cache.Set(key, env.Data)
	}
	return env
}

func (s *DiscoverService) discoveryBranch(ctx context.Context, req aggregate.Request) (any, error) {
	if len(req.GenreIDs) == 0 {
		return nil, aggregate.NewError(aggregate.KindNotFound, "no genres requested and no stored preferences")
	}
	raw, err := s.discovery.Discover(ctx, upstream.DiscoverQuery{
		GenreIDs: req.GenreIDs,
		Language: discoverLanguage,
		MinVote:  discoverMinVote,
		SortBy:   discoverSortBy,
	})
	if err != nil {
		return nil, err
	}
	names := s.catalog.names(ctx)
	movies := make([]models.DiscoveredMovie, 0, len(raw))
	for _, m := range raw {
		movies = append(movies, models.DiscoveredMovie{
			TMDBID: m.ID,
			Title:  m.Title,
			Year:   yearOf(m.ReleaseDate),
			Poster: s.posterURL(m.PosterPath),
			Genre:  joinGenreNames(m.GenreIDs, names),
			Rating: math.Round(m.VoteAverage*10) / 10,
		})
	}
	sortDiscovered(movies)
	return movies, nil
}

func (s *DiscoverService) profileBranch(ctx context.Context, req aggregate.Request) (any, error) {
	prefs, err := s.store.GetPreferences(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, aggregate.NewError(aggregate.KindNotFound, "user has no stored profile")
		}
		return nil, err
	}
	return prefs, nil
}

// yearOf extracts the year from a provider release date ("2010-07-15").
func yearOf(releaseDate string) string {
	year, _, _ := strings.Cut(releaseDate, "-")
	return year
}

func (s *DiscoverService) posterURL(path string) string {
	if path == "" {
		return ""
	}
	return s.posterBase + strings.TrimPrefix(path, "/")
}

// joinGenreNames renders a film's genre ids as the comma-joined name
// list. Ids missing from the catalog index are skipped.
func joinGenreNames(ids []int, names map[int]string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if name := names[id]; name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}

// sortDiscovered orders discovery results by rating, best first, stable
// so the provider's popularity order breaks ties.
func sortDiscovered(movies []models.DiscoveredMovie) {
	sort.SliceStable(movies, func(i, j int) bool {
		return movies[i].Rating > movies[j].Rating
	})
}
