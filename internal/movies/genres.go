// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package movies

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematographus/internal/aggregate"
	"github.com/tomtom215/cinematographus/internal/cache"
	"github.com/tomtom215/cinematographus/internal/config"
	"github.com/tomtom215/cinematographus/internal/models"
	"github.com/tomtom215/cinematographus/internal/store"
)

// ErrUnknownGenre is returned when a preference update names a genre id
// absent from the provider catalog.
var ErrUnknownGenre = errors.New("unknown genre id")

var genresMessages = aggregate.Messages{
	Complete: "genres and preferences retrieved",
	Partial:  "genres retrieved without preference data",
}

// GenresService serves the user_genres aggregation: the provider's genre
// catalog fetched concurrently with the caller's stored preferences, then
// merged into one list flagging each genre as preferred or not.
//
// This is the one operation whose envelope data is a composed payload
// rather than the raw branch map: the merge is the operation's whole
// point, so the service folds the two branch payloads into
// {"user_genres": [...]} after the outcome settles. A partial outcome
// (catalog fetched, preferences unreadable) still renders the catalog,
// with every flag false and the partial message signalling the gap.
type GenresService struct {
	orchestrator *aggregate.Orchestrator
	cache        *cache.Cache
	cfg          config.OperationConfig
	plan         aggregate.Plan
	catalog      *catalogLoader
	store        PreferenceStore
	logger       zerolog.Logger
}

// NewGenresService creates the user_genres service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewGenresService(
	orch *aggregate.Orchestrator,
	c *cache.Cache,
	cfg config.OperationConfig,
	discovery DiscoveryClient,
	prefs PreferenceStore,
	logger zerolog.Logger,
) *GenresService {
	log := logger.With().Str("service", typeUserGenres).Logger()
	return &GenresService{
		orchestrator: orch,
		cache:        c,
		cfg:          cfg,
		plan: aggregate.Plan{
			Type:      typeUserGenres,
			Deadline:  cfg.Deadline,
			Mandatory: branchCatalog,
			Messages:  genresMessages,
		},
		catalog: newCatalogLoader(discovery, c, log),
		store:   prefs,
		logger:  log,
	}
}

// UserGenres returns the genre catalog merged with one user's preference
// flags.
func (s *GenresService) UserGenres(ctx context.Context, userID string) aggregate.Envelope {
	key := cache.Key(typeUserGenres, userID)
	if data, ok := s.cache.Get(key); ok {
		s.logger.Debug().Str("user_id", userID).Msg("user genres served from cache")
		return aggregate.Envelope{Status: aggregate.StatusSuccess, Message: genresMessages.Complete, Data: data}
	}

	req := aggregate.Request{UserID: userID}
	branches := []aggregate.Branch{
		{Name: branchCatalog, Timeout: s.cfg.TimeoutFor(branchCatalog), Invoke: s.catalogBranch},
		{Name: branchPreferences, Timeout: s.cfg.TimeoutFor(branchPreferences), Invoke: s.preferencesBranch},
	}

	outcome := s.orchestrator.Run(ctx, s.plan, req, branches)
	env := aggregate.BuildEnvelope(outcome, s.plan.Messages)
	if env.Status == aggregate.StatusSuccess {
		env.Data = map[string]any{"user_genres": mergeUserGenres(outcome)}
	}
	if outcome.Status == aggregate.Complete {
		s.cache.Set(key, env.Data)
	}
	return env
}

func (s *GenresService) catalogBranch(ctx context.Context, _ aggregate.Request) (any, error) {
	return s.catalog.genres(ctx)
}

func (s *GenresService) preferencesBranch(ctx context.Context, req aggregate.Request) (any, error) {
	prefs, err := s.store.GetPreferences(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, aggregate.NewError(aggregate.KindNotFound, "user has no stored preferences")
		}
		return nil, err
	}
	return prefs, nil
}

// mergeUserGenres joins the catalog branch with the preferences branch.
// A failed preferences branch contributes no ids, leaving every flag
// false.
func mergeUserGenres(o aggregate.Outcome) []models.UserGenre {
	catalog, _ := o.Results[branchCatalog].Payload().([]models.Genre)
	prefs, _ := o.Results[branchPreferences].Payload().([]int)

	preferred := make(map[int]bool, len(prefs))
	for _, id := range prefs {
		preferred[id] = true
	}

	merged := make([]models.UserGenre, 0, len(catalog))
	for _, g := range catalog {
		merged = append(merged, models.UserGenre{
			GenreID:     g.GenreID,
			Name:        g.Name,
			IsPreferred: preferred[g.GenreID],
		})
	}
	return merged
}

// ReplacePreferences overwrites a user's preferred genre set. Ids are
// validated against the provider catalog when it is reachable; when it is
// not, the write is accepted unvalidated rather than blocking the user on
// an upstream outage. The user's cached genre merge is invalidated.
func (s *GenresService) ReplacePreferences(ctx context.Context, userID string, genreIDs []int) error {
	genreIDs = normalizeGenreIDs(genreIDs)

	catalog, err := s.catalog.genres(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("genre catalog unavailable, accepting preferences unvalidated")
	} else {
		known := make(map[int]bool, len(catalog))
		for _, g := range catalog {
			known[g.GenreID] = true
		}
		for _, id := range genreIDs {
			if !known[id] {
				return fmt.Errorf("%w: %d", ErrUnknownGenre, id)
			}
		}
	}

	if err := s.store.ReplacePreferences(ctx, userID, genreIDs); err != nil {
		return fmt.Errorf("replacing preferences: %w", err)
	}
	s.cache.Delete(cache.Key(typeUserGenres, userID))
	return nil
}
