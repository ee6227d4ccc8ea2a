// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package movies

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematographus/internal/aggregate"
	"github.com/tomtom215/cinematographus/internal/cache"
	"github.com/tomtom215/cinematographus/internal/config"
)

var detailsMessages = aggregate.Messages{
	Complete: "full details retrieved",
	Partial:  "partial details retrieved",
}

// DetailsService serves the movie_details aggregation: canonical metadata
// joined with trailer, playlist, availability and trivia enrichments.
//
// Metadata is resolved during request construction rather than inside its
// branch: the enrichment branches are keyed on the film's title, which only
// the metadata record carries. The resolved record (or its error) is then
// captured by every branch closure, so a missing film fails all branches
// immediately without spending enrichment quota, while the branches stay
// independent from the orchestrator's point of view.
type DetailsService struct {
	orchestrator *aggregate.Orchestrator
	cache        *cache.Cache
	cfg          config.OperationConfig
	plan         aggregate.Plan
	metadata     MetadataClient
	trailers     TrailerClient
	playlists    PlaylistClient
	availability AvailabilityClient
	trivia       TriviaClient
	country      string
	logger       zerolog.Logger
}

// NewDetailsService creates the movie_details service. country selects
// the availability market, e.g. "it".
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewDetailsService(
	orch *aggregate.Orchestrator,
	c *cache.Cache,
	cfg config.OperationConfig,
	country string,
	metadata MetadataClient,
	trailers TrailerClient,
	playlists PlaylistClient,
	availability AvailabilityClient,
	trivia TriviaClient,
	logger zerolog.Logger,
) *DetailsService {
	return &DetailsService{
		orchestrator: orch,
		cache:        c,
		cfg:          cfg,
		plan: aggregate.Plan{
			Type:      typeMovieDetails,
			Deadline:  cfg.Deadline,
			Mandatory: branchMetadata,
			Messages:  detailsMessages,
		},
		metadata:     metadata,
		trailers:     trailers,
		playlists:    playlists,
		availability: availability,
		trivia:       trivia,
		country:      country,
		logger:       logger.With().Str("service", typeMovieDetails).Logger(),
	}
}

// Details aggregates everything known about one film, identified by its
// metadata provider id. The envelope always carries all five branch keys
// on success; branches that failed are present as explicit nulls.
func (s *DetailsService) Details(ctx context.Context, movieID string) aggregate.Envelope {
	key := cache.Key(typeMovieDetails, movieID)
	if data, ok := s.cache.Get(key); ok {
		s.logger.Debug().Str("movie_id", movieID).Msg("movie details served from cache")
		return aggregate.Envelope{Status: aggregate.StatusSuccess, Message: detailsMessages.Complete, Data: data}
	}

	ctx, cancel := context.WithTimeout(ctx, s.plan.Deadline)
	defer cancel()

	// Resolve metadata up front, bounded by the metadata branch's own
	// timeout so the enrichment branches keep their share of the deadline.
	resolveCtx, resolveCancel := context.WithTimeout(ctx, s.cfg.TimeoutFor(branchMetadata))
	meta, metaErr := s.metadata.ByID(resolveCtx, movieID)
	resolveCancel()

	req := aggregate.Request{MovieID: movieID}
	if metaErr == nil && meta != nil {
		req.Title = meta.Title
	}

	branches := []aggregate.Branch{
		{
			Name:    branchMetadata,
			Timeout: s.cfg.TimeoutFor(branchMetadata),
			Invoke: func(context.Context, aggregate.Request) (any, error) {
				if metaErr != nil {
					return nil, metaErr
				}
				return meta, nil
			},
		},
		{
			Name:    branchTrailer,
			Timeout: s.cfg.TimeoutFor(branchTrailer),
			Invoke: func(ctx context.Context, req aggregate.Request) (any, error) {
				if metaErr != nil {
					return nil, metaErr
				}
				return s.trailers.TrailerByTitle(ctx, req.Title)
			},
		},
		{
			Name:    branchPlaylist,
			Timeout: s.cfg.TimeoutFor(branchPlaylist),
			Invoke: func(ctx context.Context, req aggregate.Request) (any, error) {
				if metaErr != nil {
					return nil, metaErr
				}
				return s.playlists.PlaylistByTitle(ctx, req.Title)
			},
		},
		{
			Name:    branchAvailability,
			Timeout: s.cfg.TimeoutFor(branchAvailability),
			Invoke: func(ctx context.Context, req aggregate.Request) (any, error) {
				if metaErr != nil {
					return nil, metaErr
				}
				return s.availability.AvailabilityByID(ctx, req.MovieID, s.country)
			},
		},
		{
			Name:    branchTrivia,
			Timeout: s.cfg.TimeoutFor(branchTrivia),
			Invoke: func(ctx context.Context, req aggregate.Request) (any, error) {
				if metaErr != nil {
					return nil, metaErr
				}
				return s.trivia.ForTitle(ctx, req.Title)
			},
		},
	}

	outcome := s.orchestrator.Run(ctx, s.plan, req, branches)
	env := aggregate.BuildEnvelope(outcome, s.plan.Messages)
	if outcome.Status == aggregate.Complete {
		s.cache.Set(key, env.Data)
	}
	return env
}
