// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package movies

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematographus/internal/aggregate"
	"github.com/tomtom215/cinematographus/internal/cache"
	"github.com/tomtom215/cinematographus/internal/config"
	"github.com/tomtom215/cinematographus/internal/models"
)

var searchMessages = aggregate.Messages{
	Complete: "movies retrieved",
	Partial:  "movies retrieved",
}

// SearchService serves the title_search aggregation. The single search
// branch queries the metadata provider's title index, then enriches each
// hit with the film's rating so results rank best-first. Enrichment is
// best-effort per hit: a film whose rating lookup fails keeps its place
// with rating "N/A" and ranks after every rated film.
type SearchService struct {
	orchestrator *aggregate.Orchestrator
	cache        *cache.Cache
	cfg          config.OperationConfig
	plan         aggregate.Plan
	metadata     MetadataClient
	logger       zerolog.Logger
}

// NewSearchService creates the title_search service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSearchService(
	orch *aggregate.Orchestrator,
	c *cache.Cache,
	cfg config.OperationConfig,
	metadata MetadataClient,
	logger zerolog.Logger,
) *SearchService {
	return &SearchService{
		orchestrator: orch,
		cache:        c,
		cfg:          cfg,
		plan: aggregate.Plan{
			Type:      typeTitleSearch,
			Deadline:  cfg.Deadline,
			Mandatory: branchSearch,
			Messages:  searchMessages,
		},
		metadata: metadata,
		logger:   logger.With().Str("service", typeTitleSearch).Logger(),
	}
}

// Search looks up films by title. Matching is the provider's; ranking is
// ours: descending rating, unrated films last, provider order preserved
// among equals.
func (s *SearchService) Search(ctx context.Context, title string) aggregate.Envelope {
	key := cache.Key(typeTitleSearch, strings.ToLower(strings.TrimSpace(title)))
	if data, ok := s.cache.Get(key); ok {
		s.logger.Debug().Str("title", title).Msg("title search served from cache")
		return aggregate.Envelope{Status: aggregate.StatusSuccess, Message: searchMessages.Complete, Data: data}
	}

	req := aggregate.Request{Title: title}
	branches := []aggregate.Branch{
		{Name: branchSearch, Timeout: s.cfg.TimeoutFor(branchSearch), Invoke: s.searchBranch},
	}

	outcome := s.orchestrator.Run(ctx, s.plan, req, branches)
	env := aggregate.BuildEnvelope(outcome, s.plan.Messages)
	if outcome.Status == aggregate.Complete {
		s.cache.Set(key, env.Data)
	}
	return env
}

func (s *SearchService) searchBranch(ctx context.Context, req aggregate.Request) (any, error) {
	items, err := s.metadata.Search(ctx, req.Title)
	if err != nil {
		return nil, err
	}
	for i := range items {
		details, err := s.metadata.ByID(ctx, items[i].IMDbID)
		if err != nil {
			s.logger.Debug().Err(err).Str("imdb_id", items[i].IMDbID).Msg("rating enrichment failed")
			items[i].IMDbRating = "N/A"
			continue
		}
		items[i].IMDbRating = details.IMDbRating
	}
	sortSearchItems(items)
	return items, nil
}

// sortSearchItems orders results by rating, best first. The sort is
// stable so equally rated films keep the provider's relevance order.
func sortSearchItems(items []models.SearchItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return ratingValue(items[i].IMDbRating) > ratingValue(items[j].IMDbRating)
	})
}
