// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

// Package movies implements the aggregation services behind the public
// API: full movie details, title search, genre-based discovery and the
// merged user genre catalog. Each service builds an aggregation plan,
// fans out through the shared orchestrator and folds the outcome into
// the response envelope. Results are cached only when every branch
// succeeded, so a degraded response is retried on the next request
// instead of being served until expiry.
package movies

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematographus/internal/cache"
	"github.com/tomtom215/cinematographus/internal/models"
	"github.com/tomtom215/cinematographus/internal/upstream"
)

// Request type names, used as plan types and cache key prefixes.
const (
	typeMovieDetails = "movie_details"
	typeTitleSearch  = "title_search"
	typeGenreMatch   = "genre_match"
	typeUserGenres   = "user_genres"
)

// Branch names. Envelope data nests each branch payload under these keys,
// so they are part of the wire contract.
const (
	branchMetadata     = "metadata"
	branchTrailer      = "trailer"
	branchPlaylist     = "playlist"
	branchAvailability = "availability"
	branchTrivia       = "trivia"
	branchSearch       = "search"
	branchDiscovery    = "discovery"
	branchProfile      = "profile"
	branchCatalog      = "catalog"
	branchPreferences  = "preferences"
)

// Discovery catalog parameters. The language tag and quality floor match
// the curation the discovery provider was tuned for.
const (
	discoverLanguage = "en-EN"
	discoverMinVote  = 8.0
	discoverSortBy   = "popularity.desc"

	// catalogTTL bounds how long the provider's genre catalog is reused.
	// The catalog changes rarely; a day keeps one fetch per process per day.
	catalogTTL = 24 * time.Hour
)

// MetadataClient resolves canonical film metadata. ByID backs the
// mandatory details branch, Search backs title search and its per-result
// rating enrichment.
type MetadataClient interface {
	ByID(ctx context.Context, imdbID string) (*models.MovieDetails, error)
	Search(ctx context.Context, title string) ([]models.SearchItem, error)
}

// TrailerClient finds an embeddable trailer video for a film title.
type TrailerClient interface {
	TrailerByTitle(ctx context.Context, title string) (*models.Trailer, error)
}

// PlaylistClient finds the best soundtrack playlist match for a film title.
type PlaylistClient interface {
	PlaylistByTitle(ctx context.Context, title string) (*models.Playlist, error)
}

// AvailabilityClient lists the streaming services offering a film in a
// given country.
type AvailabilityClient interface {
	AvailabilityByID(ctx context.Context, imdbID, country string) ([]models.StreamingOption, error)
}

// TriviaClient generates a quiz entry about a film title.
type TriviaClient interface {
	ForTitle(ctx context.Context, title string) (*models.Trivia, error)
}

// DiscoveryClient queries the discovery provider: genre-filtered movie
// discovery plus the genre catalog the ids resolve against.
type DiscoveryClient interface {
	Discover(ctx context.Context, q upstream.DiscoverQuery) ([]upstream.DiscoveredMovie, error)
	Genres(ctx context.Context, language string) ([]models.Genre, error)
}

// PreferenceStore reads and writes a user's preferred genre ids.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) ([]int, error)
	ReplacePreferences(ctx context.Context, userID string, genreIDs []int) error
}

// catalogLoader memoizes the provider's genre catalog through the shared
// cache so that discovery, the user genre merge and preference validation
// all reuse one fetch.
type catalogLoader struct {
	client DiscoveryClient
	cache  *cache.Cache
	logger zerolog.Logger
}

func newCatalogLoader(client DiscoveryClient, c *cache.Cache, logger zerolog.Logger) *catalogLoader {
	return &catalogLoader{client: client, cache: c, logger: logger}
}

func (l *catalogLoader) genres(ctx context.Context) ([]models.Genre, error) {
	key := cache.Key("genre_catalog", discoverLanguage)
	if v, ok := l.cache.Get(key); ok {
		if genres, ok := v.([]models.Genre); ok {
			return genres, nil
		}
	}
	genres, err := l.client.Genres(ctx, discoverLanguage)
	if err != nil {
		return nil, err
	}
	l.cache.SetWithTTL(key, genres, catalogTTL)
	return genres, nil
}

// names returns the id-to-name catalog index, or nil when the catalog is
// unavailable. Callers degrade to unresolved names rather than failing.
func (l *catalogLoader) names(ctx context.Context) map[int]string {
	genres, err := l.genres(ctx)
	if err != nil {
		l.logger.Debug().Err(err).Msg("genre catalog unavailable, leaving names unresolved")
		return nil
	}
	names := make(map[int]string, len(genres))
	for _, g := range genres {
		names[g.GenreID] = g.Name
	}
	return names
}

// normalizeGenreIDs drops non-positive and duplicate ids and sorts the
// rest, so equal genre sets produce equal cache keys and store records.
func normalizeGenreIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// ratingValue parses a provider rating for ranking. Unrated entries
// ("N/A" or malformed) rank below every numeric rating.
func ratingValue(rating string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(rating), 64)
	if err != nil {
		return -1
	}
	return v
}
