// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/cinematographus/internal/models"
)

// TMDB is the client for the movie discovery provider. It authenticates
// with a bearer token and serves two read paths: genre-filtered discovery
// and the genre catalog.
type TMDB struct {
	*baseClient
}

// NewTMDB builds a TMDB client from opts. The API key is sent as a bearer
// token on every request.
func NewTMDB(opts Options) *TMDB {
	c := &TMDB{baseClient: newBaseClient(opts)}
	c.authorize = func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}
	return c
}

// DiscoverQuery narrows a discovery request. GenreIDs is mandatory; the
// remaining fields have catalog-wide defaults applied by the caller.
type DiscoverQuery struct {
	GenreIDs []int
	Language string
	MinVote  float64
	SortBy   string
}

// DiscoveredMovie is one raw discovery result. Poster paths are relative;
// genre ids are unresolved. The service layer absolutizes and resolves them
// against the catalog.
type DiscoveredMovie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	GenreIDs    []int   `json:"genre_ids"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
}

type tmdbDiscoverResponse struct {
	Page         int               `json:"page"`
	Results      []DiscoveredMovie `json:"results"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

type tmdbGenreList struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// Discover returns the first page of films matching q.
func (c *TMDB) Discover(ctx context.Context, q DiscoverQuery) ([]DiscoveredMovie, error) {
	ids := make([]string, len(q.GenreIDs))
	for i, id := range q.GenreIDs {
		ids[i] = strconv.Itoa(id)
	}

	params := url.Values{}
	params.Set("language", q.Language)
	params.Set("with_genres", strings.Join(ids, ","))
	params.Set("vote_average.gte", fmt.Sprintf("%.1f", q.MinVote))
	params.Set("sort_by", q.SortBy)
	params.Set("include_adult", "false")

	var resp tmdbDiscoverResponse
	if err := c.getJSON(ctx, "/discover/movie", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Genres returns the provider's movie genre catalog in the given language.
func (c *TMDB) Genres(ctx context.Context, language string) ([]models.Genre, error) {
	params := url.Values{}
	params.Set("language", language)

	var list tmdbGenreList
	if err := c.getJSON(ctx, "/genre/movie/list", params, &list); err != nil {
		return nil, err
	}

	genres := make([]models.Genre, len(list.Genres))
	for i, g := range list.Genres {
		genres[i] = models.Genre{GenreID: g.ID, Name: g.Name}
	}
	return genres, nil
}
