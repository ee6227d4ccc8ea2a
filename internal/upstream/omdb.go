// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tomtom215/cinematographus/internal/models"
)

// OMDb is the client for the movie metadata provider. Lookups are keyed by
// IMDb ID; searches match on title and return up to one page of results.
//
// The provider reports missing subjects as HTTP 200 with an Error field in
// the body. Those responses are converted to a 404 StatusError so callers
// can distinguish an absent film from a broken provider.
type OMDb struct {
	*baseClient
}

// NewOMDb builds an OMDb client from opts.
func NewOMDb(opts Options) *OMDb {
	return &OMDb{baseClient: newBaseClient(opts)}
}

type omdbDetailsEnvelope struct {
	models.MovieDetails
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

type omdbSearchEnvelope struct {
	Search   []models.SearchItem `json:"Search"`
	Response string              `json:"Response"`
	Error    string              `json:"Error"`
}

// ByID fetches the full metadata record for one IMDb ID.
func (c *OMDb) ByID(ctx context.Context, imdbID string) (*models.MovieDetails, error) {
	params := url.Values{}
	params.Set("apikey", c.opts.APIKey)
	params.Set("i", imdbID)

	var env omdbDetailsEnvelope
	if err := c.getJSON(ctx, "/", params, &env); err != nil {
		return nil, err
	}
	if env.Error != "" {
		return nil, &StatusError{Provider: c.opts.Provider, StatusCode: http.StatusNotFound, Body: env.Error}
	}
	return &env.MovieDetails, nil
}

// Search returns the first page of title matches. Result items carry no
// rating; callers that rank results resolve ratings per item via ByID.
func (c *OMDb) Search(ctx context.Context, title string) ([]models.SearchItem, error) {
	params := url.Values{}
	params.Set("apikey", c.opts.APIKey)
	params.Set("s", title)
	params.Set("type", "movie")

	var env omdbSearchEnvelope
	if err := c.getJSON(ctx, "/", params, &env); err != nil {
		return nil, err
	}
	if env.Error != "" {
		return nil, &StatusError{Provider: c.opts.Provider, StatusCode: http.StatusNotFound, Body: env.Error}
	}
	return env.Search, nil
}
