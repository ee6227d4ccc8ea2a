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

const embedURLBase = "https://www.youtube.com/embed/"

// YouTube is the client for the video search provider, used to locate one
// embeddable trailer per film.
type YouTube struct {
	*baseClient
}

// NewYouTube builds a YouTube client from opts.
func NewYouTube(opts Options) *YouTube {
	return &YouTube{baseClient: newBaseClient(opts)}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// TrailerByTitle searches for "<title> trailer" and returns the top video
// hit. An empty result set is reported as a 404 StatusError.
func (c *YouTube) TrailerByTitle(ctx context.Context, title string) (*models.Trailer, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", title+" trailer")
	params.Set("type", "video")
	params.Set("maxResults", "1")
	params.Set("key", c.opts.APIKey)

	var resp youtubeSearchResponse
	if err := c.getJSON(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 || resp.Items[0].ID.VideoID == "" {
		return nil, &StatusError{Provider: c.opts.Provider, StatusCode: http.StatusNotFound, Body: "no video matched the query"}
	}

	id := resp.Items[0].ID.VideoID
	return &models.Trailer{VideoID: id, EmbedURL: embedURLBase + id}, nil
}
