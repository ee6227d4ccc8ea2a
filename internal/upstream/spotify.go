// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/cinematographus/internal/models"
)

var errEmptyToken = errors.New("token response contained no access token")

// tokenSafetyMargin is subtracted from the advertised token lifetime so a
// token is refreshed before the provider starts rejecting it.
const tokenSafetyMargin = 30 * time.Second

// SpotifyCredentials holds the client-credentials grant inputs. The token
// endpoint lives on a different host than the API itself.
type SpotifyCredentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// Spotify is the client for the music provider. It resolves the best
// soundtrack playlist match for a film title. Access tokens are obtained
// via the client-credentials flow and cached until shortly before expiry.
type Spotify struct {
	*baseClient
	creds SpotifyCredentials

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewSpotify builds a Spotify client from opts and creds.
func NewSpotify(opts Options, creds SpotifyCredentials) *Spotify {
	return &Spotify{baseClient: newBaseClient(opts), creds: creds}
}

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type spotifySearchResponse struct {
	Playlists struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	} `json:"playlists"`
}

type spotifyPlaylist struct {
	Name   string `json:"name"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

// token returns a valid access token, refreshing through the token endpoint
// when the cached one is absent or near expiry. Refreshes are serialized so
// concurrent branch invocations share one grant request.
func (c *Spotify) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var tok spotifyTokenResponse
	err := c.requestJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		form := url.Values{}
		form.Set("grant_type", "client_credentials")
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.TokenURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
		return req, nil
	}, &tok)
	if err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", &DecodeError{Provider: c.opts.Provider, Err: errEmptyToken}
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenSafetyMargin)
	return c.accessToken, nil
}

// PlaylistByTitle returns the provider's best playlist match for a film
// title. An empty result set is reported as a 404 StatusError.
func (c *Spotify) PlaylistByTitle(ctx context.Context, title string) (*models.Playlist, error) {
	params := url.Values{}
	params.Set("q", title)
	params.Set("type", "playlist")
	params.Set("limit", "1")
	params.Set("market", "US")

	var search spotifySearchResponse
	if err := c.getJSONAuthed(ctx, "/search", params, &search); err != nil {
		return nil, err
	}
	if len(search.Playlists.Items) == 0 {
		return nil, &StatusError{Provider: c.opts.Provider, StatusCode: http.StatusNotFound, Body: "no playlist matched the query"}
	}

	var playlist spotifyPlaylist
	if err := c.getJSONAuthed(ctx, "/playlists/"+search.Playlists.Items[0].ID, nil, &playlist); err != nil {
		return nil, err
	}

	cover := ""
	if len(playlist.Images) > 0 {
		cover = playlist.Images[0].URL
	}
	return &models.Playlist{
		Name:       playlist.Name,
		SpotifyURL: playlist.ExternalURLs.Spotify,
		CoverURL:   cover,
	}, nil
}

func (c *Spotify) getJSONAuthed(ctx context.Context, path string, params url.Values, out any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}
	return c.requestJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodGet, path, params, nil, "")
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		return req, nil
	}, out)
}
