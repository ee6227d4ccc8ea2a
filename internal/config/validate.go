// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// minJWTSecretLength matches the bound enforced by the auth package.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateAuth(); err != nil {
		return err
	}

	if err := c.validateAggregation(); err != nil {
		return err
	}

	return c.validateUpstreams()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative, got %d", c.Server.RateLimitReqs)
	}
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.Path == "" {
		return fmt.Errorf("BADGER_PATH is required")
	}
	if c.Store.GCDiscardRatio <= 0 || c.Store.GCDiscardRatio >= 1 {
		return fmt.Errorf("STORE_GC_DISCARD_RATIO must be between 0 and 1 exclusive, got %v", c.Store.GCDiscardRatio)
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if len(c.Auth.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("SECRET_KEY must be at least %d characters", minJWTSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.Auth.EmailVerification && c.Upstreams.EmailCheck.APIKey == "" {
		return fmt.Errorf("ABSTRACT_API_KEY is required when EMAIL_VERIFICATION=true")
	}
	return nil
}

func (c *Config) validateAggregation() error {
	ops := map[string]OperationConfig{
		"movie_details": c.Aggregation.MovieDetails,
		"title_search":  c.Aggregation.TitleSearch,
		"genre_match":   c.Aggregation.GenreMatch,
		"user_genres":   c.Aggregation.UserGenres,
	}

	for name, op := range ops {
		if op.Deadline <= 0 {
			return fmt.Errorf("aggregation.%s.deadline must be positive", name)
		}
		if op.BranchTimeout <= 0 {
			return fmt.Errorf("aggregation.%s.branch_timeout must be positive", name)
		}
		for branch, timeout := range op.BranchTimeouts {
			if timeout <= 0 {
				return fmt.Errorf("aggregation.%s.branch_timeouts.%s must be positive", name, branch)
			}
		}
	}
	return nil
}

func (c *Config) validateUpstreams() error {
	bases := map[string]string{
		"OMDB_BASE_URL":        c.Upstreams.OMDb.BaseURL,
		"TMDB_BASE_URL":        c.Upstreams.TMDB.BaseURL,
		"YOUTUBE_BASE_URL":     c.Upstreams.YouTube.BaseURL,
		"SPOTIFY_BASE_URL":     c.Upstreams.Spotify.BaseURL,
		"SPOTIFY_TOKEN_URL":    c.Upstreams.Spotify.TokenURL,
		"STREAMING_BASE_URL":   c.Upstreams.Streaming.BaseURL,
		"GROQ_BASE_URL":        c.Upstreams.Trivia.BaseURL,
		"EMAIL_CHECK_BASE_URL": c.Upstreams.EmailCheck.BaseURL,
	}
	for name, base := range bases {
		if err := validateBaseURL(name, base); err != nil {
			return err
		}
	}

	keys := map[string]string{
		"OMDB_API_KEY":                   c.Upstreams.OMDb.APIKey,
		"TMDB_API_KEY":                   c.Upstreams.TMDB.APIKey,
		"YOUTUBE_API_KEY":                c.Upstreams.YouTube.APIKey,
		"SPOTIFY_CLIENT_ID":              c.Upstreams.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET":          c.Upstreams.Spotify.ClientSecret,
		"STREAMING_AVAILABILITY_API_KEY": c.Upstreams.Streaming.APIKey,
		"GROQ_API_KEY":                   c.Upstreams.Trivia.APIKey,
	}
	for name, key := range keys {
		if key == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if c.Upstreams.Streaming.Country == "" {
		return fmt.Errorf("STREAMING_COUNTRY is required")
	}
	if c.Upstreams.Trivia.Model == "" {
		return fmt.Errorf("GROQ_MODEL is required")
	}
	return nil
}

// validateBaseURL checks that a provider base URL is an absolute http(s) URL.
func validateBaseURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", name)
	}
	return nil
}
