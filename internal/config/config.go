// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access
// from multiple goroutines.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Store       StoreConfig       `koanf:"store"`
	Cache       CacheConfig       `koanf:"cache"`
	Auth        AuthConfig        `koanf:"auth"`
	Aggregation AggregationConfig `koanf:"aggregation"`
	Upstreams   UpstreamsConfig   `koanf:"upstreams"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`   // Requests per window per client IP
	RateLimitWindow time.Duration `koanf:"rate_limit_window"` // Rate limit window duration
}

// LoggingConfig holds log level and output format.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
}

// StoreConfig holds the embedded Badger database configuration.
type StoreConfig struct {
	Path           string        `koanf:"path"`
	SyncWrites     bool          `koanf:"sync_writes"`
	GCInterval     time.Duration `koanf:"gc_interval"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio"`
}

// CacheConfig holds the in-memory response cache configuration.
type CacheConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// AuthConfig holds token issuance and registration settings.
type AuthConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	EmailVerification bool          `koanf:"email_verification"` // Check deliverability on registration
}

// AggregationConfig holds per-operation fan-out settings.
type AggregationConfig struct {
	MovieDetails OperationConfig `koanf:"movie_details"`
	TitleSearch  OperationConfig `koanf:"title_search"`
	GenreMatch   OperationConfig `koanf:"genre_match"`
	UserGenres   OperationConfig `koanf:"user_genres"`
}

// OperationConfig bounds one aggregation operation. Deadline caps the
// whole fan-out; BranchTimeout applies to every branch unless overridden
// by name in BranchTimeouts.
type OperationConfig struct {
	Deadline       time.Duration            `koanf:"deadline"`
	BranchTimeout  time.Duration            `koanf:"branch_timeout"`
	BranchTimeouts map[string]time.Duration `koanf:"branch_timeouts"`
}

// TimeoutFor returns the timeout for a named branch.
func (o OperationConfig) TimeoutFor(branch string) time.Duration {
	if t, ok := o.BranchTimeouts[branch]; ok && t > 0 {
		return t
	}
	return o.BranchTimeout
}

// UpstreamsConfig holds one section per metadata provider.
type UpstreamsConfig struct {
	OMDb       OMDbConfig       `koanf:"omdb"`
	TMDB       TMDBConfig       `koanf:"tmdb"`
	YouTube    YouTubeConfig    `koanf:"youtube"`
	Spotify    SpotifyConfig    `koanf:"spotify"`
	Streaming  StreamingConfig  `koanf:"streaming"`
	Trivia     TriviaConfig     `koanf:"trivia"`
	EmailCheck EmailCheckConfig `koanf:"email_check"`
}

// OMDbConfig configures the OMDb metadata client.
type OMDbConfig struct {
	BaseURL    string        `koanf:"base_url"`
	APIKey     string        `koanf:"api_key"`
	Timeout    time.Duration `koanf:"timeout"`
	RateLimit  float64       `koanf:"rate_limit"` // Requests per second, 0 disables limiting
	RateBurst  int           `koanf:"rate_burst"`
	MaxRetries int           `koanf:"max_retries"`
	RetryDelay time.Duration `koanf:"retry_delay"`
}

// TMDBConfig configures the TMDb discovery client.
type TMDBConfig struct {
	BaseURL       string        `koanf:"base_url"`
	PosterBaseURL string        `koanf:"poster_base_url"` // Prefix for relative poster paths
	APIKey        string        `koanf:"api_key"`         // v4 read access token
	Timeout       time.Duration `koanf:"timeout"`
	RateLimit     float64       `koanf:"rate_limit"`
	RateBurst     int           `koanf:"rate_burst"`
	MaxRetries    int           `koanf:"max_retries"`
	RetryDelay    time.Duration `koanf:"retry_delay"`
}

// YouTubeConfig configures the YouTube Data API client.
type YouTubeConfig struct {
	BaseURL    string        `koanf:"base_url"`
	APIKey     string        `koanf:"api_key"`
	Timeout    time.Duration `koanf:"timeout"`
	RateLimit  float64       `koanf:"rate_limit"`
	RateBurst  int           `koanf:"rate_burst"`
	MaxRetries int           `koanf:"max_retries"`
	RetryDelay time.Duration `koanf:"retry_delay"`
}

// SpotifyConfig configures the Spotify client-credentials client.
type SpotifyConfig struct {
	BaseURL      string        `koanf:"base_url"`
	TokenURL     string        `koanf:"token_url"`
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	Timeout      time.Duration `koanf:"timeout"`
	RateLimit    float64       `koanf:"rate_limit"`
	RateBurst    int           `koanf:"rate_burst"`
	MaxRetries   int           `koanf:"max_retries"`
	RetryDelay   time.Duration `koanf:"retry_delay"`
}

// StreamingConfig configures the streaming availability client.
type StreamingConfig struct {
	BaseURL    string        `koanf:"base_url"`
	APIKey     string        `koanf:"api_key"`
	Country    string        `koanf:"country"` // ISO 3166-1 alpha-2, lowercase
	Timeout    time.Duration `koanf:"timeout"`
	RateLimit  float64       `koanf:"rate_limit"`
	RateBurst  int           `koanf:"rate_burst"`
	MaxRetries int           `koanf:"max_retries"`
	RetryDelay time.Duration `koanf:"retry_delay"`
}

// TriviaConfig configures the trivia generation client.
type TriviaConfig struct {
	BaseURL    string        `koanf:"base_url"`
	APIKey     string        `koanf:"api_key"`
	Model      string        `koanf:"model"`
	Timeout    time.Duration `koanf:"timeout"`
	RateLimit  float64       `koanf:"rate_limit"`
	RateBurst  int           `koanf:"rate_burst"`
	MaxRetries int           `koanf:"max_retries"`
	RetryDelay time.Duration `koanf:"retry_delay"`
}

// EmailCheckConfig configures the registration email verification client.
type EmailCheckConfig struct {
	BaseURL    string        `koanf:"base_url"`
	APIKey     string        `koanf:"api_key"`
	Timeout    time.Duration `koanf:"timeout"`
	RateLimit  float64       `koanf:"rate_limit"`
	RateBurst  int           `koanf:"rate_burst"`
	MaxRetries int           `koanf:"max_retries"`
	RetryDelay time.Duration `koanf:"retry_delay"`
}
