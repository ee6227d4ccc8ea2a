// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinematographus/config.yaml",
	"/etc/cinematographus/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Path:           "/data/cinematographus",
			SyncWrites:     false,
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Cache: CacheConfig{
			TTL:           30 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		Auth: AuthConfig{
			JWTSecret:         "",
			TokenTTL:          30 * time.Minute,
			EmailVerification: false, // Opt-in, needs an email_check API key
		},
		Aggregation: AggregationConfig{
			MovieDetails: OperationConfig{
				Deadline:      10 * time.Second,
				BranchTimeout: 5 * time.Second,
			},
			TitleSearch: OperationConfig{
				Deadline:      10 * time.Second,
				BranchTimeout: 5 * time.Second,
			},
			GenreMatch: OperationConfig{
				Deadline:      10 * time.Second,
				BranchTimeout: 5 * time.Second,
			},
			UserGenres: OperationConfig{
				Deadline:      5 * time.Second,
				BranchTimeout: 3 * time.Second,
			},
		},
		Upstreams: UpstreamsConfig{
			OMDb: OMDbConfig{
				BaseURL:    "https://www.omdbapi.com",
				Timeout:    10 * time.Second,
				MaxRetries: 3,
				RetryDelay: time.Second,
			},
			TMDB: TMDBConfig{
				BaseURL:       "https://api.themoviedb.org/3",
				PosterBaseURL: "https://image.tmdb.org/t/p/original/",
				Timeout:       10 * time.Second,
				MaxRetries:    3,
				RetryDelay:    time.Second,
			},
			YouTube: YouTubeConfig{
				BaseURL:    "https://www.googleapis.com/youtube/v3",
				Timeout:    10 * time.Second,
				MaxRetries: 3,
				RetryDelay: time.Second,
			},
			Spotify: SpotifyConfig{
				BaseURL:    "https://api.spotify.com/v1",
				TokenURL:   "https://accounts.spotify.com/api/token",
				Timeout:    10 * time.Second,
				MaxRetries: 3,
				RetryDelay: time.Second,
			},
			Streaming: StreamingConfig{
				BaseURL:    "https://streaming-availability.p.rapidapi.com",
				Country:    "it",
				Timeout:    10 * time.Second,
				MaxRetries: 3,
				RetryDelay: time.Second,
			},
			Trivia: TriviaConfig{
				BaseURL:    "https://api.groq.com/openai/v1",
				Model:      "llama-3.3-70b-versatile",
				Timeout:    15 * time.Second, // Generation is slower than lookups
				MaxRetries: 3,
				RetryDelay: time.Second,
			},
			EmailCheck: EmailCheckConfig{
				BaseURL:    "https://emailvalidation.abstractapi.com/v1",
				Timeout:    10 * time.Second,
				MaxRetries: 3,
				RetryDelay: time.Second,
			},
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known
// slice fields. Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Variable names follow the deployment's flat convention:
//
//   - HTTP_PORT -> server.port
//   - OMDB_API_KEY -> upstreams.omdb.api_key
//   - SECRET_KEY -> auth.jwt_secret
//
// Unmapped variables are skipped so unrelated environment variables cannot
// pollute the configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_read_timeout":     "server.read_timeout",
		"http_write_timeout":    "server.write_timeout",
		"http_idle_timeout":     "server.idle_timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",
		"cors_origins":          "server.cors_origins",
		"rate_limit_requests":   "server.rate_limit_reqs",
		"rate_limit_window":     "server.rate_limit_window",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",

		// Store mappings
		"badger_path":            "store.path",
		"badger_sync_writes":     "store.sync_writes",
		"store_gc_interval":      "store.gc_interval",
		"store_gc_discard_ratio": "store.gc_discard_ratio",

		// Cache mappings
		"cache_ttl":            "cache.ttl",
		"cache_sweep_interval": "cache.sweep_interval",

		// Auth mappings
		"secret_key":         "auth.jwt_secret",
		"token_ttl":          "auth.token_ttl",
		"email_verification": "auth.email_verification",

		// Aggregation mappings
		"movie_details_deadline":       "aggregation.movie_details.deadline",
		"movie_details_branch_timeout": "aggregation.movie_details.branch_timeout",
		"title_search_deadline":        "aggregation.title_search.deadline",
		"title_search_branch_timeout":  "aggregation.title_search.branch_timeout",
		"genre_match_deadline":         "aggregation.genre_match.deadline",
		"genre_match_branch_timeout":   "aggregation.genre_match.branch_timeout",
		"user_genres_deadline":         "aggregation.user_genres.deadline",
		"user_genres_branch_timeout":   "aggregation.user_genres.branch_timeout",

		// Upstream mappings
		"omdb_base_url":                  "upstreams.omdb.base_url",
		"omdb_api_key":                   "upstreams.omdb.api_key",
		"tmdb_base_url":                  "upstreams.tmdb.base_url",
		"tmdb_poster_base_url":           "upstreams.tmdb.poster_base_url",
		"tmdb_api_key":                   "upstreams.tmdb.api_key",
		"youtube_base_url":               "upstreams.youtube.base_url",
		"youtube_api_key":                "upstreams.youtube.api_key",
		"spotify_base_url":               "upstreams.spotify.base_url",
		"spotify_token_url":              "upstreams.spotify.token_url",
		"spotify_client_id":              "upstreams.spotify.client_id",
		"spotify_client_secret":          "upstreams.spotify.client_secret",
		"streaming_base_url":             "upstreams.streaming.base_url",
		"streaming_availability_api_key": "upstreams.streaming.api_key",
		"streaming_country":              "upstreams.streaming.country",
		"groq_base_url":                  "upstreams.trivia.base_url",
		"groq_api_key":                   "upstreams.trivia.api_key",
		"groq_model":                     "upstreams.trivia.model",
		"email_check_base_url":           "upstreams.email_check.base_url",
		"abstract_api_key":               "upstreams.email_check.api_key",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Skip unmapped keys so random environment variables cannot leak in
	return ""
}
