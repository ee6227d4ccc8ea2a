// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setRequiredEnv wipes the environment and sets the smallest set of
// variables a valid configuration needs.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Clearenv()
	os.Setenv("SECRET_KEY", "this_is_a_very_long_secret_key_with_32_plus_characters")
	os.Setenv("OMDB_API_KEY", "omdb-key")
	os.Setenv("TMDB_API_KEY", "tmdb-key")
	os.Setenv("YOUTUBE_API_KEY", "youtube-key")
	os.Setenv("SPOTIFY_CLIENT_ID", "spotify-id")
	os.Setenv("SPOTIFY_CLIENT_SECRET", "spotify-secret")
	os.Setenv("STREAMING_AVAILABILITY_API_KEY", "streaming-key")
	os.Setenv("GROQ_API_KEY", "groq-key")
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	// Server defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("Server.CORSOrigins = %v, want [*]", cfg.Server.CORSOrigins)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}

	// Store defaults
	if cfg.Store.Path != "/data/cinematographus" {
		t.Errorf("Store.Path = %q, want /data/cinematographus", cfg.Store.Path)
	}
	if cfg.Store.GCInterval != 10*time.Minute {
		t.Errorf("Store.GCInterval = %v, want 10m", cfg.Store.GCInterval)
	}

	// Cache defaults
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("Cache.TTL = %v, want 30m", cfg.Cache.TTL)
	}

	// Auth defaults
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("Auth.TokenTTL = %v, want 30m", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.EmailVerification {
		t.Error("Auth.EmailVerification should be false by default")
	}

	// Aggregation defaults
	if cfg.Aggregation.MovieDetails.Deadline != 10*time.Second {
		t.Errorf("Aggregation.MovieDetails.Deadline = %v, want 10s", cfg.Aggregation.MovieDetails.Deadline)
	}
	if cfg.Aggregation.MovieDetails.BranchTimeout != 5*time.Second {
		t.Errorf("Aggregation.MovieDetails.BranchTimeout = %v, want 5s", cfg.Aggregation.MovieDetails.BranchTimeout)
	}
	if cfg.Aggregation.UserGenres.Deadline != 5*time.Second {
		t.Errorf("Aggregation.UserGenres.Deadline = %v, want 5s", cfg.Aggregation.UserGenres.Deadline)
	}

	// Upstream defaults
	if cfg.Upstreams.OMDb.BaseURL != "https://www.omdbapi.com" {
		t.Errorf("Upstreams.OMDb.BaseURL = %q", cfg.Upstreams.OMDb.BaseURL)
	}
	if cfg.Upstreams.TMDB.PosterBaseURL != "https://image.tmdb.org/t/p/original/" {
		t.Errorf("Upstreams.TMDB.PosterBaseURL = %q", cfg.Upstreams.TMDB.PosterBaseURL)
	}
	if cfg.Upstreams.Spotify.TokenURL != "https://accounts.spotify.com/api/token" {
		t.Errorf("Upstreams.Spotify.TokenURL = %q", cfg.Upstreams.Spotify.TokenURL)
	}
	if cfg.Upstreams.Streaming.Country != "it" {
		t.Errorf("Upstreams.Streaming.Country = %q, want it", cfg.Upstreams.Streaming.Country)
	}
	if cfg.Upstreams.Trivia.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Upstreams.Trivia.Model = %q", cfg.Upstreams.Trivia.Model)
	}
	if cfg.Upstreams.OMDb.MaxRetries != 3 {
		t.Errorf("Upstreams.OMDb.MaxRetries = %d, want 3", cfg.Upstreams.OMDb.MaxRetries)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{name: "server port", env: "HTTP_PORT", want: "server.port"},
		{name: "log level", env: "LOG_LEVEL", want: "logging.level"},
		{name: "jwt secret", env: "SECRET_KEY", want: "auth.jwt_secret"},
		{name: "omdb key", env: "OMDB_API_KEY", want: "upstreams.omdb.api_key"},
		{name: "streaming key", env: "STREAMING_AVAILABILITY_API_KEY", want: "upstreams.streaming.api_key"},
		{name: "trivia model", env: "GROQ_MODEL", want: "upstreams.trivia.model"},
		{name: "aggregation deadline", env: "MOVIE_DETAILS_DEADLINE", want: "aggregation.movie_details.deadline"},
		{name: "unmapped key skipped", env: "HOME", want: ""},
		{name: "unmapped key skipped 2", env: "SOME_RANDOM_VAR", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Run("env var points to existing file", func(t *testing.T) {
		os.Clearenv()
		tmpDir := t.TempDir()
		customPath := filepath.Join(tmpDir, "custom.yaml")
		if err := os.WriteFile(customPath, []byte("test: true"), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		os.Setenv(ConfigPathEnvVar, customPath)
		if got := findConfigFile(); got != customPath {
			t.Errorf("findConfigFile() = %q, want %q", got, customPath)
		}
	})

	t.Run("env var points to missing file", func(t *testing.T) {
		os.Clearenv()
		os.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty", got)
		}
	})
}

func TestLoadEnvVars(t *testing.T) {
	setRequiredEnv(t)

	os.Setenv("HTTP_PORT", "9000")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("CACHE_TTL", "1m")
	os.Setenv("MOVIE_DETAILS_DEADLINE", "30s")
	os.Setenv("STREAMING_COUNTRY", "us")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Custom overrides
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Cache.TTL != time.Minute {
		t.Errorf("Cache.TTL = %v, want 1m", cfg.Cache.TTL)
	}
	if cfg.Aggregation.MovieDetails.Deadline != 30*time.Second {
		t.Errorf("Aggregation.MovieDetails.Deadline = %v, want 30s", cfg.Aggregation.MovieDetails.Deadline)
	}
	if cfg.Upstreams.Streaming.Country != "us" {
		t.Errorf("Upstreams.Streaming.Country = %q, want us", cfg.Upstreams.Streaming.Country)
	}

	// Required values landed where expected
	if cfg.Auth.JWTSecret != "this_is_a_very_long_secret_key_with_32_plus_characters" {
		t.Errorf("Auth.JWTSecret = %q", cfg.Auth.JWTSecret)
	}
	if cfg.Upstreams.OMDb.APIKey != "omdb-key" {
		t.Errorf("Upstreams.OMDb.APIKey = %q, want omdb-key", cfg.Upstreams.OMDb.APIKey)
	}

	// Defaults still applied for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Upstreams.Trivia.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Upstreams.Trivia.Model = %q, want default model", cfg.Upstreams.Trivia.Model)
	}
}

func TestLoadConfigFile(t *testing.T) {
	os.Clearenv()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9100
auth:
  jwt_secret: "file_secret_key_that_is_long_enough_for_validation"
aggregation:
  movie_details:
    branch_timeout: 4s
    branch_timeouts:
      trailer: 2s
upstreams:
  omdb:
    api_key: omdb-file-key
  tmdb:
    api_key: tmdb-file-key
  youtube:
    api_key: youtube-file-key
  spotify:
    client_id: spotify-file-id
    client_secret: spotify-file-secret
  streaming:
    api_key: streaming-file-key
  trivia:
    api_key: groq-file-key
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	os.Setenv(ConfigPathEnvVar, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Upstreams.OMDb.APIKey != "omdb-file-key" {
		t.Errorf("Upstreams.OMDb.APIKey = %q, want omdb-file-key", cfg.Upstreams.OMDb.APIKey)
	}

	// Per-branch override decodes into the map, others keep the default
	md := cfg.Aggregation.MovieDetails
	if got := md.TimeoutFor("trailer"); got != 2*time.Second {
		t.Errorf("TimeoutFor(trailer) = %v, want 2s", got)
	}
	if got := md.TimeoutFor("soundtrack"); got != 4*time.Second {
		t.Errorf("TimeoutFor(soundtrack) = %v, want 4s", got)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	setRequiredEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9100
logging:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	os.Setenv(ConfigPathEnvVar, configPath)
	os.Setenv("HTTP_PORT", "9999") // Override port from config file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 (env wins over file)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (from file)", cfg.Logging.Level)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func()
	}{
		{
			name:   "missing jwt secret",
			mutate: func() { os.Unsetenv("SECRET_KEY") },
		},
		{
			name:   "short jwt secret",
			mutate: func() { os.Setenv("SECRET_KEY", "too_short") },
		},
		{
			name:   "invalid port",
			mutate: func() { os.Setenv("HTTP_PORT", "70000") },
		},
		{
			name:   "invalid log level",
			mutate: func() { os.Setenv("LOG_LEVEL", "verbose") },
		},
		{
			name:   "missing omdb key",
			mutate: func() { os.Unsetenv("OMDB_API_KEY") },
		},
		{
			name:   "missing spotify secret",
			mutate: func() { os.Unsetenv("SPOTIFY_CLIENT_SECRET") },
		},
		{
			name:   "email verification without key",
			mutate: func() { os.Setenv("EMAIL_VERIFICATION", "true") },
		},
		{
			name:   "malformed base url",
			mutate: func() { os.Setenv("OMDB_BASE_URL", "not a url") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			tt.mutate()

			if _, err := Load(); err == nil {
				t.Error("Load() expected validation error, got nil")
			}
		})
	}
}

func TestTimeoutFor(t *testing.T) {
	op := OperationConfig{
		Deadline:      10 * time.Second,
		BranchTimeout: 5 * time.Second,
		BranchTimeouts: map[string]time.Duration{
			"trailer": 2 * time.Second,
			"zeroed":  0,
		},
	}

	if got := op.TimeoutFor("trailer"); got != 2*time.Second {
		t.Errorf("TimeoutFor(trailer) = %v, want 2s", got)
	}
	if got := op.TimeoutFor("metadata"); got != 5*time.Second {
		t.Errorf("TimeoutFor(metadata) = %v, want 5s", got)
	}
	// Zero overrides fall back to the shared branch timeout
	if got := op.TimeoutFor("zeroed"); got != 5*time.Second {
		t.Errorf("TimeoutFor(zeroed) = %v, want 5s", got)
	}
}
