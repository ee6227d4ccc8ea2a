// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

// Package config loads and validates application configuration.
//
// Configuration is layered with Koanf v2: struct defaults first, then an
// optional YAML file, then environment variables. Environment variables use
// the deployment's flat names (OMDB_API_KEY, SECRET_KEY, HTTP_PORT) and are
// mapped onto nested config paths by an explicit table; unmapped variables
// are ignored.
//
// Sections:
//
//   - Server: HTTP bind address, timeouts, CORS and per-IP rate limits
//   - Logging: zerolog level and output format
//   - Store: embedded Badger database location and garbage collection
//   - Cache: response cache TTL and sweep interval
//   - Auth: JWT secret, token lifetime, optional email verification
//   - Aggregation: per-operation deadlines and branch timeouts
//   - Upstreams: one section per metadata provider
//
// Load returns an immutable *Config that is safe for concurrent reads.
package config
