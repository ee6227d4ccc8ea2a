// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

/*
Package models defines data structures for the Cinematographus application.

This package contains all data models used throughout the application:
upstream provider payloads, aggregation branch payloads, API request and
response structures, and persisted user records. It is the single source of
truth for data structure definitions and carries no behaviour beyond
serialization.

Model Categories:

1. Movie Models (upstream payloads):
  - MovieDetails: full metadata record keyed by IMDb ID
  - SearchItem: one title-search result with its rating
  - DiscoveredMovie: one genre-discovery result
  - Trailer, Playlist, StreamingOption, Trivia: enrichment branch payloads

2. Genre Models:
  - Genre: one catalog entry
  - UserGenre: catalog entry merged with a user's preference flag

3. User and Auth Models:
  - User: persisted account record (password hash never serialized)
  - RegisterRequest, LoginRequest, TokenResponse
  - PreferencesUpdateRequest

4. Verification Models:
  - EmailCheck: format and deliverability verdict for an address

JSON field names follow the upstream providers where a payload mirrors one
(MovieDetails keeps the metadata provider's capitalized keys, including
"imdbID" and "imdbRating") and snake_case everywhere the application owns
the shape. Request models carry validate tags consumed by
internal/validation.

All models are plain data: safe for concurrent reads, no internal locking.

See Also:

  - internal/upstream: provider clients producing these models
  - internal/movies: aggregation services composing them
  - internal/store: persistence of User records
*/
package models
