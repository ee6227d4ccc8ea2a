// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package models

// MovieDetails is the full metadata record for one film as returned by the
// metadata provider. Field names mirror the provider's capitalized JSON keys
// so the payload passes through the aggregation envelope unchanged.
type MovieDetails struct {
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	Rated      string   `json:"Rated,omitempty"`
	Released   string   `json:"Released,omitempty"`
	Runtime    string   `json:"Runtime,omitempty"`
	Genre      string   `json:"Genre,omitempty"`
	Director   string   `json:"Director,omitempty"`
	Writer     string   `json:"Writer,omitempty"`
	Actors     string   `json:"Actors,omitempty"`
	Plot       string   `json:"Plot,omitempty"`
	Language   string   `json:"Language,omitempty"`
	Country    string   `json:"Country,omitempty"`
	Awards     string   `json:"Awards,omitempty"`
	Poster     string   `json:"Poster,omitempty"`
	Ratings    []Rating `json:"Ratings,omitempty"`
	Metascore  string   `json:"Metascore,omitempty"`
	IMDbRating string   `json:"imdbRating,omitempty"`
	IMDbVotes  string   `json:"imdbVotes,omitempty"`
	IMDbID     string   `json:"imdbID"`
	Type       string   `json:"Type,omitempty"`
	BoxOffice  string   `json:"BoxOffice,omitempty"`
	Production string   `json:"Production,omitempty"`
}

// Rating is one third-party score attached to a MovieDetails record.
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// SearchItem is one result of a title search, enriched with the film's
// rating so result lists can be ranked best-first. A film whose rating
// could not be resolved carries "N/A" and ranks after all rated films.
type SearchItem struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	IMDbID     string `json:"imdbID"`
	Type       string `json:"Type,omitempty"`
	Poster     string `json:"Poster,omitempty"`
	IMDbRating string `json:"imdbRating"`
}

// DiscoveredMovie is one result of a genre-based discovery query. Poster
// URLs are absolute; Genre is the comma-joined list of genre names resolved
// against the provider's catalog.
type DiscoveredMovie struct {
	TMDBID int     `json:"tmdbId"`
	Title  string  `json:"Title"`
	Year   string  `json:"Year"`
	Poster string  `json:"Poster"`
	Genre  string  `json:"Genre"`
	Rating float64 `json:"imdbRating"`
}

// Trailer points at an embeddable trailer video for a film.
type Trailer struct {
	VideoID  string `json:"video_id"`
	EmbedURL string `json:"embed_url"`
}

// Playlist is the best soundtrack playlist match for a film on the music
// provider.
type Playlist struct {
	Name       string `json:"name"`
	SpotifyURL string `json:"spotify_url"`
	CoverURL   string `json:"cover_url,omitempty"`
}

// StreamingOption is one service offering a film in the requested country.
// ServiceType joins the distinct offer types alphabetically with "/", each
// capitalized (for example "Buy/Rent/Subscription").
type StreamingOption struct {
	ServiceName string `json:"service_name"`
	ServiceType string `json:"service_type"`
	Link        string `json:"link"`
	Logo        string `json:"logo,omitempty"`
}

// Trivia is one generated quiz entry about a film. Answer is the number of
// the correct option as a single digit string.
type Trivia struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Genre is one entry of the discovery provider's genre catalog.
type Genre struct {
	GenreID int    `json:"genreId"`
	Name    string `json:"name"`
}

// UserGenre is a catalog entry merged with one user's preference flag.
type UserGenre struct {
	GenreID     int    `json:"genreId"`
	Name        string `json:"name"`
	IsPreferred bool   `json:"isPreferred"`
}
