// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package movies

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematographus/internal/aggregate"
	"github.com/tomtom215/cinematographus/internal/config"
	"github.com/tomtom215/cinematographus/internal/models"
)

const testMovieID = "tt1375666"

type detailsFixture struct {
	svc          *DetailsService
	metadata     *fakeMetadata
	trailers     *fakeTrailers
	playlists    *fakePlaylists
	availability *fakeAvailability
	trivia       *fakeTrivia
}

func newDetailsFixture(t *testing.T, cfg config.OperationConfig) *detailsFixture {
	t.Helper()
	f := &detailsFixture{
		metadata: &fakeMetadata{details: map[string]*models.MovieDetails{
			testMovieID: {Title: "Inception", Year: "2010", IMDbID: testMovieID, IMDbRating: "8.8"},
		}},
		trailers:     &fakeTrailers{trailer: &models.Trailer{VideoID: "v1", EmbedURL: "https://www.youtube.com/embed/v1"}},
		playlists:    &fakePlaylists{playlist: &models.Playlist{Name: "Inception Soundtrack", SpotifyURL: "https://open.spotify.com/playlist/p1"}},
		availability: &fakeAvailability{options: []models.StreamingOption{{ServiceName: "netflix", Link: "https://example.test/n"}}},
		trivia:       &fakeTrivia{trivia: &models.Trivia{Question: "Who directed it?", Answer: "2"}},
	}
	f.svc = NewDetailsService(
		newTestOrchestrator(),
		newTestCache(t),
		cfg,
		"it",
		f.metadata,
		f.trailers,
		f.playlists,
		f.availability,
		f.trivia,
		zerolog.Nop(),
	)
	return f
}

func TestDetailsComplete(t *testing.T) {
	f := newDetailsFixture(t, testOpConfig())

	env := f.svc.Details(context.Background(), testMovieID)
	if env.Status != aggregate.StatusSuccess {
		t.Fatalf("status = %q, want %q", env.Status, aggregate.StatusSuccess)
	}
	if env.Message != "full details retrieved" {
		t.Errorf("message = %q, want %q", env.Message, "full details retrieved")
	}

	data := envelopeData(t, env)
	for _, name := range []string{branchMetadata, branchTrailer, branchPlaylist, branchAvailability, branchTrivia} {
		payload, ok := data[name]
		if !ok {
			t.Errorf("data missing branch %q", name)
			continue
		}
		if payload == nil {
			t.Errorf("data[%q] = nil, want payload", name)
		}
	}
	meta, ok := data[branchMetadata].(*models.MovieDetails)
	if !ok || meta.Title != "Inception" {
		t.Errorf("data[metadata] = %#v, want the Inception record", data[branchMetadata])
	}
	if f.trailers.gotTitle != "Inception" {
		t.Errorf("trailer lookup title = %q, want the resolved metadata title", f.trailers.gotTitle)
	}
	if f.availability.gotCountry != "it" {
		t.Errorf("availability country = %q, want %q", f.availability.gotCountry, "it")
	}
}

func TestDetailsPartialKeepsFailedBranchAsNull(t *testing.T) {
	f := newDetailsFixture(t, testOpConfig())
	f.trailers.err = statusErr(503)

	env := f.svc.Details(context.Background(), testMovieID)
	if env.Status != aggregate.StatusSuccess {
		t.Fatalf("status = %q, want %q", env.Status, aggregate.StatusSuccess)
	}
	if env.Message != "partial details retrieved" {
		t.Errorf("message = %q, want %q", env.Message, "partial details retrieved")
	}

	data := envelopeData(t, env)
	if payload, ok := data[branchTrailer]; !ok || payload != nil {
		t.Errorf("data[trailer] = %v (present %v), want explicit nil", payload, ok)
	}
	if data[branchMetadata] == nil {
		t.Error("data[metadata] = nil, want the metadata payload")
	}
	if data[branchPlaylist] == nil {
		t.Error("data[playlist] = nil, want the playlist payload")
	}
}

func TestDetailsNotFoundFailsFast(t *testing.T) {
	f := newDetailsFixture(t, testOpConfig())

	env := f.svc.Details(context.Background(), "tt0000000")
	if env.Status != aggregate.StatusFail {
		t.Fatalf("status = %q, want %q", env.Status, aggregate.StatusFail)
	}
	if env.Message != "subject not found" {
		t.Errorf("message = %q, want %q", env.Message, "subject not found")
	}
	if env.Data != nil {
		t.Errorf("data = %v, want nil", env.Data)
	}

	// Enrichment providers must not be called for a film that does not
	// exist; the captured resolution error short-circuits every branch.
	if got := f.trailers.calls.Load(); got != 0 {
		t.Errorf("trailer calls = %d, want 0", got)
	}
	if got := f.playlists.calls.Load(); got != 0 {
		t.Errorf("playlist calls = %d, want 0", got)
	}
	if got := f.availability.calls.Load(); got != 0 {
		t.Errorf("availability calls = %d, want 0", got)
	}
	if got := f.trivia.calls.Load(); got != 0 {
		t.Errorf("trivia calls = %d, want 0", got)
	}
}

func TestDetailsMetadataOutage(t *testing.T) {
	f := newDetailsFixture(t, testOpConfig())
	f.metadata.detailsErr = map[string]error{testMovieID: statusErr(500)}

	env := f.svc.Details(context.Background(), testMovieID)
	if env.Status != aggregate.StatusError {
		t.Fatalf("status = %q, want %q", env.Status, aggregate.StatusError)
	}
	if env.Message != "upstream services unavailable" {
		t.Errorf("message = %q, want %q", env.Message, "upstream services unavailable")
	}
	if env.Data != nil {
		t.Errorf("data = %v, want nil", env.Data)
	}
}

func TestDetailsSlowBranchTimesOut(t *testing.T) {
	cfg := config.OperationConfig{Deadline: 1 * time.Second, BranchTimeout: 50 * time.Millisecond}
	f := newDetailsFixture(t, cfg)
	f.trailers.delay = 300 * time.Millisecond

	start := time.Now()
	env := f.svc.Details(context.Background(), testMovieID)
	elapsed := time.Since(start)

	if env.Status != aggregate.StatusSuccess {
		t.Fatalf("status = %q, want %q", env.Status, aggregate.StatusSuccess)
	}
	if env.Message != "partial details retrieved" {
		t.Errorf("message = %q, want %q", env.Message, "partial details retrieved")
	}
	data := envelopeData(t, env)
	if payload, ok := data[branchTrailer]; !ok || payload != nil {
		t.Errorf("data[trailer] = %v (present %v), want explicit nil", payload, ok)
	}
	if elapsed > cfg.Deadline+500*time.Millisecond {
		t.Errorf("Details took %v, want well under the deadline plus margin", elapsed)
	}
}

func TestDetailsCachesOnlyCompleteOutcomes(t *testing.T) {
	f := newDetailsFixture(t, testOpConfig())
	f.trivia.err = statusErr(503)

	// Degraded outcome: not cached, so the next call retries upstream.
	f.svc.Details(context.Background(), testMovieID)
	f.svc.Details(context.Background(), testMovieID)
	if got := f.metadata.byIDCalls.Load(); got != 2 {
		t.Fatalf("metadata calls after two degraded requests = %d, want 2", got)
	}

	// Recovered outcome: cached, so further calls stay local.
	f.trivia.err = nil
	f.svc.Details(context.Background(), testMovieID)
	calls := f.metadata.byIDCalls.Load()
	env := f.svc.Details(context.Background(), testMovieID)
	if got := f.metadata.byIDCalls.Load(); got != calls {
		t.Errorf("metadata calls after cached request = %d, want %d", got, calls)
	}
	if env.Message != "full details retrieved" {
		t.Errorf("cached message = %q, want %q", env.Message, "full details retrieved")
	}
	if data := envelopeData(t, env); data[branchTrivia] == nil {
		t.Error("cached data[trivia] = nil, want the recovered payload")
	}
}
