// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testOrchestrator() *Orchestrator {
	return New(zerolog.Nop())
}

// succeedWith returns a branch that completes immediately with payload.
func succeedWith(name string, payload any) Branch {
	return Branch{Name: name, Invoke: func(_ context.Context, _ Request) (any, error) {
		return payload, nil
	}}
}

// failWith returns a branch that completes immediately with err.
func failWith(name string, err error) Branch {
	return Branch{Name: name, Invoke: func(_ context.Context, _ Request) (any, error) {
		return nil, err
	}}
}

// succeedAfter returns a branch that sleeps for d but honors cancellation,
// like an upstream client whose transport respects the request context.
func succeedAfter(name string, d time.Duration) Branch {
	return Branch{Name: name, Invoke: func(ctx context.Context, _ Request) (any, error) {
		select {
		case <-time.After(d):
			return "ok", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}
}

// ignoreCancel returns a branch that sleeps for d and ignores cancellation,
// like an upstream call stuck in a transport that cannot be interrupted.
func ignoreCancel(name string, d time.Duration) Branch {
	return Branch{Name: name, Timeout: time.Second, Invoke: func(_ context.Context, _ Request) (any, error) {
		time.Sleep(d)
		return "too late", nil
	}}
}

func TestRunAllBranchesSucceed(t *testing.T) {
	o := testOrchestrator()
	plan := Plan{Type: "movie_details", Mandatory: "metadata"}

	out := o.Run(context.Background(), plan, Request{MovieID: "tt0133093"}, []Branch{
		succeedWith("metadata", "m"),
		succeedWith("trailer", "t"),
		succeedWith("soundtrack", "s"),
	})

	if out.Status != Complete {
		t.Errorf("Expected status=Complete, got %s", out.Status)
	}
	if out.Type != "movie_details" {
		t.Errorf("Expected type=movie_details, got %s", out.Type)
	}
	if out.Mandatory != "metadata" {
		t.Errorf("Expected mandatory=metadata, got %s", out.Mandatory)
	}
	if len(out.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(out.Results))
	}
	for _, name := range []string{"metadata", "trailer", "soundtrack"} {
		r, ok := out.Results[name]
		if !ok {
			t.Fatalf("Expected a result for branch %s", name)
		}
		if !r.OK() {
			t.Errorf("Expected branch %s to succeed, got %v", name, r.Err())
		}
	}
	if got := out.Results["metadata"].Payload(); got != "m" {
		t.Errorf("Expected metadata payload 'm', got %v", got)
	}
}

func TestRunDispatchesBranchesConcurrently(t *testing.T) {
	o := testOrchestrator()

	const n = 4
	branches := make([]Branch, 0, n)
	for i := 0; i < n; i++ {
		branches = append(branches, succeedAfter(fmt.Sprintf("branch-%d", i), 60*time.Millisecond))
	}

	start := time.Now()
	out := o.Run(context.Background(), Plan{Type: "movie_details", Deadline: 2 * time.Second}, Request{}, branches)
	elapsed := time.Since(start)

	if out.Status != Complete {
		t.Fatalf("Expected status=Complete, got %s", out.Status)
	}
	// Serial dispatch would need n*60ms; concurrent finishes near 60ms.
	if elapsed > 200*time.Millisecond {
		t.Errorf("Expected concurrent dispatch near 60ms, took %v", elapsed)
	}
}

func TestRunFailureDoesNotCancelSiblings(t *testing.T) {
	o := testOrchestrator()
	plan := Plan{Type: "movie_details", Deadline: 2 * time.Second, Mandatory: "metadata"}

	out := o.Run(context.Background(), plan, Request{}, []Branch{
		failWith("metadata", errors.New("connection refused")),
		succeedAfter("trailer", 50*time.Millisecond),
	})

	if out.Status != Failed {
		t.Errorf("Expected status=Failed, got %s", out.Status)
	}
	if r := out.Results["trailer"]; !r.OK() {
		t.Errorf("Expected trailer to outlive the metadata failure, got %v", r.Err())
	}
}

func TestRunPartialWhenEnrichmentFails(t *testing.T) {
	o := testOrchestrator()
	plan := Plan{Type: "movie_details", Mandatory: "metadata"}

	out := o.Run(context.Background(), plan, Request{}, []Branch{
		succeedWith("metadata", "m"),
		failWith("trailer", errors.New("connection refused")),
	})

	if out.Status != Partial {
		t.Errorf("Expected status=Partial, got %s", out.Status)
	}
	if r := out.Results["trailer"]; r.OK() {
		t.Error("Expected trailer to be recorded as a failure")
	} else if r.Err().Kind != KindUnavailable {
		t.Errorf("Expected kind=unavailable, got %s", r.Err().Kind)
	}
}

func TestRunAllBranchesFail(t *testing.T) {
	o := testOrchestrator()

	out := o.Run(context.Background(), Plan{Type: "title_search"}, Request{Title: "heat"}, []Branch{
		failWith("search", errors.New("connection refused")),
		failWith("posters", errors.New("connection refused")),
	})

	if out.Status != Failed {
		t.Errorf("Expected status=Failed, got %s", out.Status)
	}
}

func TestRunSlowBranchTimesOut(t *testing.T) {
	o := testOrchestrator()
	plan := Plan{Type: "movie_details", Deadline: 2 * time.Second}

	slow := succeedAfter("trailer", time.Second)
	slow.Timeout = 25 * time.Millisecond

	out := o.Run(context.Background(), plan, Request{}, []Branch{
		succeedWith("metadata", "m"),
		slow,
	})

	r, ok := out.Results["trailer"]
	if !ok {
		t.Fatal("Expected a result for the timed-out branch")
	}
	if r.OK() {
		t.Fatal("Expected the slow branch to fail")
	}
	if r.Err().Kind != KindTimeout {
		t.Errorf("Expected kind=timeout, got %s", r.Err().Kind)
	}
	if out.Status != Partial {
		t.Errorf("Expected status=Partial, got %s", out.Status)
	}
}

func TestRunGlobalDeadlineMarksPendingBranches(t *testing.T) {
	o := testOrchestrator()
	plan := Plan{Type: "movie_details", Deadline: 40 * time.Millisecond, Mandatory: "metadata"}

	start := time.Now()
	out := o.Run(context.Background(), plan, Request{}, []Branch{
		succeedWith("metadata", "m"),
		ignoreCancel("trailer", 400*time.Millisecond),
		ignoreCancel("soundtrack", 400*time.Millisecond),
	})
	elapsed := time.Since(start)

	if len(out.Results) != 3 {
		t.Fatalf("Expected every branch in the outcome, got %d of 3", len(out.Results))
	}
	for _, name := range []string{"trailer", "soundtrack"} {
		r := out.Results[name]
		if r.OK() {
			t.Fatalf("Expected branch %s to be marked failed at the deadline", name)
		}
		if r.Err().Kind != KindDeadlineExceeded {
			t.Errorf("Expected branch %s kind=deadline_exceeded, got %s", name, r.Err().Kind)
		}
	}
	if out.Status != Partial {
		t.Errorf("Expected status=Partial, got %s", out.Status)
	}
	// The stuck invocations sleep 400ms; returning sooner proves they
	// were abandoned rather than awaited.
	if elapsed > 300*time.Millisecond {
		t.Errorf("Expected return at the 40ms deadline, took %v", elapsed)
	}
}

func TestRunCanceledParentContext(t *testing.T) {
	o := testOrchestrator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := o.Run(ctx, Plan{Type: "movie_details"}, Request{}, []Branch{
		succeedAfter("metadata", time.Second),
		succeedAfter("trailer", time.Second),
	})

	if out.Status != Failed {
		t.Errorf("Expected status=Failed, got %s", out.Status)
	}
	if len(out.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(out.Results))
	}
	for name, r := range out.Results {
		if r.OK() {
			t.Fatalf("Expected branch %s to fail under a canceled context", name)
		}
		if r.Err().Kind != KindDeadlineExceeded {
			t.Errorf("Expected branch %s kind=deadline_exceeded, got %s", name, r.Err().Kind)
		}
	}
}

func TestRunPanickingBranchBecomesFailure(t *testing.T) {
	o := testOrchestrator()
	plan := Plan{Type: "movie_details", Deadline: time.Second, Mandatory: "metadata"}

	out := o.Run(context.Background(), plan, Request{}, []Branch{
		succeedWith("metadata", "m"),
		{Name: "trivia", Invoke: func(_ context.Context, _ Request) (any, error) {
			panic("nil map write")
		}},
	})

	r := out.Results["trivia"]
	if r.OK() {
		t.Fatal("Expected the panicking branch to fail")
	}
	if r.Err().Kind != KindUnavailable {
		t.Errorf("Expected kind=unavailable, got %s", r.Err().Kind)
	}
	if !strings.Contains(r.Err().Detail, "panicked") {
		t.Errorf("Expected the detail to mention the panic, got %q", r.Err().Detail)
	}
	if out.Status != Partial {
		t.Errorf("Expected status=Partial, got %s", out.Status)
	}
}

func TestRunAppliesDefaultTimeouts(t *testing.T) {
	o := testOrchestrator()

	t.Run("branch timeout", func(t *testing.T) {
		var remaining time.Duration
		out := o.Run(context.Background(), Plan{Type: "movie_details"}, Request{}, []Branch{{
			Name: "metadata",
			Invoke: func(ctx context.Context, _ Request) (any, error) {
				dl, ok := ctx.Deadline()
				if !ok {
					return nil, errors.New("no deadline on the branch context")
				}
				remaining = time.Until(dl)
				return "ok", nil
			},
		}})
		if out.Status != Complete {
			t.Fatalf("Expected status=Complete, got %s: %v", out.Status, out.Results["metadata"].Err())
		}
		if remaining <= DefaultBranchTimeout-time.Second || remaining > DefaultBranchTimeout {
			t.Errorf("Expected a deadline near %v, got %v", DefaultBranchTimeout, remaining)
		}
	})

	t.Run("global deadline", func(t *testing.T) {
		var remaining time.Duration
		out := o.Run(context.Background(), Plan{Type: "movie_details"}, Request{}, []Branch{{
			Name: "metadata",
			// A branch timeout far past the global default makes the
			// global deadline the binding constraint.
			Timeout: time.Minute,
			Invoke: func(ctx context.Context, _ Request) (any, error) {
				dl, ok := ctx.Deadline()
				if !ok {
					return nil, errors.New("no deadline on the branch context")
				}
				remaining = time.Until(dl)
				return "ok", nil
			},
		}})
		if out.Status != Complete {
			t.Fatalf("Expected status=Complete, got %s: %v", out.Status, out.Results["metadata"].Err())
		}
		if remaining <= DefaultDeadline-time.Second || remaining > DefaultDeadline {
			t.Errorf("Expected a deadline near %v, got %v", DefaultDeadline, remaining)
		}
	})
}

func TestRunNoBranches(t *testing.T) {
	o := testOrchestrator()

	out := o.Run(context.Background(), Plan{Type: "movie_details"}, Request{}, nil)

	if out.Status != Complete {
		t.Errorf("Expected status=Complete for an empty branch set, got %s", out.Status)
	}
	if len(out.Results) != 0 {
		t.Errorf("Expected no results, got %d", len(out.Results))
	}
}

func TestRunBranchTimeoutDetail(t *testing.T) {
	o := testOrchestrator()

	r := o.runBranch(context.Background(), Branch{
		Name:    "trailer",
		Timeout: 20 * time.Millisecond,
		Invoke: func(_ context.Context, _ Request) (any, error) {
			time.Sleep(200 * time.Millisecond)
			return "late", nil
		},
	}, Request{})

	if r.OK() {
		t.Fatal("Expected a timeout failure")
	}
	if r.Err().Kind != KindTimeout {
		t.Errorf("Expected kind=timeout, got %s", r.Err().Kind)
	}
	if !strings.Contains(r.Err().Detail, "no response within") {
		t.Errorf("Expected a timeout detail, got %q", r.Err().Detail)
	}
}

func TestRunBranchDeadlineExceededMidFlight(t *testing.T) {
	o := testOrchestrator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := o.runBranch(ctx, Branch{
		Name:    "trailer",
		Timeout: time.Second,
		Invoke: func(_ context.Context, _ Request) (any, error) {
			time.Sleep(200 * time.Millisecond)
			return "late", nil
		},
	}, Request{})

	if r.OK() {
		t.Fatal("Expected a deadline failure")
	}
	if r.Err().Kind != KindDeadlineExceeded {
		t.Errorf("Expected kind=deadline_exceeded, got %s", r.Err().Kind)
	}
	if !strings.Contains(r.Err().Detail, "global deadline elapsed mid-flight") {
		t.Errorf("Expected a mid-flight detail, got %q", r.Err().Detail)
	}
}
