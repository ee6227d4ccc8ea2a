// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

// Package aggregate implements the scatter-gather core: it fans an
// aggregation request out to a set of independent branches, tolerates the
// failure or slowness of any subset of them, and folds the terminal
// branch results into a stable response envelope.
//
// Branches are bulkheaded: one branch's failure never halts, cancels, or
// rolls back another. The orchestrator's only temporal policy is the
// per-branch timeout plus the global deadline; it never retries (retries
// belong to the upstream clients).
package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematographus/internal/metrics"
)

// Default temporal policy, used when a plan or branch leaves values unset.
const (
	DefaultDeadline      = 10 * time.Second
	DefaultBranchTimeout = 5 * time.Second
)

// Request identifies the subject of one aggregation call. Which fields
// are meaningful depends on the request type; branches read only what
// they need. Requests are immutable once constructed and never outlive
// the call.
type Request struct {
	MovieID  string
	Title    string
	UserID   string
	GenreIDs []int
}

// BranchFunc is the capability a branch invokes: one upstream call
// producing an opaque payload or an error. Implementations must honor ctx
// cancellation where their transport allows it; those that cannot are
// abandoned on timeout and leak until they return.
type BranchFunc func(ctx context.Context, req Request) (any, error)

// Branch is one named, independently-schedulable unit of upstream work.
// Branches within a set must have unique names and may not depend on one
// another's output.
type Branch struct {
	Name    string
	Timeout time.Duration
	Invoke  BranchFunc
}

// Plan is the per-request-type aggregation policy: the global deadline,
// the mandatory branch designation, and the envelope wording. Plans come
// from configuration, not from code order.
type Plan struct {
	// Type names the request type, e.g. "movie_details".
	Type string

	// Deadline bounds the whole fan-out; zero means DefaultDeadline.
	Deadline time.Duration

	// Mandatory names the branch whose failure forces a Failed outcome.
	Mandatory string

	// Messages carries the success wording for this request type.
	Messages Messages
}

// Orchestrator runs aggregation plans. It holds no per-request state;
// one instance is shared by all request types and all concurrent calls.
type Orchestrator struct {
	logger zerolog.Logger
}

// New creates an Orchestrator.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{logger: logger}
}

// completion pairs a branch name with its terminal result.
type completion struct {
	name   string
	result BranchResult
}

// Run dispatches every branch concurrently, waits for all of them to
// reach a terminal state or for the plan's global deadline, and returns
// the outcome. Every requested branch is present in the outcome exactly
// once: branches still pending at the deadline are recorded as
// DeadlineExceeded failures. Run never returns an error; all failure
// modes are folded into branch results.
func (o *Orchestrator) Run(ctx context.Context, plan Plan, req Request, branches []Branch) Outcome {
	deadline := plan.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}

	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	// Buffered to the branch count so a branch finishing after the
	// deadline can still send its discarded result without blocking.
	done := make(chan completion, len(branches))

	for _, b := range branches {
		go func(b Branch) {
			done <- completion{name: b.Name, result: o.runBranch(runCtx, b, req)}
		}(b)
	}

	results := make(map[string]BranchResult, len(branches))

collect:
	for len(results) < len(branches) {
		select {
		case c := <-done:
			results[c.name] = c.result
		case <-runCtx.Done():
			// Drain completions that arrived in the same instant, then
			// mark whatever is left as past the deadline.
			for {
				select {
				case c := <-done:
					results[c.name] = c.result
				default:
					for _, b := range branches {
						if _, ok := results[b.Name]; !ok {
							results[b.Name] = Failure(KindDeadlineExceeded,
								fmt.Sprintf("%s: still pending when the %s global deadline elapsed", b.Name, deadline))
						}
					}
					break collect
				}
			}
		}
	}

	status := deriveStatus(results, plan.Mandatory)
	elapsed := time.Since(start)

	for name, r := range results {
		outcome := "success"
		if !r.OK() {
			outcome = string(r.Err().Kind)
			o.logger.Warn().
				Str("request_type", plan.Type).
				Str("branch", name).
				Str("kind", string(r.Err().Kind)).
				Str("detail", r.Err().Detail).
				Msg("branch failed")
		}
		metrics.BranchOutcomes.WithLabelValues(plan.Type, name, outcome).Inc()
	}

	metrics.AggregationOutcomes.WithLabelValues(plan.Type, status.String()).Inc()
	metrics.AggregationDuration.WithLabelValues(plan.Type).Observe(elapsed.Seconds())

	o.logger.Debug().
		Str("request_type", plan.Type).
		Str("status", status.String()).
		Int("branches", len(branches)).
		Dur("elapsed", elapsed).
		Msg("aggregation finished")

	return Outcome{
		Type:      plan.Type,
		Results:   results,
		Mandatory: plan.Mandatory,
		Status:    status,
	}
}

// runBranch races one branch invocation against the branch's own timeout.
// It never panics outward and never blocks past the branch context: an
// invocation that ignores cancellation is abandoned, its eventual result
// discarded via the buffered reply channel.
func (o *Orchestrator) runBranch(ctx context.Context, b Branch, req Request) BranchResult {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultBranchTimeout
	}

	branchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		payload any
		err     error
	}
	out := make(chan reply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				out <- reply{err: fmt.Errorf("branch %s panicked: %v", b.Name, r)}
			}
		}()
		payload, err := b.Invoke(branchCtx, req)
		if err != nil {
			out <- reply{err: err}
			return
		}
		out <- reply{payload: payload}
	}()

	select {
	case r := <-out:
		if r.err != nil {
			return failureFrom(classify(r.err, ctx))
		}
		return Success(r.payload)
	case <-branchCtx.Done():
		if ctx.Err() != nil {
			return Failure(KindDeadlineExceeded,
				fmt.Sprintf("%s: global deadline elapsed mid-flight", b.Name))
		}
		return Failure(KindTimeout,
			fmt.Sprintf("%s: no response within %s", b.Name, timeout))
	}
}
