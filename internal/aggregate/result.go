// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package aggregate

// BranchResult is the terminal state of one branch: either a payload or a
// classified failure, never both and never neither. The zero value is a
// success with a nil payload; use the constructors.
type BranchResult struct {
	payload any
	err     *Error
}

// Success wraps a branch payload.
func Success(payload any) BranchResult {
	return BranchResult{payload: payload}
}

// Failure wraps a classified branch error.
func Failure(kind Kind, detail string) BranchResult {
	return BranchResult{err: NewError(kind, detail)}
}

// failureFrom wraps an already-built *Error.
func failureFrom(err *Error) BranchResult {
	return BranchResult{err: err}
}

// OK reports whether the branch succeeded.
func (r BranchResult) OK() bool {
	return r.err == nil
}

// Payload returns the success payload; nil for failures.
func (r BranchResult) Payload() any {
	return r.payload
}

// Err returns the classified failure; nil for successes.
func (r BranchResult) Err() *Error {
	return r.err
}

// Status is the overall classification of an aggregation outcome.
type Status int

const (
	// Complete means every branch succeeded.
	Complete Status = iota

	// Partial means the mandatory branch succeeded but at least one other
	// branch failed or timed out.
	Partial

	// Failed means the mandatory branch failed, or every branch failed.
	Failed
)

// String returns the lowercase status name, used in logs and metric labels.
func (s Status) String() string {
	switch s {
	case Complete:
		return "complete"
	case Partial:
		return "partial"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome maps every requested branch name to its terminal result.
// Exactly one entry exists per requested branch; a branch that never
// completed is present as a Timeout or DeadlineExceeded failure, never
// omitted. Outcomes live for one aggregation call only.
type Outcome struct {
	// Type is the request type this outcome was produced for.
	Type string

	// Results holds one terminal BranchResult per requested branch name.
	Results map[string]BranchResult

	// Mandatory names the branch whose failure forces Status == Failed.
	// Empty means no branch is mandatory and Failed requires all branches
	// to fail.
	Mandatory string

	// Status is derived from Results and Mandatory; see deriveStatus.
	Status Status
}

// MandatoryResult returns the mandatory branch's result. The zero
// BranchResult (a nil-payload success) is returned when no mandatory
// branch is configured.
func (o Outcome) MandatoryResult() BranchResult {
	return o.Results[o.Mandatory]
}

// deriveStatus applies the overall classification rule: a failed
// mandatory branch always forces Failed regardless of the other
// branches; otherwise Complete when nothing failed, Failed when
// everything failed, Partial in between.
func deriveStatus(results map[string]BranchResult, mandatory string) Status {
	if mandatory != "" {
		if r, ok := results[mandatory]; ok && !r.OK() {
			return Failed
		}
	}

	failures := 0
	for _, r := range results {
		if !r.OK() {
			failures++
		}
	}

	switch {
	case failures == 0:
		return Complete
	case failures == len(results):
		return Failed
	default:
		return Partial
	}
}
