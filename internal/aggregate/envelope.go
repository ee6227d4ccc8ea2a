// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package aggregate

// Envelope statuses on the wire. "success" covers complete and partial
// outcomes, "fail" is client-correctable (the subject does not exist),
// "error" is an upstream or internal fault.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Failure wording is fixed across request types; success wording comes
// from the request type's Messages.
const (
	msgNotFound    = "subject not found"
	msgUnavailable = "upstream services unavailable"
)

// Messages holds a request type's success wording.
type Messages struct {
	// Complete is the message when every branch succeeded.
	Complete string

	// Partial is the message when the mandatory branch succeeded but at
	// least one enrichment branch did not.
	Partial string
}

// Envelope is the stable response contract, the only artifact that
// crosses the system boundary. Data is always present on the wire:
// an object keyed by branch name (null entries for failed branches) for
// successful outcomes, null for failed ones.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// BuildEnvelope folds an outcome into the envelope contract. The mapping
// is pure: identical outcomes always produce identical envelopes, and
// marshaling sorts data keys, so equal outcomes serialize byte-identically.
//
//   - Complete: status "success", every branch payload present.
//   - Partial: status "success", failed branches present as explicit nulls
//     so a caller can render unavailable states deterministically.
//   - Failed: "fail" with a not-found message when the mandatory branch's
//     failure kind is NotFound, otherwise "error" with a generic
//     unavailable message; data is null and any non-mandatory payloads
//     are discarded.
func BuildEnvelope(o Outcome, m Messages) Envelope {
	switch o.Status {
	case Complete:
		return Envelope{Status: StatusSuccess, Message: m.Complete, Data: branchData(o)}
	case Partial:
		return Envelope{Status: StatusSuccess, Message: m.Partial, Data: branchData(o)}
	default:
		if err := o.MandatoryResult().Err(); err != nil && err.Kind == KindNotFound {
			return Envelope{Status: StatusFail, Message: msgNotFound, Data: nil}
		}
		return Envelope{Status: StatusError, Message: msgUnavailable, Data: nil}
	}
}

// branchData nests each branch payload under its branch name. Failed
// branches appear as explicit nulls, never as absent keys.
func branchData(o Outcome) map[string]any {
	data := make(map[string]any, len(o.Results))
	for name, r := range o.Results {
		if r.OK() {
			data[name] = r.Payload()
		} else {
			data[name] = nil
		}
	}
	return data
}
