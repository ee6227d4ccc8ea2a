// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package cache

import (
	"crypto/sha256"
	"fmt"

	"github.com/goccy/go-json"
)

// Key builds a cache key from a request type and its subject parameters.
// The subject is serialized and hashed so structurally equal requests map
// to the same key regardless of how they were constructed.
func Key(requestType string, subject interface{}) string {
	data, err := json.Marshal(subject)
	if err != nil {
		// Fallback for unserializable subjects; %v is stable enough for
		// the parameter structs used here.
		return fmt.Sprintf("%s:%v", requestType, subject)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", requestType, hash[:16])
}
