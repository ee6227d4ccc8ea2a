// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost balances hashing latency against brute-force resistance.
const bcryptCost = 12

// dummyHash is compared against when the account does not exist, so login
// latency does not reveal whether an email is registered.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("cinematographus-timing-dummy"), bcryptCost)

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
// bcrypt's comparison is timing-safe by design.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// compareDummy burns the same work as a real comparison. The result is
// always false.
func compareDummy(password string) bool {
	return bcrypt.CompareHashAndPassword(dummyHash, []byte(password)) == nil
}
