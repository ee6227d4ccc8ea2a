// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package models

import "time"

// User is a registered account. The password hash is persisted by the store
// layer but never serialized into API responses.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	PreferredGenres []int     `json:"preferred_genres"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RegisterRequest creates a new account. The address must verify as
// deliverable before the account is stored.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a signed session token.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
}

// PreferencesUpdateRequest replaces a user's preferred genre ids.
type PreferencesUpdateRequest struct {
	Preferences []int `json:"preferences" validate:"required,dive,gte=0"`
}

// EmailCheck is the verification verdict for an email address.
type EmailCheck struct {
	Email          string `json:"email"`
	Deliverability string `json:"deliverability"`
	IsValidFormat  bool   `json:"is_valid_format"`
}

// Usable reports whether the address may be registered: the format must be
// valid and the provider must not have flagged it undeliverable.
func (c EmailCheck) Usable() bool {
	return c.IsValidFormat && c.Deliverability != "UNDELIVERABLE"
}
