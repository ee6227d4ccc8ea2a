// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/cinematographus/internal/auth"
)

type contextKey string

// userIDKey carries the authenticated user's id through the request context.
const userIDKey contextKey = "user_id"

const bearerPrefix = "Bearer "

// TokenValidator checks a presented session token and returns its claims.
// *auth.JWTManager satisfies it.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid bearer token and stashes
// the token's user id in the request context for the handlers behind it.
func Authenticate(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeFail(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeFail(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user's id, or "" when the request did
// not pass through Authenticate.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
