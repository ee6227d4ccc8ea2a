// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematographus/internal/metrics"
	"github.com/tomtom215/cinematographus/internal/models"
	"github.com/tomtom215/cinematographus/internal/store"
)

var (
	// ErrInvalidCredentials is returned for unknown accounts and wrong
	// passwords alike, so responses do not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailRejected is returned when the verification provider flags a
	// registration address as malformed or undeliverable.
	ErrEmailRejected = errors.New("email address failed verification")
)

// EmailVerifier is the slice of the email verification client the service
// needs. A nil verifier disables the deliverability check.
type EmailVerifier interface {
	Verify(ctx context.Context, email string) (*models.EmailCheck, error)
}

// Service implements registration and login on top of the user store.
type Service struct {
	store    *store.Store
	tokens   *JWTManager
	verifier EmailVerifier
	logger   zerolog.Logger
}

// NewService creates an auth service. verifier may be nil to skip email
// verification.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(s *store.Store, tokens *JWTManager, verifier EmailVerifier, logger zerolog.Logger) *Service {
	return &Service{
		store:    s,
		tokens:   tokens,
		verifier: verifier,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates a new account. The email is checked with the
// verification provider when one is configured; a provider outage fails
// open so registration does not depend on a third party being up.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if s.verifier != nil {
		check, err := s.verifier.Verify(ctx, req.Email)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Msg("email verification unavailable, accepting address unchecked")
		case !check.Usable():
			metrics.Registrations.WithLabelValues("rejected").Inc()
			return nil, ErrEmailRejected
		}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:              uuid.NewString(),
		Email:           req.Email,
		PasswordHash:    hash,
		PreferredGenres: []int{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			metrics.Registrations.WithLabelValues("rejected").Inc()
			return nil, err
		}
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.Registrations.WithLabelValues("success").Inc()
	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown accounts
// burn the same hashing work as wrong passwords.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			compareDummy(req.Password)
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, ErrInvalidCredentials
		}
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !VerifyPassword(user.PasswordHash, req.Password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	s.logger.Debug().Str("user_id", user.ID).Msg("login succeeded")
	return &models.TokenResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresAt: expiresAt,
		UserID:    user.ID,
	}, nil
}
