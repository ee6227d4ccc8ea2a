// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

// Package store persists user accounts and genre preferences in BadgerDB.
// Records are stored as JSON under prefixed keys with a secondary index
// from email address to user id, so both lookup paths are single reads.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematographus/internal/metrics"
	"github.com/tomtom215/cinematographus/internal/models"
)

// Key prefixes for BadgerDB storage.
const (
	userKeyPrefix  = "user:"
	emailKeyPrefix = "user_email:"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when a registration reuses an address.
	ErrEmailTaken = errors.New("email address already registered")
)

// Config controls how the underlying BadgerDB is opened.
type Config struct {
	// Path is the on-disk database directory. Ignored when InMemory is set.
	Path string

	// InMemory runs the store without persistence. Used in tests.
	InMemory bool

	// SyncWrites makes every write durable before returning.
	SyncWrites bool
}

// Store is the BadgerDB-backed user store.
type Store struct {
	db *badger.DB
}

// storedUser is the persisted record. It carries the password hash, which
// models.User deliberately never serializes.
type storedUser struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"password_hash"`
	PreferredGenres []int     `json:"preferred_genres"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (u *storedUser) toModel() *models.User {
	return &models.User{
		ID:              u.ID,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		PreferredGenres: u.PreferredGenres,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func fromModel(u *models.User) *storedUser {
	return &storedUser{
		ID:              u.ID,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		PreferredGenres: u.PreferredGenres,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// Open creates or opens the store at the configured path.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = cfg.SyncWrites
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeEmail lowers the address so lookups are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new user and its email index entry. The email must
// not already be indexed.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	record := fromModel(user)
	record.Email = normalizeEmail(record.Email)

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	start := time.Now()
	err = s.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(emailKeyPrefix + record.Email)
		_, getErr := txn.Get(emailKey)
		if getErr == nil {
			return ErrEmailTaken
		}
		if !errors.Is(getErr, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email index: %w", getErr)
		}

		userKey := []byte(userKeyPrefix + record.ID)
		if setErr := txn.Set(userKey, data); setErr != nil {
			return fmt.Errorf("set user: %w", setErr)
		}
		if setErr := txn.Set(emailKey, []byte(record.ID)); setErr != nil {
			return fmt.Errorf("set email index: %w", setErr)
		}
		return nil
	})
	metrics.RecordStoreOperation("create_user", resultLabel(err), time.Since(start))
	return err
}

// GetUser retrieves a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var record storedUser

	start := time.Now()
	err := s.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get([]byte(userKeyPrefix + id))
		if errors.Is(getErr, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if getErr != nil {
			return fmt.Errorf("get user: %w", getErr)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	metrics.RecordStoreOperation("get_user", resultLabel(err), time.Since(start))

	if err != nil {
		return nil, err
	}
	return record.toModel(), nil
}

// GetUserByEmail retrieves a user through the email index.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	var record storedUser

	start := time.Now()
	err := s.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get([]byte(emailKeyPrefix + email))
		if errors.Is(getErr, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if getErr != nil {
			return fmt.Errorf("get email index: %w", getErr)
		}

		var id string
		if valErr := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); valErr != nil {
			return valErr
		}

		userItem, getErr := txn.Get([]byte(userKeyPrefix + id))
		if errors.Is(getErr, badger.ErrKeyNotFound) {
			// Index points at a deleted record; treat as absent.
			return ErrUserNotFound
		}
		if getErr != nil {
			return fmt.Errorf("get user: %w", getErr)
		}
		return userItem.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	metrics.RecordStoreOperation("get_user_by_email", resultLabel(err), time.Since(start))

	if err != nil {
		return nil, err
	}
	return record.toModel(), nil
}

// GetPreferences returns a user's preferred genre ids.
func (s *Store) GetPreferences(ctx context.Context, userID string) ([]int, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.PreferredGenres == nil {
		return []int{}, nil
	}
	return user.PreferredGenres, nil
}

// ReplacePreferences overwrites a user's preferred genre ids.
func (s *Store) ReplacePreferences(ctx context.Context, userID string, genreIDs []int) error {
	start := time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(userKeyPrefix + userID)
		item, getErr := txn.Get(key)
		if errors.Is(getErr, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if getErr != nil {
			return fmt.Errorf("get user: %w", getErr)
		}

		var record storedUser
		if valErr := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); valErr != nil {
			return fmt.Errorf("unmarshal user: %w", valErr)
		}

		record.PreferredGenres = genreIDs
		record.UpdatedAt = time.Now().UTC()

		data, marshalErr := json.Marshal(&record)
		if marshalErr != nil {
			return fmt.Errorf("marshal user: %w", marshalErr)
		}
		return txn.Set(key, data)
	})
	metrics.RecordStoreOperation("replace_preferences", resultLabel(err), time.Since(start))
	return err
}

// CountUsers returns the number of stored users. Used by readiness checks.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(userKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// RunGC triggers value log garbage collection until no further rewrite is
// possible.
func (s *Store) RunGC(ratio float64) error {
	for {
		err := s.db.RunValueLogGC(ratio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrEmailTaken):
		return "rejected"
	default:
		return "error"
	}
}
