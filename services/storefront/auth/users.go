// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package auth implements dashboard accounts and login sessions.
//
// Passwords are stored as bcrypt hashes. Sessions are opaque random tokens
// stored with a TTL, so an expired session simply disappears from storage.
// Provider adapts both stores to extensions.AuthProvider for the HTTP
// middleware.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/storage"
)

var (
	// ErrDuplicateEmail is returned when creating a user whose email is taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password. Both cases return the same error.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound is returned for unknown user ids.
	ErrUserNotFound = errors.New("user not found")

	// ErrWeakPassword is returned for passwords bcrypt cannot take or that
	// are too short.
	ErrWeakPassword = errors.New("password must be 8 to 72 bytes")
)

const (
	emailIndex        = "email"
	minPasswordLength = 8
	maxPasswordLength = 72
)

// newUser holds the validated fields of Create.
type newUser struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// storedUser is the persisted form of a user. The hash never leaves this
// package.
type storedUser struct {
	datatypes.User
	PasswordHash string `json:"passwordHash"`
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailKey(email string) storage.Unique {
	return storage.Unique{Name: emailIndex, Value: email}
}

// UserStore persists dashboard accounts with a unique email index.
type UserStore struct {
	users *storage.Collection[storedUser]
	cost  int
	now   func() time.Time

	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

// NewUserStore creates a user store on db. cost is the bcrypt cost; values
// outside bcrypt's range use bcrypt.DefaultCost.
func NewUserStore(db *storage.DB, cost int) *UserStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &UserStore{
		users:     storage.NewCollection[storedUser](db, "users"),
		cost:      cost,
		now:       func() time.Time { return time.Now().UTC() },
		dummyHash: dummy,
	}
}

// Create registers a new user.
//
// # Outputs
//
//   - *datatypes.User: the created user
//   - error: ErrWeakPassword, ErrDuplicateEmail, datatypes.FieldErrors for a
//     malformed email or name, or a storage error
func (s *UserStore) Create(ctx context.Context, name, email, password string, isAdmin bool) (*datatypes.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if err := datatypes.Validate(&newUser{Name: name, Email: email}); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := &storedUser{
		User: datatypes.User{
			ID:        storage.NewID(),
			Name:      name,
			Email:     email,
			IsAdmin:   isAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: string(hash),
	}
	err = s.users.Insert(ctx, u.ID, u, emailKey(email))
	if errors.Is(err, storage.ErrConflict) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u.User, nil
}

// Get returns the user with id.
func (s *UserStore) Get(ctx context.Context, id string) (*datatypes.User, error) {
	u, err := s.users.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u.User, nil
}

// GetByEmail returns the user registered under email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*datatypes.User, error) {
	u, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	return &u.User, nil
}

func (s *UserStore) lookup(ctx context.Context, email string) (*storedUser, error) {
	email = NormalizeEmail(email)
	u, err := s.users.Lookup(ctx, emailKey(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Authenticate checks email and password and returns the user.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*datatypes.User, error) {
	u, err := s.lookup(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u.User, nil
}

// SetPassword replaces the password of the user registered under email.
func (s *UserStore) SetPassword(ctx context.Context, email, password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrWeakPassword
	}
	u, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.users.Update(ctx, u.ID, func(doc *storedUser) error {
		doc.PasswordHash = string(hash)
		doc.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

// EnsureAdmin creates an admin account unless email is already registered.
// It reports whether a user was created. An existing account is left
// untouched, including its password and role.
func (s *UserStore) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.Create(ctx, name, email, password, true)
	if errors.Is(err, ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
