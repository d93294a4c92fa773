// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sakil470004/tea-with-me/services/storefront/storage"
)

// CookieName is the cookie that carries the session token.
const CookieName = "token"

// DefaultSessionTTL is the lifetime of a login session.
const DefaultSessionTTL = 7 * 24 * time.Hour

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// Session binds a random token to a user until ExpiresAt.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionStore persists sessions as TTL documents keyed by token.
type SessionStore struct {
	sessions *storage.Collection[Session]
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a session store on db. A non-positive ttl means
// DefaultSessionTTL.
func NewSessionStore(db *storage.DB, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: storage.NewCollection[Session](db, "sessions"),
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TTL returns the session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create starts a session for userID.
func (s *SessionStore) Create(ctx context.Context, userID string) (*Session, error) {
	now := s.now()
	sess := &Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Put(ctx, sess.Token, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Lookup returns the live session for token.
func (s *SessionStore) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	sess, err := s.sessions.Get(ctx, token)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrCorrupt) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	// Badger expiry has one-second granularity.
	if !s.now().Before(sess.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete ends the session. Unknown tokens are ignored.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.sessions.Delete(ctx, token)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
