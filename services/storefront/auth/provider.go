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

	"github.com/sakil470004/tea-with-me/pkg/extensions"
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
)

// Provider resolves session tokens to identities and runs login/logout.
//
// # Thread Safety
//
// Safe for concurrent use.
type Provider struct {
	users    *UserStore
	sessions *SessionStore
}

// NewProvider creates a provider over the given stores.
func NewProvider(users *UserStore, sessions *SessionStore) *Provider {
	return &Provider{users: users, sessions: sessions}
}

// Users returns the user store.
func (p *Provider) Users() *UserStore {
	return p.users
}

// CookieMaxAge is the session lifetime in seconds.
func (p *Provider) CookieMaxAge() int {
	return int(p.sessions.TTL().Seconds())
}

// Validate implements extensions.AuthProvider.
//
// # Outputs
//
//   - *extensions.AuthInfo: the session's user, with RoleAdmin when IsAdmin
//   - error: wraps extensions.ErrUnauthorized for unknown or expired tokens
//     and for sessions whose user was removed
func (p *Provider) Validate(ctx context.Context, token string) (*extensions.AuthInfo, error) {
	sess, err := p.sessions.Lookup(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("invalid session: %w", extensions.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	u, err := p.users.Get(ctx, sess.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("session user gone: %w", extensions.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	return AuthInfoFor(u), nil
}

// Login checks credentials and starts a session.
func (p *Provider) Login(ctx context.Context, email, password string) (*Session, *datatypes.User, error) {
	u, err := p.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	sess, err := p.sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return sess, u, nil
}

// Logout ends the session for token.
func (p *Provider) Logout(ctx context.Context, token string) error {
	return p.sessions.Delete(ctx, token)
}

// AuthInfoFor converts a user to the identity seen by middleware.
func AuthInfoFor(u *datatypes.User) *extensions.AuthInfo {
	info := &extensions.AuthInfo{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Roles:  []string{},
	}
	if u.IsAdmin {
		info.Roles = append(info.Roles, extensions.RoleAdmin)
	}
	return info
}

var _ extensions.AuthProvider = (*Provider)(nil)
