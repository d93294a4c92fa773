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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakil470004/tea-with-me/pkg/extensions"
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/storage"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	db, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewProvider(NewUserStore(db, bcrypt.MinCost), NewSessionStore(db, time.Hour))
}

// =============================================================================
// UserStore Tests
// =============================================================================

func TestUserStore_Create(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	u, err := p.Users().Create(ctx, "  Store Admin ", " Admin@TeaWithMe.Test ", "correct horse", true)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Store Admin", u.Name)
	assert.Equal(t, "admin@teawithme.test", u.Email)
	assert.True(t, u.IsAdmin)

	got, err := p.Users().GetByEmail(ctx, "ADMIN@teawithme.test")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	byID, err := p.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
}

func TestUserStore_CreateRejects(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	_, err := p.Users().Create(ctx, "Admin", "admin@teawithme.test", "correct horse", true)
	require.NoError(t, err)

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"duplicate email", "Other", "ADMIN@teawithme.test", "correct horse", ErrDuplicateEmail},
		{"short password", "Other", "other@teawithme.test", "short", ErrWeakPassword},
		{"long password", "Other", "other@teawithme.test", string(make([]byte, 73)), ErrWeakPassword},
		{"bad email", "Other", "not-an-email", "correct horse", datatypes.ErrInvalidInput},
		{"missing name", " ", "other@teawithme.test", "correct horse", datatypes.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Users().Create(ctx, tt.userName, tt.email, tt.password, false)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserStore_ConcurrentCreateSameEmail(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.Users().Create(ctx, "Admin", "race@teawithme.test", "correct horse", true)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, errors.Is(err, ErrDuplicateEmail) || errors.Is(err, storage.ErrConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, created)
}

func TestUserStore_Authenticate(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	_, err := p.Users().Create(ctx, "Admin", "admin@teawithme.test", "correct horse", true)
	require.NoError(t, err)

	u, err := p.Users().Authenticate(ctx, "Admin@TeaWithMe.test", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "admin@teawithme.test", u.Email)

	_, err = p.Users().Authenticate(ctx, "admin@teawithme.test", "wrong horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Users().Authenticate(ctx, "nobody@teawithme.test", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserStore_SetPassword(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	_, err := p.Users().Create(ctx, "Admin", "admin@teawithme.test", "correct horse", true)
	require.NoError(t, err)

	require.NoError(t, p.Users().SetPassword(ctx, "admin@teawithme.test", "battery staple"))
	_, err = p.Users().Authenticate(ctx, "admin@teawithme.test", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.Users().Authenticate(ctx, "admin@teawithme.test", "battery staple")
	assert.NoError(t, err)

	assert.ErrorIs(t, p.Users().SetPassword(ctx, "nobody@teawithme.test", "battery staple"), ErrUserNotFound)
	assert.ErrorIs(t, p.Users().SetPassword(ctx, "admin@teawithme.test", "short"), ErrWeakPassword)
}

func TestUserStore_EnsureAdmin(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	created, err := p.Users().EnsureAdmin(ctx, "Admin", "admin@teawithme.test", "correct horse")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = p.Users().EnsureAdmin(ctx, "Admin", "admin@teawithme.test", "another password")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = p.Users().Authenticate(ctx, "admin@teawithme.test", "correct horse")
	assert.NoError(t, err, "existing password is kept")
}

// =============================================================================
// Session and Provider Tests
// =============================================================================

func TestProvider_LoginValidateLogout(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	_, err := p.Users().Create(ctx, "Store Admin", "admin@teawithme.test", "correct horse", true)
	require.NoError(t, err)

	sess, u, err := p.Login(ctx, "admin@teawithme.test", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Equal(t, 3600, p.CookieMaxAge())

	info, err := p.Validate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, info.UserID)
	assert.Equal(t, "Store Admin", info.Name)
	assert.True(t, info.IsAdmin())

	require.NoError(t, p.Logout(ctx, sess.Token))
	_, err = p.Validate(ctx, sess.Token)
	assert.ErrorIs(t, err, extensions.ErrUnauthorized)

	assert.NoError(t, p.Logout(ctx, sess.Token), "second logout is a no-op")
}

func TestProvider_ValidateRejects(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	_, err := p.Validate(ctx, "")
	assert.ErrorIs(t, err, extensions.ErrUnauthorized)
	_, err = p.Validate(ctx, "not-a-session")
	assert.ErrorIs(t, err, extensions.ErrUnauthorized)

	// A session whose user no longer exists.
	sess, err := p.sessions.Create(ctx, "ghost")
	require.NoError(t, err)
	_, err = p.Validate(ctx, sess.Token)
	assert.ErrorIs(t, err, extensions.ErrUnauthorized)
}

func TestProvider_LoginWrongPassword(t *testing.T) {
	p := newTestProvider(t)
	_, _, err := p.Login(context.Background(), "admin@teawithme.test", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionStore_Expiry(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p.sessions.now = func() time.Time { return clock }

	sess, err := p.sessions.Create(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, clock.Add(time.Hour), sess.ExpiresAt)

	_, err = p.sessions.Lookup(ctx, sess.Token)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	_, err = p.sessions.Lookup(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAuthInfoFor(t *testing.T) {
	info := AuthInfoFor(&datatypes.User{ID: "u1", Name: "Clerk", Email: "clerk@teawithme.test"})
	assert.False(t, info.IsAdmin())
	assert.Empty(t, info.Roles)

	info = AuthInfoFor(&datatypes.User{ID: "u2", IsAdmin: true})
	assert.Equal(t, []string{extensions.RoleAdmin}, info.Roles)
}
