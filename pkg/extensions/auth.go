// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extensions

import (
	"context"
	"errors"
)

// RoleAdmin is the role required by every dashboard (admin) route.
const RoleAdmin = "admin"

// ErrUnauthorized is returned when a token is missing, unknown or expired.
// Implementations should wrap it with context:
//
//	return nil, fmt.Errorf("session expired: %w", extensions.ErrUnauthorized)
var ErrUnauthorized = errors.New("unauthorized")

// AuthInfo contains identity information returned after successful
// authentication.
//
// Example:
//
//	info := &AuthInfo{
//	    UserID: "4f7a...",
//	    Name:   "Store Admin",
//	    Email:  "admin@teawithme.test",
//	    Roles:  []string{RoleAdmin},
//	}
type AuthInfo struct {
	// UserID is the unique identifier for the authenticated user.
	// Never empty.
	UserID string

	// Name is the display name shown in the dashboard header.
	Name string

	// Email is the login email, lower-cased.
	Email string

	// Roles contains the user's role memberships.
	Roles []string
}

// HasRole checks if the user has a specific role.
func (a *AuthInfo) HasRole(role string) bool {
	if a == nil {
		return false
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user may use the product-management dashboard.
func (a *AuthInfo) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// AuthProvider validates authentication tokens and returns user identity.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type AuthProvider interface {
	// Validate checks if the token is valid and returns the user's identity.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - token: The session token taken from the cookie or bearer header
	//
	// Returns:
	//   - *AuthInfo: User identity information if valid
	//   - error: ErrUnauthorized (or wrapped) if invalid, other errors for failures
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}
