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
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ServiceOptions Tests
// =============================================================================

type stubAuthProvider struct{}

func (p *stubAuthProvider) Validate(_ context.Context, _ string) (*AuthInfo, error) {
	return nil, ErrUnauthorized
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Nil(t, opts.AuthProvider, "nil AuthProvider selects the built-in session store")
	assert.IsType(t, &NopAuditLogger{}, opts.AuditLogger)
}

func TestServiceOptions_FluentChaining(t *testing.T) {
	provider := &stubAuthProvider{}
	auditor := NewSlogAuditLogger(nil)

	opts := DefaultOptions().WithAuth(provider).WithAudit(auditor)

	assert.Same(t, provider, opts.AuthProvider)
	assert.Same(t, auditor, opts.AuditLogger)
}

func TestServiceOptions_WithAuthDoesNotMutateOriginal(t *testing.T) {
	base := DefaultOptions()
	_ = base.WithAuth(&stubAuthProvider{})

	assert.Nil(t, base.AuthProvider)
}

// =============================================================================
// AuthInfo Tests
// =============================================================================

func TestAuthInfo_HasRole(t *testing.T) {
	tests := []struct {
		name string
		info *AuthInfo
		role string
		want bool
	}{
		{"admin role", &AuthInfo{UserID: "u1", Roles: []string{RoleAdmin}}, RoleAdmin, true},
		{"missing role", &AuthInfo{UserID: "u1", Roles: []string{"customer"}}, RoleAdmin, false},
		{"no roles", &AuthInfo{UserID: "u1"}, RoleAdmin, false},
		{"nil info", nil, RoleAdmin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.HasRole(tt.role))
		})
	}
}

func TestAuthInfo_IsAdmin(t *testing.T) {
	assert.True(t, (&AuthInfo{Roles: []string{"customer", RoleAdmin}}).IsAdmin())
	assert.False(t, (&AuthInfo{Roles: []string{"customer"}}).IsAdmin())
}

func TestErrUnauthorized_Wrapping(t *testing.T) {
	err := fmt.Errorf("session expired: %w", ErrUnauthorized)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

// =============================================================================
// AuditLogger Tests
// =============================================================================

func TestNopAuditLogger_Log(t *testing.T) {
	err := (&NopAuditLogger{}).Log(context.Background(), AuditEvent{EventType: "product.create"})
	assert.NoError(t, err)
}

func TestSlogAuditLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	auditor := NewSlogAuditLogger(logger)

	err := auditor.Log(context.Background(), AuditEvent{
		EventType:    "product.delete",
		UserID:       "admin-1",
		ResourceType: "product",
		ResourceID:   "p-42",
		Outcome:      "success",
		Metadata:     map[string]any{"title": "Earl Grey"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "msg=audit")
	assert.Contains(t, out, "event_type=product.delete")
	assert.Contains(t, out, "user_id=admin-1")
	assert.Contains(t, out, "resource_id=p-42")
	assert.Contains(t, out, `title="Earl Grey"`)
}

func TestSlogAuditLogger_AnonymousUser(t *testing.T) {
	var buf bytes.Buffer
	auditor := NewSlogAuditLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, auditor.Log(context.Background(), AuditEvent{EventType: "auth.failed", Outcome: "failure"}))

	assert.Contains(t, buf.String(), "user_id=anonymous")
}
