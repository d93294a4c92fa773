// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package extensions defines the pluggable seams of the storefront.
//
// The storefront delegates two cross-cutting concerns to interfaces so a
// deployment can swap them without touching handlers:
//
//   - auth.go: turning a session token into an identity (AuthProvider)
//   - audit.go: recording admin actions and logins (AuditLogger)
//
// # Usage
//
// The storefront uses its own session-backed AuthProvider unless one is
// given. The audit trail defaults to NopAuditLogger; the teawithme binary
// passes a SlogAuditLogger. Callers can override either:
//
//	opts := extensions.DefaultOptions().
//	    WithAuth(myProvider).
//	    WithAudit(extensions.NewSlogAuditLogger(logger))
//	svc, err := storefront.New(cfg, &opts)
//
// # Thread Safety
//
// All implementations must be safe for concurrent use.
package extensions

// ServiceOptions groups all extension points for service configuration.
//
// A nil AuthProvider tells the storefront to use its built-in session store.
type ServiceOptions struct {
	// AuthProvider validates session tokens.
	// Default: nil (storefront session store)
	AuthProvider AuthProvider

	// AuditLogger records admin and authentication events.
	// Default: NopAuditLogger
	AuditLogger AuditLogger
}

// DefaultOptions returns ServiceOptions with the built-in auth and a no-op
// audit trail.
func DefaultOptions() ServiceOptions {
	return ServiceOptions{
		AuditLogger: &NopAuditLogger{},
	}
}

// WithAuth returns a copy of opts with the given AuthProvider.
func (opts ServiceOptions) WithAuth(provider AuthProvider) ServiceOptions {
	opts.AuthProvider = provider
	return opts
}

// WithAudit returns a copy of opts with the given AuditLogger.
func (opts ServiceOptions) WithAudit(logger AuditLogger) ServiceOptions {
	opts.AuditLogger = logger
	return opts
}
