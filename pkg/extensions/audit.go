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
	"log/slog"
	"time"
)

// AuditEvent represents an admin or authentication event.
//
// # Event Categories
//
//   - Authentication: "auth.login", "auth.logout", "auth.failed", "auth.denied"
//   - Catalog: "product.create", "product.update", "product.delete", "catalog.seed"
//   - Orders: "order.update", "order.delete"
//
// Example:
//
//	event := AuditEvent{
//	    EventType:    "product.delete",
//	    UserID:       authInfo.UserID,
//	    ResourceType: "product",
//	    ResourceID:   productID,
//	    Outcome:      "success",
//	}
type AuditEvent struct {
	// EventType categorizes the event. Format: "category.action".
	EventType string

	// Timestamp is when the event occurred. Zero means "now".
	Timestamp time.Time

	// UserID identifies who performed the action ("anonymous" if unknown).
	UserID string

	// ResourceType is the category of resource involved, e.g. "product".
	ResourceType string

	// ResourceID is the specific resource instance (optional).
	ResourceID string

	// Outcome is "success", "failure" or "denied".
	Outcome string

	// Metadata holds additional event-specific data.
	Metadata map[string]any
}

// Audit event types.
const (
	EventAuthLogin     = "auth.login"
	EventAuthLogout    = "auth.logout"
	EventAuthFailed    = "auth.failed"
	EventAuthDenied    = "auth.denied"
	EventProductCreate = "product.create"
	EventProductUpdate = "product.update"
	EventProductDelete = "product.delete"
	EventCatalogSeed   = "catalog.seed"
	EventOrderUpdate   = "order.update"
	EventOrderDelete   = "order.delete"
)

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
)

// AuditLogger records audit events.
//
// Log must not block request handling for long; implementations that ship
// events to remote systems should buffer.
type AuditLogger interface {
	Log(ctx context.Context, event AuditEvent) error
}

// NopAuditLogger discards all events.
type NopAuditLogger struct{}

// Log discards the event.
func (l *NopAuditLogger) Log(_ context.Context, _ AuditEvent) error {
	return nil
}

// SlogAuditLogger writes audit events as structured log entries with
// msg="audit".
type SlogAuditLogger struct {
	logger *slog.Logger
}

// NewSlogAuditLogger creates an audit logger on top of logger.
// A nil logger means slog.Default().
func NewSlogAuditLogger(logger *slog.Logger) *SlogAuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAuditLogger{logger: logger}
}

// Log writes the event at Info level.
func (l *SlogAuditLogger) Log(ctx context.Context, event AuditEvent) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	userID := event.UserID
	if userID == "" {
		userID = "anonymous"
	}
	attrs := []any{
		"event_type", event.EventType,
		"timestamp", ts.Format(time.RFC3339),
		"user_id", userID,
		"resource_type", event.ResourceType,
		"resource_id", event.ResourceID,
		"outcome", event.Outcome,
	}
	for k, v := range event.Metadata {
		attrs = append(attrs, k, v)
	}
	l.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}

var (
	_ AuditLogger = (*NopAuditLogger)(nil)
	_ AuditLogger = (*SlogAuditLogger)(nil)
)
