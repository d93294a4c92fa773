// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides the storefront's gin middleware: request IDs,
// access logging, session authentication, the admin guard, per-client rate
// limiting and HTTP metrics.
//
// # Authentication Flow
//
//	Request
//	   │
//	   ▼
//	RequireAuth
//	   │
//	   ├─► token from the "token" cookie, else "Authorization: Bearer <token>"
//	   │
//	   ├─► provider.Validate(ctx, token)
//	   │
//	   └─► SetAuthInfo
//	           │
//	           ▼
//	       RequireAdmin ─► Handler (GetAuthInfo)
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sakil470004/tea-with-me/pkg/extensions"
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
)

// =============================================================================
// Context Keys
// =============================================================================

const authInfoKey = "teawithme_auth_info"

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "token"

// Messages returned by the auth middleware.
const (
	MsgAuthRequired  = "Authentication required"
	MsgInvalidToken  = "Invalid token"
	MsgAdminRequired = "Admin access required"
)

// SetAuthInfo stores the authenticated identity in the gin context.
func SetAuthInfo(c *gin.Context, info *extensions.AuthInfo) {
	c.Set(authInfoKey, info)
}

// GetAuthInfo returns the identity stored by RequireAuth, or nil.
func GetAuthInfo(c *gin.Context) *extensions.AuthInfo {
	if info, exists := c.Get(authInfoKey); exists {
		if authInfo, ok := info.(*extensions.AuthInfo); ok {
			return authInfo
		}
	}
	return nil
}

// =============================================================================
// Auth Middleware
// =============================================================================

// RequireAuth authenticates the request with provider.
//
// # Description
//
// A request without a token is rejected with 401 "Authentication required".
// A token the provider does not accept is rejected with 401 "Invalid token".
// Provider failures other than extensions.ErrUnauthorized are logged and
// also answered with "Invalid token", so clients see one failure mode.
//
// # Thread Safety
//
// The returned middleware can be used concurrently.
func RequireAuth(provider extensions.AuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, MsgAuthRequired, datatypes.CodeUnauthorized)
			return
		}

		info, err := provider.Validate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, extensions.ErrUnauthorized) {
				slog.Error("Auth provider failed",
					"request_id", GetRequestID(c),
					"error", err)
			}
			abortWithError(c, http.StatusUnauthorized, MsgInvalidToken, datatypes.CodeUnauthorized)
			return
		}

		SetAuthInfo(c, info)
		c.Next()
	}
}

// RequireAdmin rejects authenticated users without the admin role with 403
// and records the refusal on audit as "auth.denied". A nil audit logger
// records nothing. It must run after RequireAuth.
func RequireAdmin(audit extensions.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := GetAuthInfo(c)
		if info == nil {
			abortWithError(c, http.StatusUnauthorized, MsgAuthRequired, datatypes.CodeUnauthorized)
			return
		}
		if !info.IsAdmin() {
			if audit != nil {
				err := audit.Log(c.Request.Context(), extensions.AuditEvent{
					EventType:    extensions.EventAuthDenied,
					UserID:       info.UserID,
					ResourceType: "route",
					ResourceID:   c.FullPath(),
					Outcome:      extensions.OutcomeDenied,
					Metadata:     map[string]any{"method": c.Request.Method, "request_id": GetRequestID(c)},
				})
				if err != nil {
					slog.Warn("Failed to write audit event", "event_type", extensions.EventAuthDenied, "error", err)
				}
			}
			abortWithError(c, http.StatusForbidden, MsgAdminRequired, datatypes.CodeForbidden)
			return
		}
		c.Next()
	}
}

// ExtractToken returns the session token from the "token" cookie or, when
// there is no cookie, from a Bearer Authorization header. The scheme is
// case-insensitive. Missing or malformed values yield "".
func ExtractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortWithError(c *gin.Context, status int, msg, code string) {
	c.AbortWithStatusJSON(status, datatypes.ErrorResponse{Error: msg, Code: code})
}
