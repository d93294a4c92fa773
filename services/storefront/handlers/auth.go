// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sakil470004/tea-with-me/pkg/extensions"
	"github.com/sakil470004/tea-with-me/services/storefront/auth"
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/middleware"
)

// HandleLogin handles POST /api/auth/login.
//
// # Description
//
// Checks the credentials, starts a session and sets it as the HttpOnly
// "token" cookie. The session token is also usable as a bearer token.
//
// Response:
//
//	200 OK: {message, user}
//	400 Bad Request: malformed body or missing fields
//	401 Unauthorized: wrong email or password
func (h *Handlers) HandleLogin(c *gin.Context) {
	logger := requestLogger(c, "HandleLogin")

	var req datatypes.LoginRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	if err := datatypes.Validate(&req); err != nil {
		respondError(c, logger, err)
		return
	}

	sess, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Info("Login rejected", "email", auth.NormalizeEmail(req.Email))
			h.metrics.RecordLogin(c.Request.Context(), false)
			h.recordAudit(c, logger, extensions.AuditEvent{
				EventType:    extensions.EventAuthFailed,
				ResourceType: "session",
				Outcome:      extensions.OutcomeFailure,
				Metadata:     map[string]any{"email": auth.NormalizeEmail(req.Email)},
			})
		}
		respondError(c, logger, err)
		return
	}

	h.setCookie(c, middleware.SessionCookie, sess.Token, h.auth.CookieMaxAge())
	h.metrics.RecordLogin(c.Request.Context(), true)
	h.recordAudit(c, logger, extensions.AuditEvent{
		EventType:    extensions.EventAuthLogin,
		UserID:       user.ID,
		ResourceType: "session",
	})
	logger.Info("User logged in", "user_id", user.ID)
	c.JSON(http.StatusOK, datatypes.UserResponse{Message: "Login successful", User: user})
}

// HandleLogout handles POST /api/auth/logout. It succeeds whether or not a
// session exists.
func (h *Handlers) HandleLogout(c *gin.Context) {
	logger := requestLogger(c, "HandleLogout")

	if token := middleware.ExtractToken(c); token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			respondError(c, logger, err)
			return
		}
		h.recordAudit(c, logger, extensions.AuditEvent{
			EventType:    extensions.EventAuthLogout,
			ResourceType: "session",
		})
	}

	h.setCookie(c, middleware.SessionCookie, "", -1)
	c.JSON(http.StatusOK, datatypes.MessageResponse{Message: "Logged out successfully"})
}

// HandleVerify handles GET /api/auth/verify. It runs behind RequireAuth
// and returns the current user.
func (h *Handlers) HandleVerify(c *gin.Context) {
	logger := requestLogger(c, "HandleVerify")

	info := middleware.GetAuthInfo(c)
	if info == nil {
		c.JSON(http.StatusUnauthorized, datatypes.ErrorResponse{
			Error: middleware.MsgAuthRequired,
			Code:  datatypes.CodeUnauthorized,
		})
		return
	}

	user, err := h.auth.Users().Get(c.Request.Context(), info.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, datatypes.ErrorResponse{
			Error: middleware.MsgInvalidToken,
			Code:  datatypes.CodeUnauthorized,
		})
		return
	}
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, datatypes.UserResponse{User: user})
}
