// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers contains the storefront's gin handlers.
//
// Every handler logs with request_id and handler attributes, answers
// errors with datatypes.ErrorResponse, and never exposes internal error
// text: unexpected failures become 500 "Internal server error".
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sakil470004/tea-with-me/pkg/extensions"
	"github.com/sakil470004/tea-with-me/services/storefront/auth"
	"github.com/sakil470004/tea-with-me/services/storefront/cart"
	"github.com/sakil470004/tea-with-me/services/storefront/catalog"
	"github.com/sakil470004/tea-with-me/services/storefront/checkout"
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/middleware"
	"github.com/sakil470004/tea-with-me/services/storefront/observability"
	"github.com/sakil470004/tea-with-me/services/storefront/orders"
	"github.com/sakil470004/tea-with-me/services/storefront/telemetry"
)

// Messages returned by handlers.
const (
	MsgMissingFields   = "Missing required fields"
	MsgInvalidBody     = "Invalid request body"
	MsgProductNotFound = "Product not found"
	MsgOrderNotFound   = "Order not found"
	MsgItemNotInCart   = "Item not in cart"
	MsgOutOfStock      = "Product is out of stock"
	MsgEmptyCart       = "Your cart is empty"
	MsgBadCredentials  = "Invalid email or password"
	MsgNothingToUpdate = "No fields to update"
)

// Deps are the services the handlers call.
type Deps struct {
	Catalog  *catalog.Service
	Orders   *orders.Service
	Carts    *cart.Service
	Checkout *checkout.Service

	// Auth runs login and logout. Token validation for protected routes
	// goes through the router's AuthProvider, which may differ.
	Auth *auth.Provider

	Audit   extensions.AuditLogger
	Metrics *observability.BusinessMetrics

	// CartTTL is the lifetime of the cart cookie.
	CartTTL time.Duration

	// CookieSecure marks cookies Secure (HTTPS only).
	CookieSecure bool

	// Version is reported by /health.
	Version string
}

// Handlers contains the HTTP handlers for the storefront.
type Handlers struct {
	catalog  *catalog.Service
	orders   *orders.Service
	carts    *cart.Service
	checkout *checkout.Service
	auth     *auth.Provider
	audit    extensions.AuditLogger
	metrics  *observability.BusinessMetrics

	cartTTL      time.Duration
	cookieSecure bool
	version      string
}

// NewHandlers creates handlers over deps.
func NewHandlers(deps Deps) *Handlers {
	audit := deps.Audit
	if audit == nil {
		audit = &extensions.NopAuditLogger{}
	}
	cartTTL := deps.CartTTL
	if cartTTL <= 0 {
		cartTTL = cart.DefaultTTL
	}
	return &Handlers{
		catalog:      deps.Catalog,
		orders:       deps.Orders,
		carts:        deps.Carts,
		checkout:     deps.Checkout,
		auth:         deps.Auth,
		audit:        audit,
		metrics:      deps.Metrics,
		cartTTL:      cartTTL,
		cookieSecure: deps.CookieSecure,
		version:      deps.Version,
	}
}

// requestLogger returns the logger for one handler invocation.
func requestLogger(c *gin.Context, handler string) *slog.Logger {
	logger := slog.With("request_id", middleware.GetRequestID(c), "handler", handler)
	return telemetry.LoggerWithTrace(c.Request.Context(), logger)
}

// bindJSON decodes the body into v, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, logger *slog.Logger, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{
			Error: MsgInvalidBody,
			Code:  datatypes.CodeInvalidRequest,
		})
		return false
	}
	return true
}

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var fields datatypes.FieldErrors
	switch {
	case errors.As(err, &fields):
		logger.Info("Validation failed", "fields", len(fields))
		c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{
			Error:  MsgMissingFields,
			Code:   datatypes.CodeValidationFailed,
			Fields: fields,
		})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, datatypes.ErrorResponse{Error: MsgProductNotFound, Code: datatypes.CodeNotFound})
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, datatypes.ErrorResponse{Error: MsgOrderNotFound, Code: datatypes.CodeNotFound})
	case errors.Is(err, cart.ErrItemNotInCart):
		c.JSON(http.StatusNotFound, datatypes.ErrorResponse{Error: MsgItemNotInCart, Code: datatypes.CodeNotFound})
	case errors.Is(err, cart.ErrOutOfStock):
		c.JSON(http.StatusConflict, datatypes.ErrorResponse{Error: MsgOutOfStock, Code: datatypes.CodeConflict})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: MsgEmptyCart, Code: datatypes.CodeEmptyCart})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, datatypes.ErrorResponse{Error: MsgBadCredentials, Code: datatypes.CodeUnauthorized})
	case errors.Is(err, context.Canceled):
		logger.Info("Request cancelled by client")
		c.Status(499)
	default:
		logger.Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{
			Error: datatypes.MsgInternalError,
			Code:  datatypes.CodeInternal,
		})
	}
}

// AuditLogger returns the audit trail the handlers write to.
func (h *Handlers) AuditLogger() extensions.AuditLogger {
	return h.audit
}

// recordAudit logs an admin event. Audit failures never fail the request.
func (h *Handlers) recordAudit(c *gin.Context, logger *slog.Logger, event extensions.AuditEvent) {
	if event.UserID == "" {
		if info := middleware.GetAuthInfo(c); info != nil {
			event.UserID = info.UserID
		}
	}
	if event.Outcome == "" {
		event.Outcome = extensions.OutcomeSuccess
	}
	if err := h.audit.Log(c.Request.Context(), event); err != nil {
		logger.Warn("Failed to write audit event", "event_type", event.EventType, "error", err)
	}
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, datatypes.HealthResponse{Status: "healthy", Version: h.version})
}

// missingFields builds the 400 body for absent required fields.
func missingFields(names ...string) datatypes.ErrorResponse {
	fields := make(map[string]string, len(names))
	for _, name := range names {
		fields[name] = "is required"
	}
	return datatypes.ErrorResponse{
		Error:  MsgMissingFields,
		Code:   datatypes.CodeValidationFailed,
		Fields: fields,
	}
}
