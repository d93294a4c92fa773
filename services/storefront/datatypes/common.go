// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"math"
	"time"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeEmptyCart        = "EMPTY_CART"
	CodeConflict         = "CONFLICT"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL_ERROR"
)

// MsgInternalError is the only message clients see for unexpected failures.
const MsgInternalError = "Internal server error"

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable message.
	Error string `json:"error"`

	// Code is the machine-readable error code (optional).
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`

	// Fields maps request fields to their validation messages (optional).
	Fields map[string]string `json:"fields,omitempty"`
}

// MessageResponse is the body of mutations that return nothing else.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// SeedResponse is the body of POST /api/seed.
type SeedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// =============================================================================
// Pagination
// =============================================================================

// Pagination describes one page of a list result.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPagination computes page metadata for total matches split into pages
// of limit. limit must be positive.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// ProductPagination adds the product count to Pagination.
type ProductPagination struct {
	Pagination
	TotalProducts int `json:"totalProducts"`
}

// OrderPagination adds the order count to Pagination.
type OrderPagination struct {
	Pagination
	TotalOrders int `json:"totalOrders"`
}

// =============================================================================
// Users
// =============================================================================

// User is a dashboard account. Password hashes never leave the auth package.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
}

// UserResponse wraps the current user.
type UserResponse struct {
	Message string `json:"message,omitempty"`
	User    *User  `json:"user"`
}

// =============================================================================
// Money
// =============================================================================

// RoundCents rounds v to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
