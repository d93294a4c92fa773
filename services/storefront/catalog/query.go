// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package catalog owns products: translating list query parameters into
// filters, storing products, and paginated listing.
package catalog

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
)

const (
	// DefaultPage is used when page is missing or invalid.
	DefaultPage = 1

	// DefaultLimit is used when limit is missing or invalid.
	DefaultLimit = 10

	// MaxLimit caps the page size.
	MaxLimit = 100
)

// Query is a parsed product list request.
type Query struct {
	Page     int
	Limit    int
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Category datatypes.Category
}

// ParseQuery reads page, limit, search, minPrice, maxPrice and category.
//
// # Description
//
// Page and limit fall back to their defaults when missing, non-numeric or
// below 1; limit is capped at MaxLimit. Prices that do not parse as finite
// numbers are ignored. Search and category are trimmed; empty means "any".
func ParseQuery(values url.Values) Query {
	q := Query{
		Page:     ParsePositiveInt(values.Get("page"), DefaultPage),
		Limit:    ParsePositiveInt(values.Get("limit"), DefaultLimit),
		Search:   strings.TrimSpace(values.Get("search")),
		MinPrice: parsePrice(values.Get("minPrice")),
		MaxPrice: parsePrice(values.Get("maxPrice")),
		Category: datatypes.Category(strings.TrimSpace(values.Get("category"))),
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

// ParsePositiveInt parses s as an integer of at least 1, or returns def.
func ParsePositiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func parsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Skip is the number of matches before the requested page.
func (q Query) Skip() int {
	return (q.Page - 1) * q.Limit
}

// Filter builds the product filter for q.
func (q Query) Filter() Filter {
	return Filter{
		TextSearch: q.Search,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		Category:   q.Category,
	}
}

// =============================================================================
// Filter
// =============================================================================

// Filter selects products. Zero-valued fields match everything.
//
//   - TextSearch: case-insensitive literal substring of title OR description
//   - MinPrice / MaxPrice: inclusive bounds on the list price
//   - Category: exact match
type Filter struct {
	TextSearch string
	MinPrice   *float64
	MaxPrice   *float64
	Category   datatypes.Category
}

// IsEmpty reports whether the filter matches every product.
func (f Filter) IsEmpty() bool {
	return f.TextSearch == "" && f.MinPrice == nil && f.MaxPrice == nil && f.Category == ""
}

// Match reports whether p satisfies every condition of f.
func (f Filter) Match(p *datatypes.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.TextSearch != "" {
		needle := strings.ToLower(f.TextSearch)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}
