// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package orders

import (
	"net/url"
	"strings"

	"github.com/sakil470004/tea-with-me/services/storefront/catalog"
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// Query is a parsed order list request.
type Query struct {
	Page   int
	Limit  int
	Status datatypes.OrderStatus
	Search string
}

// ParseQuery reads page, limit, status and search. Page and limit follow
// the same rules as the product list. A status of "all" or "" means any.
func ParseQuery(values url.Values) Query {
	q := Query{
		Page:   catalog.ParsePositiveInt(values.Get("page"), catalog.DefaultPage),
		Limit:  catalog.ParsePositiveInt(values.Get("limit"), catalog.DefaultLimit),
		Search: strings.TrimSpace(values.Get("search")),
	}
	if q.Limit > catalog.MaxLimit {
		q.Limit = catalog.MaxLimit
	}
	if status := strings.TrimSpace(values.Get("status")); status != "" && status != StatusAll {
		q.Status = datatypes.OrderStatus(status)
	}
	return q
}

// Skip is the number of matches before the requested page.
func (q Query) Skip() int {
	return (q.Page - 1) * q.Limit
}

// Filter builds the order filter for q.
func (q Query) Filter() Filter {
	return Filter{Status: q.Status, TextSearch: q.Search}
}

// Filter selects orders. Zero-valued fields match everything.
//
//   - Status: exact match
//   - TextSearch: case-insensitive literal substring of the order number,
//     customer name OR customer email
type Filter struct {
	Status     datatypes.OrderStatus
	TextSearch string
}

// Match reports whether o satisfies f.
func (f Filter) Match(o *datatypes.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.TextSearch != "" {
		needle := strings.ToLower(f.TextSearch)
		for _, field := range []string{o.OrderNumber, o.CustomerInfo.Name, o.CustomerInfo.Email} {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	}
	return true
}
