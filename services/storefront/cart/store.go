// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakil470004/tea-with-me/services/storefront/storage"
)

// CookieName is the cookie that carries the cart id.
const CookieName = "tea-with-me-cart"

// DefaultTTL is how long an untouched cart survives.
const DefaultTTL = 30 * 24 * time.Hour

// Store persists carts by cart id. Every write refreshes the TTL.
type Store struct {
	carts  *storage.Collection[Cart]
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore creates a cart store on db. A non-positive ttl means DefaultTTL.
func NewStore(db *storage.DB, ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		carts:  storage.NewCollection[Cart](db, "carts"),
		ttl:    ttl,
		logger: logger,
	}
}

// Load returns the cart stored under cartID. A missing, expired or corrupt
// cart reads as the empty cart.
func (s *Store) Load(ctx context.Context, cartID string) (*Cart, error) {
	if cartID == "" {
		return Empty(), nil
	}
	c, err := s.carts.Get(ctx, cartID)
	switch {
	case err == nil:
		c.Recalculate()
		return c, nil
	case errors.Is(err, storage.ErrNotFound):
		return Empty(), nil
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("Discarding unreadable cart", "cart_id", cartID, "error", err)
		return Empty(), nil
	default:
		return nil, fmt.Errorf("load cart: %w", err)
	}
}

// Modify applies fn to the cart under cartID and saves the result
// atomically. Concurrent writers to the same cart are retried.
func (s *Store) Modify(ctx context.Context, cartID string, fn func(c *Cart) error) (*Cart, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		c, err := s.carts.Upsert(ctx, cartID, s.ttl, func(c *Cart, _ bool) error {
			if err := fn(c); err != nil {
				return err
			}
			c.Recalculate()
			return nil
		})
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("modify cart %s: %w", cartID, lastErr)
}

// Delete removes the cart. Deleting a missing cart is not an error.
func (s *Store) Delete(ctx context.Context, cartID string) error {
	err := s.carts.Delete(ctx, cartID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
