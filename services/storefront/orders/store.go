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
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/storage"
)

// ErrNotFound is returned for unknown order ids.
var ErrNotFound = errors.New("order not found")

// numberIndex is the unique index over order numbers.
const numberIndex = "number"

func numberKey(number string) storage.Unique {
	return storage.Unique{Name: numberIndex, Value: number}
}

// Store persists orders with a unique order-number index.
type Store struct {
	orders *storage.Collection[datatypes.Order]
}

// NewStore creates an order store on db.
func NewStore(db *storage.DB) *Store {
	return &Store{orders: storage.NewCollection[datatypes.Order](db, "orders")}
}

// Insert stores o. It returns storage.ErrConflict if o.OrderNumber is taken.
func (s *Store) Insert(ctx context.Context, o *datatypes.Order) error {
	return s.orders.Insert(ctx, o.ID, o, numberKey(o.OrderNumber))
}

// Get returns the order with id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*datatypes.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetByNumber returns the order with the given order number.
func (s *Store) GetByNumber(ctx context.Context, number string) (*datatypes.Order, error) {
	o, err := s.orders.Lookup(ctx, numberKey(number))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, number)
	}
	if err != nil {
		return nil, fmt.Errorf("get order by number: %w", err)
	}
	return o, nil
}

// Update applies fn to order id atomically.
func (s *Store) Update(ctx context.Context, id string, fn func(o *datatypes.Order) error) (*datatypes.Order, error) {
	o, err := s.orders.Update(ctx, id, fn)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return o, nil
}

// Delete removes order id and releases its order number.
func (s *Store) Delete(ctx context.Context, id string) error {
	o, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.orders.Delete(ctx, id, numberKey(o.OrderNumber))
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// Find returns up to limit orders matching f, newest first, after skipping
// skip matches, together with the total number of matches.
func (s *Store) Find(ctx context.Context, f Filter, skip, limit int) ([]datatypes.Order, int, error) {
	var matches []datatypes.Order
	err := s.orders.Scan(ctx, func(_ string, o *datatypes.Order) error {
		if f.Match(o) {
			matches = append(matches, *o)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("find orders: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].OrderNumber > matches[j].OrderNumber
	})

	total := len(matches)
	if skip < 0 {
		skip = 0
	}
	if skip >= total {
		return []datatypes.Order{}, total, nil
	}
	end := total
	if limit > 0 && skip+limit < total {
		end = skip + limit
	}
	return matches[skip:end], total, nil
}
