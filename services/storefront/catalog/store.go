// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/storage"
)

// ErrNotFound is returned for unknown product ids.
var ErrNotFound = errors.New("product not found")

// Store persists products.
type Store struct {
	products *storage.Collection[datatypes.Product]
	now      func() time.Time
}

// NewStore creates a product store on db.
func NewStore(db *storage.DB) *Store {
	return &Store{
		products: storage.NewCollection[datatypes.Product](db, "products"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create assigns an id and timestamps to p and stores it.
func (s *Store) Create(ctx context.Context, p *datatypes.Product) error {
	now := s.now()
	p.ID = storage.NewID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.products.Insert(ctx, p.ID, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// InsertMany stores several new products in one transaction, assigning ids
// and timestamps. Later entries get later CreatedAt values so that the
// newest-first listing shows them in reverse insertion order.
func (s *Store) InsertMany(ctx context.Context, products []*datatypes.Product) error {
	now := s.now()
	ids := make([]string, len(products))
	for i, p := range products {
		p.ID = storage.NewID()
		p.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		p.UpdatedAt = p.CreatedAt
		ids[i] = p.ID
	}
	if err := s.products.InsertMany(ctx, ids, products); err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	return nil
}

// Get returns the product with id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*datatypes.Product, error) {
	p, err := s.products.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Replace overwrites the editable fields of product id with in.
func (s *Store) Replace(ctx context.Context, id string, in *datatypes.ProductInput) (*datatypes.Product, error) {
	p, err := s.products.Update(ctx, id, func(p *datatypes.Product) error {
		in.Apply(p)
		p.UpdatedAt = s.now()
		return nil
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("replace product: %w", err)
	}
	return p, nil
}

// Delete removes product id, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// Find returns up to limit products matching f, newest first, after
// skipping skip matches, together with the total number of matches.
// A non-positive limit returns every match after skip.
func (s *Store) Find(ctx context.Context, f Filter, skip, limit int) ([]datatypes.Product, int, error) {
	var matches []datatypes.Product
	err := s.products.Scan(ctx, func(_ string, p *datatypes.Product) error {
		if f.Match(p) {
			matches = append(matches, *p)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	total := len(matches)
	if skip < 0 {
		skip = 0
	}
	if skip >= total {
		return []datatypes.Product{}, total, nil
	}
	end := total
	if limit > 0 && skip+limit < total {
		end = skip + limit
	}
	return matches[skip:end], total, nil
}

// Count returns the number of products matching f.
func (s *Store) Count(ctx context.Context, f Filter) (int, error) {
	count := 0
	err := s.products.Scan(ctx, func(_ string, p *datatypes.Product) error {
		if f.Match(p) {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}
