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

	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
)

// Service implements the product operations behind /api/products.
type Service struct {
	store *Store
}

// NewService creates a catalog service.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Store returns the underlying product store.
func (s *Service) Store() *Store {
	return s.store
}

// List returns one page of products matching q, newest first.
func (s *Service) List(ctx context.Context, q Query) (*datatypes.ProductListResponse, error) {
	products, total, err := s.store.Find(ctx, q.Filter(), q.Skip(), q.Limit)
	if err != nil {
		return nil, err
	}
	return &datatypes.ProductListResponse{
		Products: products,
		Pagination: datatypes.ProductPagination{
			Pagination:    datatypes.NewPagination(q.Page, q.Limit, total),
			TotalProducts: total,
		},
	}, nil
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id string) (*datatypes.Product, error) {
	return s.store.Get(ctx, id)
}

// Create validates in and stores a new product.
func (s *Service) Create(ctx context.Context, in *datatypes.ProductInput) (*datatypes.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := &datatypes.Product{}
	in.Apply(p)
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Replace validates in and overwrites product id.
func (s *Service) Replace(ctx context.Context, id string, in *datatypes.ProductInput) (*datatypes.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.store.Replace(ctx, id, in)
}

// Delete removes product id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
