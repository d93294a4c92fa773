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

	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
)

var (
	// ErrOutOfStock is returned when adding a product with no stock left.
	ErrOutOfStock = errors.New("product is out of stock")

	// ErrItemNotInCart is returned when reading or changing a product that
	// is not in the cart.
	ErrItemNotInCart = errors.New("item not in cart")
)

// ProductSource resolves product ids to catalog entries.
type ProductSource interface {
	Get(ctx context.Context, id string) (*datatypes.Product, error)
}

// Service implements the cart operations behind /api/cart.
type Service struct {
	store    *Store
	products ProductSource
}

// NewService creates a cart service.
func NewService(store *Store, products ProductSource) *Service {
	return &Service{store: store, products: products}
}

// Get returns the cart for cartID.
func (s *Service) Get(ctx context.Context, cartID string) (*Cart, error) {
	return s.store.Load(ctx, cartID)
}

// AddItem adds qty units of productID, capped at stock.
//
// # Outputs
//
//   - the updated cart
//   - the catalog's not-found error if the product does not exist
//   - ErrOutOfStock if the product has no stock left
func (s *Service) AddItem(ctx context.Context, cartID, productID string, qty int) (*Cart, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrOutOfStock, product.Title)
	}
	return s.store.Modify(ctx, cartID, func(c *Cart) error {
		c.Add(product, qty)
		return nil
	})
}

// UpdateItem sets the quantity of productID. Zero or less removes it.
func (s *Service) UpdateItem(ctx context.Context, cartID, productID string, qty int) (*Cart, error) {
	return s.store.Modify(ctx, cartID, func(c *Cart) error {
		if c.Quantity(productID) == 0 {
			return fmt.Errorf("%w: %s", ErrItemNotInCart, productID)
		}
		c.UpdateQuantity(productID, qty)
		return nil
	})
}

// RemoveItem drops productID from the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (*Cart, error) {
	return s.store.Modify(ctx, cartID, func(c *Cart) error {
		c.Remove(productID)
		return nil
	})
}

// ItemQuantity returns how many units of productID are in the cart.
func (s *Service) ItemQuantity(ctx context.Context, cartID, productID string) (int, error) {
	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return 0, err
	}
	return c.Quantity(productID), nil
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, cartID string) (*Cart, error) {
	if err := s.store.Delete(ctx, cartID); err != nil {
		return nil, err
	}
	return Empty(), nil
}
