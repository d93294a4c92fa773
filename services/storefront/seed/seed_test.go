// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakil470004/tea-with-me/services/storefront/catalog"
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/storage"
)

func TestProducts(t *testing.T) {
	products, err := Products()
	require.NoError(t, err)
	require.Len(t, products, 10)

	seen := map[datatypes.Category]int{}
	for _, p := range products {
		seen[p.Category]++
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Photo.Thumbnail)
		assert.GreaterOrEqual(t, p.Quantity, 1)
	}
	for _, c := range datatypes.Categories {
		assert.Positive(t, seen[c], "category %s has samples", c)
	}

	assert.Equal(t, "Premium Earl Grey Tea", products[0].Title)
	assert.Equal(t, 24.99, products[0].Price)
	assert.Equal(t, 10.0, products[0].Discount)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("- title: Mystery\n  category: juice\n"))
	assert.ErrorIs(t, err, datatypes.ErrInvalidInput)

	_, err = Parse([]byte("{not a list"))
	assert.Error(t, err)
}

func TestParse_DiscountDefaultsToZero(t *testing.T) {
	products, err := Parse([]byte(`
- title: Plain Biscuits
  photo: {thumbnail: t.jpg, cover: c.jpg}
  quantity: 4
  price: 3.5
  stock: 9
  category: snacks
`))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Zero(t, products[0].Discount)
}

func TestRun(t *testing.T) {
	db, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := catalog.NewStore(db)
	ctx := context.Background()

	n, err := Run(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	count, err := store.Count(ctx, catalog.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	coffee, err := store.Count(ctx, catalog.Filter{Category: datatypes.CategoryCoffee})
	require.NoError(t, err)
	assert.Equal(t, 3, coffee)

	_, err = Run(ctx, store)
	require.NoError(t, err)
	count, err = store.Count(ctx, catalog.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 20, count, "seeding appends")
}
