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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
)

func earlGrey() *datatypes.Product {
	return &datatypes.Product{
		ID:       "earl-grey",
		Title:    "Premium Earl Grey Tea",
		Photo:    datatypes.Photo{Thumbnail: "t.jpg", Cover: "c.jpg"},
		Quantity: 1,
		Price:    24.99,
		Stock:    50,
		Discount: 10,
		Category: datatypes.CategoryTea,
	}
}

func cookies() *datatypes.Product {
	return &datatypes.Product{
		ID:       "cookies",
		Title:    "Artisan Tea Cookies",
		Quantity: 12,
		Price:    16.99,
		Stock:    3,
		Discount: 12,
		Category: datatypes.CategorySnacks,
	}
}

// assertTotals checks the cart invariant after a mutation.
func assertTotals(t *testing.T, c *Cart) {
	t.Helper()
	assert.Equal(t, TotalItems(c.Items), c.TotalItems)
	assert.Equal(t, TotalPrice(c.Items), c.TotalPrice)
	for _, item := range c.Items {
		assert.GreaterOrEqual(t, item.Quantity, 1)
		assert.LessOrEqual(t, item.Quantity, item.Stock)
	}
}

// =============================================================================
// Arithmetic Tests
// =============================================================================

func TestItemPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		discount float64
		want     float64
	}{
		{"no discount", 19.99, 0, 19.99},
		{"ten percent", 24.99, 10, 22.491},
		{"half off", 10, 50, 5},
		{"free", 10, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemPrice(Item{Price: tt.price, Discount: tt.discount})
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestTotals(t *testing.T) {
	items := []Item{
		{Price: 24.99, Discount: 10, Quantity: 2}, // 44.982
		{Price: 32.99, Discount: 15, Quantity: 1}, // 28.0415
		{Price: 19.99, Discount: 0, Quantity: 3},  // 59.97
	}
	assert.Equal(t, 6, TotalItems(items))
	assert.Equal(t, 132.99, TotalPrice(items))

	assert.Equal(t, 0, TotalItems(nil))
	assert.Equal(t, 0.0, TotalPrice(nil))
}

// =============================================================================
// Mutation Tests
// =============================================================================

func TestAdd_NewItemDefaultsAndSnapshot(t *testing.T) {
	c := Empty()

	got := c.Add(earlGrey(), 0)

	assert.Equal(t, 1, got, "non-positive quantity counts as one")
	require.Len(t, c.Items, 1)
	item := c.Items[0]
	assert.Equal(t, "earl-grey", item.ProductID)
	assert.Equal(t, "Premium Earl Grey Tea", item.Title)
	assert.Equal(t, "t.jpg", item.Photo.Thumbnail)
	assert.Equal(t, 10.0, item.Discount)
	assert.Equal(t, datatypes.CategoryTea, item.Category)
	assertTotals(t, c)
	assert.Equal(t, 22.49, c.TotalPrice)
}

func TestAdd_AccumulatesAndCapsAtStock(t *testing.T) {
	c := Empty()

	assert.Equal(t, 2, c.Add(cookies(), 2))
	assert.Equal(t, 3, c.Add(cookies(), 5), "capped at stock of 3")
	require.Len(t, c.Items, 1)
	assertTotals(t, c)
}

func TestAdd_NewItemCappedAtStock(t *testing.T) {
	c := Empty()
	assert.Equal(t, 3, c.Add(cookies(), 10))
	assertTotals(t, c)
}

func TestAdd_RefreshesSnapshot(t *testing.T) {
	c := Empty()
	c.Add(earlGrey(), 1)

	repriced := earlGrey()
	repriced.Price = 30
	repriced.Discount = 0
	c.Add(repriced, 1)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 30.0, c.Items[0].Price)
	assert.Equal(t, 60.0, c.TotalPrice)
}

func TestAdd_OutOfStock(t *testing.T) {
	c := Empty()
	soldOut := earlGrey()
	soldOut.Stock = 0

	assert.Equal(t, 0, c.Add(soldOut, 1))
	assert.True(t, c.IsEmpty())
	assertTotals(t, c)
}

func TestAdd_ExistingItemNowSoldOutIsDropped(t *testing.T) {
	c := Empty()
	c.Add(earlGrey(), 2)

	soldOut := earlGrey()
	soldOut.Stock = 0
	assert.Equal(t, 0, c.Add(soldOut, 1))
	assert.True(t, c.IsEmpty())
}

func TestRemove(t *testing.T) {
	c := Empty()
	c.Add(earlGrey(), 1)
	c.Add(cookies(), 1)

	c.Remove("earl-grey")
	require.Len(t, c.Items, 1)
	assert.Equal(t, "cookies", c.Items[0].ProductID)
	assertTotals(t, c)

	c.Remove("unknown")
	assert.Len(t, c.Items, 1)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		qty       int
		wantQty   int
		wantItems int
	}{
		{"set within stock", "cookies", 2, 2, 2},
		{"capped at stock", "cookies", 99, 3, 2},
		{"zero removes", "cookies", 0, 0, 1},
		{"negative removes", "cookies", -4, 0, 1},
		{"unknown id is a no-op", "unknown", 5, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Empty()
			c.Add(earlGrey(), 1)
			c.Add(cookies(), 1)

			c.UpdateQuantity(tt.productID, tt.qty)

			assert.Equal(t, tt.wantQty, c.Quantity(tt.productID))
			assert.Len(t, c.Items, tt.wantItems)
			assertTotals(t, c)
		})
	}
}

func TestClearAndQuantity(t *testing.T) {
	c := Empty()
	c.Add(earlGrey(), 4)
	assert.Equal(t, 4, c.Quantity("earl-grey"))
	assert.Equal(t, 0, c.Quantity("cookies"))

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.TotalItems)
	assert.Equal(t, 0.0, c.TotalPrice)
}

func TestRecalculate_FixesStaleTotals(t *testing.T) {
	c := &Cart{
		Items:      []Item{{ProductID: "a", Price: 10, Quantity: 2, Stock: 5}},
		TotalItems: 99,
		TotalPrice: 1,
	}
	c.Recalculate()
	assert.Equal(t, 2, c.TotalItems)
	assert.Equal(t, 20.0, c.TotalPrice)

	nilItems := &Cart{}
	nilItems.Recalculate()
	assert.NotNil(t, nilItems.Items)
}

func TestOrderItems(t *testing.T) {
	c := Empty()
	c.Add(earlGrey(), 2)

	items := c.OrderItems()
	require.Len(t, items, 1)
	assert.Equal(t, datatypes.OrderItem{
		ProductID: "earl-grey",
		Title:     "Premium Earl Grey Tea",
		Price:     24.99,
		Quantity:  2,
		Discount:  10,
		Thumbnail: "t.jpg",
	}, items[0])
}
