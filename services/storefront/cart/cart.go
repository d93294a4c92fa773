// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cart implements the shopping cart: pure arithmetic over cart
// items, a server-side store keyed by the cart cookie, and a service that
// snapshots catalog data into the cart.
//
// # Invariants
//
// After every mutating method TotalItems is the sum of item quantities and
// TotalPrice the sum of discounted unit price times quantity, rounded to
// cents. No item has a quantity above its stock snapshot or below 1.
package cart

import (
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
)

// Item is one product line in a cart. Title, photo, price, stock, discount
// and category are copied from the catalog when the item is added.
type Item struct {
	ProductID string             `json:"productId"`
	Title     string             `json:"title"`
	Photo     datatypes.Photo    `json:"photo"`
	Price     float64            `json:"price"`
	Quantity  int                `json:"quantity"`
	Stock     int                `json:"stock"`
	Discount  float64            `json:"discount"`
	Category  datatypes.Category `json:"category"`
}

// Cart is a customer's cart.
type Cart struct {
	Items      []Item  `json:"items"`
	TotalItems int     `json:"totalItems"`
	TotalPrice float64 `json:"totalPrice"`
}

// ItemPrice returns the unit price of item after its discount.
func ItemPrice(item Item) float64 {
	return item.Price * (1 - item.Discount/100)
}

// TotalItems returns the number of units across items.
func TotalItems(items []Item) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// TotalPrice returns the discounted price of items, rounded to cents.
func TotalPrice(items []Item) float64 {
	total := 0.0
	for _, item := range items {
		total += ItemPrice(item) * float64(item.Quantity)
	}
	return datatypes.RoundCents(total)
}

// Empty returns a cart with no items.
func Empty() *Cart {
	return &Cart{Items: []Item{}}
}

// Recalculate refreshes TotalItems and TotalPrice from Items.
func (c *Cart) Recalculate() {
	if c.Items == nil {
		c.Items = []Item{}
	}
	c.TotalItems = TotalItems(c.Items)
	c.TotalPrice = TotalPrice(c.Items)
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) index(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add puts qty units of product into the cart.
//
// # Description
//
// A non-positive qty counts as 1. When the product is already in the cart
// the quantities are summed; either way the result is capped at the
// product's current stock, and the catalog snapshot is refreshed.
//
// # Outputs
//
//   - int: the resulting quantity of the product in the cart. Zero means
//     the product is out of stock and nothing was added.
func (c *Cart) Add(product *datatypes.Product, qty int) int {
	if qty <= 0 {
		qty = 1
	}
	defer c.Recalculate()

	item := Item{
		ProductID: product.ID,
		Title:     product.Title,
		Photo:     product.Photo,
		Price:     product.Price,
		Stock:     product.Stock,
		Discount:  product.Discount,
		Category:  product.Category,
	}

	if i := c.index(product.ID); i >= 0 {
		item.Quantity = min(c.Items[i].Quantity+qty, product.Stock)
		if item.Quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return 0
		}
		c.Items[i] = item
		return item.Quantity
	}

	item.Quantity = min(qty, product.Stock)
	if item.Quantity <= 0 {
		return 0
	}
	c.Items = append(c.Items, item)
	return item.Quantity
}

// Remove drops productID from the cart. Unknown ids are ignored.
func (c *Cart) Remove(productID string) {
	defer c.Recalculate()
	if i := c.index(productID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// UpdateQuantity sets the quantity of productID, capped at the item's stock
// snapshot. A qty of zero or less removes the item. Unknown ids are ignored.
func (c *Cart) UpdateQuantity(productID string, qty int) {
	defer c.Recalculate()
	i := c.index(productID)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return
	}
	c.Items[i].Quantity = min(qty, c.Items[i].Stock)
	if c.Items[i].Quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// Clear removes every item.
func (c *Cart) Clear() {
	c.Items = []Item{}
	c.Recalculate()
}

// Quantity returns how many units of productID are in the cart, 0 if none.
func (c *Cart) Quantity(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// OrderItems converts the cart lines to order lines.
func (c *Cart) OrderItems() []datatypes.OrderItem {
	items := make([]datatypes.OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, datatypes.OrderItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Discount:  item.Discount,
			Thumbnail: item.Photo.Thumbnail,
		})
	}
	return items
}
