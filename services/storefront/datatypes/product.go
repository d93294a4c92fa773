// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides the documents and request/response types of the
// storefront API.
//
// JSON field names follow the public API of the store front-end, including
// the "_id" identifier field, so existing clients keep working.
package datatypes

import (
	"strings"
	"time"
)

// =============================================================================
// Categories
// =============================================================================

// Category is the shelf a product is sold on.
type Category string

const (
	CategoryTea    Category = "tea"
	CategoryCoffee Category = "coffee"
	CategorySnacks Category = "snacks"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryTea, CategoryCoffee, CategorySnacks}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTea, CategoryCoffee, CategorySnacks:
		return true
	}
	return false
}

// =============================================================================
// Product
// =============================================================================

// Photo holds the two image URLs every product carries.
type Photo struct {
	Thumbnail string `json:"thumbnail" validate:"required"`
	Cover     string `json:"cover" validate:"required"`
}

// Product is a catalog entry.
//
// # Fields
//
//   - Quantity: pack size (e.g. 12 cookies per box), at least 1
//   - Price: list price before discount, never negative
//   - Stock: units available; caps cart quantities
//   - Discount: percentage 0..100 applied to Price
type Product struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Photo       Photo     `json:"photo"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Discount    float64   `json:"discount"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DiscountedPrice returns the unit price after the product discount.
func (p *Product) DiscountedPrice() float64 {
	return p.Price * (1 - p.Discount/100)
}

// ProductInput is the body of POST /api/products and PUT /api/products/:id.
//
// Numeric fields are pointers so that an explicit 0 (free sample, sold out)
// can be told apart from a missing field.
type ProductInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Photo       *Photo   `json:"photo" validate:"required"`
	Quantity    *int     `json:"quantity" validate:"required,min=1"`
	Price       *float64 `json:"price" validate:"required,min=0"`
	Stock       *int     `json:"stock" validate:"required,min=0"`
	Discount    *float64 `json:"discount" validate:"omitempty,min=0,max=100"`
	Category    Category `json:"category" validate:"required,category"`
	Description string   `json:"description" validate:"max=5000"`
}

// Normalize trims free-text fields in place.
func (in *ProductInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Photo != nil {
		in.Photo.Thumbnail = strings.TrimSpace(in.Photo.Thumbnail)
		in.Photo.Cover = strings.TrimSpace(in.Photo.Cover)
	}
}

// Validate normalizes and validates the input.
func (in *ProductInput) Validate() error {
	in.Normalize()
	return Validate(in)
}

// Apply copies the input onto p. Timestamps and ID are left untouched.
// The input must have passed Validate.
func (in *ProductInput) Apply(p *Product) {
	p.Title = in.Title
	p.Photo = *in.Photo
	p.Quantity = *in.Quantity
	p.Price = *in.Price
	p.Stock = *in.Stock
	p.Discount = 0
	if in.Discount != nil {
		p.Discount = *in.Discount
	}
	p.Category = in.Category
	p.Description = in.Description
}

// ProductResponse wraps a single product.
type ProductResponse struct {
	Message string   `json:"message,omitempty"`
	Product *Product `json:"product"`
}

// ProductListResponse is the body of GET /api/products.
type ProductListResponse struct {
	Products   []Product         `json:"products"`
	Pagination ProductPagination `json:"pagination"`
}
