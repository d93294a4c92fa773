// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sakil470004/tea-with-me/pkg/extensions"
	"github.com/sakil470004/tea-with-me/services/storefront/catalog"
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/seed"
)

// HandleListProducts handles GET /api/products.
//
// Query parameters: page, limit, search, minPrice, maxPrice, category.
//
// Response:
//
//	200 OK: ProductListResponse
func (h *Handlers) HandleListProducts(c *gin.Context) {
	logger := requestLogger(c, "HandleListProducts")

	q := catalog.ParseQuery(c.Request.URL.Query())
	resp, err := h.catalog.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleListCategoryProducts handles GET /api/categories/:category/products.
// It is the product list with the category fixed by the path.
func (h *Handlers) HandleListCategoryProducts(c *gin.Context) {
	logger := requestLogger(c, "HandleListCategoryProducts")

	category := datatypes.Category(c.Param("category"))
	if !category.Valid() {
		c.JSON(http.StatusNotFound, datatypes.ErrorResponse{
			Error: "Unknown category",
			Code:  datatypes.CodeNotFound,
		})
		return
	}

	q := catalog.ParseQuery(c.Request.URL.Query())
	q.Category = category
	resp, err := h.catalog.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CategoryCount is one entry of GET /api/categories.
type CategoryCount struct {
	Category datatypes.Category `json:"category"`
	Count    int                `json:"count"`
}

// HandleListCategories handles GET /api/categories and reports how many
// products each category holds.
func (h *Handlers) HandleListCategories(c *gin.Context) {
	logger := requestLogger(c, "HandleListCategories")

	counts := make([]CategoryCount, 0, len(datatypes.Categories))
	for _, category := range datatypes.Categories {
		n, err := h.catalog.Store().Count(c.Request.Context(), catalog.Filter{Category: category})
		if err != nil {
			respondError(c, logger, err)
			return
		}
		counts = append(counts, CategoryCount{Category: category, Count: n})
	}
	c.JSON(http.StatusOK, gin.H{"categories": counts})
}

// HandleGetProduct handles GET /api/products/:id.
func (h *Handlers) HandleGetProduct(c *gin.Context) {
	logger := requestLogger(c, "HandleGetProduct")

	p, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, datatypes.ProductResponse{Product: p})
}

// HandleCreateProduct handles POST /api/products (admin).
//
// Response:
//
//	201 Created: {message, product}
//	400 Bad Request: malformed body or missing fields
func (h *Handlers) HandleCreateProduct(c *gin.Context) {
	logger := requestLogger(c, "HandleCreateProduct")

	var in datatypes.ProductInput
	if !bindJSON(c, logger, &in) {
		return
	}

	p, err := h.catalog.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Product created", "product_id", p.ID, "title", p.Title)
	h.metrics.RecordCatalogChange(c.Request.Context(), "create", 1)
	h.recordAudit(c, logger, extensions.AuditEvent{
		EventType:    extensions.EventProductCreate,
		ResourceType: "product",
		ResourceID:   p.ID,
	})
	c.JSON(http.StatusCreated, datatypes.ProductResponse{
		Message: "Product created successfully",
		Product: p,
	})
}

// HandleUpdateProduct handles PUT /api/products/:id (admin). The body
// replaces the product; every required field must be present.
func (h *Handlers) HandleUpdateProduct(c *gin.Context) {
	logger := requestLogger(c, "HandleUpdateProduct")

	var in datatypes.ProductInput
	if !bindJSON(c, logger, &in) {
		return
	}

	p, err := h.catalog.Replace(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Product updated", "product_id", p.ID)
	h.metrics.RecordCatalogChange(c.Request.Context(), "update", 1)
	h.recordAudit(c, logger, extensions.AuditEvent{
		EventType:    extensions.EventProductUpdate,
		ResourceType: "product",
		ResourceID:   p.ID,
	})
	c.JSON(http.StatusOK, datatypes.ProductResponse{
		Message: "Product updated successfully",
		Product: p,
	})
}

// HandleDeleteProduct handles DELETE /api/products/:id (admin). Carts and
// orders holding the product keep their snapshots.
func (h *Handlers) HandleDeleteProduct(c *gin.Context) {
	logger := requestLogger(c, "HandleDeleteProduct")
	id := c.Param("id")

	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Product deleted", "product_id", id)
	h.metrics.RecordCatalogChange(c.Request.Context(), "delete", 1)
	h.recordAudit(c, logger, extensions.AuditEvent{
		EventType:    extensions.EventProductDelete,
		ResourceType: "product",
		ResourceID:   id,
	})
	c.JSON(http.StatusOK, datatypes.MessageResponse{Message: "Product deleted successfully"})
}

// HandleSeed handles POST /api/seed (admin): inserts the sample catalog.
func (h *Handlers) HandleSeed(c *gin.Context) {
	logger := requestLogger(c, "HandleSeed")

	n, err := seed.Run(c.Request.Context(), h.catalog.Store())
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Sample products added", "count", n)
	h.metrics.RecordCatalogChange(c.Request.Context(), "seed", n)
	h.recordAudit(c, logger, extensions.AuditEvent{
		EventType:    extensions.EventCatalogSeed,
		ResourceType: "product",
		Metadata:     map[string]any{"count": n},
	})
	c.JSON(http.StatusOK, datatypes.SeedResponse{Message: seed.Message, Count: n})
}
