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
	"github.com/google/uuid"

	"github.com/sakil470004/tea-with-me/services/storefront/cart"
	"github.com/sakil470004/tea-with-me/services/storefront/observability"
)

// =============================================================================
// Request / Response Types
// =============================================================================

// AddItemRequest is the body of POST /api/cart/items.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the body of PUT /api/cart/items/:productId.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// ItemQuantityResponse is the body of GET /api/cart/items/:productId.
type ItemQuantityResponse struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// =============================================================================
// Cart Cookie
// =============================================================================

// cartID returns the caller's cart id, issuing a new cookie when the
// request has none or carries a malformed one.
func (h *Handlers) cartID(c *gin.Context) string {
	if v, err := c.Cookie(cart.CookieName); err == nil {
		if id, err := uuid.Parse(v); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	h.setCookie(c, cart.CookieName, id, int(h.cartTTL.Seconds()))
	return id
}

// setCookie writes an HttpOnly, SameSite=Lax cookie on the root path.
func (h *Handlers) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.cookieSecure, true)
}

// =============================================================================
// Handlers
// =============================================================================

// HandleGetCart handles GET /api/cart. A request without a cart gets an
// empty one and a fresh cookie.
func (h *Handlers) HandleGetCart(c *gin.Context) {
	logger := requestLogger(c, "HandleGetCart")

	crt, err := h.carts.Get(c.Request.Context(), h.cartID(c))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, crt)
}

// HandleAddCartItem handles POST /api/cart/items.
//
// # Description
//
// Adds quantity units of productId; a missing or non-positive quantity adds
// one. The line's quantity never exceeds the product's stock.
//
// Response:
//
//	200 OK: the updated cart
//	404 Not Found: unknown product
//	409 Conflict: product out of stock
func (h *Handlers) HandleAddCartItem(c *gin.Context) {
	logger := requestLogger(c, "HandleAddCartItem")

	var req AddItemRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	if req.ProductID == "" {
		c.JSON(http.StatusBadRequest, missingFields("productId"))
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	crt, err := h.carts.AddItem(c.Request.Context(), h.cartID(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	h.metrics.RecordCartOperation(c.Request.Context(), observability.CartAdd)
	c.JSON(http.StatusOK, crt)
}

// HandleGetCartItem handles GET /api/cart/items/:productId. Products not
// in the cart report quantity zero.
func (h *Handlers) HandleGetCartItem(c *gin.Context) {
	logger := requestLogger(c, "HandleGetCartItem")
	productID := c.Param("productId")

	qty, err := h.carts.ItemQuantity(c.Request.Context(), h.cartID(c), productID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, ItemQuantityResponse{ProductID: productID, Quantity: qty})
}

// HandleUpdateCartItem handles PUT /api/cart/items/:productId. A quantity
// of zero or less removes the line.
func (h *Handlers) HandleUpdateCartItem(c *gin.Context) {
	logger := requestLogger(c, "HandleUpdateCartItem")

	var req UpdateItemRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	if req.Quantity == nil {
		c.JSON(http.StatusBadRequest, missingFields("quantity"))
		return
	}

	crt, err := h.carts.UpdateItem(c.Request.Context(), h.cartID(c), c.Param("productId"), *req.Quantity)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	h.metrics.RecordCartOperation(c.Request.Context(), observability.CartUpdate)
	c.JSON(http.StatusOK, crt)
}

// HandleRemoveCartItem handles DELETE /api/cart/items/:productId. Removing
// an absent product is not an error.
func (h *Handlers) HandleRemoveCartItem(c *gin.Context) {
	logger := requestLogger(c, "HandleRemoveCartItem")

	crt, err := h.carts.RemoveItem(c.Request.Context(), h.cartID(c), c.Param("productId"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	h.metrics.RecordCartOperation(c.Request.Context(), observability.CartRemove)
	c.JSON(http.StatusOK, crt)
}

// HandleClearCart handles DELETE /api/cart.
func (h *Handlers) HandleClearCart(c *gin.Context) {
	logger := requestLogger(c, "HandleClearCart")

	crt, err := h.carts.Clear(c.Request.Context(), h.cartID(c))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	h.metrics.RecordCartOperation(c.Request.Context(), observability.CartClear)
	c.JSON(http.StatusOK, crt)
}
