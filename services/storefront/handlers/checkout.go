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

	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
)

// HandleQuote handles GET /api/checkout/quote?deliveryType=express.
// The delivery type defaults to standard.
func (h *Handlers) HandleQuote(c *gin.Context) {
	logger := requestLogger(c, "HandleQuote")

	dt := datatypes.DeliveryType(c.Query("deliveryType"))
	if dt != "" && !dt.Valid() {
		c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{
			Error:  "Unknown delivery type",
			Code:   datatypes.CodeValidationFailed,
			Fields: datatypes.FieldErrors{"deliveryType": "must be one of standard, express, pickup"},
		})
		return
	}

	quote, err := h.checkout.QuoteCart(c.Request.Context(), h.cartID(c), dt.OrDefault())
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// HandleCheckout handles POST /api/checkout.
//
// # Description
//
// Places an order from the caller's cart. The cart is emptied once the
// order is stored; on any failure the cart is left as it was.
//
// Response:
//
//	201 Created: {message, order: {_id, orderNumber, estimatedDelivery, total}}
//	400 Bad Request: invalid form or empty cart
func (h *Handlers) HandleCheckout(c *gin.Context) {
	logger := requestLogger(c, "HandleCheckout")

	var req datatypes.CheckoutRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	order, err := h.checkout.PlaceOrder(c.Request.Context(), h.cartID(c), &req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	h.metrics.RecordOrder(c.Request.Context(), order, sourceCheckout)
	c.JSON(http.StatusCreated, datatypes.OrderCreatedResponse{
		Message: "Order created successfully",
		Order:   order.Summary(),
	})
}
