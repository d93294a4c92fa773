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
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/orders"
)

// Order sources recorded in metrics.
const (
	sourceAPI      = "api"
	sourceCheckout = "checkout"
)

// HandleListOrders handles GET /api/orders (admin).
//
// Query parameters: page, limit, status ("all" for any), search.
func (h *Handlers) HandleListOrders(c *gin.Context) {
	logger := requestLogger(c, "HandleListOrders")

	q := orders.ParseQuery(c.Request.URL.Query())
	if q.Status != "" && !q.Status.Valid() {
		c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{
			Error: "Unknown order status",
			Code:  datatypes.CodeValidationFailed,
		})
		return
	}

	resp, err := h.orders.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCreateOrder handles POST /api/orders.
//
// The client sends the items and customer details directly. Pricing in the
// body is advisory; the server recomputes it.
//
// Response:
//
//	201 Created: {message, order: {_id, orderNumber, estimatedDelivery, total}}
//	400 Bad Request: malformed body or missing fields
func (h *Handlers) HandleCreateOrder(c *gin.Context) {
	logger := requestLogger(c, "HandleCreateOrder")

	var req datatypes.CreateOrderRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	order, err := h.orders.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	h.metrics.RecordOrder(c.Request.Context(), order, sourceAPI)
	c.JSON(http.StatusCreated, datatypes.OrderCreatedResponse{
		Message: "Order created successfully",
		Order:   order.Summary(),
	})
}

// HandleGetOrder handles GET /api/orders/:id. Order ids are random UUIDs,
// so the confirmation page can fetch its order without a session.
func (h *Handlers) HandleGetOrder(c *gin.Context) {
	logger := requestLogger(c, "HandleGetOrder")

	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, datatypes.OrderResponse{Order: order})
}

// HandleGetOrderByNumber handles GET /api/orders/number/:orderNumber (admin).
func (h *Handlers) HandleGetOrderByNumber(c *gin.Context) {
	logger := requestLogger(c, "HandleGetOrderByNumber")

	order, err := h.orders.GetByNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, datatypes.OrderResponse{Order: order})
}

// HandleUpdateOrder handles PUT /api/orders/:id (admin). Only the fields
// present in the body change.
func (h *Handlers) HandleUpdateOrder(c *gin.Context) {
	logger := requestLogger(c, "HandleUpdateOrder")
	id := c.Param("id")

	var req datatypes.UpdateOrderRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	if req.Empty() {
		c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{
			Error: MsgNothingToUpdate,
			Code:  datatypes.CodeInvalidRequest,
		})
		return
	}

	order, err := h.orders.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Order updated", "order_id", id, "status", order.Status)
	meta := map[string]any{"status": string(order.Status)}
	if req.PaymentStatus != nil {
		meta["payment_status"] = string(*req.PaymentStatus)
	}
	h.recordAudit(c, logger, extensions.AuditEvent{
		EventType:    extensions.EventOrderUpdate,
		ResourceType: "order",
		ResourceID:   id,
		Metadata:     meta,
	})
	c.JSON(http.StatusOK, datatypes.OrderResponse{
		Message: "Order updated successfully",
		Order:   order,
	})
}

// HandleDeleteOrder handles DELETE /api/orders/:id (admin).
func (h *Handlers) HandleDeleteOrder(c *gin.Context) {
	logger := requestLogger(c, "HandleDeleteOrder")
	id := c.Param("id")

	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Order deleted", "order_id", id)
	h.recordAudit(c, logger, extensions.AuditEvent{
		EventType:    extensions.EventOrderDelete,
		ResourceType: "order",
		ResourceID:   id,
	})
	c.JSON(http.StatusOK, datatypes.MessageResponse{Message: "Order deleted successfully"})
}
