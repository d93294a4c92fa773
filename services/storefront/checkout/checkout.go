// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package checkout turns a server-side cart into a placed order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sakil470004/tea-with-me/services/storefront/cart"
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/orders"
	"github.com/sakil470004/tea-with-me/services/storefront/telemetry"
)

const tracerName = "github.com/sakil470004/tea-with-me/services/storefront/checkout"

// ErrEmptyCart is returned when checking out a cart with no items.
var ErrEmptyCart = errors.New("cart is empty")

// Service places orders from carts.
type Service struct {
	carts  *cart.Service
	orders *orders.Service
	logger *slog.Logger
}

// NewService creates a checkout service.
func NewService(carts *cart.Service, orderSvc *orders.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{carts: carts, orders: orderSvc, logger: logger}
}

// Quote prices c for delivery type dt without placing an order.
func (s *Service) Quote(c *cart.Cart, dt datatypes.DeliveryType) datatypes.QuoteResponse {
	dt = dt.OrDefault()
	return datatypes.QuoteResponse{
		DeliveryType: dt,
		Pricing:      orders.Price(c.OrderItems(), s.orders.Fees().For(dt)),
		TotalItems:   c.TotalItems,
	}
}

// QuoteCart loads cartID and prices it for dt.
func (s *Service) QuoteCart(ctx context.Context, cartID string, dt datatypes.DeliveryType) (datatypes.QuoteResponse, error) {
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return datatypes.QuoteResponse{}, err
	}
	return s.Quote(c, dt), nil
}

// PlaceOrder creates an order from the items in cartID and clears the cart.
//
// # Description
//
// The request is validated before the cart is read, so a bad form never
// touches the cart. Stock is not decremented. If the order is stored but the
// cart cannot be cleared, the order still stands and the failure is logged.
//
// # Outputs
//
//   - *datatypes.Order: the placed order; handlers reply with its Summary
//   - error: ErrEmptyCart, datatypes.FieldErrors, or a storage error
func (s *Service) PlaceOrder(ctx context.Context, cartID string, req *datatypes.CheckoutRequest) (_ *datatypes.Order, err error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "checkout.PlaceOrder",
		attribute.String("checkout.delivery_type", string(req.DeliveryType.OrDefault())))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	span.SetAttributes(attribute.Int("checkout.items", c.TotalItems))

	order, err := s.orders.Create(ctx, &datatypes.CreateOrderRequest{
		CustomerInfo:  req.CustomerInfo,
		Items:         c.OrderItems(),
		PaymentMethod: req.PaymentMethod,
		DeliveryType:  req.DeliveryType,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("order.number", order.OrderNumber))

	if _, err := s.carts.Clear(ctx, cartID); err != nil {
		s.logger.Error("Failed to clear cart after checkout",
			"order_number", order.OrderNumber,
			"error", err)
	}
	return order, nil
}
