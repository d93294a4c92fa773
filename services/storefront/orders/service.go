// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/storage"
)

// maxNumberAttempts bounds order-number regeneration on collisions.
const maxNumberAttempts = 5

// Service implements the order operations behind /api/orders.
type Service struct {
	store     *Store
	fees      DeliveryFees
	logger    *slog.Logger
	now       func() time.Time
	newNumber func(time.Time) string
}

// NewService creates an order service charging fees.
func NewService(store *Store, fees DeliveryFees, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		fees:      fees,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newNumber: NewNumber,
	}
}

// Fees returns the delivery fee table.
func (s *Service) Fees() DeliveryFees {
	return s.fees
}

// Create validates req and stores a new order.
//
// # Description
//
// Pricing is recomputed from the items and the delivery fee table. A
// client-supplied pricing that disagrees is logged and ignored. The order
// starts pending with payment pending, whatever the payment method. The
// order number is regenerated if it collides with an existing one.
//
// # Outputs
//
//   - *datatypes.Order: the stored order
//   - error: datatypes.FieldErrors for invalid input, or a storage error
func (s *Service) Create(ctx context.Context, req *datatypes.CreateOrderRequest) (*datatypes.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	deliveryType := req.DeliveryType.OrDefault()
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = datatypes.PaymentCashOnDelivery
	}

	pricing := Price(req.Items, s.fees.For(deliveryType))
	if req.Pricing != nil && pricingDiffers(*req.Pricing, pricing) {
		s.logger.Warn("Client pricing differs from computed pricing",
			"client_total", req.Pricing.Total,
			"computed_total", pricing.Total)
	}

	now := s.now()
	order := &datatypes.Order{
		ID:                storage.NewID(),
		CustomerInfo:      req.CustomerInfo,
		Items:             req.Items,
		Pricing:           pricing,
		Status:            datatypes.OrderStatusPending,
		PaymentMethod:     paymentMethod,
		PaymentStatus:     datatypes.PaymentStatusPending,
		DeliveryType:      deliveryType,
		EstimatedDelivery: EstimatedDelivery(now, deliveryType),
		Notes:             req.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for attempt := 1; ; attempt++ {
		order.OrderNumber = s.newNumber(now)
		err := s.store.Insert(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrConflict) || attempt >= maxNumberAttempts {
			return nil, fmt.Errorf("create order: %w", err)
		}
		s.logger.Debug("Order number collision, regenerating", "attempt", attempt)
	}

	s.logger.Info("Order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"items", len(order.Items),
		"total", order.Pricing.Total,
		"delivery_type", order.DeliveryType)
	return order, nil
}

// List returns one page of orders matching q, newest first.
func (s *Service) List(ctx context.Context, q Query) (*datatypes.OrderListResponse, error) {
	orders, total, err := s.store.Find(ctx, q.Filter(), q.Skip(), q.Limit)
	if err != nil {
		return nil, err
	}
	return &datatypes.OrderListResponse{
		Orders: orders,
		Pagination: datatypes.OrderPagination{
			Pagination:  datatypes.NewPagination(q.Page, q.Limit, total),
			TotalOrders: total,
		},
	}, nil
}

// Get returns one order by id.
func (s *Service) Get(ctx context.Context, id string) (*datatypes.Order, error) {
	return s.store.Get(ctx, id)
}

// GetByNumber returns one order by order number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*datatypes.Order, error) {
	return s.store.GetByNumber(ctx, number)
}

// Update applies the non-nil fields of req to order id.
//
// # Description
//
// Status changes are not guarded; any valid status may follow any other.
// Customer details are checked against the delivery type the order will
// have after the update, so a pickup order may keep an empty address and a
// move away from pickup needs a complete one. Changing the delivery type
// re-prices the order and recomputes its delivery estimate unless the
// request sets one explicitly.
//
// # Outputs
//
//   - *datatypes.Order: the updated order
//   - error: datatypes.FieldErrors for invalid input, ErrNotFound, or a
//     storage error. Nothing is written on error.
func (s *Service) Update(ctx context.Context, id string, req *datatypes.UpdateOrderRequest) (*datatypes.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return s.store.Update(ctx, id, func(o *datatypes.Order) error {
		deliveryType := o.DeliveryType
		if req.DeliveryType != nil {
			deliveryType = *req.DeliveryType
		}
		if req.CustomerInfo != nil || deliveryType != o.DeliveryType {
			info := o.CustomerInfo
			if req.CustomerInfo != nil {
				info = *req.CustomerInfo
			}
			if err := datatypes.ValidateCustomer(&info, deliveryType); err != nil {
				return err
			}
			o.CustomerInfo = info
		}

		if req.Status != nil {
			o.Status = *req.Status
		}
		if req.PaymentStatus != nil {
			o.PaymentStatus = *req.PaymentStatus
		}
		if deliveryType != o.DeliveryType {
			o.DeliveryType = deliveryType
			o.Pricing = Price(o.Items, s.fees.For(deliveryType))
			o.EstimatedDelivery = EstimatedDelivery(o.CreatedAt, deliveryType)
		}
		if req.EstimatedDelivery != nil {
			o.EstimatedDelivery = req.EstimatedDelivery.UTC()
		}
		if req.TrackingNumber != nil {
			o.TrackingNumber = *req.TrackingNumber
		}
		if req.Notes != nil {
			o.Notes = *req.Notes
		}
		o.UpdatedAt = s.now()
		return nil
	})
}

// Delete removes order id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
