// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
)

// MeterName is the instrumentation scope of the business metrics.
const MeterName = "github.com/sakil470004/tea-with-me/services/storefront"

// Cart operations counted by RecordCartOperation.
const (
	CartAdd    = "add"
	CartUpdate = "update"
	CartRemove = "remove"
	CartClear  = "clear"
)

// BusinessMetrics holds the storefront's OpenTelemetry instruments.
//
// All Record methods accept a nil receiver so callers need no guards when
// metrics are disabled.
type BusinessMetrics struct {
	// OrdersPlaced counts orders by delivery type, payment method and source
	// (checkout or api).
	OrdersPlaced metric.Int64Counter

	// OrderValue records order totals.
	OrderValue metric.Float64Histogram

	// OrderItems records the number of units per order.
	OrderItems metric.Int64Histogram

	// CartOperations counts cart changes by operation.
	CartOperations metric.Int64Counter

	// Logins counts login attempts by outcome.
	Logins metric.Int64Counter

	// CatalogChanges counts admin product mutations by action.
	CatalogChanges metric.Int64Counter
}

// NewBusinessMetrics registers the business instruments on meter.
//
// # Example
//
//	m, err := observability.NewBusinessMetrics(otel.Meter(observability.MeterName))
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m   BusinessMetrics
		err error
	)

	if m.OrdersPlaced, err = meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders placed"),
		metric.WithUnit("{order}")); err != nil {
		return nil, fmt.Errorf("create orders.placed counter: %w", err)
	}

	if m.OrderValue, err = meter.Float64Histogram("storefront.orders.value",
		metric.WithDescription("Order total including delivery"),
		metric.WithUnit("USD"),
		metric.WithExplicitBucketBoundaries(10, 25, 50, 100, 200, 500)); err != nil {
		return nil, fmt.Errorf("create orders.value histogram: %w", err)
	}

	if m.OrderItems, err = meter.Int64Histogram("storefront.orders.items",
		metric.WithDescription("Units per order"),
		metric.WithUnit("{item}"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 20, 50)); err != nil {
		return nil, fmt.Errorf("create orders.items histogram: %w", err)
	}

	if m.CartOperations, err = meter.Int64Counter("storefront.cart.operations",
		metric.WithDescription("Cart changes by operation"),
		metric.WithUnit("{operation}")); err != nil {
		return nil, fmt.Errorf("create cart.operations counter: %w", err)
	}

	if m.Logins, err = meter.Int64Counter("storefront.auth.logins",
		metric.WithDescription("Login attempts by outcome"),
		metric.WithUnit("{attempt}")); err != nil {
		return nil, fmt.Errorf("create auth.logins counter: %w", err)
	}

	if m.CatalogChanges, err = meter.Int64Counter("storefront.catalog.changes",
		metric.WithDescription("Product mutations by action"),
		metric.WithUnit("{change}")); err != nil {
		return nil, fmt.Errorf("create catalog.changes counter: %w", err)
	}

	return &m, nil
}

// RecordOrder records a placed order. source is "checkout" or "api".
func (m *BusinessMetrics) RecordOrder(ctx context.Context, o *datatypes.Order, source string) {
	if m == nil || o == nil {
		return
	}
	units := int64(0)
	for _, item := range o.Items {
		units += int64(item.Quantity)
	}
	attrs := metric.WithAttributes(
		attribute.String("delivery_type", string(o.DeliveryType)),
		attribute.String("payment_method", string(o.PaymentMethod)),
		attribute.String("source", source),
	)
	m.OrdersPlaced.Add(ctx, 1, attrs)
	m.OrderValue.Record(ctx, o.Pricing.Total, attrs)
	m.OrderItems.Record(ctx, units, attrs)
}

// RecordCartOperation counts one cart change.
func (m *BusinessMetrics) RecordCartOperation(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.CartOperations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}

// RecordLogin counts one login attempt.
func (m *BusinessMetrics) RecordLogin(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.Logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordCatalogChange counts one product mutation (create, update, delete,
// seed). n is the number of products affected.
func (m *BusinessMetrics) RecordCatalogChange(ctx context.Context, action string, n int) {
	if m == nil {
		return
	}
	m.CatalogChanges.Add(ctx, int64(n), metric.WithAttributes(attribute.String("action", action)))
}
