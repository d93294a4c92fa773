// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"strings"
	"time"
)

// =============================================================================
// Order Enums
// =============================================================================

// OrderStatus is the fulfilment state of an order. There are no transition
// rules; an admin may set any status at any time.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCard           PaymentMethod = "card"
	PaymentOnline         PaymentMethod = "online"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentCard, PaymentOnline:
		return true
	}
	return false
}

// PaymentStatus tracks collection of the payment. New orders are always
// pending; only an admin update changes it.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// DeliveryType selects the shipping option and therefore the fee and ETA.
type DeliveryType string

const (
	DeliveryStandard DeliveryType = "standard"
	DeliveryExpress  DeliveryType = "express"
	DeliveryPickup   DeliveryType = "pickup"
)

// Valid reports whether d is a known delivery type.
func (d DeliveryType) Valid() bool {
	switch d {
	case DeliveryStandard, DeliveryExpress, DeliveryPickup:
		return true
	}
	return false
}

// OrDefault returns d, or DeliveryStandard when d is empty.
func (d DeliveryType) OrDefault() DeliveryType {
	if d == "" {
		return DeliveryStandard
	}
	return d
}

// TransitDays is the number of days added to the order date for the
// estimated delivery.
func (d DeliveryType) TransitDays() int {
	switch d {
	case DeliveryExpress, DeliveryPickup:
		return 1
	default:
		return 3
	}
}

// =============================================================================
// Customer
// =============================================================================

// DefaultCountry is used when the address omits a country.
const DefaultCountry = "United States"

// Address is a postal address. All fields except Country are required unless
// the order is picked up in store.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// CustomerInfo identifies who placed an order and where it goes.
type CustomerInfo struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

// Normalize trims all fields and fills the default country.
func (c *CustomerInfo) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address.Street = strings.TrimSpace(c.Address.Street)
	c.Address.City = strings.TrimSpace(c.Address.City)
	c.Address.State = strings.TrimSpace(c.Address.State)
	c.Address.ZipCode = strings.TrimSpace(c.Address.ZipCode)
	c.Address.Country = strings.TrimSpace(c.Address.Country)
	if c.Address.Country == "" {
		c.Address.Country = DefaultCountry
	}
}

// =============================================================================
// Order
// =============================================================================

// OrderItem is a product line frozen at the time of ordering.
type OrderItem struct {
	ProductID string  `json:"productId" validate:"required"`
	Title     string  `json:"title" validate:"required"`
	Price     float64 `json:"price" validate:"min=0"`
	Quantity  int     `json:"quantity" validate:"min=1"`
	Discount  float64 `json:"discount" validate:"min=0,max=100"`
	Thumbnail string  `json:"thumbnail" validate:"required"`
}

// Pricing is the money breakdown of an order.
type Pricing struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Total       float64 `json:"total"`
}

// Order is a placed order.
type Order struct {
	ID                string        `json:"_id"`
	OrderNumber       string        `json:"orderNumber"`
	CustomerInfo      CustomerInfo  `json:"customerInfo"`
	Items             []OrderItem   `json:"items"`
	Pricing           Pricing       `json:"pricing"`
	Status            OrderStatus   `json:"status"`
	PaymentMethod     PaymentMethod `json:"paymentMethod"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	DeliveryType      DeliveryType  `json:"deliveryType"`
	EstimatedDelivery time.Time     `json:"estimatedDelivery"`
	Notes             string        `json:"notes,omitempty"`
	TrackingNumber    string        `json:"trackingNumber,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// Summary returns the short confirmation payload shown after ordering.
func (o *Order) Summary() OrderSummary {
	return OrderSummary{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		EstimatedDelivery: o.EstimatedDelivery,
		Total:             o.Pricing.Total,
	}
}

// =============================================================================
// Order Requests
// =============================================================================

// CreateOrderRequest is the body of POST /api/orders.
//
// Pricing is advisory: the server recomputes it from Items and the delivery
// fee table and logs a mismatch.
type CreateOrderRequest struct {
	CustomerInfo  CustomerInfo  `json:"customerInfo"`
	Items         []OrderItem   `json:"items" validate:"required,min=1,max=100,dive"`
	Pricing       *Pricing      `json:"pricing,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"omitempty,paymentmethod"`
	DeliveryType  DeliveryType  `json:"deliveryType" validate:"omitempty,deliverytype"`
	Notes         string        `json:"notes" validate:"max=1000"`
}

// Validate checks the items, enums and customer details.
func (r *CreateOrderRequest) Validate() error {
	r.Notes = strings.TrimSpace(r.Notes)
	if err := Validate(r); err != nil {
		return err
	}
	return ValidateCustomer(&r.CustomerInfo, r.DeliveryType.OrDefault())
}

// UpdateOrderRequest is the body of PUT /api/orders/:id. Nil fields are left
// unchanged.
type UpdateOrderRequest struct {
	Status            *OrderStatus   `json:"status" validate:"omitempty,orderstatus"`
	PaymentStatus     *PaymentStatus `json:"paymentStatus" validate:"omitempty,paymentstatus"`
	DeliveryType      *DeliveryType  `json:"deliveryType" validate:"omitempty,deliverytype"`
	EstimatedDelivery *time.Time     `json:"estimatedDelivery"`
	TrackingNumber    *string        `json:"trackingNumber" validate:"omitempty,max=100"`
	Notes             *string        `json:"notes" validate:"omitempty,max=1000"`
	CustomerInfo      *CustomerInfo  `json:"customerInfo"`
}

// Validate checks the enum and length constraints. Customer details depend
// on the stored order's delivery type and are checked when the update is
// applied.
func (r *UpdateOrderRequest) Validate() error {
	return Validate(r)
}

// Empty reports whether the request changes nothing.
func (r *UpdateOrderRequest) Empty() bool {
	return r.Status == nil && r.PaymentStatus == nil && r.DeliveryType == nil &&
		r.EstimatedDelivery == nil && r.TrackingNumber == nil && r.Notes == nil &&
		r.CustomerInfo == nil
}

// CheckoutRequest is the body of POST /api/checkout. Items come from the
// caller's server-side cart.
type CheckoutRequest struct {
	CustomerInfo  CustomerInfo  `json:"customerInfo"`
	DeliveryType  DeliveryType  `json:"deliveryType" validate:"omitempty,deliverytype"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"omitempty,paymentmethod"`
	Notes         string        `json:"notes" validate:"max=1000"`
}

// Validate checks the enums and customer details.
func (r *CheckoutRequest) Validate() error {
	r.Notes = strings.TrimSpace(r.Notes)
	if err := Validate(r); err != nil {
		return err
	}
	return ValidateCustomer(&r.CustomerInfo, r.DeliveryType.OrDefault())
}

// =============================================================================
// Order Responses
// =============================================================================

// OrderSummary is returned right after an order is placed.
type OrderSummary struct {
	ID                string    `json:"_id"`
	OrderNumber       string    `json:"orderNumber"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
	Total             float64   `json:"total"`
}

// OrderCreatedResponse is the 201 body of POST /api/orders and /api/checkout.
type OrderCreatedResponse struct {
	Message string       `json:"message"`
	Order   OrderSummary `json:"order"`
}

// OrderResponse wraps a single order.
type OrderResponse struct {
	Message string `json:"message,omitempty"`
	Order   *Order `json:"order"`
}

// OrderListResponse is the body of GET /api/orders.
type OrderListResponse struct {
	Orders     []Order         `json:"orders"`
	Pagination OrderPagination `json:"pagination"`
}

// QuoteResponse is the body of GET /api/checkout/quote.
type QuoteResponse struct {
	DeliveryType DeliveryType `json:"deliveryType"`
	Pricing      Pricing      `json:"pricing"`
	TotalItems   int          `json:"totalItems"`
}
