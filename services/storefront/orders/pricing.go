// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package orders owns placed orders: numbering, pricing, persistence and the
// admin list/update/delete operations.
package orders

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
)

// =============================================================================
// Delivery Fees
// =============================================================================

// DeliveryFees is the flat fee charged per delivery type.
type DeliveryFees struct {
	Standard float64 `yaml:"standard" json:"standard"`
	Express  float64 `yaml:"express" json:"express"`
	Pickup   float64 `yaml:"pickup" json:"pickup"`
}

// DefaultDeliveryFees returns free standard delivery, 15.00 express and
// free in-store pickup.
func DefaultDeliveryFees() DeliveryFees {
	return DeliveryFees{Standard: 0, Express: 15, Pickup: 0}
}

// For returns the fee for dt. Unknown types are charged as standard.
func (f DeliveryFees) For(dt datatypes.DeliveryType) float64 {
	switch dt {
	case datatypes.DeliveryExpress:
		return f.Express
	case datatypes.DeliveryPickup:
		return f.Pickup
	default:
		return f.Standard
	}
}

// =============================================================================
// Pricing
// =============================================================================

// Price computes the pricing of items: subtotal is the sum of discounted
// unit price times quantity, total adds the delivery fee. Both are rounded
// to cents.
func Price(items []datatypes.OrderItem, deliveryFee float64) datatypes.Pricing {
	subtotal := 0.0
	for _, item := range items {
		subtotal += item.Price * (1 - item.Discount/100) * float64(item.Quantity)
	}
	subtotal = datatypes.RoundCents(subtotal)
	return datatypes.Pricing{
		Subtotal:    subtotal,
		DeliveryFee: datatypes.RoundCents(deliveryFee),
		Total:       datatypes.RoundCents(subtotal + deliveryFee),
	}
}

// pricingDiffers reports whether two pricings disagree by a cent or more.
func pricingDiffers(a, b datatypes.Pricing) bool {
	const cent = 0.005
	return math.Abs(a.Subtotal-b.Subtotal) > cent ||
		math.Abs(a.DeliveryFee-b.DeliveryFee) > cent ||
		math.Abs(a.Total-b.Total) > cent
}

// EstimatedDelivery returns the delivery estimate for an order placed at
// placed: three days for standard, one day for express and pickup.
func EstimatedDelivery(placed time.Time, dt datatypes.DeliveryType) time.Time {
	return placed.AddDate(0, 0, dt.TransitDays())
}

// =============================================================================
// Order Numbers
// =============================================================================

// NumberPrefix starts every order number.
const NumberPrefix = "TWM-"

// NewNumber returns "TWM-" followed by the last six digits of the
// millisecond timestamp and three random digits, e.g. "TWM-482913057".
// Numbers are not guaranteed unique; the store enforces uniqueness.
func NewNumber(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return fmt.Sprintf("%s%s%03d", NumberPrefix, ms, rand.IntN(1000))
}
