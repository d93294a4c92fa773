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
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput is matched by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// =============================================================================
// Field Errors
// =============================================================================

// FieldErrors maps a JSON field path (e.g. "items[0].quantity") to a
// human-readable message.
type FieldErrors map[string]string

// Error joins the messages in field order.
func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrInvalidInput) true for FieldErrors.
func (f FieldErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

// =============================================================================
// Shared Validator Instance
// =============================================================================

// validate is the validator instance for storefront datatypes.
// Initialized in init() with custom validators.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so messages match what clients sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("category", enumValidator(func(s string) bool { return Category(s).Valid() }))
	_ = validate.RegisterValidation("deliverytype", enumValidator(func(s string) bool { return DeliveryType(s).Valid() }))
	_ = validate.RegisterValidation("paymentmethod", enumValidator(func(s string) bool { return PaymentMethod(s).Valid() }))
	_ = validate.RegisterValidation("orderstatus", enumValidator(func(s string) bool { return OrderStatus(s).Valid() }))
	_ = validate.RegisterValidation("paymentstatus", enumValidator(func(s string) bool { return PaymentStatus(s).Valid() }))
}

func enumValidator(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	}
}

// Validate runs struct validation on v and converts failures to FieldErrors.
//
// # Outputs
//
//   - nil when v is valid
//   - FieldErrors (matching ErrInvalidInput) listing every failed field
//   - any other error if v is not a struct or pointer to struct
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = fieldMessage(fe)
	}
	return fields
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s item(s)", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "category":
		return "must be one of tea, coffee, snacks"
	case "deliverytype":
		return "must be one of standard, express, pickup"
	case "paymentmethod":
		return "must be one of cash_on_delivery, card, online"
	case "orderstatus":
		return "must be one of pending, processing, shipped, delivered, cancelled"
	case "paymentstatus":
		return "must be one of pending, paid, failed"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// =============================================================================
// Customer Validation
// =============================================================================

// emailPattern is the loose check used by the checkout form: something, an
// at sign, something, a dot, something.
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidateCustomer normalizes info and checks the contact and address fields
// required for deliveryType.
//
// # Description
//
// Name, a plausible email and a phone number are always required. Street,
// city, state and zip code are required unless the order is picked up in
// store. Country defaults to DefaultCountry.
//
// # Outputs
//
//   - nil when info is complete
//   - FieldErrors keyed by "customerInfo.<field>" otherwise
func ValidateCustomer(info *CustomerInfo, deliveryType DeliveryType) error {
	info.Normalize()

	fields := FieldErrors{}
	if info.Name == "" {
		fields["customerInfo.name"] = "Name is required"
	}
	if info.Email == "" || !emailPattern.MatchString(info.Email) {
		fields["customerInfo.email"] = "Valid email is required"
	}
	if info.Phone == "" {
		fields["customerInfo.phone"] = "Phone number is required"
	}
	if deliveryType != DeliveryPickup {
		addr := info.Address
		for name, value := range map[string]string{
			"street":  addr.Street,
			"city":    addr.City,
			"state":   addr.State,
			"zipCode": addr.ZipCode,
		} {
			if value == "" {
				fields["customerInfo.address."+name] = "Complete address is required for delivery"
			}
		}
	}

	if len(fields) > 0 {
		return fields
	}
	return nil
}
