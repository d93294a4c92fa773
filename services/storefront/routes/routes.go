// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sakil470004/tea-with-me/pkg/extensions"
	"github.com/sakil470004/tea-with-me/services/storefront/handlers"
	"github.com/sakil470004/tea-with-me/services/storefront/middleware"
)

// Limiters holds the per-client rate limiters for sensitive endpoints.
// A nil limiter leaves its endpoint unlimited.
type Limiters struct {
	Login    *middleware.RateLimiter
	Checkout *middleware.RateLimiter
}

// SetupRoutes registers the storefront API on router.
//
// Catalog reads, carts, checkout and order placement are public. Catalog
// writes, the order dashboard and seeding require an admin session
// validated by authProvider.
func SetupRoutes(router *gin.Engine, h *handlers.Handlers, authProvider extensions.AuthProvider,
	limiters Limiters, metricsHandler http.Handler) {

	router.GET("/health", h.HandleHealth)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	requireAuth := middleware.RequireAuth(authProvider)
	requireAdmin := middleware.RequireAdmin(h.AuditLogger())

	api := router.Group("/api")
	{
		products := api.Group("/products")
		{
			products.GET("", h.HandleListProducts)
			products.GET("/:id", h.HandleGetProduct)
			products.POST("", requireAuth, requireAdmin, h.HandleCreateProduct)
			products.PUT("/:id", requireAuth, requireAdmin, h.HandleUpdateProduct)
			products.DELETE("/:id", requireAuth, requireAdmin, h.HandleDeleteProduct)
		}

		api.GET("/categories", h.HandleListCategories)
		api.GET("/categories/:category/products", h.HandleListCategoryProducts)

		orders := api.Group("/orders")
		{
			orders.POST("", h.HandleCreateOrder)
			orders.GET("/:id", h.HandleGetOrder)
			orders.GET("", requireAuth, requireAdmin, h.HandleListOrders)
			orders.GET("/number/:orderNumber", requireAuth, requireAdmin, h.HandleGetOrderByNumber)
			orders.PUT("/:id", requireAuth, requireAdmin, h.HandleUpdateOrder)
			orders.DELETE("/:id", requireAuth, requireAdmin, h.HandleDeleteOrder)
		}

		carts := api.Group("/cart")
		{
			carts.GET("", h.HandleGetCart)
			carts.DELETE("", h.HandleClearCart)
			carts.POST("/items", h.HandleAddCartItem)
			carts.GET("/items/:productId", h.HandleGetCartItem)
			carts.PUT("/items/:productId", h.HandleUpdateCartItem)
			carts.DELETE("/items/:productId", h.HandleRemoveCartItem)
		}

		checkout := api.Group("/checkout")
		{
			checkout.GET("/quote", h.HandleQuote)
			checkout.POST("", limited(limiters.Checkout, h.HandleCheckout)...)
		}

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", limited(limiters.Login, h.HandleLogin)...)
			authGroup.POST("/logout", h.HandleLogout)
			authGroup.GET("/verify", requireAuth, h.HandleVerify)
		}

		api.POST("/seed", requireAuth, requireAdmin, h.HandleSeed)
	}
}

// limited prepends rl's middleware to handler when rl is set.
func limited(rl *middleware.RateLimiter, handler gin.HandlerFunc) []gin.HandlerFunc {
	if rl == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{rl.Handler(), handler}
}
