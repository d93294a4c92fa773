// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakil470004/tea-with-me/pkg/extensions"
	"github.com/sakil470004/tea-with-me/services/storefront/auth"
	"github.com/sakil470004/tea-with-me/services/storefront/cart"
	"github.com/sakil470004/tea-with-me/services/storefront/catalog"
	"github.com/sakil470004/tea-with-me/services/storefront/checkout"
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
	"github.com/sakil470004/tea-with-me/services/storefront/handlers"
	"github.com/sakil470004/tea-with-me/services/storefront/middleware"
	"github.com/sakil470004/tea-with-me/services/storefront/orders"
	"github.com/sakil470004/tea-with-me/services/storefront/routes"
	"github.com/sakil470004/tea-with-me/services/storefront/storage"
)

// =============================================================================
// Test Setup
// =============================================================================

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	adminEmail    = "admin@teawithme.test"
	adminPassword = "correct-horse-battery"
)

// recordingAudit keeps every audit event.
type recordingAudit struct {
	mu     sync.Mutex
	events []extensions.AuditEvent
}

func (r *recordingAudit) Log(_ context.Context, e extensions.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingAudit) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

type server struct {
	router   *gin.Engine
	products *catalog.Store
	provider *auth.Provider
	audit    *recordingAudit
	token    string
}

func newServer(t *testing.T, limiters routes.Limiters) *server {
	t.Helper()
	db, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	products := catalog.NewStore(db)
	catalogSvc := catalog.NewService(products)
	carts := cart.NewService(cart.NewStore(db, cart.DefaultTTL, nil), products)
	orderSvc := orders.NewService(orders.NewStore(db), orders.DefaultDeliveryFees(), nil)
	users := auth.NewUserStore(db, bcrypt.MinCost)
	provider := auth.NewProvider(users, auth.NewSessionStore(db, auth.DefaultSessionTTL))
	audit := &recordingAudit{}

	ctx := context.Background()
	_, err = users.Create(ctx, "Admin", adminEmail, adminPassword, true)
	require.NoError(t, err)
	sess, _, err := provider.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	h := handlers.NewHandlers(handlers.Deps{
		Catalog:  catalogSvc,
		Orders:   orderSvc,
		Carts:    carts,
		Checkout: checkout.NewService(carts, orderSvc, nil),
		Auth:     provider,
		Audit:    audit,
		Version:  "test",
	})

	router := gin.New()
	router.Use(middleware.RequestID())
	routes.SetupRoutes(router, h, provider, limiters, nil)

	return &server{router: router, products: products, provider: provider, audit: audit, token: sess.Token}
}

type request struct {
	method  string
	path    string
	body    any
	admin   bool
	cookies []*http.Cookie
}

func (s *server) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if r.body != nil {
		if raw, ok := r.body.(string); ok {
			body.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&body).Encode(r.body))
		}
	}
	req := httptest.NewRequest(r.method, r.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if r.admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) product(t *testing.T, title string, price, discount float64, stock int) *datatypes.Product {
	t.Helper()
	p := &datatypes.Product{
		Title:    title,
		Photo:    datatypes.Photo{Thumbnail: "thumb.jpg", Cover: "cover.jpg"},
		Quantity: 1,
		Price:    price,
		Stock:    stock,
		Discount: discount,
		Category: datatypes.CategoryTea,
	}
	require.NoError(t, s.products.Create(context.Background(), p))
	return p
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func validCustomer() map[string]any {
	return map[string]any{
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
		"phone": "555-0100",
		"address": map[string]any{
			"street":  "1 Analytical Way",
			"city":    "London",
			"state":   "LDN",
			"zipCode": "10001",
		},
	}
}

// =============================================================================
// Health
// =============================================================================

func TestHandleHealth(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	w := s.do(t, request{method: http.MethodGet, path: "/health"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[datatypes.HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Version)
}

// =============================================================================
// Product Tests
// =============================================================================

func TestProducts_ListFiltersAndPaginates(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	s.product(t, "Green Sencha", 12, 0, 5)
	s.product(t, "Earl Grey", 24.99, 10, 5)
	s.product(t, "Chai Masala", 9.5, 0, 5)

	w := s.do(t, request{method: http.MethodGet, path: "/api/products?search=GREY"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[datatypes.ProductListResponse](t, w)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Earl Grey", resp.Products[0].Title)

	w = s.do(t, request{method: http.MethodGet, path: "/api/products?page=2&limit=2"})
	resp = decode[datatypes.ProductListResponse](t, w)
	assert.Len(t, resp.Products, 1)
	assert.Equal(t, 3, resp.Pagination.TotalProducts)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasPrevPage)
	assert.False(t, resp.Pagination.HasNextPage)
}

func TestProducts_CategoryRoute(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	s.product(t, "Oolong", 15, 0, 3)

	w := s.do(t, request{method: http.MethodGet, path: "/api/categories/tea/products"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[datatypes.ProductListResponse](t, w).Products, 1)

	w = s.do(t, request{method: http.MethodGet, path: "/api/categories/coffee/products"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[datatypes.ProductListResponse](t, w).Products)

	w = s.do(t, request{method: http.MethodGet, path: "/api/categories/wine/products"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, request{method: http.MethodGet, path: "/api/categories"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"tea","count":1`)
}

func TestProducts_GetUnknown(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	w := s.do(t, request{method: http.MethodGet, path: "/api/products/missing"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode[datatypes.ErrorResponse](t, w)
	assert.Equal(t, handlers.MsgProductNotFound, resp.Error)
	assert.Equal(t, datatypes.CodeNotFound, resp.Code)
}

func TestProducts_AdminLifecycle(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	body := map[string]any{
		"title":    "Dark Roast",
		"photo":    map[string]any{"thumbnail": "t.jpg", "cover": "c.jpg"},
		"quantity": 1,
		"price":    18.5,
		"stock":    0,
		"category": "coffee",
	}

	w := s.do(t, request{method: http.MethodPost, path: "/api/products", body: body})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, middleware.MsgAuthRequired, decode[datatypes.ErrorResponse](t, w).Error)

	w = s.do(t, request{method: http.MethodPost, path: "/api/products", body: body, admin: true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[datatypes.ProductResponse](t, w)
	assert.Equal(t, "Product created successfully", created.Message)
	assert.Equal(t, 0, created.Product.Stock)
	id := created.Product.ID

	body["price"] = 20.0
	w = s.do(t, request{method: http.MethodPut, path: "/api/products/" + id, body: body, admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20.0, decode[datatypes.ProductResponse](t, w).Product.Price)

	w = s.do(t, request{method: http.MethodDelete, path: "/api/products/" + id, admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Product deleted successfully", decode[datatypes.MessageResponse](t, w).Message)

	w = s.do(t, request{method: http.MethodDelete, path: "/api/products/" + id, admin: true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []string{
		extensions.EventProductCreate,
		extensions.EventProductUpdate,
		extensions.EventProductDelete,
	}, s.audit.types())
}

func TestProducts_CreateMissingFields(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	w := s.do(t, request{method: http.MethodPost, path: "/api/products", admin: true,
		body: map[string]any{"title": "No price"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[datatypes.ErrorResponse](t, w)
	assert.Equal(t, handlers.MsgMissingFields, resp.Error)
	assert.Equal(t, datatypes.CodeValidationFailed, resp.Code)
	assert.Contains(t, resp.Fields, "price")
	assert.Contains(t, resp.Fields, "category")
}

func TestProducts_MalformedBody(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	w := s.do(t, request{method: http.MethodPost, path: "/api/products", admin: true, body: "{not json"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, datatypes.CodeInvalidRequest, decode[datatypes.ErrorResponse](t, w).Code)
}

func TestSeed_RequiresAdmin(t *testing.T) {
	s := newServer(t, routes.Limiters{})

	w := s.do(t, request{method: http.MethodPost, path: "/api/seed"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, request{method: http.MethodPost, path: "/api/seed", admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[datatypes.SeedResponse](t, w)
	assert.Equal(t, "Sample products added successfully!", resp.Message)
	assert.Equal(t, 10, resp.Count)
}

// =============================================================================
// Cart and Checkout Tests
// =============================================================================

func TestCart_Flow(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	p := s.product(t, "Jasmine", 20, 10, 3)

	w := s.do(t, request{method: http.MethodPost, path: "/api/cart/items",
		body: map[string]any{"productId": p.ID, "quantity": 2}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookie := findCookie(w, cart.CookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	crt := decode[cart.Cart](t, w)
	assert.Equal(t, 2, crt.TotalItems)
	assert.InDelta(t, 36.0, crt.TotalPrice, 0.001)

	// Adding past stock is capped.
	w = s.do(t, request{method: http.MethodPost, path: "/api/cart/items", cookies: []*http.Cookie{cookie},
		body: map[string]any{"productId": p.ID, "quantity": 5}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[cart.Cart](t, w).TotalItems)

	w = s.do(t, request{method: http.MethodGet, path: "/api/cart/items/" + p.ID, cookies: []*http.Cookie{cookie}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, handlers.ItemQuantityResponse{ProductID: p.ID, Quantity: 3},
		decode[handlers.ItemQuantityResponse](t, w))

	w = s.do(t, request{method: http.MethodPut, path: "/api/cart/items/" + p.ID, cookies: []*http.Cookie{cookie},
		body: map[string]any{"quantity": 1}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[cart.Cart](t, w).TotalItems)

	w = s.do(t, request{method: http.MethodDelete, path: "/api/cart/items/" + p.ID, cookies: []*http.Cookie{cookie}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[cart.Cart](t, w).Items)

	w = s.do(t, request{method: http.MethodPut, path: "/api/cart/items/" + p.ID, cookies: []*http.Cookie{cookie},
		body: map[string]any{"quantity": 1}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, handlers.MsgItemNotInCart, decode[datatypes.ErrorResponse](t, w).Error)
}

func TestCart_AddErrors(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	soldOut := s.product(t, "Sold Out", 5, 0, 0)

	w := s.do(t, request{method: http.MethodPost, path: "/api/cart/items",
		body: map[string]any{"productId": soldOut.ID, "quantity": 1}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, request{method: http.MethodPost, path: "/api/cart/items",
		body: map[string]any{"productId": "nope", "quantity": 1}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, request{method: http.MethodPost, path: "/api/cart/items",
		body: map[string]any{"quantity": 1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[datatypes.ErrorResponse](t, w).Fields, "productId")
}

func TestCart_MalformedCookieGetsFreshCart(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	w := s.do(t, request{method: http.MethodGet, path: "/api/cart",
		cookies: []*http.Cookie{{Name: cart.CookieName, Value: "../../etc"}}})

	require.Equal(t, http.StatusOK, w.Code)
	cookie := findCookie(w, cart.CookieName)
	require.NotNil(t, cookie)
	assert.NotEqual(t, "../../etc", cookie.Value)
	assert.Empty(t, decode[cart.Cart](t, w).Items)
}

func TestCheckout_QuoteAndPlace(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	p := s.product(t, "Assam", 20, 10, 10)

	w := s.do(t, request{method: http.MethodPost, path: "/api/cart/items",
		body: map[string]any{"productId": p.ID, "quantity": 2}})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := []*http.Cookie{findCookie(w, cart.CookieName)}

	w = s.do(t, request{method: http.MethodGet, path: "/api/checkout/quote?deliveryType=express", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	quote := decode[datatypes.QuoteResponse](t, w)
	assert.Equal(t, datatypes.Pricing{Subtotal: 36, DeliveryFee: 15, Total: 51}, quote.Pricing)
	assert.Equal(t, 2, quote.TotalItems)

	w = s.do(t, request{method: http.MethodGet, path: "/api/checkout/quote?deliveryType=drone", cookies: cookies})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, request{method: http.MethodPost, path: "/api/checkout", cookies: cookies,
		body: map[string]any{"customerInfo": validCustomer(), "deliveryType": "express"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[datatypes.OrderCreatedResponse](t, w)
	assert.Equal(t, "Order created successfully", created.Message)
	assert.Equal(t, 51.0, created.Order.Total)
	assert.Regexp(t, `^TWM-\d{9}$`, created.Order.OrderNumber)

	w = s.do(t, request{method: http.MethodGet, path: "/api/cart", cookies: cookies})
	assert.Empty(t, decode[cart.Cart](t, w).Items)

	w = s.do(t, request{method: http.MethodGet, path: "/api/orders/" + created.Order.ID})
	require.Equal(t, http.StatusOK, w.Code)
	order := decode[datatypes.OrderResponse](t, w).Order
	assert.Equal(t, datatypes.OrderStatusPending, order.Status)
	assert.Equal(t, datatypes.PaymentCashOnDelivery, order.PaymentMethod)
}

func TestCheckout_EmptyCart(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	w := s.do(t, request{method: http.MethodPost, path: "/api/checkout",
		body: map[string]any{"customerInfo": validCustomer()}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, datatypes.CodeEmptyCart, decode[datatypes.ErrorResponse](t, w).Code)
}

func TestCheckout_RateLimited(t *testing.T) {
	s := newServer(t, routes.Limiters{Checkout: middleware.NewRateLimiter(0.001, 1, nil)})
	req := request{method: http.MethodPost, path: "/api/checkout",
		body: map[string]any{"customerInfo": validCustomer()}}

	assert.Equal(t, http.StatusBadRequest, s.do(t, req).Code)
	w := s.do(t, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

// =============================================================================
// Order Tests
// =============================================================================

func orderBody() map[string]any {
	return map[string]any{
		"customerInfo": validCustomer(),
		"items": []map[string]any{{
			"productId": "p1", "title": "Earl Grey", "price": 24.99,
			"quantity": 2, "discount": 10, "thumbnail": "t.jpg",
		}},
		"deliveryType": "standard",
		"pricing":      map[string]any{"subtotal": 1, "deliveryFee": 0, "total": 1},
	}
}

func TestOrders_CreateRecomputesPricing(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	w := s.do(t, request{method: http.MethodPost, path: "/api/orders", body: orderBody()})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 44.98, decode[datatypes.OrderCreatedResponse](t, w).Order.Total)
}

func TestOrders_CreateMissingFields(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	body := orderBody()
	body["items"] = []any{}
	w := s.do(t, request{method: http.MethodPost, path: "/api/orders", body: body})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, handlers.MsgMissingFields, decode[datatypes.ErrorResponse](t, w).Error)
}

func TestOrders_AdminLifecycle(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	w := s.do(t, request{method: http.MethodPost, path: "/api/orders", body: orderBody()})
	require.Equal(t, http.StatusCreated, w.Code)
	summary := decode[datatypes.OrderCreatedResponse](t, w).Order

	w = s.do(t, request{method: http.MethodGet, path: "/api/orders"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, request{method: http.MethodGet, path: "/api/orders?status=pending&search=ada", admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[datatypes.OrderListResponse](t, w)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, 1, list.Pagination.TotalOrders)

	w = s.do(t, request{method: http.MethodGet, path: "/api/orders?status=lost", admin: true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, request{method: http.MethodGet, path: "/api/orders/number/" + summary.OrderNumber, admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, summary.ID, decode[datatypes.OrderResponse](t, w).Order.ID)

	w = s.do(t, request{method: http.MethodPut, path: "/api/orders/" + summary.ID, admin: true, body: map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, handlers.MsgNothingToUpdate, decode[datatypes.ErrorResponse](t, w).Error)

	w = s.do(t, request{method: http.MethodPut, path: "/api/orders/" + summary.ID, admin: true,
		body: map[string]any{"status": "shipped", "trackingNumber": "1Z999"}})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[datatypes.OrderResponse](t, w)
	assert.Equal(t, "Order updated successfully", updated.Message)
	assert.Equal(t, datatypes.OrderStatusShipped, updated.Order.Status)
	assert.Equal(t, "1Z999", updated.Order.TrackingNumber)

	w = s.do(t, request{method: http.MethodDelete, path: "/api/orders/" + summary.ID, admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Order deleted successfully", decode[datatypes.MessageResponse](t, w).Message)

	w = s.do(t, request{method: http.MethodGet, path: "/api/orders/" + summary.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, handlers.MsgOrderNotFound, decode[datatypes.ErrorResponse](t, w).Error)

	assert.Equal(t, []string{extensions.EventOrderUpdate, extensions.EventOrderDelete}, s.audit.types())
}

// =============================================================================
// Auth Tests
// =============================================================================

func TestAuth_LoginVerifyLogout(t *testing.T) {
	s := newServer(t, routes.Limiters{})

	w := s.do(t, request{method: http.MethodPost, path: "/api/auth/login",
		body: map[string]any{"email": "ADMIN@teawithme.test", "password": adminPassword}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := findCookie(w, middleware.SessionCookie)
	require.NotNil(t, token)
	assert.True(t, token.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, token.SameSite)
	user := decode[datatypes.UserResponse](t, w).User
	assert.True(t, user.IsAdmin)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	w = s.do(t, request{method: http.MethodGet, path: "/api/auth/verify", cookies: []*http.Cookie{token}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, adminEmail, decode[datatypes.UserResponse](t, w).User.Email)

	w = s.do(t, request{method: http.MethodPost, path: "/api/auth/logout", cookies: []*http.Cookie{token}})
	require.Equal(t, http.StatusOK, w.Code)
	cleared := findCookie(w, middleware.SessionCookie)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	w = s.do(t, request{method: http.MethodGet, path: "/api/auth/verify", cookies: []*http.Cookie{token}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, middleware.MsgInvalidToken, decode[datatypes.ErrorResponse](t, w).Error)
}

func TestAuth_LoginFailures(t *testing.T) {
	s := newServer(t, routes.Limiters{})

	w := s.do(t, request{method: http.MethodPost, path: "/api/auth/login",
		body: map[string]any{"email": adminEmail, "password": "wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, handlers.MsgBadCredentials, decode[datatypes.ErrorResponse](t, w).Error)
	assert.Nil(t, findCookie(w, middleware.SessionCookie))

	w = s.do(t, request{method: http.MethodPost, path: "/api/auth/login",
		body: map[string]any{"email": "not-an-email"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, []string{extensions.EventAuthFailed}, s.audit.types())
}

func TestAuth_LoginRateLimited(t *testing.T) {
	s := newServer(t, routes.Limiters{Login: middleware.NewRateLimiter(0.001, 2, nil)})
	req := request{method: http.MethodPost, path: "/api/auth/login",
		body: map[string]any{"email": adminEmail, "password": "wrong-password"}}

	assert.Equal(t, http.StatusUnauthorized, s.do(t, req).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, req).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, req).Code)
}

func TestAuth_NonAdminForbidden(t *testing.T) {
	s := newServer(t, routes.Limiters{})
	ctx := context.Background()
	_, err := s.provider.Users().Create(ctx, "Clerk", "clerk@teawithme.test", "clerk-password", false)
	require.NoError(t, err)
	sess, _, err := s.provider.Login(ctx, "clerk@teawithme.test", "clerk-password")
	require.NoError(t, err)

	w := s.do(t, request{method: http.MethodGet, path: "/api/orders",
		cookies: []*http.Cookie{{Name: middleware.SessionCookie, Value: sess.Token}}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.Equal(t, []string{extensions.EventAuthDenied}, s.audit.types())
	s.audit.mu.Lock()
	denied := s.audit.events[0]
	s.audit.mu.Unlock()
	assert.Equal(t, extensions.OutcomeDenied, denied.Outcome)
	assert.Equal(t, sess.UserID, denied.UserID)
	assert.Equal(t, "/api/orders", denied.ResourceID)
}
