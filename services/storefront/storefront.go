// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package storefront wires the Tea With Me shop: catalog, carts, checkout,
// orders and the admin dashboard API, served over HTTP by gin.
//
// # Extension Points
//
// New accepts extensions.ServiceOptions so a deployment can supply its own:
//   - AuthProvider: token validation for admin routes (default: the
//     built-in session store)
//   - AuditLogger: where admin and login events go (default: no-op)
//
// # Usage
//
//	cfg, err := storefront.LoadConfig("teawithme.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc, err := storefront.New(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//	log.Fatal(svc.Run(ctx))
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/sakil470004/tea-with-me/pkg/extensions"
	"github.com/sakil470004/tea-with-me/services/storefront/auth"
	"github.com/sakil470004/tea-with-me/services/storefront/cart"
	"github.com/sakil470004/tea-with-me/services/storefront/catalog"
	"github.com/sakil470004/tea-with-me/services/storefront/checkout"
	"github.com/sakil470004/tea-with-me/services/storefront/handlers"
	"github.com/sakil470004/tea-with-me/services/storefront/middleware"
	"github.com/sakil470004/tea-with-me/services/storefront/observability"
	"github.com/sakil470004/tea-with-me/services/storefront/orders"
	"github.com/sakil470004/tea-with-me/services/storefront/routes"
	"github.com/sakil470004/tea-with-me/services/storefront/storage"
	"github.com/sakil470004/tea-with-me/services/storefront/telemetry"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service is a runnable storefront.
//
// # Thread Safety
//
// Run is called at most once. Router and Close are safe to call
// concurrently with Run.
type Service interface {
	// Run serves HTTP until ctx is cancelled or the server fails, then
	// shuts down gracefully within Config.ShutdownTimeout.
	Run(ctx context.Context) error

	// Router returns the configured gin engine, mainly for tests.
	Router() *gin.Engine

	// Close flushes telemetry and closes the store. Idempotent.
	Close() error
}

// =============================================================================
// Implementation
// =============================================================================

type service struct {
	config Config
	opts   extensions.ServiceOptions
	logger *slog.Logger

	db                *storage.DB
	router            *gin.Engine
	handlers          *handlers.Handlers
	authProvider      extensions.AuthProvider
	limiters          routes.Limiters
	httpMetrics       *observability.HTTPMetrics
	telemetryShutdown func(context.Context) error

	closeOnce sync.Once
	closeErr  error
}

// readHeaderTimeout bounds how long a client may take to send headers.
const readHeaderTimeout = 10 * time.Second

// The Prometheus collectors live in the default registry, which accepts
// each metric name once per process.
var (
	httpMetricsOnce sync.Once
	httpMetrics     *observability.HTTPMetrics
)

func defaultHTTPMetrics() *observability.HTTPMetrics {
	httpMetricsOnce.Do(func() {
		httpMetrics = observability.NewHTTPMetrics(nil)
	})
	return httpMetrics
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a storefront from cfg.
//
// # Description
//
// New performs, in order:
//  1. Applies defaults for zero config values and validates the result
//  2. Initializes OpenTelemetry tracing and metrics
//  3. Opens the BadgerDB store
//  4. Builds the catalog, cart, order, checkout and auth services
//  5. Creates the bootstrap admin if configured and missing
//  6. Builds the gin router with middleware and routes
//
// If opts is nil, extensions.DefaultOptions() is used.
//
// # Outputs
//
//   - Service: ready to Run. Caller must Close it.
//   - error: telemetry, storage or bootstrap failure
func New(cfg Config, opts *extensions.ServiceOptions) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
		logger: slog.Default(),
	}
	if err := s.config.validate(); err != nil {
		return nil, err
	}
	if opts != nil {
		s.opts = *opts
	} else {
		s.opts = extensions.DefaultOptions()
	}
	if s.opts.AuditLogger == nil {
		s.opts.AuditLogger = &extensions.NopAuditLogger{}
	}

	ctx := context.Background()
	shutdown, err := telemetry.Init(ctx, s.config.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	s.telemetryShutdown = shutdown

	s.db, err = OpenStore(s.config, s.logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	if err := s.initServices(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	s.initRouter()

	s.logger.Info("Storefront initialized",
		"port", s.config.Port,
		"in_memory", s.config.InMemory,
		"data_dir", s.config.DataDir,
		"trace_exporter", s.config.Telemetry.TraceExporter,
		"metric_exporter", s.config.Telemetry.MetricExporter)
	return s, nil
}

// OpenStore opens the BadgerDB store described by cfg.
func OpenStore(cfg Config, logger *slog.Logger) (*storage.DB, error) {
	cfg = applyConfigDefaults(cfg)
	var dbCfg storage.Config
	if cfg.InMemory {
		dbCfg = storage.InMemoryConfig()
	} else {
		dbCfg = storage.DefaultConfig(cfg.DataDir)
		dbCfg.GCInterval = cfg.GCInterval
	}
	dbCfg.Logger = logger

	db, err := storage.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return db, nil
}

// initServices builds the domain services and the handlers over them.
func (s *service) initServices(ctx context.Context) error {
	products := catalog.NewStore(s.db)
	catalogSvc := catalog.NewService(products)
	carts := cart.NewService(cart.NewStore(s.db, s.config.CartTTL, s.logger), products)
	orderSvc := orders.NewService(orders.NewStore(s.db), *s.config.DeliveryFees, s.logger)
	checkoutSvc := checkout.NewService(carts, orderSvc, s.logger)

	users := auth.NewUserStore(s.db, s.config.BcryptCost)
	sessions := auth.NewSessionStore(s.db, s.config.SessionTTL)
	provider := auth.NewProvider(users, sessions)

	s.authProvider = provider
	if s.opts.AuthProvider != nil {
		s.authProvider = s.opts.AuthProvider
	}

	if admin := s.config.BootstrapAdmin; admin.Enabled() {
		created, err := users.EnsureAdmin(ctx, admin.Name, admin.Email, admin.Password)
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		if created {
			s.logger.Info("Bootstrap admin created", "email", auth.NormalizeEmail(admin.Email))
		}
	}

	business, err := observability.NewBusinessMetrics(otel.Meter(observability.MeterName))
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	s.httpMetrics = defaultHTTPMetrics()

	if l := s.config.RateLimit.Login; l.Enabled() {
		s.limiters.Login = middleware.NewRateLimiter(l.RPS, l.Burst, s.httpMetrics)
	}
	if l := s.config.RateLimit.Checkout; l.Enabled() {
		s.limiters.Checkout = middleware.NewRateLimiter(l.RPS, l.Burst, s.httpMetrics)
	}

	s.handlers = handlers.NewHandlers(handlers.Deps{
		Catalog:      catalogSvc,
		Orders:       orderSvc,
		Carts:        carts,
		Checkout:     checkoutSvc,
		Auth:         provider,
		Audit:        s.opts.AuditLogger,
		Metrics:      business,
		CartTTL:      s.config.CartTTL,
		CookieSecure: s.config.CookieSecure,
		Version:      s.config.Version,
	})
	return nil
}

// initRouter builds the gin engine with middleware and all routes.
func (s *service) initRouter() {
	gin.SetMode(s.config.GinMode)
	s.router = gin.New()
	s.router.Use(
		gin.Recovery(),
		otelgin.Middleware(s.config.Telemetry.ServiceName),
		middleware.RequestID(),
		middleware.AccessLog(s.logger),
		middleware.Metrics(s.httpMetrics),
	)

	if s.config.StaticDir != "" {
		s.router.StaticFS("/ui", http.Dir(s.config.StaticDir))
	}

	routes.SetupRoutes(s.router, s.handlers, s.authProvider, s.limiters, telemetry.MetricsHandler())
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run serves HTTP and runs store maintenance until ctx is cancelled.
//
// # Description
//
// Three goroutines share one errgroup: the HTTP server, BadgerDB value log
// GC, and a watcher that shuts the server down when ctx ends. The first
// failure cancels the others.
func (s *service) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting storefront server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.db.RunGC(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down storefront server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Router returns the configured gin engine.
func (s *service) Router() *gin.Engine {
	return s.router
}

// Close flushes telemetry and closes the store.
func (s *service) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.telemetryShutdown != nil {
			ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
			if err := s.telemetryShutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
			}
			cancel()
		}
		if s.db != nil {
			if err := s.db.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close store: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ Service = (*service)(nil)
