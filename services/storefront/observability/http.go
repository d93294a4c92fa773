// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides the storefront's metrics.
//
// # Description
//
// Two families are exported on /metrics:
//   - HTTP metrics (Prometheus client): request counts, latency and
//     in-flight requests per route
//   - Business metrics (OpenTelemetry meter): orders placed, order value,
//     cart operations, logins and catalog changes
//
// # Thread Safety
//
// All metric operations are thread-safe.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

const metricsNamespace = "teawithme"

const httpSubsystem = "http"

// HTTPMetrics holds the Prometheus request metrics.
//
// # Fields
//
//   - RequestsTotal: requests by method, route and status code
//   - RequestDurationSeconds: latency by method and route
//   - InFlight: requests currently being served
//   - RateLimitedTotal: requests rejected by the rate limiter, by route
type HTTPMetrics struct {
	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec
	InFlight               prometheus.Gauge
	RateLimitedTotal       *prometheus.CounterVec
}

// NewHTTPMetrics creates the HTTP metrics and registers them with reg.
// A nil reg means the default Prometheus registry.
//
// # Limitations
//
//   - Registering twice with the same registry panics.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &HTTPMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "requests_total",
				Help:      "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),

		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "route"},
		),

		InFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),

		RateLimitedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}
}

// UnmatchedRoute labels requests that matched no route, keeping the label
// set bounded.
const UnmatchedRoute = "unmatched"

// ObserveRequest records one finished request. Nil receivers are ignored.
func (m *HTTPMetrics) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	if route == "" {
		route = UnmatchedRoute
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDurationSeconds.WithLabelValues(method, route).Observe(seconds)
}

// RequestStarted increments the in-flight gauge.
func (m *HTTPMetrics) RequestStarted() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

// RequestFinished decrements the in-flight gauge.
func (m *HTTPMetrics) RequestFinished() {
	if m == nil {
		return
	}
	m.InFlight.Dec()
}

// RecordRateLimited counts a rejected request.
func (m *HTTPMetrics) RecordRateLimited(route string) {
	if m == nil {
		return
	}
	if route == "" {
		route = UnmatchedRoute
	}
	m.RateLimitedTotal.WithLabelValues(route).Inc()
}
