// Copyright (c) 2026 Identra. All rights reserved.

// Package metrics exposes Prometheus instrumentation for the API server.
//
// All collectors are registered on a private registry so that tests can
// construct isolated [Set] instances without collector name collisions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set bundles every collector the server reports.
type Set struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	LoginAttemptsTotal  *prometheus.CounterVec
	AuditAppendFailures prometheus.Counter
}

// New creates a Set with all collectors registered, including the standard
// Go runtime and process collectors.
func New() *Set {
	registry := prometheus.NewRegistry()

	set := &Set{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identra_http_requests_total",
			Help: "Total number of HTTP requests handled, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "identra_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LoginAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identra_login_attempts_total",
			Help: "Total number of login attempts, by outcome.",
		}, []string{"status"}),
		AuditAppendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identra_audit_append_failures_total",
			Help: "Total number of audit events that could not be persisted.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		set.HTTPRequestsTotal,
		set.HTTPRequestDuration,
		set.LoginAttemptsTotal,
		set.AuditAppendFailures,
	)

	return set
}

// ObserveRequest records one completed HTTP request.
func (s *Set) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	s.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	s.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveLogin records one login attempt with the given outcome label
// ("success", "failed" or "throttled").
func (s *Set) ObserveLogin(status string) {
	s.LoginAttemptsTotal.WithLabelValues(status).Inc()
}

// Handler returns the HTTP handler serving the /metrics scrape endpoint.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
