// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

// Package metrics defines the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestsTotal counts handled API requests by endpoint, method
	// and status code.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoportal_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	// APIRequestDuration observes API request latency in seconds.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geoportal_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// APIActiveRequests tracks in-flight API requests.
	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geoportal_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// AuthAttemptsTotal counts login attempts by outcome.
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoportal_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// ProxyRequestsTotal counts MapServer proxy requests by outcome.
	ProxyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoportal_proxy_requests_total",
			Help: "Total number of MapServer proxy requests",
		},
		[]string{"outcome"},
	)

	// ProxyUpstreamDuration observes MapServer round-trip latency.
	ProxyUpstreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geoportal_proxy_upstream_duration_seconds",
			Help:    "MapServer upstream request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DatabaseConnected reports database reachability from the last
	// health probe. 1 when reachable.
	DatabaseConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geoportal_database_connected",
			Help: "Whether the database was reachable at the last health check",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(endpoint, method, status string, durationSeconds float64) {
	APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	APIRequestDuration.WithLabelValues(endpoint, method).Observe(durationSeconds)
}

// RecordAuthAttempt records one login attempt. Result is "success" or
// "failure".
func RecordAuthAttempt(result string) {
	AuthAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordProxyRequest records one proxy request. Outcome is "success",
// "upstream_error", "rejected", "canceled" or "interrupted".
func RecordProxyRequest(outcome string, durationSeconds float64) {
	ProxyRequestsTotal.WithLabelValues(outcome).Inc()
	ProxyUpstreamDuration.Observe(durationSeconds)
}
