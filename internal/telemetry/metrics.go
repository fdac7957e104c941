/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry exposes prometheus metrics and otel tracing setup.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heimdall_http_requests_total",
		Help: "HTTP requests processed, by method, endpoint and status code.",
	}, []string{"method", "endpoint", "status"})

	// HTTPRequestDuration observes request latency by method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "heimdall_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// HTTPActiveRequests gauges in-flight HTTP requests.
	HTTPActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heimdall_http_active_requests",
		Help: "In-flight HTTP requests.",
	})

	// HubConnections gauges live operator connections by role.
	HubConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "heimdall_hub_connections",
		Help: "Live operator connections, by role.",
	}, []string{"role"})

	// HubBroadcastsTotal counts broadcast calls by kind.
	HubBroadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heimdall_hub_broadcasts_total",
		Help: "Broadcasts issued, by kind.",
	}, []string{"kind"})

	// HubSendFailuresTotal counts per-connection send failures during broadcasts.
	HubSendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heimdall_hub_send_failures_total",
		Help: "Connection sends that failed and triggered removal.",
	})

	// SlipSeconds gauges the most recently computed show slip.
	SlipSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heimdall_slip_seconds",
		Help: "Current show slip in seconds.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
