// Package metrics exposes the Prometheus collectors for the HTTP API, the
// real-time relay and outbound calls to media and AI providers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Relay outcomes
const (
	OutcomeDelivered = "delivered"
	OutcomeOffline   = "offline"
	OutcomeDropped   = "dropped"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

var (
	// HTTPRequestsTotal counts API requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onyx_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks API latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onyx_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RelayEventsTotal counts real-time events by type and outcome.
	RelayEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onyx_relay_events_total",
			Help: "Total number of real-time relay events",
		},
		[]string{"event", "outcome"},
	)

	// ActiveConnections is the number of open websocket connections.
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "onyx_relay_active_connections",
			Help: "Number of open real-time connections",
		},
	)

	// PresentUsers is the size of the presence directory after the last change.
	PresentUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "onyx_presence_users",
			Help: "Number of users currently present",
		},
	)

	// ExternalCallsTotal counts calls to third-party providers.
	ExternalCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onyx_external_calls_total",
			Help: "Total number of calls to external providers",
		},
		[]string{"service", "operation", "outcome"},
	)
)

// RecordRequest records one served HTTP request
func RecordRequest(method, route string, status int, took time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

// RecordRelay records the outcome of one relay event
func RecordRelay(event, outcome string) {
	RelayEventsTotal.WithLabelValues(event, outcome).Inc()
}

// RecordExternal records the outcome of a provider call
func RecordExternal(service, operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	ExternalCallsTotal.WithLabelValues(service, operation, outcome).Inc()
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
