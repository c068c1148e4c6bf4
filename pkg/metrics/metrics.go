// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// MessagesTotal tracks messages appended to conversations.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbox_messages_total",
			Help: "Total messages appended, by sender type",
		},
		[]string{"sender_type"},
	)

	// IdempotentReplaysTotal tracks sends resolved from the idempotency index.
	IdempotentReplaysTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inbox_idempotent_replays_total",
			Help: "Sends answered from a previously stored message",
		},
	)

	// SimulatedDeliveriesTotal tracks inbound messages synthesized by the simulator.
	SimulatedDeliveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inbox_simulated_deliveries_total",
			Help: "Inbound messages delivered by the live update simulator",
		},
	)

	// UnreadDeltas tracks conversations with an outstanding unread delta.
	UnreadDeltas = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inbox_unread_delta_conversations",
			Help: "Conversations with an unacknowledged unread delta",
		},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// BridgePublishesTotal tracks notifications republished to NATS.
	BridgePublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbox_bridge_publishes_total",
			Help: "Notifications republished to the NATS bridge",
		},
		[]string{"status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
