// Package metrics exposes Prometheus instrumentation for the chat server.
// The collectors are registered on a caller-supplied registry so tests can
// use isolated instances.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ConnectionsAccepted prometheus.Counter
	ActiveSessions      prometheus.Gauge
	Registrations       prometheus.Counter
	AuthFailures        prometheus.Counter
	MessagesRouted      prometheus.Counter
	RoutingFailures     prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConnectionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_connections_accepted_total",
			Help: "TCP connections accepted by the listener.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chat_active_sessions",
			Help: "Currently promoted sessions.",
		}),
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_registrations_total",
			Help: "Accounts created.",
		}),
		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_auth_failures_total",
			Help: "Failed login, registration and token attempts.",
		}),
		MessagesRouted: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_routed_total",
			Help: "Messages delivered to a recipient queue.",
		}),
		RoutingFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_routing_failures_total",
			Help: "Messages that could not be delivered (offline recipient or full queue).",
		}),
	}
}

// Handler returns the HTTP handler serving the /metrics endpoint for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
