package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GatewayRequests counts outbound gateway calls by operation and outcome
// (ok, rejected, error).
var GatewayRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "edupay_gateway_requests_total",
		Help: "Outbound payment gateway calls",
	},
	[]string{"op", "outcome"},
)

// WebhookNotifications counts inbound webhook deliveries by result
// (applied, noop, invalid_signature, rejected, error).
var WebhookNotifications = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "edupay_webhook_notifications_total",
		Help: "Inbound gateway webhook notifications",
	},
	[]string{"result"},
)

// StatusTransitions counts applied payment status transitions.
var StatusTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "edupay_status_transitions_total",
		Help: "Applied payment status transitions",
	},
	[]string{"to"},
)
