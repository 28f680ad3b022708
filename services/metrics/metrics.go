// Package metrics holds the portal's Prometheus metrics, registered on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "masomo"

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid" (bad credentials or form) or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// AuthorizationDecisionsTotal counts dashboard guard decisions.
// Label:
//   - outcome: allow, unauthenticated, forbidden, expired
var AuthorizationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of dashboard authorization decisions, labelled by outcome.",
	},
	[]string{"outcome"},
)

var SessionsStartedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Total number of sessions started, labelled by role.",
	},
	[]string{"role"},
)

var SessionsEndedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_ended_total",
		Help:      "Total number of sessions ended by logout.",
	},
)
