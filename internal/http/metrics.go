package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var authEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fintrack",
		Subsystem: "auth",
		Name:      "events_total",
		Help:      "Login, registration and logout attempts by outcome.",
	},
	[]string{"event", "outcome"},
)

var ledgerWrites = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fintrack",
		Subsystem: "ledger",
		Name:      "writes_total",
		Help:      "Expenses added and budgets set.",
	},
	[]string{"kind"},
)

func observeAuth(event string, ok bool) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	authEvents.WithLabelValues(event, outcome).Inc()
}
