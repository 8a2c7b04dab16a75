// Package metrics holds the Prometheus collectors of the payment flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "paygate"

// Outcome labels shared by the checkout counters.
const (
	OutcomeRedirected     = "redirected"
	OutcomeProviderFailed = "provider_failed"
	OutcomeSuccess        = "success"
	OutcomeReplayed       = "replayed"
	OutcomeRejected       = "rejected"
	OutcomeException      = "exception"
	OutcomeDebugDump      = "debug_dump"
	OutcomeError          = "error"
)

var OrdersInitiated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "orders_initiated_total",
	Help:      "Checkout orders started, by outcome.",
}, []string{"outcome"})

var OrdersConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "orders_confirmed_total",
	Help:      "Checkout confirmations, by outcome.",
}, []string{"outcome"})

var CreditsGranted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "credits_granted_total",
	Help:      "Credits added to accounts, by reason (purchase or commission).",
}, []string{"reason"})

var ProviderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "provider_request_duration_seconds",
	Help:      "Latency of payment provider API calls.",
	Buckets:   prometheus.DefBuckets,
}, []string{"operation", "result"})

var ProviderBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "provider_breaker_state",
	Help:      "Circuit breaker state per provider client (0 closed, 1 half-open, 2 open).",
}, []string{"name"})

var EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "events_published_total",
	Help:      "Domain events handed to publishers, by event and result.",
}, []string{"event", "result"})
