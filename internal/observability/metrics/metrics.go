// Package metrics exposes the Prometheus instruments for the voice-agent
// backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the registered instruments. A single instance is wired into
// the handlers and the lead flow at startup.
type Metrics struct {
	WebhooksTotal       *prometheus.CounterVec
	CallsInitiatedTotal prometheus.Counter
	SMSFallbacksTotal   *prometheus.CounterVec
	AvailabilitySeconds prometheus.Histogram

	registry *prometheus.Registry
}

// New creates and registers the instruments on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		WebhooksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_agent_webhooks_total",
			Help: "Webhook events received, by event type and outcome.",
		}, []string{"event_type", "status"}),
		CallsInitiatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voice_agent_calls_initiated_total",
			Help: "Outbound voice calls placed.",
		}),
		SMSFallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_agent_sms_fallbacks_total",
			Help: "SMS fallbacks sent after terminal call failures, by reason.",
		}, []string{"reason"}),
		AvailabilitySeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_agent_availability_duration_seconds",
			Help:    "Latency of availability lookups.",
			Buckets: prometheus.DefBuckets,
		}),
		registry: registry,
	}
	registry.MustRegister(
		m.WebhooksTotal,
		m.CallsInitiatedTotal,
		m.SMSFallbacksTotal,
		m.AvailabilitySeconds,
	)
	return m
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
