package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DonationMetrics records payment lifecycle activity.
type DonationMetrics struct {
	transitions     *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
}

// NewDonationMetrics registers the donation metrics on the provided registerer.
func NewDonationMetrics(reg prometheus.Registerer) *DonationMetrics {
	if reg == nil {
		return &DonationMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "donation_transitions_total",
		Help: "Donation status transitions by target status and source.",
	}, []string{"status", "source"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stripe_webhook_events_total",
		Help: "Stripe webhook events by type and outcome.",
	}, []string{"type", "outcome"})
	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Duration of payment gateway calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(transitions, webhookEvents, gatewayDuration)
	return &DonationMetrics{
		transitions:     transitions,
		webhookEvents:   webhookEvents,
		gatewayDuration: gatewayDuration,
	}
}

// IncTransition increments the transition counter for the resulting status.
func (d *DonationMetrics) IncTransition(status, source string) {
	if d == nil || d.transitions == nil {
		return
	}
	d.transitions.WithLabelValues(normalizeLabel(status), normalizeLabel(source)).Inc()
}

// IncWebhookEvent increments the webhook counter for the event type and outcome.
func (d *DonationMetrics) IncWebhookEvent(eventType, outcome string) {
	if d == nil || d.webhookEvents == nil {
		return
	}
	d.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// ObserveGatewayDuration records the duration of a gateway call.
func (d *DonationMetrics) ObserveGatewayDuration(operation string, duration time.Duration) {
	if d == nil || d.gatewayDuration == nil {
		return
	}
	d.gatewayDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
