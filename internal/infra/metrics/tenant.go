package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		tenantRegistrationsTotal,
		webhookUpdatesTotal,
		floodDropsTotal,
	)
}

var (
	tenantRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_registrations_total",
			Help: "Child bot registration attempts by outcome.",
		},
		[]string{"outcome"}, // ok|invalid|duplicate|error
	)

	webhookUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_updates_total",
			Help: "Inbound webhook updates by target and outcome.",
		},
		[]string{"target", "outcome"}, // target: root|child
	)

	floodDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_flood_drops_total",
			Help: "Updates dropped because a user exceeded the inbound rate.",
		},
	)
)

func IncTenantRegistration(outcome string) {
	tenantRegistrationsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncWebhookUpdate(target, outcome string) {
	webhookUpdatesTotal.WithLabelValues(norm(target), norm(outcome)).Inc()
}

func IncFloodDrop() {
	floodDropsTotal.Inc()
}
