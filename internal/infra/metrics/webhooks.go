package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		webhookEventsTotal,
	)
}

var webhookEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Gateway result callbacks by outcome (applied/already_processed/ignored/rejected).",
	},
	[]string{"outcome"},
)

func IncWebhookEvent(outcome string) {
	webhookEventsTotal.WithLabelValues(norm(outcome)).Inc()
}
