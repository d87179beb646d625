package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		gatewayInitDuration,
	)
}

var gatewayInitDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "gateway_init_duration_seconds",
		Help:    "Duration of outbound payment initiation calls.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"result"},
)

func ObserveGatewayInit(result string, seconds float64) {
	gatewayInitDuration.WithLabelValues(norm(result)).Observe(seconds)
}
