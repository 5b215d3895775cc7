package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayCallTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_calls_total",
			Help: "Outbound wallet and provider calls by gateway, call and result",
		},
		[]string{"gateway", "call", "result"},
	)

	gatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_call_duration_ms",
			Help:    "Outbound wallet and provider call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 12),
		},
		[]string{"gateway", "call"},
	)
)

// RecordGatewayCall records an outbound call; a nil err counts as success.
func RecordGatewayCall(gateway, call string, started time.Time, err error) {
	result := "success"
	if err != nil {
		result = "fail"
	}
	gatewayCallTotal.WithLabelValues(gateway, call, result).Inc()
	gatewayCallDuration.WithLabelValues(gateway, call).Observe(float64(time.Since(started).Milliseconds()))
}
