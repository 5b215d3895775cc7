package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerOpTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Provider lifecycle events by provider, operation and response code",
		},
		[]string{"provider", "operation", "code"},
	)

	ledgerOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_ms",
			Help:    "Provider lifecycle event handling time in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"provider", "operation"},
	)

	ledgerConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_insert_conflicts_total",
			Help: "Records rejected by the active-record constraint after the wallet accepted the call",
		},
		[]string{"provider", "operation"},
	)
)

// RecordOperation records one handled lifecycle event with its response code.
func RecordOperation(provider, operation string, code int, started time.Time) {
	ledgerOpTotal.WithLabelValues(provider, operation, strconv.Itoa(code)).Inc()
	ledgerOpDuration.WithLabelValues(provider, operation).Observe(float64(time.Since(started).Milliseconds()))
}

func RecordConflict(provider, operation string) {
	ledgerConflicts.WithLabelValues(provider, operation).Inc()
}
