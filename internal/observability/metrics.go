// Package observability carries the runtime's prometheus metrics and the
// optional diagnostics HTTP endpoint.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ecatplc",
			Subsystem: "cycle",
			Name:      "duration_seconds",
			Help:      "Duration of one receive/compute/send cycle.",
			Buckets:   prometheus.ExponentialBuckets(10e-6, 4, 10),
		},
	)
	cycleErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ecatplc",
			Subsystem: "cycle",
			Name:      "errors_total",
			Help:      "Bus errors that caused a tick to be abandoned.",
		},
	)
	cycleOverruns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ecatplc",
			Subsystem: "cycle",
			Name:      "overruns_total",
			Help:      "Ticks that started after their absolute boundary.",
		},
	)
	bridgeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ecatplc",
			Subsystem: "bridge",
			Name:      "requests_total",
			Help:      "External image requests drained by the engine.",
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(cycleDuration, cycleErrors, cycleOverruns, bridgeRequests)
	})
}

func ObserveCycle(d time.Duration) {
	RegisterMetrics()
	cycleDuration.Observe(d.Seconds())
}

func RecordCycleError() {
	RegisterMetrics()
	cycleErrors.Inc()
}

func RecordOverrun() {
	RegisterMetrics()
	cycleOverruns.Inc()
}

func RecordBridgeRequest(kind string) {
	RegisterMetrics()
	bridgeRequests.WithLabelValues(kind).Inc()
}
