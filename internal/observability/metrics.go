package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	rpcCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chanmesh",
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "Total unary RPC calls by outcome.",
		},
		[]string{"service", "method", "outcome"},
	)
	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chanmesh",
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Unary RPC call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)
	fanoutFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chanmesh",
			Subsystem: "rpc",
			Name:      "fanout_failures_total",
			Help:      "Per-network failures absorbed by fan-out calls.",
		},
		[]string{"method", "network"},
	)
	streamReconnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chanmesh",
			Subsystem: "stream",
			Name:      "reconnects_total",
			Help:      "Stream subscriber reconnect attempts.",
		},
		[]string{"service", "network"},
	)
	streamEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chanmesh",
			Subsystem: "stream",
			Name:      "events_total",
			Help:      "Domain events delivered to handlers.",
		},
		[]string{"service", "variant"},
	)
	cacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chanmesh",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Cache stale-marks issued by the invalidation coordinator.",
		},
		[]string{"variant"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			rpcCalls, rpcDuration, fanoutFailures,
			streamReconnects, streamEvents, cacheInvalidations,
		)
	})
}

func RecordCall(service, method, outcome string, duration time.Duration) {
	RegisterMetrics()
	rpcCalls.WithLabelValues(service, method, outcome).Inc()
	rpcDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

func RecordFanoutFailure(method, network string) {
	RegisterMetrics()
	fanoutFailures.WithLabelValues(method, network).Inc()
}

func RecordStreamReconnect(service, network string) {
	RegisterMetrics()
	streamReconnects.WithLabelValues(service, network).Inc()
}

func RecordStreamEvent(service, variant string) {
	RegisterMetrics()
	streamEvents.WithLabelValues(service, variant).Inc()
}

func RecordCacheInvalidation(variant string, keys int) {
	RegisterMetrics()
	cacheInvalidations.WithLabelValues(variant).Add(float64(keys))
}
