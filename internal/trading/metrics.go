package trading

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuildsTotal tracks unsigned-transaction builds by result.
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perps_builds_total",
			Help: "Total number of unsigned transaction builds",
		},
		[]string{"result"},
	)

	// BuildDurationSeconds tracks end-to-end build latency including the
	// concurrent resolver fan-out.
	BuildDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "perps_build_duration_seconds",
		Help:    "Duration of unsigned transaction builds",
		Buckets: prometheus.DefBuckets,
	})

	// ExecutionsTotal tracks trade executions by path and result.
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perps_executions_total",
			Help: "Total number of trade executions",
		},
		[]string{"path", "result"},
	)

	// ExecuteDurationSeconds tracks execution latency by path.
	ExecuteDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "perps_execute_duration_seconds",
			Help:    "Duration of trade executions",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"path"},
	)

	// NormalizeDroppedTotal counts raw trade records dropped because their
	// slot identity could not be resolved.
	NormalizeDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perps_normalize_dropped_total",
		Help: "Total number of raw trade records dropped during normalization",
	})

	// RegistryHitsTotal counts trader-context cache hits.
	RegistryHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perps_trader_registry_hits_total",
		Help: "Total number of trader registry hits",
	})

	// RegistryMissesTotal counts trader-context cache misses.
	RegistryMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perps_trader_registry_misses_total",
		Help: "Total number of trader registry misses",
	})

	// RegistryEvictionsTotal counts error-based trader-context evictions.
	RegistryEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perps_trader_registry_evictions_total",
		Help: "Total number of trader registry evictions",
	})
)
