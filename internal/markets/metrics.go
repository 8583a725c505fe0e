package markets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PairsRefreshTotal tracks pairs-cache refresh attempts by result.
	PairsRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perps_pairs_refresh_total",
			Help: "Total number of pairs-cache refresh attempts",
		},
		[]string{"result"},
	)

	// PairsStaleServedTotal counts snapshots served past their TTL because a
	// refresh failed.
	PairsStaleServedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perps_pairs_stale_served_total",
		Help: "Total number of stale pairs snapshots served after refresh failure",
	})

	// PriceFetchesTotal tracks price-feed fetches by result.
	PriceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perps_price_fetches_total",
			Help: "Total number of price feed fetches",
		},
		[]string{"result"},
	)

	// PriceFetchDurationSeconds tracks price feed latency.
	PriceFetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "perps_price_fetch_duration_seconds",
		Help:    "Duration of price feed fetches",
		Buckets: prometheus.DefBuckets,
	})
)
