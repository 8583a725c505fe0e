package chain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuildsTotal tracks unsigned transaction builds by kind (open/close).
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perps_chain_builds_total",
			Help: "Total number of unsigned transactions built",
		},
		[]string{"kind"},
	)

	// SubmissionsTotal tracks signed transaction submissions by result.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perps_chain_submissions_total",
			Help: "Total number of signed transaction submissions",
		},
		[]string{"result"},
	)

	// TradeQueriesTotal tracks trade API queries by result.
	TradeQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perps_chain_trade_queries_total",
			Help: "Total number of trade API queries",
		},
		[]string{"result"},
	)
)
