package signer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks signing requests by result.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perps_signer_requests_total",
			Help: "Total number of remote signing requests",
		},
		[]string{"result"},
	)

	// RequestDurationSeconds tracks signing request latency. The provider can
	// be slow; the buckets extend well past the defaults.
	RequestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "perps_signer_request_duration_seconds",
		Help:    "Duration of remote signing requests",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
	})
)
