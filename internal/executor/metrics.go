package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heavy_computations_total",
			Help: "Total number of heavy computations by outcome",
		},
		[]string{"outcome"},
	)

	duration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "heavy_computation_duration_seconds",
			Help:    "Heavy computation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	running = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "heavy_computations_running",
			Help: "Number of heavy computations currently running",
		},
	)

	queued = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "heavy_computations_queued",
			Help: "Number of heavy computations waiting for a worker slot",
		},
	)
)
