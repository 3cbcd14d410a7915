package heavy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heavy_cache_lookups_total",
			Help: "Cache lookups for the heavy result by outcome (hit, miss, error)",
		},
		[]string{"result"},
	)

	writes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heavy_cache_writes_total",
			Help: "Cache writes after computation by outcome",
		},
		[]string{"result"},
	)

	shared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "heavy_shared_computations_total",
			Help: "Requests served by a computation started for another request",
		},
	)
)
