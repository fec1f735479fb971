package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	superstepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapolap_supersteps_total",
		Help: "Scheduler barrier calls (ProcessRange and ProcessActive).",
	})
	vertexVisitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapolap_vertex_visits_total",
		Help: "Work function invocations across all supersteps.",
	})
	buildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapolap_view_build_seconds",
		Help:    "Time to build a view from a store snapshot.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)

func recordSuperstep(visits []uint64) {
	superstepsTotal.Inc()
	total := uint64(0)
	for _, v := range visits {
		total += v
	}
	vertexVisitsTotal.Add(float64(total))
}
