package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/gravquad/internal/engine"
)

// Metrics with bounded cardinality; no per-body labels.
var (
	stepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gravquad_step_duration_seconds",
		Help:    "Time spent in one physics step",
		Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	bodyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gravquad_bodies",
		Help: "Number of bodies in the world",
	})

	minDistance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gravquad_min_distance",
		Help: "Closest-pair distance of the latest step",
	})

	resetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gravquad_resets_total",
		Help: "World resets requested over HTTP or WebSocket",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gravquad_connection_rejected_total",
		Help: "Requests or connections rejected",
	}, []string{"reason"}) // "rate_limit", "origin", "ws_ip_limit"

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gravquad_ws_connections",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gravquad_ws_messages_total",
		Help: "Total WebSocket broadcasts",
	})

	nearestQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gravquad_nearest_queries_total",
		Help: "Nearest-neighbour queries answered through the quadtree",
	})
)

// ObserveTick records one published snapshot. It is meant to be installed
// as the engine's OnTick hook.
func ObserveTick(s *engine.Snapshot) {
	if s.StepTime > 0 {
		RecordStep(s.StepTime)
	}
	bodyCount.Set(float64(len(s.Bodies)))
	if s.HasPair {
		minDistance.Set(s.MinDistance)
	}
}

func RecordStep(d time.Duration) {
	stepDuration.Observe(d.Seconds())
}

func RecordReset() {
	resetsTotal.Inc()
}

// RecordConnectionRejected increments the rejection counter.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

func RecordNearestQuery() {
	nearestQueries.Inc()
}
