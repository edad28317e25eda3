package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Labels: strategy, engine, outcome (ok, degraded, unsuitable, invalid, error)
	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pairgen",
		Name:      "generation_duration_seconds",
		Help:      "Time spent generating one batch of comparison pairs",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"strategy", "engine", "outcome"})

	pairsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pairgen",
		Name:      "pairs_generated_total",
		Help:      "Comparison pairs returned to respondents",
	}, []string{"strategy"})

	degradedBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pairgen",
		Name:      "degraded_batches_total",
		Help:      "Batches holding fewer pairs than requested",
	}, []string{"strategy"})

	floorRelaxations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pairgen",
		Name:      "floor_relaxations_total",
		Help:      "Batches served below the strategy's configured floor",
	}, []string{"strategy"})

	unsuitableTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pairgen",
		Name:      "unsuitable_total",
		Help:      "Requests the strategy could not satisfy for the given reference",
	}, []string{"strategy"})
)
