// Package metrics exposes Prometheus counters for the generation retry
// loops.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all pose-gate collectors. Callers embedding the evaluator
// in a service can expose it on their metrics endpoint.
var Registry = prometheus.NewRegistry()

var (
	// GenerationAttempts counts issued generator calls by artifact kind.
	GenerationAttempts = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "posegate_generation_attempts_total",
		Help: "Generation attempts issued, by artifact kind.",
	}, []string{"artifact"})

	// GenerationPasses counts attempts that passed the quality gate.
	GenerationPasses = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "posegate_generation_passes_total",
		Help: "Generation attempts that passed validation, by artifact kind.",
	}, []string{"artifact"})

	// FallbackEngagements counts evaluations routed to the silhouette
	// fallback scorer.
	FallbackEngagements = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "posegate_silhouette_fallback_total",
		Help: "Evaluations scored by the silhouette fallback.",
	})

	// ScorerPanics counts contained scorer failures.
	ScorerPanics = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "posegate_scorer_panics_total",
		Help: "Scorer panics contained by the retry orchestrator.",
	})

	// StoreFailures counts failed audit-trail writes.
	StoreFailures = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "posegate_store_failures_total",
		Help: "Attempt persistence failures (logged, never blocking).",
	})
)
