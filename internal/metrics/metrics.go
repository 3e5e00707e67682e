package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Distance and Alignment Metrics
// =============================================================================

var (
	// DistanceBatchSeconds measures one batch distance computation
	DistanceBatchSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "abx_distance_batch_seconds",
			Help:    "Latency of batch distance matrix computation by metric",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"metric"},
	)

	// AlignerCallsTotal counts batch alignments
	AlignerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abx_aligner_calls_total",
			Help: "Total number of batch DTW alignments by mode",
		},
		[]string{"mode"}, // plain, ignore_diag, symmetric
	)

	// AlignerPairsTotal counts sequence pairs actually aligned
	AlignerPairsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "abx_aligner_pairs_total",
			Help: "Total number of sequence pairs run through the DTW recurrence",
		},
	)
)

// =============================================================================
// Scoring and Pool Metrics
// =============================================================================

var (
	// UnitsScoredTotal counts evaluated units
	UnitsScoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "abx_units_scored_total",
			Help: "Total number of group units scored",
		},
	)

	// UnitScoreSeconds measures evaluation time of a single unit
	UnitScoreSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "abx_unit_score_seconds",
			Help:    "Latency of scoring one group unit",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)

	// PoolRunsTotal counts pool runs by outcome
	PoolRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abx_pool_runs_total",
			Help: "Total number of worker pool runs by outcome",
		},
		[]string{"outcome"}, // ok, error
	)

	// PoolWorkers reports the worker count of the most recent run
	PoolWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "abx_pool_workers",
			Help: "Number of workers used by the most recent pool run",
		},
	)

	// PoolRunSeconds measures a whole pool run
	PoolRunSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "abx_pool_run_seconds",
			Help:    "Wall time of a worker pool run from fan-out to sorted fan-in",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 12),
		},
	)
)
