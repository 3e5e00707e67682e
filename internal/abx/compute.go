package abx

import (
	"context"

	"github.com/23skdu/abx/internal/core"
	"github.com/23skdu/abx/internal/distance"
	"github.com/23skdu/abx/internal/dtw"
	"github.com/23skdu/abx/internal/errors"
	"github.com/23skdu/abx/internal/logging"
	"github.com/23skdu/abx/internal/pool"
	"github.com/23skdu/abx/internal/sparse"
	"github.com/rs/zerolog"
)

// DefaultWorkers is the worker count used when Options.Workers is zero.
const DefaultWorkers = 40

// Options configures ScoresOnGroups.
type Options struct {
	// Metric names the distance function ("euclidian" or "cosine").
	// Ignored when Distance is set.
	Metric string
	// Distance overrides Metric with an explicit function.
	Distance distance.Func
	// Symmetric marks A and X as the same group.
	Symmetric bool
	// Workers is the number of parallel workers; 0 means DefaultWorkers.
	Workers int
	// Aligner defaults to dtw.BatchAligner.
	Aligner dtw.Aligner
	// Logger defaults to a disabled logger.
	Logger zerolog.Logger
	// Progress is driven by worker 0 only. Optional.
	Progress pool.Progress
}

// ScoresOnGroups evaluates every unit of it and returns their 1 - theta
// scores in a sparse structure shaped like it.BoardSize().
//
// The distance function is resolved before any work is dispatched, so a bad
// metric name never reaches the aligner. Any unit failure fails the whole
// run and no partial result is returned.
func ScoresOnGroups(ctx context.Context, it core.GroupIterator, opts Options) (*sparse.Scores, error) {
	fn := opts.Distance
	if fn == nil {
		var err error
		fn, err = distance.FuncFromName(opts.Metric)
		if err != nil {
			return nil, errors.WrapConfigurationError(err, "scores_on_groups", "resolve distance function")
		}
	}

	workers := opts.Workers
	if workers == 0 {
		workers = DefaultWorkers
	}
	aligner := opts.Aligner
	if aligner == nil {
		aligner = dtw.NewBatchAligner(logging.Component(opts.Logger, "dtw"))
	}

	scorer := NewScorer(fn, aligner, opts.Logger)
	p := &pool.Pool{
		Workers:  workers,
		Logger:   logging.Component(opts.Logger, "pool"),
		Progress: opts.Progress,
	}

	opts.Logger.Info().
		Int("units", it.Len()).
		Ints("board", it.BoardSize()).
		Int("workers", workers).
		Bool("symmetric", opts.Symmetric).
		Msg("Computing ABX scores")

	results, err := p.Run(ctx, it, func(u core.Unit) (core.Scored, error) {
		return scorer.Evaluate(u, opts.Symmetric)
	})
	if err != nil {
		return nil, err
	}

	entries := make([]core.Scored, len(results))
	for i, r := range results {
		entries[i] = r.Scored
	}
	return sparse.Build(it.BoardSize(), entries)
}
