package pool

import (
	"cmp"
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"time"

	"github.com/23skdu/abx/internal/core"
	"github.com/23skdu/abx/internal/errors"
	"github.com/23skdu/abx/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// EvalFunc scores one unit.
type EvalFunc func(core.Unit) (core.Scored, error)

// Pool evaluates units on a fixed number of workers with static round-robin
// assignment. Results come back sorted by enumeration index, so the output
// does not depend on which worker finishes first.
type Pool struct {
	// Workers is the number of parallel workers; must be positive.
	Workers int
	Logger  zerolog.Logger
	// Progress, if set, is driven by worker 0 only.
	Progress Progress
}

type task struct {
	index int
	unit  core.Unit
}

// Run evaluates every unit of src. The first failure cancels the remaining
// workers and Run returns that error with no results.
func (p *Pool) Run(ctx context.Context, src core.GroupIterator, eval EvalFunc) ([]core.Indexed, error) {
	if p.Workers < 1 {
		return nil, core.NewInvalidArgumentError("workers", fmt.Sprintf("must be positive, got %d", p.Workers))
	}
	start := time.Now()
	metrics.PoolWorkers.Set(float64(p.Workers))

	parts := p.assign(src)
	total := src.Len()

	var (
		out []core.Indexed
		err error
	)
	if p.Workers == 1 {
		out, err = p.work(ctx, 0, total, parts[0], eval)
	} else {
		out, err = p.fanOut(ctx, total, parts, eval)
	}
	if err != nil {
		metrics.PoolRunsTotal.WithLabelValues("error").Inc()
		ev := p.Logger.Error().Err(err).Int("workers", p.Workers)
		var se *errors.StructuredError
		if stderrors.As(err, &se) {
			ev = ev.EmbedObject(se)
		}
		ev.Msg("Pool run failed")
		return nil, err
	}

	slices.SortFunc(out, func(a, b core.Indexed) int {
		return cmp.Compare(a.Index, b.Index)
	})

	metrics.PoolRunsTotal.WithLabelValues("ok").Inc()
	metrics.PoolRunSeconds.Observe(time.Since(start).Seconds())
	if p.Workers > 1 {
		p.Logger.Info().
			Int("units", len(out)).
			Dur("elapsed", time.Since(start)).
			Msg("All workers done")
	}
	return out, nil
}

// assign enumerates src once and deals each unit to its owner.
func (p *Pool) assign(src core.GroupIterator) [][]task {
	parts := make([][]task, p.Workers)
	i := 0
	for u := range src.Groups() {
		r := Owner(i, p.Workers)
		parts[r] = append(parts[r], task{index: i, unit: u})
		i++
	}
	return parts
}

func (p *Pool) fanOut(ctx context.Context, total int, parts [][]task, eval EvalFunc) ([]core.Indexed, error) {
	partial := make([][]core.Indexed, len(parts))

	g, gCtx := errgroup.WithContext(ctx)
	for rank := range parts {
		g.Go(func() error {
			res, err := p.work(gCtx, rank, total, parts[rank], eval)
			if err != nil {
				return err
			}
			partial[rank] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]core.Indexed, 0, total)
	for _, res := range partial {
		out = append(out, res...)
	}
	return out, nil
}

// work evaluates one worker's tasks in index order.
func (p *Pool) work(ctx context.Context, rank, total int, tasks []task, eval EvalFunc) (out []core.Indexed, err error) {
	report := rank == 0 && p.Progress != nil
	current := -1

	defer func() {
		if r := recover(); r != nil {
			p.Logger.Error().
				Interface("recover", r).
				Int("rank", rank).
				Int("index", current).
				Msg("PANIC in unit evaluation")
			out = nil
			err = errors.NewComputationError("evaluate", fmt.Sprintf("panic: %v", r)).
				WithContext("rank", rank).
				WithContext("index", current)
		}
	}()

	if report {
		p.Progress.Start(total)
	}
	out = make([]core.Indexed, 0, len(tasks))
	for _, t := range tasks {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		current = t.index
		if report {
			p.Progress.Update(t.index)
		}

		begin := time.Now()
		scored, evalErr := eval(t.unit)
		if evalErr != nil {
			return nil, classify(evalErr).
				WithContext("rank", rank).
				WithContext("index", t.index)
		}
		metrics.UnitScoreSeconds.Observe(time.Since(begin).Seconds())
		metrics.UnitsScoredTotal.Inc()

		out = append(out, core.Indexed{Index: t.index, Scored: scored})
	}
	if report {
		p.Progress.Finish()
	}
	if p.Workers > 1 && rank == 0 {
		p.Logger.Debug().Int("rank", rank).Msg("Worker done, waiting for others")
	}
	return out, nil
}

// classify wraps a unit failure: structural violations of the triplet are
// precondition errors, anything else is a computation error.
func classify(err error) *errors.StructuredError {
	var pe *core.ErrPrecondition
	if stderrors.As(err, &pe) {
		return errors.WrapPreconditionError(err, "evaluate", "unit precondition failed")
	}
	return errors.WrapComputationError(err, "evaluate", "unit evaluation failed")
}
