package dtw

import (
	"errors"
	"fmt"

	"github.com/23skdu/abx/internal/core"
	"github.com/23skdu/abx/internal/distance"
	"github.com/23skdu/abx/internal/metrics"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmptyGroup indicates a group with no sequences.
	ErrEmptyGroup = errors.New("dtw: group must contain at least one sequence")

	// ErrBadLength indicates a sequence length outside (0, max_steps].
	ErrBadLength = errors.New("dtw: sequence length out of range")
)

// Options configures one batch alignment.
type Options struct {
	// IgnoreDiagonal skips self-pairs (i, i) when both batches are the same group.
	IgnoreDiagonal bool
	// Symmetric computes the upper triangle only and mirrors it.
	Symmetric bool
}

func (o Options) mode() string {
	switch {
	case o.Symmetric:
		return "symmetric"
	case o.IgnoreDiagonal:
		return "ignore_diag"
	default:
		return "plain"
	}
}

// Aligner turns a per-frame distance matrix into per-sequence alignment costs.
type Aligner interface {
	Align(x, y core.Group, dist *distance.Matrix, opts Options) (*mat.Dense, error)
}

// BatchAligner is the default Aligner.
type BatchAligner struct {
	logger zerolog.Logger
}

// NewBatchAligner creates a BatchAligner that logs shape diagnostics to logger.
//
//nolint:gocritic // Logger passed by value for constructor simplicity
func NewBatchAligner(logger zerolog.Logger) *BatchAligner {
	return &BatchAligner{logger: logger}
}

// Align returns the (Nx, Ny) matrix of DTW costs between every sequence of x
// and every sequence of y.
func (a *BatchAligner) Align(x, y core.Group, dist *distance.Matrix, opts Options) (*mat.Dense, error) {
	if err := a.checkShapes(x, y, dist, opts); err != nil {
		return nil, err
	}
	metrics.AlignerCallsTotal.WithLabelValues(opts.mode()).Inc()

	nx, ny := x.Len(), y.Len()
	stride := dist.Shape[3]
	out := mat.NewDense(nx, ny, nil)
	pairs := 0
	for i := 0; i < nx; i++ {
		start := 0
		if opts.Symmetric {
			start = i
		}
		for j := start; j < ny; j++ {
			if opts.IgnoreDiagonal && i == j {
				continue
			}
			c, err := PathCost(dist.Pair(i, j), stride, x.Lengths[i], y.Lengths[j])
			if err != nil {
				return nil, err
			}
			pairs++
			out.Set(i, j, c)
			if opts.Symmetric && i != j {
				out.Set(j, i, c)
			}
		}
	}
	metrics.AlignerPairsTotal.Add(float64(pairs))
	return out, nil
}

func (a *BatchAligner) checkShapes(x, y core.Group, dist *distance.Matrix, opts Options) error {
	if x.Len() == 0 || y.Len() == 0 {
		return ErrEmptyGroup
	}
	if len(x.Lengths) != x.Len() || len(y.Lengths) != y.Len() {
		a.logger.Error().
			Ints("x_shape", x.Data.Shape).
			Int("x_lengths", len(x.Lengths)).
			Ints("y_shape", y.Data.Shape).
			Int("y_lengths", len(y.Lengths)).
			Msg("Length vector does not match batch size")
		if len(x.Lengths) != x.Len() {
			return core.NewShapeMismatchError("x lengths", []int{x.Len()}, []int{len(x.Lengths)})
		}
		return core.NewShapeMismatchError("y lengths", []int{y.Len()}, []int{len(y.Lengths)})
	}
	want := [4]int{x.Len(), y.Len(), x.Data.Steps(), y.Data.Steps()}
	if dist == nil || dist.Shape != want {
		var got []int
		if dist != nil {
			got = dist.Shape[:]
		}
		return core.NewShapeMismatchError("distance matrix", want[:], got)
	}
	if opts.Symmetric && x.Len() != y.Len() {
		return core.NewShapeMismatchError("symmetric alignment", []int{x.Len(), x.Len()}, []int{x.Len(), y.Len()})
	}
	if err := checkLengths(x); err != nil {
		return err
	}
	return checkLengths(y)
}

func checkLengths(g core.Group) error {
	steps := g.Data.Steps()
	for i, l := range g.Lengths {
		if l <= 0 || l > steps {
			return fmt.Errorf("%w: sequence %d has length %d, max steps %d", ErrBadLength, i, l, steps)
		}
	}
	return nil
}

// PathCost returns the DTW cost through the top-left n×m corner of a
// row-major distance block with the given row stride.
func PathCost(block []float64, stride, n, m int) (float64, error) {
	if n <= 0 || m <= 0 || m > stride || (n-1)*stride+m > len(block) {
		return 0, fmt.Errorf("%w: %dx%d in block of %d with stride %d", ErrBadLength, n, m, len(block), stride)
	}

	prev := make([]float64, m)
	curr := make([]float64, m)

	prev[0] = block[0]
	for t := 1; t < m; t++ {
		prev[t] = prev[t-1] + block[t]
	}
	for s := 1; s < n; s++ {
		row := block[s*stride : s*stride+m]
		curr[0] = prev[0] + row[0]
		for t := 1; t < m; t++ {
			curr[t] = row[t] + min3(prev[t], curr[t-1], prev[t-1])
		}
		prev, curr = curr, prev
	}
	return prev[m-1], nil
}

// min3 returns the minimum of three float64 values.
func min3(a, b, c float64) float64 {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
