package abx

import (
	"fmt"

	"github.com/23skdu/abx/internal/core"
	"github.com/23skdu/abx/internal/distance"
	"github.com/23skdu/abx/internal/dtw"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// Scorer computes theta for (A, B, X) triplets with a fixed distance
// function and aligner.
type Scorer struct {
	distance distance.Func
	aligner  dtw.Aligner
	logger   zerolog.Logger
}

// NewScorer creates a Scorer.
//
//nolint:gocritic // Logger passed by value for constructor simplicity
func NewScorer(fn distance.Func, aligner dtw.Aligner, logger zerolog.Logger) *Scorer {
	return &Scorer{
		distance: fn,
		aligner:  aligner,
		logger:   logger,
	}
}

// CheckTriplet verifies that A, B and X are sequence batches of the same rank
// and feature dimension.
func CheckTriplet(a, b, x core.Batch) error {
	if a.Rank() != b.Rank() || a.Rank() != x.Rank() {
		return core.NewPreconditionError("rank",
			fmt.Sprintf("a=%d b=%d x=%d", a.Rank(), b.Rank(), x.Rank()))
	}
	if a.Rank() != 3 {
		return core.NewPreconditionError("rank", fmt.Sprintf("want 3, got %d", a.Rank()))
	}
	if a.Dim() != x.Dim() || a.Dim() != b.Dim() {
		return core.NewPreconditionError("feature_dim",
			fmt.Sprintf("a=%d b=%d x=%d", a.Dim(), b.Dim(), x.Dim()))
	}
	return nil
}

// Theta returns the discrimination probability of the triplet.
//
// With symmetric set, A and X are the same group: the aligner is asked to
// skip self-pairs and the diagonal is masked out of both the comparison and
// the normalization.
func (s *Scorer) Theta(a, b, x core.Group, symmetric bool) (float64, error) {
	if err := CheckTriplet(a.Data, b.Data, x.Data); err != nil {
		return 0, err
	}
	if a.Len() == 0 || b.Len() == 0 || x.Len() == 0 {
		return 0, core.NewPreconditionError("non_empty",
			fmt.Sprintf("a=%d b=%d x=%d", a.Len(), b.Len(), x.Len()))
	}
	if symmetric && a.Len() != x.Len() {
		return 0, core.NewPreconditionError("symmetric_size",
			fmt.Sprintf("symmetric mode needs |A| == |X|, got %d and %d", a.Len(), x.Len()))
	}

	dxb, err := s.groupCosts(x, b, dtw.Options{})
	if err != nil {
		return 0, err
	}
	dxa, err := s.groupCosts(x, a, dtw.Options{IgnoreDiagonal: symmetric, Symmetric: symmetric})
	if err != nil {
		return 0, err
	}
	return theta(dxa, dxb, symmetric), nil
}

// groupCosts computes the alignment cost matrix between every sequence of x
// and every sequence of y.
func (s *Scorer) groupCosts(x, y core.Group, opts dtw.Options) (*mat.Dense, error) {
	if len(x.Lengths) != x.Len() || len(y.Lengths) != y.Len() {
		s.logger.Error().
			Ints("x_shape", x.Data.Shape).
			Int("x_lengths", len(x.Lengths)).
			Ints("y_shape", y.Data.Shape).
			Int("y_lengths", len(y.Lengths)).
			Msg("Length vector does not match batch size")
		return nil, core.NewShapeMismatchError("lengths",
			[]int{x.Len(), y.Len()}, []int{len(x.Lengths), len(y.Lengths)})
	}

	dist, err := s.distance(x.Data, y.Data)
	if err != nil {
		return nil, err
	}
	costs, err := s.aligner.Align(x, y, dist, opts)
	if err != nil {
		return nil, err
	}
	if r, c := costs.Dims(); r != x.Len() || c != y.Len() {
		return nil, core.NewShapeMismatchError("alignment costs", []int{x.Len(), y.Len()}, []int{r, c})
	}
	return costs, nil
}

// theta counts, for every x row, how often dxa[x][a] beats dxb[x][b].
func theta(dxa, dxb mat.Matrix, symmetric bool) float64 {
	nx, na := dxa.Dims()
	_, nb := dxb.Dims()

	var wins, ties int
	for i := 0; i < nx; i++ {
		for j := 0; j < na; j++ {
			if symmetric && i == j {
				continue
			}
			da := dxa.At(i, j)
			for k := 0; k < nb; k++ {
				switch db := dxb.At(i, k); {
				case da < db:
					wins++
				case da == db:
					ties++
				}
			}
		}
	}

	var positives int
	if symmetric {
		positives = offDiagonalPairs(na)
	} else {
		positives = na * nx
	}
	return (float64(wins) + 0.5*float64(ties)) / float64(positives*nb)
}

// offDiagonalPairs is the number of (x, a) pairs with x != a when X is A.
// It is zero for a single-member group, which makes theta NaN.
func offDiagonalPairs(n int) int {
	return n * (n - 1)
}
