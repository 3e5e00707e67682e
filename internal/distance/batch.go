package distance

import (
	"fmt"
	"math"
	"time"

	"github.com/23skdu/abx/internal/core"
	"github.com/23skdu/abx/internal/metrics"
	"gonum.org/v1/gonum/floats"
)

// Func computes all per-frame distances between two sequence batches.
type Func func(a, b core.Batch) (*Matrix, error)

// EuclideanBatch returns sqrt(Σ(a-b)²) over the feature axis for every frame
// pair of every sequence pair.
func EuclideanBatch(a, b core.Batch) (*Matrix, error) {
	return compute(NameEuclidean, a, b, euclideanFrame)
}

// CosineBatch returns acos(clamp(a·b, -1, 1))/π for every frame pair of every
// sequence pair. Frames must already be unit-normalized; this is not checked.
func CosineBatch(a, b core.Batch) (*Matrix, error) {
	return compute(NameCosine, a, b, cosineFrame)
}

func euclideanFrame(x, y []float64) float64 {
	return floats.Distance(x, y, 2)
}

func cosineFrame(x, y []float64) float64 {
	dot := floats.Dot(x, y)
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	return math.Acos(dot) / math.Pi
}

func compute(name string, a, b core.Batch, frame func(x, y []float64) float64) (*Matrix, error) {
	if err := checkPair(a, b); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		metrics.DistanceBatchSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	n1, s1 := a.Len(), a.Steps()
	n2, s2 := b.Len(), b.Steps()
	m := NewMatrix(n1, n2, s1, s2)
	for i := 0; i < n1; i++ {
		for j := 0; j < n2; j++ {
			block := m.Pair(i, j)
			for s := 0; s < s1; s++ {
				fa := a.Frame(i, s)
				row := block[s*s2 : (s+1)*s2]
				for t := range row {
					row[t] = frame(fa, b.Frame(j, t))
				}
			}
		}
	}
	return m, nil
}

func checkPair(a, b core.Batch) error {
	if a.Rank() != 3 || b.Rank() != 3 {
		return core.NewInvalidArgumentError("batch",
			fmt.Sprintf("sequence batches must have rank 3, got %d and %d", a.Rank(), b.Rank()))
	}
	if a.Dim() != b.Dim() {
		return core.NewInvalidArgumentError("batch",
			fmt.Sprintf("feature dimension mismatch: %d != %d", a.Dim(), b.Dim()))
	}
	if err := a.Validate(); err != nil {
		return err
	}
	return b.Validate()
}

// Normalize returns a copy of b with every frame scaled to unit L2 norm.
// All-zero frames, including padding, are left as zeros.
func Normalize(b core.Batch) core.Batch {
	out := core.Batch{
		Shape: append([]int(nil), b.Shape...),
		Data:  append([]float64(nil), b.Data...),
	}
	if out.Rank() != 3 || out.Dim() == 0 {
		return out
	}
	for i := 0; i < out.Len(); i++ {
		for t := 0; t < out.Steps(); t++ {
			f := out.Frame(i, t)
			if n := floats.Norm(f, 2); n > 0 {
				floats.Scale(1/n, f)
			}
		}
	}
	return out
}
