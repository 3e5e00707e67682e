package distance

import (
	"fmt"

	"github.com/23skdu/abx/internal/core"
)

// Metric selects the per-frame distance used to build a Matrix.
type Metric int

const (
	// Euclidean is the L2 distance between frames.
	Euclidean Metric = iota
	// Cosine is the angular distance acos(a·b)/π between unit frames.
	Cosine
)

// Names are part of the command-line and environment surface.
// "euclidian" keeps the historical spelling used by existing ABX tooling.
const (
	NameEuclidean = "euclidian"
	NameCosine    = "cosine"
)

func (m Metric) String() string {
	switch m {
	case Euclidean:
		return NameEuclidean
	case Cosine:
		return NameCosine
	default:
		return "unknown"
	}
}

// Parse resolves a metric name. Any name outside the enumerated set is an
// invalid argument.
func Parse(name string) (Metric, error) {
	switch name {
	case NameEuclidean:
		return Euclidean, nil
	case NameCosine:
		return Cosine, nil
	default:
		return 0, core.NewInvalidArgumentError("metric",
			fmt.Sprintf("invalid distance mode %q, want %q or %q", name, NameEuclidean, NameCosine))
	}
}

// Func returns the batch distance function for the metric.
func (m Metric) Func() (Func, error) {
	switch m {
	case Euclidean:
		return EuclideanBatch, nil
	case Cosine:
		return CosineBatch, nil
	default:
		return nil, core.NewInvalidArgumentError("metric", fmt.Sprintf("unknown metric %d", int(m)))
	}
}

// FuncFromName is Parse followed by Func.
func FuncFromName(name string) (Func, error) {
	m, err := Parse(name)
	if err != nil {
		return nil, err
	}
	return m.Func()
}
