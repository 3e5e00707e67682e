package groups

import (
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/23skdu/abx/internal/core"
	"github.com/23skdu/abx/internal/distance"
)

// SyntheticConfig describes a generated ABX board.
type SyntheticConfig struct {
	// Categories is the number of classes K; the board is K×K.
	Categories int
	// PerGroup is the number of sequences drawn per group.
	PerGroup int
	// MinSteps and MaxSteps bound the true sequence length.
	MinSteps int
	MaxSteps int
	// Dim is the feature dimension.
	Dim int
	// Noise is the standard deviation added to every feature.
	Noise float64
	// Symmetric makes X the same group as A.
	Symmetric bool
	// Normalize scales every frame to unit norm, as the cosine metric expects.
	Normalize bool
	Seed      uint64
}

// DefaultSyntheticConfig returns a small board that scores in well under a second.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Categories: 6,
		PerGroup:   4,
		MinSteps:   8,
		MaxSteps:   16,
		Dim:        12,
		Noise:      0.3,
		Seed:       1,
	}
}

// Synthetic generates one unit per ordered category pair (a, b), a != b, at
// coordinates (a, b). Members of a category are noisy, time-stretched copies
// of the category prototype. Units are built lazily and deterministically
// from the seed and their enumeration index.
type Synthetic struct {
	cfg        SyntheticConfig
	prototypes [][][]float64 // category -> step -> feature
}

// NewSynthetic validates cfg and draws the category prototypes.
func NewSynthetic(cfg SyntheticConfig) (*Synthetic, error) {
	switch {
	case cfg.Categories < 2:
		return nil, core.NewInvalidArgumentError("categories", fmt.Sprintf("need at least 2, got %d", cfg.Categories))
	case cfg.PerGroup < 1:
		return nil, core.NewInvalidArgumentError("per_group", fmt.Sprintf("must be positive, got %d", cfg.PerGroup))
	case cfg.Symmetric && cfg.PerGroup < 2:
		return nil, core.NewInvalidArgumentError("per_group", "symmetric boards need at least 2 sequences per group")
	case cfg.MinSteps < 1 || cfg.MaxSteps < cfg.MinSteps:
		return nil, core.NewInvalidArgumentError("steps", fmt.Sprintf("need 1 <= min <= max, got %d..%d", cfg.MinSteps, cfg.MaxSteps))
	case cfg.Dim < 1:
		return nil, core.NewInvalidArgumentError("dim", fmt.Sprintf("must be positive, got %d", cfg.Dim))
	case cfg.Noise < 0:
		return nil, core.NewInvalidArgumentError("noise", fmt.Sprintf("must not be negative, got %g", cfg.Noise))
	}

	r := rand.New(rand.NewPCG(cfg.Seed, ^uint64(0)))
	protos := make([][][]float64, cfg.Categories)
	// prototypes are random walks so neighbouring frames stay close and
	// time-stretched copies remain alignable
	for c := range protos {
		protos[c] = make([][]float64, cfg.MaxSteps)
		for t := range protos[c] {
			f := make([]float64, cfg.Dim)
			for k := range f {
				f[k] = r.NormFloat64()
				if t > 0 {
					f[k] = protos[c][t-1][k] + 0.5*f[k]
				}
			}
			protos[c][t] = f
		}
	}
	return &Synthetic{cfg: cfg, prototypes: protos}, nil
}

func (s *Synthetic) Len() int {
	k := s.cfg.Categories
	return k * (k - 1)
}

func (s *Synthetic) BoardSize() []int {
	return []int{s.cfg.Categories, s.cfg.Categories}
}

func (s *Synthetic) Groups() iter.Seq[core.Unit] {
	return func(yield func(core.Unit) bool) {
		idx := 0
		for a := 0; a < s.cfg.Categories; a++ {
			for b := 0; b < s.cfg.Categories; b++ {
				if a == b {
					continue
				}
				if !yield(s.unit(idx, a, b)) {
					return
				}
				idx++
			}
		}
	}
}

func (s *Synthetic) unit(idx, a, b int) core.Unit {
	r := rand.New(rand.NewPCG(s.cfg.Seed, uint64(idx)))
	ga := s.group(r, a)
	gb := s.group(r, b)
	gx := ga
	if !s.cfg.Symmetric {
		gx = s.group(r, a)
	}
	return core.Unit{Coords: []int{a, b}, A: ga, B: gb, X: gx}
}

// group draws PerGroup members of category c, zero-padded to MaxSteps.
func (s *Synthetic) group(r *rand.Rand, c int) core.Group {
	cfg := s.cfg
	proto := s.prototypes[c]
	batch := core.NewBatch(cfg.PerGroup, cfg.MaxSteps, cfg.Dim)
	lengths := make([]int, cfg.PerGroup)
	for i := range lengths {
		n := cfg.MinSteps + r.IntN(cfg.MaxSteps-cfg.MinSteps+1)
		lengths[i] = n
		for t := 0; t < n; t++ {
			src := proto[t*len(proto)/n]
			dst := batch.Frame(i, t)
			for k := range dst {
				dst[k] = src[k] + cfg.Noise*r.NormFloat64()
			}
		}
	}
	if cfg.Normalize {
		batch = distance.Normalize(batch)
	}
	return core.Group{Data: batch, Lengths: lengths}
}
