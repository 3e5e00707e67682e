package core

import (
	"fmt"
	"iter"
)

// Batch is a dense row-major tensor of sequence features.
// A sequence batch has rank 3: (N, S, D) = (sequences, max steps, feature dim).
// Rows past a sequence's true length are padding.
type Batch struct {
	Shape []int
	Data  []float64
}

// NewBatch allocates a zeroed (n, s, d) batch.
func NewBatch(n, s, d int) Batch {
	return Batch{
		Shape: []int{n, s, d},
		Data:  make([]float64, n*s*d),
	}
}

// Rank returns the number of dimensions.
func (b Batch) Rank() int { return len(b.Shape) }

// Len returns the number of sequences (N).
func (b Batch) Len() int { return b.dim(0) }

// Steps returns the padded sequence length (S).
func (b Batch) Steps() int { return b.dim(1) }

// Dim returns the feature dimension (D).
func (b Batch) Dim() int { return b.dim(2) }

func (b Batch) dim(k int) int {
	if k >= len(b.Shape) {
		return 0
	}
	return b.Shape[k]
}

// Frame returns the feature vector of sequence i at step t.
// The returned slice aliases the batch data.
func (b Batch) Frame(i, t int) []float64 {
	d := b.Dim()
	off := (i*b.Steps() + t) * d
	return b.Data[off : off+d : off+d]
}

// Validate checks that the data length agrees with the shape.
func (b Batch) Validate() error {
	size := 1
	for _, s := range b.Shape {
		if s < 0 {
			return NewInvalidArgumentError("shape", fmt.Sprintf("negative dimension in %v", b.Shape))
		}
		size *= s
	}
	if len(b.Data) != size {
		return NewInvalidArgumentError("data", fmt.Sprintf("len %d does not match shape %v", len(b.Data), b.Shape))
	}
	return nil
}

// Group is a batch of sequences together with their unpadded lengths.
type Group struct {
	Data    Batch
	Lengths []int
}

// Len returns the number of sequences in the group.
func (g Group) Len() int { return g.Data.Len() }

// Unit is one ABX evaluation unit: where it lands in the score board and
// the three groups it compares.
type Unit struct {
	Coords []int
	A      Group
	B      Group
	X      Group
}

// Scored pairs a unit's coordinates with its reported score.
type Scored struct {
	Coords []int
	Score  float64
}

// Indexed is a Scored tagged with the unit's enumeration index.
type Indexed struct {
	Index int
	Scored
}

// GroupIterator enumerates evaluation units in a stable order.
type GroupIterator interface {
	// Len returns the number of units Groups yields.
	Len() int
	// BoardSize returns the shape of the coordinate space.
	BoardSize() []int
	// Groups yields every unit in enumeration order.
	Groups() iter.Seq[Unit]
}
