package sparse

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/23skdu/abx/internal/core"
)

// ErrDuplicateCoordinate indicates two entries addressed the same cell.
var ErrDuplicateCoordinate = errors.New("sparse: duplicate coordinate")

// Scores is a sparse COO array of ABX scores with a declared shape.
// Entries keep the order they were built in.
type Scores struct {
	shape  []int
	coords [][]int
	values []float64
	index  map[int]int // row-major offset -> entry position
}

// Build assembles entries into a Scores of the given shape. Every coordinate
// must have one component per dimension and lie inside the shape.
func Build(shape []int, entries []core.Scored) (*Scores, error) {
	for k, s := range shape {
		if s < 0 {
			return nil, core.NewInvalidArgumentError("shape", fmt.Sprintf("dimension %d is negative: %v", k, shape))
		}
	}

	s := &Scores{
		shape:  append([]int(nil), shape...),
		coords: make([][]int, 0, len(entries)),
		values: make([]float64, 0, len(entries)),
		index:  make(map[int]int, len(entries)),
	}
	for _, e := range entries {
		off, err := s.offset(e.Coords)
		if err != nil {
			return nil, err
		}
		if prev, dup := s.index[off]; dup {
			return nil, fmt.Errorf("%w: %v (entries %d and %d)", ErrDuplicateCoordinate, e.Coords, prev, len(s.values))
		}
		s.index[off] = len(s.values)
		s.coords = append(s.coords, append([]int(nil), e.Coords...))
		s.values = append(s.values, e.Score)
	}
	return s, nil
}

func (s *Scores) offset(coords []int) (int, error) {
	if len(coords) != len(s.shape) {
		return 0, core.NewShapeMismatchError("coordinate rank", []int{len(s.shape)}, []int{len(coords)})
	}
	off := 0
	for k, c := range coords {
		if c < 0 || c >= s.shape[k] {
			return 0, core.NewShapeMismatchError("coordinate within board", s.shape, coords)
		}
		if off > (math.MaxInt-c)/s.shape[k] {
			return 0, core.NewShapeMismatchError("coordinate offset overflows int", s.shape, coords)
		}
		off = off*s.shape[k] + c
	}
	return off, nil
}

// Shape returns a copy of the declared shape.
func (s *Scores) Shape() []int {
	return append([]int(nil), s.shape...)
}

// Len returns the number of populated entries.
func (s *Scores) Len() int {
	return len(s.values)
}

// At returns the score stored at coords and whether the cell is populated.
func (s *Scores) At(coords ...int) (float64, bool) {
	off, err := s.offset(coords)
	if err != nil {
		return 0, false
	}
	i, ok := s.index[off]
	if !ok {
		return 0, false
	}
	return s.values[i], true
}

// Entries yields every populated cell in build order.
// The coordinate slice must not be modified.
func (s *Scores) Entries() iter.Seq2[[]int, float64] {
	return func(yield func([]int, float64) bool) {
		for i, c := range s.coords {
			if !yield(c, s.values[i]) {
				return
			}
		}
	}
}

// Dense returns the scores as a row-major array of the full shape, with
// unpopulated cells set to zero.
func (s *Scores) Dense() []float64 {
	size := 1
	for _, d := range s.shape {
		size *= d
	}
	out := make([]float64, size)
	for off, i := range s.index {
		out[off] = s.values[i]
	}
	return out
}
