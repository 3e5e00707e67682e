package groups

import (
	"iter"
	"slices"

	"github.com/23skdu/abx/internal/core"
)

// Slice is an in-memory GroupIterator over a fixed list of units.
type Slice struct {
	board []int
	units []core.Unit
}

// NewSlice creates a Slice yielding units in the given order.
func NewSlice(board []int, units []core.Unit) *Slice {
	return &Slice{
		board: slices.Clone(board),
		units: units,
	}
}

func (s *Slice) Len() int { return len(s.units) }

func (s *Slice) BoardSize() []int { return slices.Clone(s.board) }

func (s *Slice) Groups() iter.Seq[core.Unit] {
	return func(yield func(core.Unit) bool) {
		for _, u := range s.units {
			if !yield(u) {
				return
			}
		}
	}
}
