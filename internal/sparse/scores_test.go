package sparse

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/23skdu/abx/internal/core"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	shape := []int{4, 5, 3}

	var entries []core.Scored
	for a := 0; a < 4; a++ {
		for b := 0; b < 5; b++ {
			if (a+b)%2 == 0 {
				continue
			}
			entries = append(entries, core.Scored{Coords: []int{a, b, (a * b) % 3}, Score: r.Float64()})
		}
	}

	s, err := Build(shape, entries)
	require.NoError(t, err)
	assert.Equal(t, len(entries), s.Len())
	assert.Equal(t, shape, s.Shape())

	for _, e := range entries {
		got, ok := s.At(e.Coords...)
		require.True(t, ok, "coords %v", e.Coords)
		assert.Equal(t, e.Score, got)
	}

	_, ok := s.At(0, 0, 0)
	assert.False(t, ok, "unpopulated cell")
}

func TestBuild_CopiesInputs(t *testing.T) {
	shape := []int{2, 2}
	coords := []int{1, 0}
	s, err := Build(shape, []core.Scored{{Coords: coords, Score: 0.25}})
	require.NoError(t, err)

	shape[0], coords[0] = 9, 0
	assert.Equal(t, []int{2, 2}, s.Shape())
	v, ok := s.At(1, 0)
	assert.True(t, ok)
	assert.Equal(t, 0.25, v)
}

func TestBuild_CoordinateOutsideBoard(t *testing.T) {
	_, err := Build([]int{2, 2}, []core.Scored{{Coords: []int{2, 0}}})
	var sm *core.ErrShapeMismatch
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, []int{2, 2}, sm.Want)

	_, err = Build([]int{2, 2}, []core.Scored{{Coords: []int{0, -1}}})
	assert.True(t, errors.As(err, &sm))
}

func TestBuild_CoordinateRankMismatch(t *testing.T) {
	_, err := Build([]int{2, 2, 2}, []core.Scored{{Coords: []int{1, 1}}})
	var sm *core.ErrShapeMismatch
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, "coordinate rank", sm.What)
}

func TestBuild_DuplicateCoordinate(t *testing.T) {
	_, err := Build([]int{3}, []core.Scored{
		{Coords: []int{1}, Score: 0.1},
		{Coords: []int{1}, Score: 0.2},
	})
	assert.ErrorIs(t, err, ErrDuplicateCoordinate)
}

func TestBuild_HugeBoardOffsetOverflow(t *testing.T) {
	// distinct coordinates whose row-major offset wraps must not be
	// mistaken for duplicates
	shape := []int{math.MaxInt / 2, 4}
	_, err := Build(shape, []core.Scored{
		{Coords: []int{0, 0}, Score: 0.1},
		{Coords: []int{math.MaxInt/2 - 1, 3}, Score: 0.2},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateCoordinate)
	var sm *core.ErrShapeMismatch
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, "coordinate offset overflows int", sm.What)
}

func TestBuild_HugeBoardWithinInt(t *testing.T) {
	shape := []int{math.MaxInt / 4, 2}
	last := []int{math.MaxInt/4 - 1, 1}
	s, err := Build(shape, []core.Scored{
		{Coords: []int{0, 0}, Score: 0.1},
		{Coords: last, Score: 0.2},
	})
	require.NoError(t, err)
	v, ok := s.At(last...)
	require.True(t, ok)
	assert.Equal(t, 0.2, v)
}

func TestBuild_NegativeShape(t *testing.T) {
	_, err := Build([]int{2, -1}, nil)
	var ia *core.ErrInvalidArgument
	assert.True(t, errors.As(err, &ia))
}

func TestEntries_BuildOrder(t *testing.T) {
	entries := []core.Scored{
		{Coords: []int{2, 1}, Score: 0.5},
		{Coords: []int{0, 1}, Score: 0.25},
		{Coords: []int{1, 0}, Score: 1},
	}
	s, err := Build([]int{3, 2}, entries)
	require.NoError(t, err)

	var got []core.Scored
	for c, v := range s.Entries() {
		got = append(got, core.Scored{Coords: c, Score: v})
	}
	assert.Equal(t, entries, got)
}

func TestDense(t *testing.T) {
	s, err := Build([]int{2, 3}, []core.Scored{
		{Coords: []int{0, 2}, Score: 0.5},
		{Coords: []int{1, 0}, Score: 0.75},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0.5, 0.75, 0, 0}, s.Dense())
}

func TestRecord(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	s, err := Build([]int{3, 4}, []core.Scored{
		{Coords: []int{2, 1}, Score: 0.5},
		{Coords: []int{0, 3}, Score: 0.125},
	})
	require.NoError(t, err)

	rec := s.Record(mem)
	defer rec.Release()

	require.Equal(t, int64(2), rec.NumRows())
	require.Equal(t, int64(3), rec.NumCols())
	assert.Equal(t, "dim_0", rec.ColumnName(0))
	assert.Equal(t, "dim_1", rec.ColumnName(1))
	assert.Equal(t, ScoreColumn, rec.ColumnName(2))

	assert.Equal(t, []int64{2, 0}, rec.Column(0).(*array.Int64).Int64Values())
	assert.Equal(t, []int64{1, 3}, rec.Column(1).(*array.Int64).Int64Values())
	assert.Equal(t, []float64{0.5, 0.125}, rec.Column(2).(*array.Float64).Float64Values())

	md := rec.Schema().Metadata()
	idx := md.FindKey(ShapeKey)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "3,4", md.Values()[idx])
}
