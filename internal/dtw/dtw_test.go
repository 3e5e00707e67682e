package dtw_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/23skdu/abx/internal/core"
	"github.com/23skdu/abx/internal/distance"
	"github.com/23skdu/abx/internal/dtw"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scalarGroup builds a group of 1-D sequences padded with pad to the longest length.
func scalarGroup(pad float64, seqs ...[]float64) core.Group {
	steps := 0
	for _, s := range seqs {
		steps = max(steps, len(s))
	}
	b := core.NewBatch(len(seqs), steps, 1)
	lengths := make([]int, len(seqs))
	for i, s := range seqs {
		lengths[i] = len(s)
		for t := 0; t < steps; t++ {
			v := pad
			if t < len(s) {
				v = s[t]
			}
			b.Frame(i, t)[0] = v
		}
	}
	return core.Group{Data: b, Lengths: lengths}
}

func align(t *testing.T, x, y core.Group, opts dtw.Options) [][]float64 {
	t.Helper()
	dist, err := distance.EuclideanBatch(x.Data, y.Data)
	require.NoError(t, err)
	out, err := dtw.NewBatchAligner(zerolog.Nop()).Align(x, y, dist, opts)
	require.NoError(t, err)
	r, c := out.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = make([]float64, c)
		for j := range rows[i] {
			rows[i][j] = out.At(i, j)
		}
	}
	return rows
}

// TestPathCost_IdenticalSequences verifies zero cost on a perfect diagonal.
func TestPathCost_IdenticalSequences(t *testing.T) {
	block := []float64{
		0, 1, 2,
		1, 0, 1,
		2, 1, 0,
	}
	c, err := dtw.PathCost(block, 3, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c)
}

// TestPathCost_Recurrence checks a hand-computed 2x3 accumulation.
func TestPathCost_Recurrence(t *testing.T) {
	// D = [1 3 6; 5 2 3]
	block := []float64{
		1, 2, 3,
		4, 1, 1,
	}
	c, err := dtw.PathCost(block, 3, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, c)
}

// TestPathCost_UsesOnlyTopLeftCorner ensures padded frames never contribute.
func TestPathCost_UsesOnlyTopLeftCorner(t *testing.T) {
	block := []float64{
		1, 100,
		100, 100,
	}
	c, err := dtw.PathCost(block, 2, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c)
}

// TestPathCost_BadBounds rejects empty or out-of-block lengths.
func TestPathCost_BadBounds(t *testing.T) {
	block := make([]float64, 4)
	for _, nm := range [][2]int{{0, 1}, {1, 0}, {3, 1}, {1, 3}} {
		_, err := dtw.PathCost(block, 2, nm[0], nm[1])
		assert.ErrorIs(t, err, dtw.ErrBadLength, "n=%d m=%d", nm[0], nm[1])
	}
}

// TestAlign_Plain compares warped copies and a distant sequence.
func TestAlign_Plain(t *testing.T) {
	x := scalarGroup(0, []float64{1, 2, 3})
	y := scalarGroup(99, []float64{1, 2, 2, 3}, []float64{10, 10})

	got := align(t, x, y, dtw.Options{})
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0][0], "time-stretched copy aligns for free")
	// |1-10| + |2-10| + |3-10| along the only monotone path through a 3x2 block
	assert.Equal(t, 9.0+8.0+7.0, got[0][1])
}

// TestAlign_PaddingIgnored verifies that padding values do not leak into costs.
func TestAlign_PaddingIgnored(t *testing.T) {
	x := scalarGroup(0, []float64{1, 2})
	short := scalarGroup(1000, []float64{1, 2}, []float64{5, 5, 5, 5})
	long := scalarGroup(-1000, []float64{1, 2}, []float64{5, 5, 5, 5})

	assert.Equal(t, align(t, x, short, dtw.Options{}), align(t, x, long, dtw.Options{}))
}

// TestAlign_IgnoreDiagonal leaves self-pairs at zero.
func TestAlign_IgnoreDiagonal(t *testing.T) {
	g := scalarGroup(0, []float64{1, 1}, []float64{4, 4}, []float64{9})

	got := align(t, g, g, dtw.Options{IgnoreDiagonal: true})
	for i := range got {
		assert.Equal(t, 0.0, got[i][i])
	}
	assert.Equal(t, 6.0, got[0][1])
	assert.Equal(t, 6.0, got[1][0])
}

// TestAlign_SymmetricMatchesFull verifies mirroring equals computing every cell.
func TestAlign_SymmetricMatchesFull(t *testing.T) {
	g := scalarGroup(0, []float64{1, 3, 2}, []float64{4, 4}, []float64{9, 1, 1, 0})

	full := align(t, g, g, dtw.Options{IgnoreDiagonal: true})
	sym := align(t, g, g, dtw.Options{IgnoreDiagonal: true, Symmetric: true})
	assert.Equal(t, full, sym)
}

// TestAlign_SymmetricNeedsSquare rejects rectangular symmetric requests.
func TestAlign_SymmetricNeedsSquare(t *testing.T) {
	x := scalarGroup(0, []float64{1})
	y := scalarGroup(0, []float64{1}, []float64{2})
	dist, err := distance.EuclideanBatch(x.Data, y.Data)
	require.NoError(t, err)

	_, err = dtw.NewBatchAligner(zerolog.Nop()).Align(x, y, dist, dtw.Options{Symmetric: true})
	var sm *core.ErrShapeMismatch
	assert.True(t, errors.As(err, &sm))
}

// TestAlign_LengthVectorMismatchIsLogged checks the diagnostic precedes the failure.
func TestAlign_LengthVectorMismatchIsLogged(t *testing.T) {
	var buf bytes.Buffer
	aligner := dtw.NewBatchAligner(zerolog.New(&buf))

	x := scalarGroup(0, []float64{1}, []float64{2})
	x.Lengths = x.Lengths[:1]
	y := scalarGroup(0, []float64{1})
	dist, err := distance.EuclideanBatch(x.Data, y.Data)
	require.NoError(t, err)

	_, err = aligner.Align(x, y, dist, dtw.Options{})
	var sm *core.ErrShapeMismatch
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, "x lengths", sm.What)
	assert.Contains(t, buf.String(), "Length vector does not match batch size")
	assert.Contains(t, buf.String(), `"x_shape":[2,1,1]`)
}

// TestAlign_BadLengthValue rejects zero and over-long lengths.
func TestAlign_BadLengthValue(t *testing.T) {
	x := scalarGroup(0, []float64{1, 2})
	y := scalarGroup(0, []float64{1})
	dist, err := distance.EuclideanBatch(x.Data, y.Data)
	require.NoError(t, err)
	aligner := dtw.NewBatchAligner(zerolog.Nop())

	x.Lengths[0] = 3
	_, err = aligner.Align(x, y, dist, dtw.Options{})
	assert.ErrorIs(t, err, dtw.ErrBadLength)

	x.Lengths[0] = 0
	_, err = aligner.Align(x, y, dist, dtw.Options{})
	assert.ErrorIs(t, err, dtw.ErrBadLength)
}

// TestAlign_DistanceShapeMismatch rejects a matrix computed for other batches.
func TestAlign_DistanceShapeMismatch(t *testing.T) {
	x := scalarGroup(0, []float64{1, 2})
	y := scalarGroup(0, []float64{1})
	dist, err := distance.EuclideanBatch(y.Data, x.Data)
	require.NoError(t, err)

	_, err = dtw.NewBatchAligner(zerolog.Nop()).Align(x, y, dist, dtw.Options{})
	var sm *core.ErrShapeMismatch
	assert.True(t, errors.As(err, &sm))
}

// TestAlign_EmptyGroup rejects groups without sequences.
func TestAlign_EmptyGroup(t *testing.T) {
	x := core.Group{Data: core.NewBatch(0, 2, 1)}
	y := scalarGroup(0, []float64{1})

	_, err := dtw.NewBatchAligner(zerolog.Nop()).Align(x, y, distance.NewMatrix(0, 1, 2, 1), dtw.Options{})
	assert.ErrorIs(t, err, dtw.ErrEmptyGroup)
}
