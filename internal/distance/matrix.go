package distance

// Matrix holds per-frame distances between every sequence pair of two
// batches. Shape is (N1, N2, S1, S2), stored row-major.
type Matrix struct {
	Shape [4]int
	Data  []float64
}

// NewMatrix allocates a zeroed matrix.
func NewMatrix(n1, n2, s1, s2 int) *Matrix {
	return &Matrix{
		Shape: [4]int{n1, n2, s1, s2},
		Data:  make([]float64, n1*n2*s1*s2),
	}
}

// At returns the distance between frame s of sequence i and frame t of
// sequence j.
func (m *Matrix) At(i, j, s, t int) float64 {
	return m.Pair(i, j)[s*m.Shape[3]+t]
}

// Pair returns the S1×S2 block for sequences (i, j), row-major with stride S2.
// The block aliases the matrix data.
func (m *Matrix) Pair(i, j int) []float64 {
	block := m.Shape[2] * m.Shape[3]
	off := (i*m.Shape[1] + j) * block
	return m.Data[off : off+block : off+block]
}
