package pool

// Owner returns the rank of the worker that evaluates unit index.
func Owner(index, workers int) int {
	return index % workers
}

// Partition returns, for each worker rank, the unit indexes it owns in
// increasing order. Every index in [0, n) appears exactly once.
func Partition(n, workers int) [][]int {
	if workers < 1 {
		return nil
	}
	parts := make([][]int, workers)
	for rank := range parts {
		parts[rank] = make([]int, 0, (n-rank+workers-1)/workers)
	}
	for i := 0; i < n; i++ {
		r := Owner(i, workers)
		parts[r] = append(parts[r], i)
	}
	return parts
}
