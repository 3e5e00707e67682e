// Package dtw aligns batches of variable-length sequences with Dynamic Time
// Warping, starting from a precomputed per-frame distance matrix.
//
// For every sequence pair (i, j) the aligner runs the classic recurrence
//
//	D[0][0] = d[0][0]
//	D[s][t] = d[s][t] + min(D[s-1][t], D[s][t-1], D[s-1][t-1])
//
// over the top-left len_i × len_j block of distance.Pair(i, j), so padded
// frames never take part. The pair cost is D[len_i-1][len_j-1], unnormalized.
//
// Two options adapt the batch loop for within-group comparisons:
//   - IgnoreDiagonal skips (i, i); the cell is left at 0 and callers must
//     mask it.
//   - Symmetric computes only j >= i and mirrors the upper triangle.
//
// Only two DP rows are kept per pair, so memory is O(len_j).
package dtw
