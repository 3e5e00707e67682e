// Package abx computes ABX discrimination scores over DTW-aligned sequence
// groups.
//
// For one triplet of groups (A, B, X), theta is the fraction of
// (x, a, b) comparisons in which x is strictly closer to a than to b, with
// exact ties counted as one half. The reported score of a unit is 1 - theta.
//
// ScoresOnGroups runs a whole GroupIterator through the worker pool and
// assembles the results into a sparse.Scores addressed by unit coordinates.
package abx
