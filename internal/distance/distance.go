// Package distance converts raw pairwise similarity scores into the bounded
// distance metric the clustering stages consume. Scores arrive as the
// serialized upper triangle (diagonal excluded) of the label x label
// similarity matrix, in row-major order.
package distance

import (
	"errors"
	"math"
)

// ErrEmptyScores indicates a score set with no entries.
var ErrEmptyScores = errors.New("distance: score set is empty")

// roundDigits is the number of decimal digits kept after normalization.
// Trimming here suppresses floating-point noise before linkage so that
// equal similarities produce exactly equal distances.
const roundDigits = 6

// CondensedLen returns the expected number of condensed (upper-triangular)
// entries for n labels.
func CondensedLen(n int) int {
	return n * (n - 1) / 2
}

// CondensedIndex returns the position of pair (i, j), i != j, within the
// condensed distance slice for n labels.
func CondensedIndex(n, i, j int) int {
	if i > j {
		i, j = j, i
	}
	return n*i - i*(i+1)/2 + j - i - 1
}

// Normalize maps similarity scores onto distances in [0, 1]: min-max
// normalize, round to 6 decimal digits, then invert (distance = 1 - norm).
//
// When every score is identical the min-max range is zero; rather than
// dividing by zero, all normalized values are taken as 0, which yields a
// uniform maximal distance of 1 for every pair.
func Normalize(scores []float64) ([]float64, error) {
	if len(scores) == 0 {
		return nil, ErrEmptyScores
	}

	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	rng := max - min

	dist := make([]float64, len(scores))
	for i, s := range scores {
		var norm float64
		if rng != 0 {
			norm = round((s - min) / rng)
		}
		dist[i] = 1 - norm
	}
	return dist, nil
}

func round(v float64) float64 {
	shift := math.Pow(10, roundDigits)
	return math.Round(v*shift) / shift
}
