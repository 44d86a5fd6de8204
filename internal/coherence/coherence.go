// Package coherence turns a merge tree into a verdict about a label set:
// cut the tree at the configured distance, measure cluster membership, and
// score how faithfully the tree reproduces the input distances.
package coherence

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"cohere/internal/distance"
	"cohere/internal/linkage"
)

// PassThreshold is the largest-cluster membership percentage at or above
// which a label set passes the coherence test.
const PassThreshold = 75.0

// RouteThreshold is the largest-cluster membership percentage at or above
// which a label set's artifacts are routed to the Pass output directories.
//
// This is deliberately lower than PassThreshold: sets between the two
// thresholds land in the Pass directories while their report text reads
// "fail". The two constants exist independently upstream and are kept
// separate here rather than silently unified.
const RouteThreshold = 66.0

// ErrEmptyTree indicates an evaluation request with no merges to work from.
var ErrEmptyTree = errors.New("coherence: empty merge tree")

// Verdict holds the derived statistics for one label set.
type Verdict struct {
	Cophenetic float64     // cophenetic correlation coefficient, in [-1, 1]
	Clusters   map[int]int // cluster id -> member count, ids numbered from 1
	LargestID  int         // id of the largest cluster
	LargestPct float64     // percentage of labels in the largest cluster
	Pass       bool        // coherence test: LargestPct >= PassThreshold
	Routed     bool        // output routing: LargestPct >= RouteThreshold
}

// Cut assigns each of the n leaves to a cluster by applying every merge
// whose height is at or below cutoff. Cluster ids are renumbered 1..k in
// order of first appearance over leaves 0..n-1, so the assignment is stable
// across runs.
func Cut(tree linkage.Tree, n int, cutoff float64) []int {
	// Parent links exist only for merges below the cutoff; every leaf's
	// cluster is the highest such ancestor.
	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
	}
	for i, m := range tree {
		if m.Height <= cutoff {
			id := n + i
			parent[m.A] = id
			parent[m.B] = id
		}
	}

	root := func(i int) int {
		for parent[i] != i {
			i = parent[i]
		}
		return i
	}

	assign := make([]int, n)
	ids := make(map[int]int)
	next := 1
	for leaf := 0; leaf < n; leaf++ {
		r := root(leaf)
		id, ok := ids[r]
		if !ok {
			id = next
			ids[r] = id
			next++
		}
		assign[leaf] = id
	}
	return assign
}

// CopheneticDistances returns, for every leaf pair in condensed order, the
// height of the merge at which the pair first shares a cluster in the full
// tree.
func CopheneticDistances(tree linkage.Tree, n int) []float64 {
	coph := make([]float64, distance.CondensedLen(n))
	members := make([][]int, 2*n-1)
	for i := 0; i < n; i++ {
		members[i] = []int{i}
	}
	for i, m := range tree {
		left := members[m.A]
		right := members[m.B]
		for _, a := range left {
			for _, b := range right {
				coph[distance.CondensedIndex(n, a, b)] = m.Height
			}
		}
		members[n+i] = append(append([]int{}, left...), right...)
	}
	return coph
}

// Coefficient correlates the tree's cophenetic distances against the
// original condensed distances (Pearson). Degenerate inputs with zero
// variance on either side yield 0 instead of NaN.
func Coefficient(tree linkage.Tree, dist []float64, n int) float64 {
	coph := CopheneticDistances(tree, n)
	if constant(coph) || constant(dist) {
		return 0
	}
	return stat.Correlation(coph, dist, nil)
}

// Evaluate cuts the tree at cutoff and derives the full verdict for a label
// set of n = len(tree)+1 leaves.
func Evaluate(tree linkage.Tree, dist []float64, cutoff float64) (Verdict, error) {
	if len(tree) == 0 {
		return Verdict{}, ErrEmptyTree
	}
	n := len(tree) + 1
	if want := distance.CondensedLen(n); len(dist) != want {
		return Verdict{}, fmt.Errorf("coherence: %d distances for %d leaves, want %d", len(dist), n, want)
	}

	assign := Cut(tree, n, cutoff)
	counts := make(map[int]int)
	for _, id := range assign {
		counts[id]++
	}

	largestID, largest := 0, 0
	for _, id := range sortedIDs(counts) {
		if counts[id] > largest {
			largestID, largest = id, counts[id]
		}
	}
	pct := 100 * float64(largest) / float64(n)

	return Verdict{
		Cophenetic: Coefficient(tree, dist, n),
		Clusters:   counts,
		LargestID:  largestID,
		LargestPct: pct,
		Pass:       pct >= PassThreshold,
		Routed:     pct >= RouteThreshold,
	}, nil
}

// sortedIDs returns the cluster ids in ascending order.
func sortedIDs(counts map[int]int) []int {
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}
