// Package linkage performs average-linkage hierarchical agglomerative
// clustering over a condensed distance matrix, producing the merge tree
// consumed by the coherence evaluation.
package linkage

import (
	"fmt"
	"math"

	"cohere/internal/distance"
)

// Merge records a single agglomeration step. A and B are the cluster ids
// being merged: original leaves are 0..n-1, composite clusters are numbered
// n, n+1, ... in creation order. Height is the average-linkage distance at
// which the merge happened; Size is the member count of the new cluster.
type Merge struct {
	A, B   int
	Height float64
	Size   int
}

// Tree is the full merge history: exactly n-1 merges for n leaves.
// The cluster created by Tree[i] has id n+i.
type Tree []Merge

// ShapeError reports a condensed distance slice whose length does not match
// the triangular count implied by the label count.
type ShapeError struct {
	Labels int
	Got    int
	Want   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("linkage: %d distances for %d labels, want %d", e.Got, e.Labels, e.Want)
}

// Build runs average-linkage clustering over dist, the condensed
// upper-triangular distances for n leaves.
//
// At each step the two active clusters with the smallest average pairwise
// distance merge; ties resolve to the lowest (A, B) id pair, so the result
// is deterministic. Inter-cluster distances are maintained with the
// Lance-Williams update for the average method:
//
//	d(new, k) = (n_a*d(a,k) + n_b*d(b,k)) / (n_a + n_b)
//
// Merge heights that come out negative through floating-point cancellation
// are clamped to exactly 0.
func Build(dist []float64, n int) (Tree, error) {
	if want := distance.CondensedLen(n); len(dist) != want || n < 2 {
		return nil, &ShapeError{Labels: n, Got: len(dist), Want: want}
	}

	total := 2*n - 1 // leaves plus composites
	active := make([]bool, total)
	size := make([]int, total)
	for i := 0; i < n; i++ {
		active[i] = true
		size[i] = 1
	}

	// Working inter-cluster distances, keyed by cluster-id pair. Seeded
	// from the condensed input; grows as composites appear.
	d := newDistTable(dist, n, total)

	tree := make(Tree, 0, n-1)
	for step := 0; step < n-1; step++ {
		limit := n + step
		best := math.Inf(1)
		bi, bj := -1, -1
		for i := 0; i < limit; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < limit; j++ {
				if !active[j] {
					continue
				}
				if dij := d.get(i, j); dij < best {
					best = dij
					bi, bj = i, j
				}
			}
		}

		id := n + step
		if best < 0 {
			best = 0
		}
		tree = append(tree, Merge{A: bi, B: bj, Height: best, Size: size[bi] + size[bj]})

		size[id] = size[bi] + size[bj]
		active[bi] = false
		active[bj] = false
		active[id] = true

		na := float64(size[bi])
		nb := float64(size[bj])
		for k := 0; k < id; k++ {
			if !active[k] {
				continue
			}
			dk := (na*d.get(bi, k) + nb*d.get(bj, k)) / (na + nb)
			d.set(id, k, dk)
		}
	}

	if len(tree)+1 != n {
		return nil, fmt.Errorf("linkage: built %d merges for %d leaves", len(tree), n)
	}
	return tree, nil
}

// Leaves returns the original leaf ids under cluster id, for a tree over n
// leaves. A leaf id returns itself.
func (t Tree) Leaves(id, n int) []int {
	if id < n {
		return []int{id}
	}
	m := t[id-n]
	return append(t.Leaves(m.A, n), t.Leaves(m.B, n)...)
}

// distTable stores pairwise distances between clusters: condensed layout for
// leaf-leaf pairs, a map for pairs involving composite clusters.
type distTable struct {
	condensed []float64
	n         int
	extended  map[[2]int]float64
}

func newDistTable(dist []float64, n, total int) *distTable {
	c := make([]float64, len(dist))
	copy(c, dist)
	return &distTable{condensed: c, n: n, extended: make(map[[2]int]float64, total)}
}

func (t *distTable) get(i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	if j < t.n {
		return t.condensed[distance.CondensedIndex(t.n, i, j)]
	}
	return t.extended[[2]int{i, j}]
}

func (t *distTable) set(i, j int, v float64) {
	if i > j {
		i, j = j, i
	}
	if j < t.n {
		t.condensed[distance.CondensedIndex(t.n, i, j)] = v
		return
	}
	t.extended[[2]int{i, j}] = v
}
