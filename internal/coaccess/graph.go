// Package coaccess infers which directories are used together from a visit history.
//
// A sliding window of fixed size is moved across the chronological history and every
// pair of distinct paths that share a window is scored with normalized pointwise mutual
// information (NPMI). Only positive associations are kept.
package coaccess

import (
	"math"
	"sort"
)

// Edge is one weighted association from a path to a neighbor.
type Edge struct {
	Neighbor string
	Score    float64
}

// Graph is a symmetric co-access graph. It is immutable once built.
type Graph struct {
	edges      map[string][]Edge
	windowSize int
}

// pair is an unordered path pair, stored with A < B.
type pair struct {
	A, B string
}

func makePair(a, b string) pair {
	if b < a {
		a, b = b, a
	}
	return pair{A: a, B: b}
}

// Build computes the co-access graph of history using windows of windowSize entries.
//
// Histories shorter than windowSize, and window sizes below 2, produce an empty graph.
// Repeats of a path inside one window count once. The joint-count table grows with the
// square of the number of distinct paths that share windows, which is fine for personal
// history sizes but is the scaling limit of this approach.
func Build(history []string, windowSize int) *Graph {
	g := &Graph{
		edges:      make(map[string][]Edge),
		windowSize: windowSize,
	}
	if windowSize < 2 || len(history) < windowSize {
		return g
	}

	totalWindows := len(history) - windowSize + 1
	marginal := make(map[string]int)
	joint := make(map[pair]int)

	for start := 0; start < totalWindows; start++ {
		unique := distinct(history[start : start+windowSize])
		for _, p := range unique {
			marginal[p]++
		}
		for i := 0; i < len(unique); i++ {
			for j := i + 1; j < len(unique); j++ {
				joint[makePair(unique[i], unique[j])]++
			}
		}
	}

	for key, count := range joint {
		score, ok := npmi(count, marginal[key.A], marginal[key.B], totalWindows)
		if !ok {
			continue
		}
		g.edges[key.A] = append(g.edges[key.A], Edge{Neighbor: key.B, Score: score})
		g.edges[key.B] = append(g.edges[key.B], Edge{Neighbor: key.A, Score: score})
	}

	for _, adj := range g.edges {
		sort.Slice(adj, func(i, j int) bool {
			if adj[i].Score != adj[j].Score {
				return adj[i].Score > adj[j].Score
			}
			return adj[i].Neighbor < adj[j].Neighbor
		})
	}

	return g
}

// npmi scores a pair from window counts. It reports false for pairs that are not
// positively associated.
//
// A pair present in every window has p(joint) = 1, which makes the normalizer
// -ln(p(joint)) zero. Such a pair is maximally associated and scores 1.
func npmi(joint, marginalA, marginalB, total int) (float64, bool) {
	if joint <= 0 || total <= 0 {
		return 0, false
	}
	if joint == total {
		return 1, true
	}

	t := float64(total)
	pJoint := float64(joint) / t
	pA := float64(marginalA) / t
	pB := float64(marginalB) / t

	pmi := math.Log(pJoint / (pA * pB))
	score := pmi / -math.Log(pJoint)

	if math.IsNaN(score) || math.IsInf(score, 0) || score <= 0 {
		return 0, false
	}
	// Rounding can push a perfect association a hair above 1.
	return math.Min(score, 1), true
}

// distinct returns the unique paths of a window in first-seen order.
func distinct(window []string) []string {
	seen := make(map[string]struct{}, len(window))
	out := make([]string, 0, len(window))
	for _, p := range window {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// WindowSize returns the window size the graph was built with.
func (g *Graph) WindowSize() int {
	return g.windowSize
}

// Len returns the number of paths that have at least one edge.
func (g *Graph) Len() int {
	return len(g.edges)
}

// Paths returns every path with at least one edge, sorted.
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.edges))
	for p := range g.edges {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// NeighborsOf returns the edges of path ordered by score, strongest first.
// The returned slice must not be modified.
func (g *Graph) NeighborsOf(path string) []Edge {
	return g.edges[path]
}

// ScoreFor returns the score of the edge from one path to another.
func (g *Graph) ScoreFor(from, to string) (float64, bool) {
	for _, e := range g.NeighborsOf(from) {
		if e.Neighbor == to {
			return e.Score, true
		}
	}
	return 0, false
}
