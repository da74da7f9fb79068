package coaccess

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectedNPMI(joint, ma, mb, total float64) float64 {
	pJoint := joint / total
	pmi := math.Log(pJoint / ((ma / total) * (mb / total)))
	return pmi / -math.Log(pJoint)
}

func TestBuild_NotEnoughData(t *testing.T) {
	tests := []struct {
		name    string
		history []string
		window  int
	}{
		{"empty history", nil, 3},
		{"shorter than window", []string{"/a", "/b"}, 3},
		{"window of one", []string{"/a", "/b", "/a", "/b"}, 1},
		{"window of zero", []string{"/a", "/b"}, 0},
		{"negative window", []string{"/a", "/b"}, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(tt.history, tt.window)
			require.NotNil(t, g)
			assert.Equal(t, 0, g.Len())
			assert.Empty(t, g.Paths())
			assert.Equal(t, tt.window, g.WindowSize())
		})
	}
}

func TestBuild_WorkedExample(t *testing.T) {
	// Windows: {A,B,C} {B,C,A} {C,A,B} {A,B,D}
	// marginal A=4 B=4 C=3 D=1, joint AB=4 AC=3 BC=3 AD=1 BD=1.
	history := []string{"A", "B", "C", "A", "B", "D"}
	g := Build(history, 3)

	// A and B share every window: p(joint)=1 scores as a perfect association.
	score, ok := g.ScoreFor("A", "B")
	require.True(t, ok)
	assert.Equal(t, 1.0, score)

	// A-C, B-C, A-D and B-D are exactly independent (pmi = ln 1 = 0) and are dropped.
	for _, p := range [][2]string{{"A", "C"}, {"B", "C"}, {"A", "D"}, {"B", "D"}, {"C", "D"}} {
		_, ok := g.ScoreFor(p[0], p[1])
		assert.False(t, ok, "unexpected edge %s-%s", p[0], p[1])
	}

	assert.Equal(t, []Edge{{Neighbor: "B", Score: 1}}, g.NeighborsOf("A"))
	assert.Equal(t, []Edge{{Neighbor: "A", Score: 1}}, g.NeighborsOf("B"))
	assert.Empty(t, g.NeighborsOf("C"))
	assert.Empty(t, g.NeighborsOf("D"))
	assert.Equal(t, []string{"A", "B"}, g.Paths())
}

func TestBuild_NumericScores(t *testing.T) {
	// Window 2 over 8 entries gives 7 windows:
	// {A,B} {B,A} {A,B} {B,C} {C,D} {D,C} {C,D}
	history := []string{"A", "B", "A", "B", "C", "D", "C", "D"}
	g := Build(history, 2)

	want := expectedNPMI(3, 3, 4, 7)
	require.Greater(t, want, 0.0)

	ab, ok := g.ScoreFor("A", "B")
	require.True(t, ok)
	assert.InDelta(t, want, ab, 1e-12)

	cd, ok := g.ScoreFor("C", "D")
	require.True(t, ok)
	assert.InDelta(t, want, cd, 1e-12)

	// B and C meet once but are each common: negative association.
	require.Less(t, expectedNPMI(1, 4, 4, 7), 0.0)
	_, ok = g.ScoreFor("B", "C")
	assert.False(t, ok)
}

func TestBuild_RepeatsInsideWindowCountOnce(t *testing.T) {
	// Without collapsing, A would inflate its own marginal count.
	repeated := Build([]string{"A", "A", "A", "B", "C", "B", "C"}, 3)
	// Windows: {A} {A,B} {A,B,C} {B,C} {C,B}: marginal A=3 B=4 C=3, joint AB=2 AC=1 BC=3.
	require.LessOrEqual(t, expectedNPMI(2, 3, 4, 5), 0.0)
	_, ok := repeated.ScoreFor("A", "B")
	assert.False(t, ok)

	bc, ok := repeated.ScoreFor("B", "C")
	require.True(t, ok)
	assert.InDelta(t, expectedNPMI(3, 4, 3, 5), bc, 1e-12)
}

func TestBuild_SingleRepeatedPath(t *testing.T) {
	g := Build([]string{"/x", "/x", "/x", "/x"}, 2)
	assert.Equal(t, 0, g.Len())
}

func TestBuild_TwoPathsAlternating(t *testing.T) {
	// Every window holds both paths: the degenerate case must not leak NaN.
	g := Build([]string{"/a", "/b", "/a", "/b", "/a"}, 2)
	score, ok := g.ScoreFor("/a", "/b")
	require.True(t, ok)
	assert.False(t, math.IsNaN(score))
	assert.Equal(t, 1.0, score)
}

func TestBuild_TieBreakByNeighbor(t *testing.T) {
	// Hub H co-occurs with X and Y symmetrically.
	history := []string{"H", "X", "Q", "H", "Y", "Q", "H", "X", "Q", "H", "Y", "Q"}
	g := Build(history, 2)
	adj := g.NeighborsOf("H")
	for i := 1; i < len(adj); i++ {
		if adj[i-1].Score == adj[i].Score {
			assert.Less(t, adj[i-1].Neighbor, adj[i].Neighbor)
		}
	}
}

func randomHistory(r *rand.Rand, n, distinctPaths int) []string {
	h := make([]string, n)
	for i := range h {
		h[i] = fmt.Sprintf("/p%d", r.Intn(distinctPaths))
	}
	return h
}

func TestBuild_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for iter := 0; iter < 50; iter++ {
		history := randomHistory(r, 20+r.Intn(200), 2+r.Intn(12))
		window := 2 + r.Intn(5)
		g := Build(history, window)

		for _, from := range g.Paths() {
			adj := g.NeighborsOf(from)
			require.NotEmpty(t, adj)

			for i, e := range adj {
				// Score bound.
				assert.Greater(t, e.Score, 0.0)
				assert.LessOrEqual(t, e.Score, 1.0)
				assert.False(t, math.IsNaN(e.Score))

				// Symmetry.
				back, ok := g.ScoreFor(e.Neighbor, from)
				require.True(t, ok, "missing reverse edge %s->%s", e.Neighbor, from)
				assert.Equal(t, e.Score, back)

				// Ordering.
				if i > 0 {
					assert.GreaterOrEqual(t, adj[i-1].Score, e.Score)
				}
				assert.NotEqual(t, from, e.Neighbor)
			}
		}

		// Determinism.
		again := Build(history, window)
		assert.Equal(t, g.Paths(), again.Paths())
		for _, p := range g.Paths() {
			assert.Equal(t, g.NeighborsOf(p), again.NeighborsOf(p))
		}
	}
}

func TestBuild_DoesNotModifyHistory(t *testing.T) {
	history := []string{"/a", "/b", "/c", "/a"}
	snapshot := append([]string(nil), history...)
	Build(history, 2)
	assert.Equal(t, snapshot, history)
}

func TestScoreFor_Unknown(t *testing.T) {
	g := Build([]string{"/a", "/b", "/c", "/a", "/b"}, 2)
	_, ok := g.ScoreFor("/missing", "/a")
	assert.False(t, ok)
	_, ok = g.ScoreFor("/a", "/missing")
	assert.False(t, ok)
	assert.Empty(t, g.NeighborsOf("/missing"))
}

func TestNPMI(t *testing.T) {
	tests := []struct {
		name               string
		joint, ma, mb, tot int
		wantOK             bool
		wantScore          float64
	}{
		{"zero joint", 0, 1, 1, 4, false, 0},
		{"zero total", 1, 1, 1, 0, false, 0},
		{"every window", 5, 5, 5, 5, true, 1},
		{"independent", 1, 4, 1, 4, false, 0},
		{"exclusive pair", 2, 2, 2, 8, true, expectedNPMI(2, 2, 2, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := npmi(tt.joint, tt.ma, tt.mb, tt.tot)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.wantScore, got, 1e-12)
			}
		})
	}
}
