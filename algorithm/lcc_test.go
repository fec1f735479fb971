package algorithm

import (
	"math/rand"
	"testing"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortedView(t *testing.T, n int, edges [][2]graph.RawID) *graph.SortedGraphView {
	t.Helper()
	sv, err := graph.NewSortedView(buildView(t, n, edges, nil, graph.BuildOptions{Undirected: true}), randomScheduler())
	require.NoError(t, err)
	return sv
}

func TestLCCComplete(t *testing.T) {
	var edges [][2]graph.RawID
	for i := graph.RawID(0); i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			edges = append(edges, [2]graph.RawID{i, j})
		}
	}
	edges = append(edges, [2]graph.RawID{1, 2}, [2]graph.RawID{3, 3}) // Duplicate and self-loop.
	res, err := RunLCC(randomScheduler(), sortedView(t, 5, edges))
	require.NoError(t, err)
	for v, c := range res.Coefficients {
		assert.InDelta(t, 1.0, c, 1e-12, "vertex %d", v)
		assert.EqualValues(t, 6, res.Triangles[v])
	}
	assert.InDelta(t, 1.0, res.Mean, 1e-12)
}

func TestLCCTriangleFree(t *testing.T) {
	var edges [][2]graph.RawID // K3,3
	for i := graph.RawID(0); i < 3; i++ {
		for j := graph.RawID(3); j < 6; j++ {
			edges = append(edges, [2]graph.RawID{i, j})
		}
	}
	res, err := RunLCC(randomScheduler(), sortedView(t, 6, edges))
	require.NoError(t, err)
	for _, c := range res.Coefficients {
		assert.Zero(t, c)
	}
	assert.Zero(t, res.Mean)
}

func TestLCCTriangleWithPendant(t *testing.T) {
	res, err := RunLCC(randomScheduler(), sortedView(t, 4, [][2]graph.RawID{{0, 1}, {1, 2}, {2, 0}, {0, 3}}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1, 1, 0}, res.Coefficients, 1e-12)
	assert.InDelta(t, 7.0/12, res.Mean, 1e-12)
}

func bruteCoefficients(n int, edges [][2]graph.RawID) []float64 {
	adj := make([]map[int]bool, n)
	for i := range adj {
		adj[i] = map[int]bool{}
	}
	for _, e := range edges {
		if e[0] != e[1] {
			adj[e[0]][int(e[1])] = true
			adj[e[1]][int(e[0])] = true
		}
	}
	out := make([]float64, n)
	for v := 0; v < n; v++ {
		var nbrs []int
		for u := range adj[v] {
			nbrs = append(nbrs, u)
		}
		if len(nbrs) < 2 {
			continue
		}
		links := 0
		for i := range nbrs {
			for j := i + 1; j < len(nbrs); j++ {
				if adj[nbrs[i]][nbrs[j]] {
					links++
				}
			}
		}
		out[v] = 2 * float64(links) / float64(len(nbrs)*(len(nbrs)-1))
	}
	return out
}

func TestLCCMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for tcount := 0; tcount < 10; tcount++ {
		n := rng.Intn(60) + 3
		edges := randomEdges(rng, n, rng.Intn(5*n))
		res, err := RunLCC(randomScheduler(), sortedView(t, n, edges))
		require.NoError(t, err)
		assert.InDeltaSlice(t, bruteCoefficients(n, edges), res.Coefficients, 1e-12)
	}
}

func TestLCCNeedsUndirected(t *testing.T) {
	sv, err := graph.NewSortedView(buildView(t, 3, chain[:2], nil, graph.BuildOptions{Reverse: true}), randomScheduler())
	require.NoError(t, err)
	_, err = RunLCC(randomScheduler(), sv)
	assert.ErrorIs(t, err, graph.ErrUnsupportedOperation)
}
