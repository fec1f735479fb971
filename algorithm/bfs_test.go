package algorithm

import (
	"math/rand"
	"testing"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

func TestBFSMatchesReachability(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for tcount := 0; tcount < 10; tcount++ {
		n := rng.Intn(200) + 2
		edges := randomEdges(rng, n, rng.Intn(3*n))
		g := buildView(t, n, edges, nil, graph.BuildOptions{})
		root := uint32(rng.Intn(n))

		depth := map[int64]int{}
		bf := traverse.BreadthFirst{}
		bf.Walk(gonumDirected(n, edges), simple.Node(root), func(node gonum.Node, d int) bool {
			depth[node.ID()] = d
			return false
		})

		res, err := RunBFS(randomScheduler(), g, root)
		require.NoError(t, err)
		assert.EqualValues(t, len(depth), res.Discovered)
		for v := uint32(0); v < uint32(n); v++ {
			d, reachable := depth[int64(v)]
			if !reachable {
				assert.Equal(t, UNVISITED, res.Parent[v], "vertex %d", v)
				continue
			}
			require.NotEqual(t, UNVISITED, res.Parent[v], "vertex %d", v)
			if v == root {
				assert.Equal(t, root, res.Parent[v])
				continue
			}
			p := res.Parent[v]
			assert.Equal(t, d-1, depth[int64(p)], "parent of %d is one level up", v)
			hasEdge := false
			for _, e := range g.OutEdges(p) {
				hasEdge = hasEdge || e.Didx == v
			}
			assert.True(t, hasEdge, "parent edge %d->%d", p, v)
		}

		again, err := RunBFS(randomScheduler(), g, root)
		require.NoError(t, err)
		assert.Equal(t, res.Discovered, again.Discovered)
	}
}
