package algorithm

import (
	"context"
	"math/rand"
	"testing"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/store/memstore"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
)

// Dense ids equal raw ids: memstore.FromEdges inserts vertices 0..n-1 in order.
func buildView(t *testing.T, n int, edges [][2]graph.RawID, weights []float64, opts graph.BuildOptions) *graph.GraphView {
	t.Helper()
	if weights != nil {
		opts.WeightField = graph.DEFAULT_WEIGHT_FIELD
		if opts.WeightKind == graph.NoWeight {
			opts.WeightKind = graph.FloatWeight
		}
	}
	g, err := graph.Build(context.Background(), memstore.FromEdges(n, edges, weights), graph.LabelFilter{}, opts)
	require.NoError(t, err)
	return g
}

func randomScheduler() *graph.Scheduler {
	return graph.NewScheduler(uint32(rand.Intn(8-1) + 1))
}

// m random edges without self-loops; duplicates are possible.
func randomEdges(rng *rand.Rand, n, m int) [][2]graph.RawID {
	edges := make([][2]graph.RawID, 0, m)
	for len(edges) < m {
		src, dst := rng.Intn(n), rng.Intn(n)
		if src == dst {
			continue
		}
		edges = append(edges, [2]graph.RawID{graph.RawID(src), graph.RawID(dst)})
	}
	return edges
}

func gonumDirected(n int, edges [][2]graph.RawID) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		dg.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		dg.SetEdge(simple.Edge{F: simple.Node(e[0]), T: simple.Node(e[1])})
	}
	return dg
}

func gonumUndirected(n int, edges [][2]graph.RawID) *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		ug.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		ug.SetEdge(simple.Edge{F: simple.Node(e[0]), T: simple.Node(e[1])})
	}
	return ug
}

// Unique directed edges, so gonum and the view agree on out-degrees.
func dedupe(edges [][2]graph.RawID) (out [][2]graph.RawID) {
	seen := make(map[[2]graph.RawID]bool)
	for _, e := range edges {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
