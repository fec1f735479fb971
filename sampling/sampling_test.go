package sampling

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/ScottSallinen/snapolap/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomScheduler() *graph.Scheduler {
	return graph.NewScheduler(uint32(rand.Intn(8-1) + 1))
}

// A store with a "f" feature and "class" label on every vertex.
func featureView(t *testing.T, n int, edges [][2]graph.RawID, opts graph.BuildOptions) *graph.GraphView {
	t.Helper()
	s := memstore.New()
	for i := 0; i < n; i++ {
		require.NoError(t, s.AddVertex(graph.RawID(i), "node", graph.Fields{"f": float64(i) * 10, "class": i % 3}))
	}
	for _, e := range edges {
		require.NoError(t, s.AddEdge(e[0], e[1], "link", nil))
	}
	opts.FeatureFields = []string{"f"}
	opts.LabelField = "class"
	g, err := graph.Build(context.Background(), s, graph.LabelFilter{}, opts)
	require.NoError(t, err)
	return g
}

func randomEdges(rng *rand.Rand, n, m int) [][2]graph.RawID {
	edges := make([][2]graph.RawID, 0, m)
	for len(edges) < m {
		src, dst := rng.Intn(n), rng.Intn(n)
		if src != dst {
			edges = append(edges, [2]graph.RawID{graph.RawID(src), graph.RawID(dst)})
		}
	}
	return edges
}

func hasEdge(g *graph.GraphView, u, v uint32) bool {
	for _, e := range g.OutEdges(u) {
		if e.Didx == v {
			return true
		}
	}
	return false
}

func TestAliasTableDistribution(t *testing.T) {
	weights := []float64{1, 2, 3, 4, 0}
	table := NewAliasTable(weights)
	require.Equal(t, 5, table.Len())
	rng := rand.New(rand.NewSource(1))
	counts := make([]int, len(weights))
	const draws = 200000
	for i := 0; i < draws; i++ {
		counts[table.Sample(rng)]++
	}
	for i, w := range weights {
		assert.InDelta(t, w/10, float64(counts[i])/draws, 0.01, "index %d", i)
	}
	assert.Zero(t, counts[4])
	assert.Zero(t, NewAliasTable(nil).Len())
	assert.Zero(t, NewAliasTable([]float64{0, 0}).Len())
}

func TestOversample(t *testing.T) {
	for _, tc := range []struct {
		k    uint32
		p, r float64
	}{{100, 0.5, 0}, {1000, 0.9, 3}, {1, 0.01, 2}, {50000, 0.999, 5}} {
		N := float64(oversample(tc.k, tc.p, tc.r))
		lower := N*tc.p - tc.r*math.Sqrt(N*tc.p*(1-tc.p))
		assert.GreaterOrEqual(t, lower, float64(tc.k)-1e-6, "%+v", tc)
		assert.GreaterOrEqual(t, N, float64(tc.k)/tc.p-1e-6)
	}
	assert.Zero(t, oversample(0, 0.5, 3))
}

func TestRandomWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	n := 50
	g := featureView(t, n, randomEdges(rng, n, 200), graph.BuildOptions{})
	params := Params{Seeds: []uint32{0, 5, 99, 7}, Steps: 6, WalksPerSeed: 3, RandSeed: 42}

	res, err := Run(randomScheduler(), RANDOM_WALK, g, params)
	require.NoError(t, err)
	require.Len(t, res.Walks, 12)
	assert.Equal(t, []bool{true, true, true, true, true, true, false, false, false, true, true, true}, res.OK)

	seen := map[uint32]bool{}
	edgeRow := 0
	for w, path := range res.Walks {
		if !res.OK[w] {
			assert.Empty(t, path)
			continue
		}
		assert.Equal(t, params.Seeds[w/3], path[0])
		assert.LessOrEqual(t, len(path), 7)
		for i, v := range path {
			seen[v] = true
			if i == 0 {
				continue
			}
			assert.True(t, hasEdge(g, path[i-1], v), "walk %d hop %d", w, i)
			assert.Equal(t, path[i-1], res.Edges.Src[edgeRow])
			assert.Equal(t, v, res.Edges.Dst[edgeRow])
			edgeRow++
		}
	}
	assert.Equal(t, edgeRow, res.Edges.Len())

	require.Equal(t, len(seen), res.Nodes.Len(), "one row per distinct vertex")
	for i, v := range res.Nodes.Vertex {
		assert.True(t, seen[v])
		if i > 0 {
			assert.Less(t, res.Nodes.Vertex[i-1], v)
		}
		assert.Equal(t, []float64{float64(v) * 10}, res.Nodes.Features[i])
		assert.EqualValues(t, v%3, res.Nodes.Label[i])
		assert.EqualValues(t, v, res.Nodes.Original[i])
	}
}

func TestWalksDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	n := 80
	g := featureView(t, n, randomEdges(rng, n, 400), graph.BuildOptions{Undirected: true})
	params := Params{Seeds: []uint32{1, 2, 3, 4, 5, 6, 7, 8}, Steps: 10, WalksPerSeed: 2, P: 0.5, Q: 2, RandSeed: 3}
	for _, kind := range []Kind{RANDOM_WALK, NODE2VEC} {
		first, err := Run(graph.NewScheduler(1), kind, g, params)
		require.NoError(t, err)
		for tcount := 0; tcount < 5; tcount++ {
			res, err := Run(randomScheduler(), kind, g, params)
			require.NoError(t, err)
			assert.Equal(t, first.Walks, res.Walks, kind.String())
			assert.Equal(t, first.Edges, res.Edges, kind.String())
			assert.Equal(t, first.Nodes, res.Nodes, kind.String())
			assert.NotEqual(t, first.RunID, res.RunID)
		}
	}
}

func TestNode2VecBias(t *testing.T) {
	// 0 - 1, and 1 - 2, 1 - 3: after 0 -> 1, going back is the only "return" move.
	g := featureView(t, 4, [][2]graph.RawID{{0, 1}, {1, 2}, {1, 3}}, graph.BuildOptions{Undirected: true})
	seeds := make([]uint32, 300)

	noReturn, err := Run(randomScheduler(), NODE2VEC, g, Params{Seeds: seeds, Steps: 2, P: 1e9, Q: 1, RandSeed: 1})
	require.NoError(t, err)
	for _, path := range noReturn.Walks {
		require.Len(t, path, 3)
		assert.Equal(t, uint32(1), path[1])
		assert.NotEqual(t, uint32(0), path[2])
	}

	stayClose, err := Run(randomScheduler(), NODE2VEC, g, Params{Seeds: seeds, Steps: 2, P: 1, Q: 1e9, RandSeed: 1})
	require.NoError(t, err)
	returned := 0
	for _, path := range stayClose.Walks {
		if path[2] == 0 {
			returned++
		}
	}
	assert.Greater(t, returned, 290)
}

func TestNode2VecZeroWeightEndsWalk(t *testing.T) {
	s := memstore.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddVertex(graph.RawID(i), "node", nil))
	}
	require.NoError(t, s.AddEdge(0, 1, "link", graph.Fields{"w": 0.0}))
	require.NoError(t, s.AddEdge(1, 2, "link", graph.Fields{"w": 1.0}))
	g, err := graph.Build(context.Background(), s, graph.LabelFilter{}, graph.BuildOptions{WeightField: "w", WeightKind: graph.FloatWeight})
	require.NoError(t, err)

	res, err := Run(randomScheduler(), NODE2VEC, g, Params{Seeds: []uint32{0, 1}, Steps: 2, WalksPerSeed: 1, P: 1, Q: 1, RandSeed: 3})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, res.OK)
	assert.Equal(t, []uint32{0}, res.Walks[0], "every out-edge of 0 weighs zero")
	assert.Equal(t, []uint32{1, 2}, res.Walks[1])
	assert.Len(t, res.Edges.Src, 1)
}

func TestNegativeSampling(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	for tcount := 0; tcount < 5; tcount++ {
		n := rng.Intn(40) + 5
		g := featureView(t, n, randomEdges(rng, n, rng.Intn(n*(n-1)/2)+1), graph.BuildOptions{})
		want := uint32(rng.Intn(3000) + 1)
		params := Params{NumSamples: want, Confidence: 3, RandSeed: int64(tcount)}

		res, err := Run(randomScheduler(), NEGATIVE, g, params)
		require.NoError(t, err)
		require.Equal(t, int(want), res.Edges.Len())
		endpoints := map[uint32]bool{}
		for i := range res.Edges.Src {
			src, dst := res.Edges.Src[i], res.Edges.Dst[i]
			assert.NotEqual(t, src, dst)
			assert.False(t, hasEdge(g, src, dst), "%d->%d is an edge", src, dst)
			assert.Equal(t, NEGATIVE_TYPE, res.Edges.Type[i])
			endpoints[src], endpoints[dst] = true, true
		}
		assert.Equal(t, len(endpoints), res.Nodes.Len())

		again, err := Run(randomScheduler(), NEGATIVE, g, params)
		require.NoError(t, err)
		assert.Equal(t, res.Edges, again.Edges)
	}
}

func TestNegativeSamplingNoPairs(t *testing.T) {
	complete := [][2]graph.RawID{{0, 1}, {1, 0}, {0, 2}, {2, 0}, {1, 2}, {2, 1}, {1, 2}}
	g := featureView(t, 3, complete, graph.BuildOptions{})
	_, err := Run(randomScheduler(), NEGATIVE, g, Params{NumSamples: 1})
	assert.ErrorIs(t, err, graph.ErrUnsupportedOperation)

	single := featureView(t, 1, nil, graph.BuildOptions{})
	_, err = Run(randomScheduler(), NEGATIVE, single, Params{NumSamples: 1})
	assert.ErrorIs(t, err, graph.ErrUnsupportedOperation)

	res, err := Run(randomScheduler(), NEGATIVE, g, Params{})
	require.NoError(t, err)
	assert.Zero(t, res.Edges.Len())
}

func TestParseKind(t *testing.T) {
	for k := RANDOM_WALK; k < numKinds; k++ {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("metapath")
	assert.ErrorIs(t, err, graph.ErrUnsupportedOperation)
	_, err = Run(randomScheduler(), Kind(9), featureView(t, 1, nil, graph.BuildOptions{}), Params{})
	assert.ErrorIs(t, err, graph.ErrUnsupportedOperation)
}
