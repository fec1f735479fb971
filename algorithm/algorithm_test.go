package algorithm

import (
	"testing"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for k := BFS; k < numKinds; k++ {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	k, err := ParseKind("PageRank")
	require.NoError(t, err)
	assert.Equal(t, PAGERANK, k)

	_, err = ParseKind("betweenness")
	assert.ErrorIs(t, err, graph.ErrUnsupportedOperation)
}

func TestRunDispatch(t *testing.T) {
	edges := [][2]graph.RawID{{0, 1}, {1, 2}, {2, 0}, {2, 3}}
	g := buildView(t, 4, edges, nil, graph.BuildOptions{Undirected: true})
	sched := randomScheduler()
	params := Params{Root: 0}

	s, err := Run(sched, BFS, g, params)
	require.NoError(t, err)
	assert.EqualValues(t, 4, s.BFS.Discovered)

	s, err = Run(sched, SSSP, g, params)
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.SSSP.MaxDistance)
	assert.EqualValues(t, 3, s.SSSP.MaxVertex)

	s, err = Run(sched, WCC, g, params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, s.WCC.Components)

	s, err = Run(sched, LPA, g, params)
	require.NoError(t, err)
	assert.Len(t, s.LPA.Changes, DEFAULT_ITERATIONS)
	assert.EqualValues(t, DEFAULT_ITERATIONS, s.Supersteps)

	s, err = Run(sched, PAGERANK, g, params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.PageRank.MaxVertex)

	s, err = Run(sched, LCC, g, params)
	require.NoError(t, err)
	assert.InDelta(t, (1+1+1.0/3+0)/4, s.LCC.Mean, 1e-12)

	_, err = Run(sched, Kind(42), g, params)
	assert.ErrorIs(t, err, graph.ErrUnsupportedOperation)

	_, err = Run(sched, BFS, g, Params{Root: 9})
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestTopN(t *testing.T) {
	top := TopN([]float64{0.1, 0.5, 0.2, 0.9}, 2)
	require.Len(t, top, 2)
	assert.EqualValues(t, 3, top[0].First)
	assert.EqualValues(t, 1, top[1].First)
	assert.Len(t, TopN([]float64{1}, 5), 1)
}
